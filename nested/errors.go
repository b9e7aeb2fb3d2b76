// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError signifies an invalid configuration: bad dimensions, a
// worker count that leaves no room for a live population, non-positive
// nlive, or an unusable path. It is fatal at startup (§7).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "nested: config error: " + e.Msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ResumeCorruptionError signifies a checkpoint file that could not be
// parsed, or whose format version does not match. Fatal; the caller must
// delete the resume file or disable ReadResume (§7, §4.9).
type ResumeCorruptionError struct {
	Path string
	Err  error
}

func (e *ResumeCorruptionError) Error() string {
	return fmt.Sprintf("nested: resume file %q is corrupt: %v", e.Path, e.Err)
}

func (e *ResumeCorruptionError) Unwrap() error { return e.Err }

// PriorDomainError signifies a prior block received an out-of-range
// hypercube input. Under normal operation this is only reachable from
// data corruption, since the stack only ever feeds values from [0,1]^D
// into the prior (§4.1).
type PriorDomainError struct {
	Index int
	Value float64
}

func (e *PriorDomainError) Error() string {
	return fmt.Sprintf("nested: prior received out-of-domain hypercube[%d] = %g", e.Index, e.Value)
}

// CallbackFailureError wraps an error returned by the user likelihood or
// prior callback. It is not propagated to the caller: the point is
// discarded from promotion (L0 is set to -Inf) and is not retried (§7).
type CallbackFailureError struct {
	Err error
}

func (e *CallbackFailureError) Error() string {
	return "nested: likelihood callback failed: " + e.Err.Error()
}

func (e *CallbackFailureError) Unwrap() error { return e.Err }

// wrapIOError wraps a checkpoint/posterior write or read failure with the
// operation that produced it, preserving the underlying cause for
// errors.Is/As via pkg/errors.
func wrapIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "nested: %s %q", op, path)
}

// ErrStackFull is returned by generateSeed when Stack.ClaimBlank finds no
// Blank slot for the daughter.
var ErrStackFull = errors.New("nested: live-point stack has no blank slots")

// ErrNoSeed is returned by generateSeed when no eligible seed body could
// be found after the rejection bound (§4.5). It is a stall signal, not a
// fatal error: the caller retries on the next iteration.
var ErrNoSeed = errors.New("nested: no eligible seed found this iteration")

var (
	errNotAResumeFile     = errors.New("not a nested-sampling resume file")
	errUnsupportedVersion = errors.New("unsupported resume file version")
)
