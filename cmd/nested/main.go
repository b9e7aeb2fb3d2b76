// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nested drives a parallel nested-sampling run from a YAML
// config file. It is a thin convenience wrapper around the nested
// package; the library has no dependency on this binary.
package main

import (
	"fmt"
	"os"

	"github.com/nsampler/nested/nested"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func logLevelFor(level nested.FeedbackLevel) logrus.Level {
	switch {
	case level >= nested.FeedbackTrace:
		return logrus.TraceLevel
	case level >= nested.FeedbackVerbose:
		return logrus.DebugLevel
	case level >= nested.FeedbackProgress:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

var rootCmd = &cobra.Command{
	Use:   "nested",
	Short: "Parallel nested sampling for Bayesian evidence computation",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
