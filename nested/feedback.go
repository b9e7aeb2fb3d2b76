// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import "github.com/sirupsen/logrus"

// FeedbackLevel controls how much progress detail the scheduler reports
// (§4.10, §6's feedback argument).
type FeedbackLevel int

const (
	// FeedbackSilent disables all progress reporting.
	FeedbackSilent FeedbackLevel = iota
	// FeedbackProgress logs the periodic ndead/logZ/sigma line every nlive promotions.
	FeedbackProgress
	// FeedbackVerbose additionally logs per-iteration dispatch/promotion detail.
	FeedbackVerbose
	// FeedbackTrace additionally logs per-worker message traffic.
	FeedbackTrace
)

// Feedback is C10's reporter. It holds the injected logger explicitly
// (§9 "Global state": no process-wide logger) and tracks the promotion
// count at which it last reported, mirroring Printer's lastHeading /
// lastValue rate limiting.
type Feedback struct {
	Log   *logrus.Logger
	Level FeedbackLevel

	lastReport  int
	lastStallAt int // ndead value at which a stall warning was last emitted (rate limit, §4.8)
}

// NewFeedback returns a Feedback writing to log at the given level. A nil
// log is replaced with a logrus.Logger instance at WarnLevel so a caller
// that doesn't care about progress reporting still gets stall/error
// lines.
func NewFeedback(log *logrus.Logger, level FeedbackLevel) *Feedback {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Feedback{Log: log, Level: level}
}

// ReportProgress emits the periodic summary line if at least nlive
// promotions have elapsed since the last report (§4.10: "every nlive
// promotions").
func (f *Feedback) ReportProgress(nlive int, ev *Evidence, meanCalls float64, totalCalls int) {
	if f.Level < FeedbackProgress {
		return
	}
	if ev.NDead-f.lastReport < nlive {
		return
	}
	f.lastReport = ev.NDead
	f.Log.WithFields(logrus.Fields{
		"ndead":       ev.NDead,
		"logz":        ev.LogZ,
		"logz_err":    ev.Sigma(),
		"mean_calls":  meanCalls,
		"total_calls": totalCalls,
	}).Info("nested sampling progress")
}

// ReportStall logs a StallWarning (§7), rate-limited to once per distinct
// ndead value so a persistent stall doesn't flood the log.
func (f *Feedback) ReportStall(ndead int) {
	if f.Level < FeedbackProgress {
		return
	}
	if ndead == f.lastStallAt {
		return
	}
	f.lastStallAt = ndead
	f.Log.WithField("ndead", ndead).Warn("nested: no eligible seed found; nprocs may be too large for nlive")
}

// ReportIteration logs per-iteration collect/promote/dispatch detail at
// FeedbackVerbose and above.
func (f *Feedback) ReportIteration(msg string, fields logrus.Fields) {
	if f.Level < FeedbackVerbose {
		return
	}
	f.Log.WithFields(fields).Debug(msg)
}

// ReportTrace logs per-worker message traffic at FeedbackTrace.
func (f *Feedback) ReportTrace(msg string, fields logrus.Fields) {
	if f.Level < FeedbackTrace {
		return
	}
	f.Log.WithFields(fields).Trace(msg)
}
