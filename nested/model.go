// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

// Likelihood is the user-supplied log-likelihood callback (§6):
//
//	logL = L(physical[0..D), derived_out[0..K), context_int)
//
// LogLikelihood must treat physical as read-only, must write exactly
// len(derivedOut) values into derivedOut, and must behave as a pure
// function of (physical, derivedOut) — side effects are not permitted
// (§4.2). contextTag is an opaque value forwarded unmodified from the
// Point that requested the evaluation.
type Likelihood interface {
	LogLikelihood(physical, derivedOut []float64, contextTag int) (float64, error)
}

// LikelihoodFunc adapts a plain function to Likelihood.
type LikelihoodFunc func(physical, derivedOut []float64, contextTag int) (float64, error)

func (f LikelihoodFunc) LogLikelihood(physical, derivedOut []float64, contextTag int) (float64, error) {
	return f(physical, derivedOut, contextTag)
}

// ModelEvaluator is C3: it turns a hypercube point into a fully evaluated
// point by running the prior transform followed by the likelihood.
type ModelEvaluator struct {
	Prior      PriorTransform
	Likelihood Likelihood
}

// CalculatePoint reads p.Hypercube, computes p.Physical via the prior,
// invokes the likelihood (which writes p.Derived), and sets p.L0.
// It increments p.NLike by exactly one regardless of outcome, matching
// optimize's updateEvaluationStats: a call is a call whether or not the
// objective function returns an error.
//
// On a callback failure (from either the prior or the likelihood),
// CalculatePoint sets p.L0 = -Inf per §7's CallbackFailure handling (the
// point is therefore never the lowest-likelihood candidate in error, it
// is unconditionally the lowest, so it is discarded from promotion at
// the next opportunity) and returns a *CallbackFailureError.
func (m *ModelEvaluator) CalculatePoint(p *Point) error {
	p.NLike++
	if err := m.Prior.Transform(p.Hypercube, p.Physical); err != nil {
		p.L0 = negInf
		return &CallbackFailureError{Err: err}
	}
	logL, err := m.Likelihood.LogLikelihood(p.Physical, p.Derived, p.ContextTag)
	if err != nil {
		p.L0 = negInf
		return &CallbackFailureError{Err: err}
	}
	p.L0 = logL
	return nil
}
