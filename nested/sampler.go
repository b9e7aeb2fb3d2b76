// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import "context"

// ContourSampler is C4: given a seed point on one side of an implicit
// likelihood contour, it produces a new, independent point on the other
// side. Concrete variants (slice sampling with chord-length adaptation,
// spherical-center sampling, brute force) are external collaborators and
// are not provided here; this is the contract they must satisfy.
//
// Sample is called with a seed such that seed.L0 > seed.L1 and
// seed.L1 == LBound, the current contour bound. It must return a baby
// point with baby.L0 > LBound, drawn independently (to the sampler's own
// approximation) from the prior restricted to {θ : L(θ) > LBound}.
//
// Sample must:
//   - carry the seed's Chord value forward as an adaptive step-size hint
//     (it may update it before returning, to be carried by the baby in
//     turn);
//   - report in baby.NLike the number of likelihood evaluations it
//     consumed while producing the baby, counted from zero: the scheduler
//     adds baby.NLike as-is to its call totals (see Scheduler.absorb);
//   - preserve the Daughter field exactly as provided in the seed, since
//     it addresses the baby's pre-reserved slot in the stack and the
//     scheduler uses it, unexamined, to know where to write the result;
//   - evaluate the user likelihood only from the goroutine running
//     Sample (§9 "Callback re-entrancy": the core must never assume the
//     callback is safe to call concurrently from elsewhere).
//
// Sample may return an error to report a CallbackFailure; the scheduler
// then discards the would-be baby (treats it as the lowest possible
// likelihood) rather than retrying it.
type ContourSampler interface {
	Sample(ctx context.Context, seed *Point, model *ModelEvaluator) (*Point, error)
}

// ContourSamplerFunc adapts a plain function to ContourSampler.
type ContourSamplerFunc func(ctx context.Context, seed *Point, model *ModelEvaluator) (*Point, error)

func (f ContourSamplerFunc) Sample(ctx context.Context, seed *Point, model *ModelEvaluator) (*Point, error) {
	return f(ctx, seed, model)
}
