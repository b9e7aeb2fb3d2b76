// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"

	"github.com/nsampler/nested/nested"
)

// exampleModel builds a standard-normal likelihood over a box prior
// [-5, 5]^D, used as the built-in demo when no plugin model is wired in.
// Concrete priors and likelihoods are external collaborators per the
// library's design (nested.PriorTransform, nested.Likelihood are
// interfaces); this is only a stand-in so `nested run` produces a
// result out of the box.
func exampleModel(nDims int) *nested.ModelEvaluator {
	prior := nested.ComposePrior(nDims, []nested.PriorBlock{
		{
			HStart: 0, PStart: 0, Len: nDims,
			Transform: nested.PriorTransformFunc(func(hypercube, physical []float64) error {
				for i, h := range hypercube {
					physical[i] = -5 + 10*h
				}
				return nil
			}),
		},
	})

	logNorm := -0.5 * math.Log(2*math.Pi)
	likelihood := nested.LikelihoodFunc(func(physical, derivedOut []float64, contextTag int) (float64, error) {
		logL := 0.0
		for _, x := range physical {
			logL += logNorm - 0.5*x*x
		}
		return logL, nil
	})

	return &nested.ModelEvaluator{Prior: prior, Likelihood: likelihood}
}
