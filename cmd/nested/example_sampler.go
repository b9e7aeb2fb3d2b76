// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"math/rand"

	"github.com/nsampler/nested/nested"
)

// exampleSampler is a minimal random-walk within-contour sampler: it
// proposes steps of up to seed.Chord per coordinate in the unit
// hypercube, reflecting at the [0,1] boundary, and moves to each proposal
// landing above the seed's contour bound until it has accepted
// max(numRepeats, seed.Repeats, 1) proposals or tried 20 per repeat.
// Concrete within-contour samplers are an
// external collaborator per the library's design (nested.ContourSampler
// is an interface); this is only a stand-in so `nested run` is runnable
// without a real slice sampler plugged in.
type exampleSampler struct {
	rng        *rand.Rand
	numRepeats int
}

func newExampleSampler(numRepeats int) nested.ContourSampler {
	return &exampleSampler{
		rng:        rand.New(rand.NewSource(rand.Int63())),
		numRepeats: numRepeats,
	}
}

func (s *exampleSampler) Sample(ctx context.Context, seed *nested.Point, model *nested.ModelEvaluator) (*nested.Point, error) {
	current := seed.Clone()
	repeats := s.numRepeats
	if seed.Repeats > repeats {
		repeats = seed.Repeats
	}
	if repeats < 1 {
		repeats = 1
	}

	chord := seed.Chord
	if chord <= 0 {
		chord = 1
	}

	accepted := 0
	calls := 0
	for i := 0; i < repeats*20; i++ {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		default:
		}

		trial := current.Clone()
		for d := range trial.Hypercube {
			step := (s.rng.Float64()*2 - 1) * chord
			v := trial.Hypercube[d] + step
			v = reflect01(v)
			trial.Hypercube[d] = v
		}
		calls++
		if err := model.CalculatePoint(trial); err != nil {
			return nil, err
		}
		if trial.L0 > seed.L1 {
			current = trial
			accepted++
			if accepted >= repeats {
				break
			}
		}
	}

	current.Chord = chord
	current.NLike = calls
	current.Daughter = seed.Daughter
	return current, nil
}

func reflect01(v float64) float64 {
	for v < 0 || v > 1 {
		if v < 0 {
			v = -v
		}
		if v > 1 {
			v = 2 - v
		}
	}
	return v
}
