// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestComposePriorDelegatesByBlock(t *testing.T) {
	block0 := PriorTransformFunc(func(h, p []float64) error {
		for i := range h {
			p[i] = h[i] * 2
		}
		return nil
	})
	block1 := PriorTransformFunc(func(h, p []float64) error {
		for i := range h {
			p[i] = h[i] + 100
		}
		return nil
	})

	prior := ComposePrior(3, []PriorBlock{
		{HStart: 0, PStart: 0, Len: 2, Transform: block0},
		{HStart: 2, PStart: 2, Len: 1, Transform: block1},
	})

	hyper := []float64{0.25, 0.5, 0.75}
	phys := make([]float64, 3)
	if err := prior.Transform(hyper, phys); err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	want := []float64{0.5, 1.0, 100.75}
	if diff := cmp.Diff(want, phys, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Transform result mismatch (-want +got):\n%s", diff)
	}
}

func TestComposePriorRejectsOutOfDomain(t *testing.T) {
	identity := PriorTransformFunc(func(h, p []float64) error {
		copy(p, h)
		return nil
	})
	prior := ComposePrior(1, []PriorBlock{{HStart: 0, PStart: 0, Len: 1, Transform: identity}})

	phys := make([]float64, 1)
	err := prior.Transform([]float64{1.5}, phys)
	if err == nil {
		t.Fatal("Transform accepted an out-of-domain hypercube value")
	}
	domainErr, ok := err.(*PriorDomainError)
	if !ok {
		t.Fatalf("Transform returned %T, want *PriorDomainError", err)
	}
	if domainErr.Index != 0 {
		t.Errorf("PriorDomainError.Index = %d, want 0", domainErr.Index)
	}
}
