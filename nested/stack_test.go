// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"math/rand"
	"testing"
)

func TestNewStackEnforcesMinimumCapacity(t *testing.T) {
	s := NewStack(1, 10, 2, 0)
	if s.Cap() != 20 {
		t.Errorf("Cap() = %d, want 20 (2*nlive floor)", s.Cap())
	}
}

func TestStackWriteReadRoundTrip(t *testing.T) {
	s := NewStack(10, 5, 2, 1)
	p := newPoint(2, 1)
	p.Hypercube[0], p.Hypercube[1] = 0.1, 0.2
	p.L0 = -3
	p.Daughter = DaughterStatus{Kind: Waiting}

	s.Write(3, p)
	got := s.Read(3)

	if got.Hypercube[0] != 0.1 || got.Hypercube[1] != 0.2 {
		t.Errorf("Read after Write: Hypercube = %v, want [0.1 0.2]", got.Hypercube)
	}
	if got.L0 != -3 {
		t.Errorf("Read after Write: L0 = %v, want -3", got.L0)
	}
	if got.Daughter.Kind != Waiting {
		t.Errorf("Read after Write: Daughter.Kind = %v, want Waiting", got.Daughter.Kind)
	}

	// Mutating the returned copy must not alias the stack's storage.
	got.Hypercube[0] = 99
	if again := s.Read(3); again.Hypercube[0] != 0.1 {
		t.Error("Read returned a slice aliasing internal storage")
	}
}

func TestStackBlank(t *testing.T) {
	s := NewStack(10, 5, 2, 0)
	p := newPoint(2, 0)
	p.Daughter = DaughterStatus{Kind: Waiting}
	p.L0 = -1
	s.Write(0, p)

	s.Blank(0)
	got := s.Read(0)
	if got.Daughter.Kind != Blank {
		t.Errorf("after Blank, Daughter.Kind = %v, want Blank", got.Daughter.Kind)
	}
}

func TestGenerateInitialPopulatesExactlyNLive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model := identityModel()
	s := NewStack(20, 5, 1, 0)

	if err := s.GenerateInitial(rng, model); err != nil {
		t.Fatalf("GenerateInitial returned error: %v", err)
	}

	live, blank := 0, 0
	for i := 0; i < s.Cap(); i++ {
		p := s.Read(i)
		switch p.Daughter.Kind {
		case Waiting:
			live++
			if p.Hypercube[0] < 0 || p.Hypercube[0] > 1 {
				t.Errorf("slot %d hypercube value out of [0,1]: %v", i, p.Hypercube[0])
			}
		case Blank:
			blank++
		default:
			t.Errorf("slot %d has unexpected Daughter.Kind = %v after GenerateInitial", i, p.Daughter.Kind)
		}
	}
	if live != 5 {
		t.Errorf("live slot count = %d, want 5", live)
	}
	if blank != 15 {
		t.Errorf("blank slot count = %d, want 15", blank)
	}
}

func TestLowestWaitingFindsMinimumAmongLive(t *testing.T) {
	s := NewStack(6, 3, 1, 0)
	vals := []float64{-1, -5, -2}
	for i, v := range vals {
		p := newPoint(1, 0)
		p.L0 = v
		p.Daughter = DaughterStatus{Kind: Waiting}
		s.Write(i, p)
	}
	// Remaining slots stay Blank (Daughter.Live() == false), so they must
	// never be selected regardless of their L0.
	for i := 3; i < 6; i++ {
		p := newPoint(1, 0)
		p.L0 = -100
		s.Write(i, p)
	}

	idx, ok := s.LowestWaiting()
	if !ok {
		t.Fatal("LowestWaiting reported no live slot")
	}
	if idx != 1 {
		t.Errorf("LowestWaiting index = %d, want 1 (L0 = -5)", idx)
	}
}

func TestClaimBlankExhaustion(t *testing.T) {
	s := NewStack(2, 1, 1, 0)
	for i := 0; i < s.Cap(); i++ {
		p := newPoint(1, 0)
		p.Daughter = DaughterStatus{Kind: Waiting}
		s.Write(i, p)
	}
	_, ok := s.ClaimBlank()
	if ok {
		t.Error("ClaimBlank reported success with no Blank slots remaining")
	}
}
