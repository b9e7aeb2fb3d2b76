// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import "math"

// Point is the fixed-width record carried through the live-point stack
// (§3). Its shape never changes after construction: Hypercube and
// Physical are always length nDims, Derived is always length nDerived.
type Point struct {
	Hypercube []float64
	Physical  []float64
	Derived   []float64

	L0 float64 // log-likelihood at this point
	L1 float64 // contour bound this point was generated above (-Inf for initial points)

	NLike int     // number of likelihood evaluations consumed producing this point
	Chord float64 // adaptive step-size hint carried between generations (last_chord)

	// ContextTag is the opaque integer the likelihood callback receives
	// and must forward unmodified (§6).
	ContextTag int

	// Repeats carries the boost_posterior hint (SPEC_FULL.md supplemental
	// feature 3): the number of extra within-contour repeats the sampler
	// is asked to perform for this seed. Zero means "use the sampler's
	// own default".
	Repeats int

	Daughter DaughterStatus
}

// newPoint allocates a zeroed Point of the given shape, mirroring
// optimize's newLocation: allocate once per shape, reuse via copyInto
// thereafter.
func newPoint(nDims, nDerived int) *Point {
	return &Point{
		Hypercube: make([]float64, nDims),
		Physical:  make([]float64, nDims),
		Derived:   make([]float64, nDerived),
		L0:        math.Inf(-1),
		L1:        math.Inf(-1),
		Daughter:  DaughterStatus{Kind: Blank},
	}
}

// copyInto copies the receiver's data into dst, resizing dst's slices
// only if their capacity is insufficient (optimize.resize's reuse rule).
func (p *Point) copyInto(dst *Point) {
	dst.Hypercube = resizeFloats(dst.Hypercube, len(p.Hypercube))
	copy(dst.Hypercube, p.Hypercube)
	dst.Physical = resizeFloats(dst.Physical, len(p.Physical))
	copy(dst.Physical, p.Physical)
	dst.Derived = resizeFloats(dst.Derived, len(p.Derived))
	copy(dst.Derived, p.Derived)

	dst.L0 = p.L0
	dst.L1 = p.L1
	dst.NLike = p.NLike
	dst.Chord = p.Chord
	dst.ContextTag = p.ContextTag
	dst.Repeats = p.Repeats
	dst.Daughter = p.Daughter
}

// clone returns an independent copy of p.
func (p *Point) clone() *Point {
	dst := newPoint(len(p.Hypercube), len(p.Derived))
	p.copyInto(dst)
	return dst
}

// Clone returns an independent copy of p, safe for a ContourSampler
// implementation to mutate while proposing new points without aliasing
// the seed it was given (§4.3's contract).
func (p *Point) Clone() *Point {
	return p.clone()
}

// blank resets the slot to an empty Blank state, keeping the allocated
// slices (they are reused by the next occupant via copyInto).
func (p *Point) blank() {
	p.L0 = math.Inf(-1)
	p.L1 = math.Inf(-1)
	p.NLike = 0
	p.Chord = 0
	p.ContextTag = 0
	p.Repeats = 0
	p.Daughter = DaughterStatus{Kind: Blank}
}

func resizeFloats(x []float64, n int) []float64 {
	if n > cap(x) {
		return make([]float64, n)
	}
	return x[:n]
}
