// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

// PriorTransform maps a point in the unit hypercube to physical
// coordinates (§4.1). Implementations must be bijective on their support
// and total on [0,1]^D; concrete prior families (uniform, Gaussian,
// log-uniform, ...) are external collaborators and are not provided here.
type PriorTransform interface {
	// Transform reads hypercube[0..D) and writes physical[0..D). It must
	// not retain either slice.
	Transform(hypercube, physical []float64) error
}

// PriorTransformFunc adapts a plain function to PriorTransform.
type PriorTransformFunc func(hypercube, physical []float64) error

func (f PriorTransformFunc) Transform(hypercube, physical []float64) error {
	return f(hypercube, physical)
}

// PriorBlock is one independent prior block of a composed prior: it
// consumes the contiguous hypercube range [HStart, HStart+Len) and
// produces the contiguous physical range [PStart, PStart+Len).
// Disjoint blocks may be combined with ComposePrior (§4.1).
type PriorBlock struct {
	HStart, PStart, Len int
	Transform           PriorTransform
}

// ComposePrior combines independently-specified prior blocks indexed by
// disjoint hypercube and physical ranges into a single PriorTransform.
// Blocks are applied in the order given; their ranges are not checked
// for overlap beyond a bounds check against dim, since overlap is a
// configuration bug the caller is expected to avoid (constructing the
// blocks is itself the configuration step, outside the sampling loop).
func ComposePrior(dim int, blocks []PriorBlock) PriorTransform {
	return &composedPrior{dim: dim, blocks: blocks}
}

type composedPrior struct {
	dim    int
	blocks []PriorBlock
}

func (c *composedPrior) Transform(hypercube, physical []float64) error {
	for i, h := range hypercube {
		if h < 0 || h > 1 {
			return &PriorDomainError{Index: i, Value: h}
		}
	}
	for _, b := range c.blocks {
		if b.HStart < 0 || b.PStart < 0 || b.Len < 0 || b.HStart+b.Len > c.dim || b.PStart+b.Len > c.dim {
			return configErrorf("prior block (hypercube %d, physical %d, len %d) exceeds dimension %d", b.HStart, b.PStart, b.Len, c.dim)
		}
		if err := b.Transform.Transform(
			hypercube[b.HStart:b.HStart+b.Len],
			physical[b.PStart:b.PStart+b.Len],
		); err != nil {
			return err
		}
	}
	return nil
}
