// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// PosteriorRow is one entry of the bounded posterior reservoir (§3): a
// raw (unnormalized) log-weight alongside the physical and derived
// coordinates it was recorded at. Consumers normalize LogWeight by the
// final LogZ.
type PosteriorRow struct {
	LogWeight float64
	LogL      float64
	Physical  []float64
	Derived   []float64
}

func (r PosteriorRow) clone() PosteriorRow {
	phys := append([]float64(nil), r.Physical...)
	der := append([]float64(nil), r.Derived...)
	return PosteriorRow{LogWeight: r.LogWeight, LogL: r.LogL, Physical: phys, Derived: der}
}

// Reservoir is C7: a bounded weighted-sample store with minimum-weight
// eviction (§4.7).
type Reservoir struct {
	rows          []PosteriorRow
	capacity      int
	minimumWeight float64 // linear-space threshold, e.g. 1e-3
	growFirst     bool    // §9 open question: overwrite-first (false, spec default) vs grow-first
}

// NewReservoir constructs an empty reservoir. growFirst selects the
// deviation from the spec's default overwrite-first policy noted as
// configurable in §9.
func NewReservoir(capacity int, minimumWeight float64, growFirst bool) *Reservoir {
	return &Reservoir{capacity: capacity, minimumWeight: minimumWeight, growFirst: growFirst}
}

// Len returns the current number of rows held.
func (r *Reservoir) Len() int { return len(r.rows) }

// Offer presents a newly dead point to the reservoir (§4.7). logZ is the
// running (not final) evidence estimate at the moment of death. Offer
// reports whether the row was stored.
func (r *Reservoir) Offer(row PosteriorRow, logZ float64) bool {
	if row.LogWeight-logZ <= math.Log(r.minimumWeight) {
		return false
	}
	row = row.clone()

	if len(r.rows) < r.capacity {
		if !r.growFirst {
			threshold := math.Log(r.minimumWeight) + logZ
			if idx, ok := r.belowThreshold(threshold); ok {
				r.rows[idx] = row
				return true
			}
		}
		r.rows = append(r.rows, row)
		return true
	}

	idx := r.minWeightIndex()
	if row.LogWeight > r.rows[idx].LogWeight {
		r.rows[idx] = row
		return true
	}
	return false
}

func (r *Reservoir) belowThreshold(threshold float64) (int, bool) {
	for i, row := range r.rows {
		if row.LogWeight < threshold {
			return i, true
		}
	}
	return -1, false
}

func (r *Reservoir) minWeightIndex() int {
	idx := 0
	min := math.Inf(1)
	for i, row := range r.rows {
		if row.LogWeight < min {
			min = row.LogWeight
			idx = i
		}
	}
	return idx
}

// Rows returns the reservoir's current rows. The returned slice aliases
// the reservoir's storage and must not be mutated by the caller.
func (r *Reservoir) Rows() []PosteriorRow { return r.rows }

// PosteriorStats summarizes the reservoir's weighted posterior at a
// given final evidence (supplemental feature: SPEC_FULL.md §"posterior
// summary statistics"). Mean/Variance are computed with
// gonum.org/v1/gonum/stat per physical dimension.
type PosteriorStats struct {
	Mean     []float64
	StdDev   []float64
	SumOfW   float64 // sum(exp(logweight - logZfinal)); tends to 1 as reservoir/precision relax (§8)
}

// Summarize computes PosteriorStats over the reservoir's rows,
// normalized by logZFinal.
func (r *Reservoir) Summarize(logZFinal float64) PosteriorStats {
	if len(r.rows) == 0 {
		return PosteriorStats{}
	}
	dim := len(r.rows[0].Physical)
	weights := make([]float64, len(r.rows))
	var sumW float64
	for i, row := range r.rows {
		w := math.Exp(row.LogWeight - logZFinal)
		weights[i] = w
		sumW += w
	}
	mean := make([]float64, dim)
	std := make([]float64, dim)
	col := make([]float64, len(r.rows))
	for d := 0; d < dim; d++ {
		for i, row := range r.rows {
			col[i] = row.Physical[d]
		}
		m, v := stat.MeanVariance(col, weights)
		mean[d] = m
		std[d] = math.Sqrt(v)
	}
	return PosteriorStats{Mean: mean, StdDev: std, SumOfW: sumW}
}

// Clusterer partitions a reservoir's rows into posterior modes
// (SPEC_FULL.md supplemental feature 4, cfg.ClusterPosteriors). It is an
// interface-only seam: the core has no mode-separation algorithm to
// implement (it is named in the system overview's share column as an
// external collaborator, not a designed operation), but a real clustering
// pass can be dropped in without touching the scheduler.
type Clusterer interface {
	Cluster(rows []PosteriorRow) [][]PosteriorRow
}

// SingleCluster is the default Clusterer: it returns every row as one
// cluster, matching cfg.ClusterPosteriors == false's behavior even when
// a caller passes cfg.ClusterPosteriors == true without supplying a real
// implementation.
type SingleCluster struct{}

func (SingleCluster) Cluster(rows []PosteriorRow) [][]PosteriorRow {
	if len(rows) == 0 {
		return nil
	}
	return [][]PosteriorRow{rows}
}

// EquallyWeighted resamples the reservoir into a set of rows with equal
// weight via systematic resampling (supplemental feature:
// SPEC_FULL.md's "equals" entry-point argument). logZFinal normalizes the
// input weights; rng drives the resampling offset.
func (r *Reservoir) EquallyWeighted(logZFinal float64, n int, rng *rand.Rand) []PosteriorRow {
	if len(r.rows) == 0 || n <= 0 {
		return nil
	}
	weights := make([]float64, len(r.rows))
	var total float64
	for i, row := range r.rows {
		weights[i] = math.Exp(row.LogWeight - logZFinal)
		total += weights[i]
	}
	if total <= 0 {
		return nil
	}
	out := make([]PosteriorRow, 0, n)
	step := total / float64(n)
	offset := rng.Float64() * step
	var cum float64
	i := 0
	for k := 0; k < n; k++ {
		target := offset + step*float64(k)
		for cum+weights[i] < target && i < len(r.rows)-1 {
			cum += weights[i]
			i++
		}
		out = append(out, r.rows[i].clone())
	}
	return out
}
