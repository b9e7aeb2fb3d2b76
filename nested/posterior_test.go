// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"math"
	"math/rand"
	"testing"
)

func row(logWeight, logL float64, phys ...float64) PosteriorRow {
	return PosteriorRow{LogWeight: logWeight, LogL: logL, Physical: phys}
}

func TestReservoirOfferRejectsBelowMinimumWeight(t *testing.T) {
	r := NewReservoir(10, 1e-3, false)
	accepted := r.Offer(row(-100, -100, 0), 0) // weight/Z = exp(-100), far below 1e-3
	if accepted {
		t.Error("Offer accepted a row far below the minimum-weight threshold")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestReservoirOfferFillsUpToCapacity(t *testing.T) {
	r := NewReservoir(3, 1e-9, true)
	for i := 0; i < 3; i++ {
		if !r.Offer(row(-float64(i), -float64(i), float64(i)), 0) {
			t.Fatalf("Offer %d rejected while reservoir had room", i)
		}
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
}

func TestReservoirOfferEvictsLowestWeightWhenFull(t *testing.T) {
	r := NewReservoir(2, 1e-9, true)
	r.Offer(row(-10, -10, 1), 0)
	r.Offer(row(-20, -20, 2), 0)

	// A new row heavier than the lightest stored row (-20) must evict it.
	ok := r.Offer(row(-5, -5, 3), 0)
	if !ok {
		t.Fatal("Offer rejected a row heavier than the current minimum")
	}
	for _, got := range r.Rows() {
		if got.LogWeight == -20 {
			t.Error("Offer failed to evict the lowest-weight row")
		}
	}

	// A row lighter than everything currently stored must be rejected.
	if r.Offer(row(-30, -30, 4), 0) {
		t.Error("Offer accepted a row lighter than every stored row")
	}
}

func TestReservoirSummarizeMatchesKnownMean(t *testing.T) {
	r := NewReservoir(10, 0, true)
	// Two equally-weighted points at -1 and 1 should average to 0.
	r.Offer(row(0, 0, -1), 0)
	r.Offer(row(0, 0, 1), 0)

	stats := r.Summarize(0)
	if math.Abs(stats.Mean[0]) > 1e-9 {
		t.Errorf("Summarize mean = %v, want ~0", stats.Mean[0])
	}
}

func TestEquallyWeightedProducesRequestedCount(t *testing.T) {
	r := NewReservoir(10, 0, true)
	for i := 0; i < 5; i++ {
		r.Offer(row(0, 0, float64(i)), 0)
	}
	rng := rand.New(rand.NewSource(1))
	rows := r.EquallyWeighted(0, 7, rng)
	if len(rows) != 7 {
		t.Errorf("EquallyWeighted returned %d rows, want 7", len(rows))
	}
}

func TestSingleClusterReturnsOneGroup(t *testing.T) {
	rows := []PosteriorRow{row(0, 0, 1), row(0, 0, 2)}
	clusters := SingleCluster{}.Cluster(rows)
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}
	if len(clusters[0]) != 2 {
		t.Errorf("len(clusters[0]) = %d, want 2", len(clusters[0]))
	}
}
