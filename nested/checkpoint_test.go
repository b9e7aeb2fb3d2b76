// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"os"
	"path/filepath"
	"testing"
)

func buildTestState(t *testing.T) *State {
	t.Helper()
	stack := NewStack(10, 3, 2, 1)
	for i := 0; i < 3; i++ {
		p := newPoint(2, 1)
		p.Hypercube[0], p.Hypercube[1] = 0.1*float64(i), 0.2
		p.L0 = -float64(i)
		p.Daughter = DaughterStatus{Kind: Waiting}
		stack.Write(i, p)
	}
	ev := NewEvidence(1e-3, 0)
	ev.Update(-5, 3)

	reservoir := NewReservoir(5, 0, true)
	reservoir.Offer(row(0, -1, 0.5, 0.6), ev.LogZ)

	return &State{
		Stack:      stack,
		Evidence:   ev,
		MeanCalls:  4.5,
		TotalCalls: 9,
		Reservoir:  reservoir,
	}
}

func TestCheckpointSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.resume")
	st := buildTestState(t)

	if err := SaveCheckpoint(path, st); err != nil {
		t.Fatalf("SaveCheckpoint returned error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.PosteriorCapacity = 5
	cfg.MinimumWeight = 0
	cfg.PosteriorGrowFirst = true
	loaded, err := LoadCheckpoint(path, cfg)
	if err != nil {
		t.Fatalf("LoadCheckpoint returned error: %v", err)
	}

	if loaded.Stack.Cap() != st.Stack.Cap() {
		t.Errorf("loaded Cap() = %d, want %d", loaded.Stack.Cap(), st.Stack.Cap())
	}
	if loaded.Evidence.LogZ != st.Evidence.LogZ {
		t.Errorf("loaded Evidence.LogZ = %v, want %v", loaded.Evidence.LogZ, st.Evidence.LogZ)
	}
	if loaded.TotalCalls != st.TotalCalls {
		t.Errorf("loaded TotalCalls = %d, want %d", loaded.TotalCalls, st.TotalCalls)
	}
	if loaded.Reservoir.Len() != 1 {
		t.Errorf("loaded Reservoir.Len() = %d, want 1", loaded.Reservoir.Len())
	}
	got := loaded.Stack.Read(1)
	if got.Hypercube[0] != 0.1 {
		t.Errorf("loaded slot 1 Hypercube[0] = %v, want 0.1", got.Hypercube[0])
	}
}

func TestLoadCheckpointRejectsUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.resume")
	st := buildTestState(t)
	if err := SaveCheckpoint(path, st); err != nil {
		t.Fatalf("SaveCheckpoint returned error: %v", err)
	}

	// Corrupt the file outright; the gob decode itself should fail and
	// surface as a ResumeCorruptionError rather than a panic.
	corruptPath := filepath.Join(dir, "corrupt.resume")
	if err := os.WriteFile(corruptPath, []byte("not a checkpoint"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	_, err := LoadCheckpoint(corruptPath, DefaultConfig())
	if err == nil {
		t.Fatal("LoadCheckpoint accepted a non-checkpoint file")
	}
	if _, ok := err.(*ResumeCorruptionError); !ok {
		t.Errorf("LoadCheckpoint error = %T, want *ResumeCorruptionError", err)
	}
}

func TestLoadCheckpointReappliesConfigReservoirPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.resume")
	st := buildTestState(t)
	// buildTestState's saved reservoir used minimumWeight=0 and capacity=5;
	// a resume with a tighter policy must re-evict rather than keep
	// whatever shape the reservoir happened to have when saved.
	if err := SaveCheckpoint(path, st); err != nil {
		t.Fatalf("SaveCheckpoint returned error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.PosteriorCapacity = 1
	cfg.MinimumWeight = 1e-3
	cfg.PosteriorGrowFirst = false
	loaded, err := LoadCheckpoint(path, cfg)
	if err != nil {
		t.Fatalf("LoadCheckpoint returned error: %v", err)
	}
	if loaded.Reservoir.Len() > cfg.PosteriorCapacity {
		t.Errorf("loaded Reservoir.Len() = %d, want <= %d (cfg.PosteriorCapacity)", loaded.Reservoir.Len(), cfg.PosteriorCapacity)
	}
}

func TestCancelGestatingResetsMother(t *testing.T) {
	stack := NewStack(5, 2, 1, 0)
	mother := newPoint(1, 0)
	mother.L0 = -1
	mother.Daughter = DaughterStatus{Kind: HasDaughter, Index: 1}
	stack.Write(0, mother)

	daughter := newPoint(1, 0)
	daughter.Daughter = DaughterStatus{Kind: Gestating}
	stack.Write(1, daughter)

	cancelGestating(stack)

	if got := stack.Read(1); got.Daughter.Kind != Blank {
		t.Errorf("gestating slot Daughter.Kind = %v, want Blank", got.Daughter.Kind)
	}
	if got := stack.Read(0); got.Daughter.Kind != Waiting {
		t.Errorf("mother slot Daughter.Kind = %v, want Waiting", got.Daughter.Kind)
	}
}
