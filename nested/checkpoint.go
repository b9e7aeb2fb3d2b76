// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
)

// checkpointMagic and checkpointVersion guard against misparsing a
// stale-format resume file as a current one (SPEC_FULL.md supplemental
// feature: resume-file versioning).
const (
	checkpointMagic   = "NSMPL1\x00"
	checkpointVersion = 1
)

// gobPoint is the explicit wire form of Point, serializing Daughter via
// the tagged-variant gobStatus rather than a raw sentinel int (§9).
type gobPoint struct {
	Hypercube  []float64
	Physical   []float64
	Derived    []float64
	L0, L1     float64
	NLike      int
	Chord      float64
	ContextTag int
	Daughter   gobStatus
}

type gobRow struct {
	LogWeight float64
	LogL      float64
	Physical  []float64
	Derived   []float64
}

type gobCheckpoint struct {
	Magic   string
	Version int

	NDims, NDerived, NLive int

	Slots []gobPoint

	Evidence   Evidence
	MeanCalls  float64
	TotalCalls int

	Reservoir []gobRow
}

// State is the full sampler state persisted by a checkpoint (§4.9): the
// stack, the evidence accumulator, the call-count statistics, and the
// posterior reservoir.
type State struct {
	Stack      *Stack
	Evidence   *Evidence
	MeanCalls  float64
	TotalCalls int
	Reservoir  *Reservoir
}

// SaveCheckpoint persists state to path atomically: it writes to a
// temporary file in the same directory, syncs it, and renames it over
// path, so a crash mid-write never leaves a corrupt resume file in place
// (§4.9).
func SaveCheckpoint(path string, st *State) error {
	cp := gobCheckpoint{
		Magic:      checkpointMagic,
		Version:    checkpointVersion,
		NLive:      st.Stack.NLive(),
		MeanCalls:  st.MeanCalls,
		TotalCalls: st.TotalCalls,
		Evidence:   *st.Evidence,
	}
	if n := st.Stack.Cap(); n > 0 {
		first := st.Stack.Read(0)
		cp.NDims = len(first.Hypercube)
		cp.NDerived = len(first.Derived)
	}
	cp.Slots = make([]gobPoint, st.Stack.Cap())
	for i := 0; i < st.Stack.Cap(); i++ {
		p := st.Stack.Read(i)
		cp.Slots[i] = gobPoint{
			Hypercube:  p.Hypercube,
			Physical:   p.Physical,
			Derived:    p.Derived,
			L0:         p.L0,
			L1:         p.L1,
			NLike:      p.NLike,
			Chord:      p.Chord,
			ContextTag: p.ContextTag,
			Daughter:   p.Daughter.toGob(),
		}
	}
	for _, row := range st.Reservoir.Rows() {
		cp.Reservoir = append(cp.Reservoir, gobRow{
			LogWeight: row.LogWeight,
			LogL:      row.LogL,
			Physical:  row.Physical,
			Derived:   row.Derived,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&cp); err != nil {
		return wrapIOError("encode checkpoint", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return wrapIOError("create temp checkpoint", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return wrapIOError("write checkpoint", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return wrapIOError("sync checkpoint", path, err)
	}
	if err := tmp.Close(); err != nil {
		return wrapIOError("close checkpoint", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return wrapIOError("rename checkpoint", path, err)
	}
	return nil
}

// LoadCheckpoint reads and validates a checkpoint written by
// SaveCheckpoint. Any slot found Gestating is canceled per §4.9: it is
// reblanked and its mother's Daughter is reset to Waiting, since the
// worker that was producing it no longer exists in the resumed process.
//
// cfg supplies the reservoir's capacity, minimum weight, and grow-first
// policy (§4.7): these are run parameters, not sampler state, so a
// resumed run honors whatever cfg the caller passed rather than whatever
// happened to be true of the reservoir at the moment it was saved. Saved
// rows are replayed through Offer under cfg's policy, so a resume with a
// smaller nmax_posterior or a tightened minimum_weight re-evicts under
// those settings. The replay gates every row against the checkpoint's
// saved LogZ, not the running LogZ each row first met.
func LoadCheckpoint(path string, cfg *Config) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapIOError("read checkpoint", path, err)
	}
	var cp gobCheckpoint
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cp); err != nil {
		return nil, &ResumeCorruptionError{Path: path, Err: err}
	}
	if cp.Magic != checkpointMagic {
		return nil, &ResumeCorruptionError{Path: path, Err: errNotAResumeFile}
	}
	if cp.Version != checkpointVersion {
		return nil, &ResumeCorruptionError{Path: path, Err: errUnsupportedVersion}
	}

	stack := NewStack(len(cp.Slots), cp.NLive, cp.NDims, cp.NDerived)
	for i, gp := range cp.Slots {
		p := Point{
			Hypercube:  gp.Hypercube,
			Physical:   gp.Physical,
			Derived:    gp.Derived,
			L0:         gp.L0,
			L1:         gp.L1,
			NLike:      gp.NLike,
			Chord:      gp.Chord,
			ContextTag: gp.ContextTag,
			Daughter:   gp.Daughter.toStatus(),
		}
		stack.Write(i, &p)
	}
	cancelGestating(stack)

	ev := cp.Evidence
	reservoir := NewReservoir(cfg.PosteriorCapacity, cfg.MinimumWeight, cfg.PosteriorGrowFirst)
	for _, row := range cp.Reservoir {
		reservoir.Offer(PosteriorRow{
			LogWeight: row.LogWeight,
			LogL:      row.LogL,
			Physical:  row.Physical,
			Derived:   row.Derived,
		}, ev.LogZ)
	}

	return &State{
		Stack:      stack,
		Evidence:   &ev,
		MeanCalls:  cp.MeanCalls,
		TotalCalls: cp.TotalCalls,
		Reservoir:  reservoir,
	}, nil
}

func cancelGestating(stack *Stack) {
	for i := 0; i < stack.Cap(); i++ {
		p := stack.Read(i)
		if p.Daughter.Kind != Gestating {
			continue
		}
		stack.Blank(i)
		for m := 0; m < stack.Cap(); m++ {
			mp := stack.Read(m)
			if mp.Daughter.Kind == HasDaughter && mp.Daughter.Index == i {
				mp.Daughter = DaughterStatus{Kind: Waiting}
				stack.Write(m, &mp)
				break
			}
		}
	}
}
