// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import "fmt"

// SlotKind tags the lifecycle state of a live-point stack slot (§3 of the
// design). Rather than mixing sentinel values (-2, -1, 0) with 1-based slot
// indices in a single int field, the kind and the daughter index are kept
// as separate fields so the zero value of DaughterStatus is never
// ambiguous with a valid index.
type SlotKind byte

const (
	// Blank means the slot is empty and may be claimed by a new seed dispatch.
	Blank SlotKind = iota
	// Gestating means the slot is reserved; a worker is producing the point.
	Gestating
	// Waiting means a live point occupies the slot with no daughter launched yet.
	Waiting
	// HasDaughter means a live point occupies the slot and has launched a
	// daughter at DaughterStatus.Index.
	HasDaughter
)

func (k SlotKind) String() string {
	switch k {
	case Blank:
		return "Blank"
	case Gestating:
		return "Gestating"
	case Waiting:
		return "Waiting"
	case HasDaughter:
		return "HasDaughter"
	default:
		return fmt.Sprintf("SlotKind(%d)", byte(k))
	}
}

// DaughterStatus is the tagged variant recommended by the design notes in
// place of the raw daughter int field: {Blank, Gestating, Waiting,
// HasDaughter(index)}.
type DaughterStatus struct {
	Kind  SlotKind
	Index int // meaningful only when Kind == HasDaughter
}

// Live reports whether the slot holds an occupied live point (Waiting or
// HasDaughter), as opposed to Blank or Gestating.
func (d DaughterStatus) Live() bool {
	return d.Kind == Waiting || d.Kind == HasDaughter
}

func (d DaughterStatus) String() string {
	if d.Kind == HasDaughter {
		return fmt.Sprintf("HasDaughter(%d)", d.Index)
	}
	return d.Kind.String()
}

// gobStatus is the explicit, versioned wire form of DaughterStatus used at
// the checkpoint boundary (§4.9), so the sentinel/index mixing never
// leaks into the persisted format either.
type gobStatus struct {
	Kind  byte
	Index int
}

func (d DaughterStatus) toGob() gobStatus {
	return gobStatus{Kind: byte(d.Kind), Index: d.Index}
}

func (g gobStatus) toStatus() DaughterStatus {
	return DaughterStatus{Kind: SlotKind(g.Kind), Index: g.Index}
}
