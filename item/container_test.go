// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

import (
	"testing"

	"github.com/panda-vm/pandasm/types"
)

// TestGetOrCreateStringInterns is spec §8 property 2: repeated calls
// with the same text return the same pointer.
func TestGetOrCreateStringInterns(t *testing.T) {
	c := New()
	a := c.GetOrCreateString("hi")
	b := c.GetOrCreateString("hi")
	if a != b {
		t.Fatalf("GetOrCreateString(%q) returned distinct pointers across calls", "hi")
	}
	other := c.GetOrCreateString("bye")
	if other == a {
		t.Fatalf("distinct strings interned to the same item")
	}
}

// TestGetOrCreateProtoInterns is spec §8 property 3: re-calling with
// the same (return type, param types) returns the same pointer.
func TestGetOrCreateProtoInterns(t *testing.T) {
	c := New()
	i32 := c.GetOrCreatePrimitive(types.I32)
	voidT := c.GetOrCreatePrimitive(types.Void)

	a := c.GetOrCreateProto("II", i32, []*Item{i32})
	b := c.GetOrCreateProto("II", i32, []*Item{i32})
	if a != b {
		t.Fatal("GetOrCreateProto returned distinct pointers for an identical signature")
	}

	diff := c.GetOrCreateProto("VI", voidT, []*Item{i32})
	if diff == a {
		t.Fatal("distinct proto signatures interned to the same item")
	}
}

// TestIndexSectionRollsOverOnOverflow is spec §8 property 11: a
// header must close and a new one open once a single item's
// dependency set would push a sub-index past its 65536-entry cap.
func TestIndexSectionRollsOverOnOverflow(t *testing.T) {
	s := NewIndexSection()

	// Fill the first header with exactly maxSubIndexEntries distinct
	// class dependencies, one at a time, each deps slice length 1 (each
	// one fits trivially).
	for i := 0; i < maxSubIndexEntries; i++ {
		dep := &Item{Kind: KindClass, IndexType: IndexClass}
		s.AddItemDeps(uint32(i), []*Item{dep})
	}
	if len(s.Headers) != 1 {
		t.Fatalf("got %d header(s) after exactly filling one, want 1", len(s.Headers))
	}
	if got := len(s.Headers[0].IdxHeader.ClassIdx); got != maxSubIndexEntries {
		t.Fatalf("first header class index has %d entries, want %d", got, maxSubIndexEntries)
	}

	// One more distinct class dependency must roll over to a new
	// header rather than overflow the first.
	overflowOffset := uint32(maxSubIndexEntries)
	dep := &Item{Kind: KindClass, IndexType: IndexClass}
	s.AddItemDeps(overflowOffset, []*Item{dep})

	if len(s.Headers) != 2 {
		t.Fatalf("got %d header(s) after the overflowing item, want 2", len(s.Headers))
	}
	if s.Headers[0].IdxHeader.EndOffset != overflowOffset {
		t.Errorf("first header EndOffset = %d, want %d (the offset of the overflow-causing item)", s.Headers[0].IdxHeader.EndOffset, overflowOffset)
	}
	if len(s.Headers[1].IdxHeader.ClassIdx) != 1 {
		t.Errorf("second header has %d class entries, want 1", len(s.Headers[1].IdxHeader.ClassIdx))
	}

	s.Close(overflowOffset + 1)
	if s.Headers[1].IdxHeader.EndOffset != overflowOffset+1 {
		t.Errorf("last header EndOffset = %d, want %d", s.Headers[1].IdxHeader.EndOffset, overflowOffset+1)
	}
	if dep.Header != s.Headers[1] || dep.InHeaderIdx != 0 {
		t.Errorf("overflow item's (Header, InHeaderIdx) = (%v, %d), want (header 1, 0)", dep.Header, dep.InHeaderIdx)
	}
}
