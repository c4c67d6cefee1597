// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

import (
	"hash/adler32"

	"golang.org/x/crypto/cryptobyte"
)

// itemData is one hash-set entry (spec §4.H "ItemData{item_ptr, hash,
// serialized-bytes}").
type itemData struct {
	item  *Item
	hash  uint32
	bytes string
}

// ItemDeduper deduplicates items by serialized content (spec §4.H).
type ItemDeduper struct {
	byHash map[uint32][]itemData
}

func NewItemDeduper() *ItemDeduper {
	return &ItemDeduper{byHash: map[uint32][]itemData{}}
}

// Dedup serializes it, and returns the survivor: it itself if this is
// the first item with these bytes, or a previously-seen item with
// identical bytes otherwise. When a duplicate is found, it is marked
// NeedsEmit = false (spec invariant 6).
func (d *ItemDeduper) Dedup(it *Item) (*Item, error) {
	b := cryptobyte.NewBuilder(nil)
	if err := Marshal(it, b); err != nil {
		return it, err
	}
	raw, err := b.Bytes()
	if err != nil {
		return it, err
	}
	h := adler32.Checksum(raw)
	bytes := string(raw)

	for _, cand := range d.byHash[h] {
		if cand.bytes == bytes {
			if cand.item != it {
				it.NeedsEmit = false
				it.RefCount--
				cand.item.RefCount++
			}
			return cand.item, nil
		}
	}
	d.byHash[h] = append(d.byHash[h], itemData{item: it, hash: h, bytes: bytes})
	return it, nil
}

// DedupMethodCodeAndDebug runs pass 1 for one method (spec §4.H "Pass
// 1 — Code and debug info"): dedupe the line-number program first (so
// the DebugInfoItem's inner pointer and the line-number-program index
// both observe the survivor), then the DebugInfoItem, then the
// CodeItem.
func (d *ItemDeduper) DedupMethodCodeAndDebug(m *MethodData) error {
	if m.DebugInfo != nil && m.DebugInfo.DebugInfo.LineProgram != nil {
		survivor, err := d.Dedup(m.DebugInfo.DebugInfo.LineProgram)
		if err != nil {
			return err
		}
		m.DebugInfo.DebugInfo.LineProgram = survivor
	}
	if m.DebugInfo != nil {
		survivor, err := d.Dedup(m.DebugInfo)
		if err != nil {
			return err
		}
		m.DebugInfo = survivor
	}
	if m.Code != nil {
		survivor, err := d.Dedup(m.Code)
		if err != nil {
			return err
		}
		m.Code = survivor
	}
	return nil
}

// DedupAnnotation runs pass 2 for one annotation (spec §4.H "Pass 2 —
// Annotations"): dedupe each array-valued element first (tag chars
// K-Z and @, i.e. KindArrayValue elements), then the AnnotationItem
// itself, since "annotation value items are leaves of the reference
// graph; deduping them first lets annotation-item hashes converge."
func (d *ItemDeduper) DedupAnnotation(a *Item) (*Item, error) {
	for i, el := range a.Annot.Elements {
		if el.Value != nil && el.Value.Kind == KindArrayValue {
			survivor, err := d.Dedup(el.Value)
			if err != nil {
				return a, err
			}
			a.Annot.Elements[i].Value = survivor
		}
	}
	return d.Dedup(a)
}
