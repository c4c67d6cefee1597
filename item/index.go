// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

// maxSubIndexEntries is the per-header, per-type capacity (spec §4.I
// step 3: "If the sub-index is full (>=65536 entries)... close the
// current header").
const maxSubIndexEntries = 65536

// IndexSection is the ordered list of IndexHeaderItems built during
// layout (spec §4.I "Construction"). Each header maps a contiguous
// file-offset range to up to four typed 16-bit sub-indexes.
type IndexSection struct {
	Headers []*Item // each KindIndexHeader
	cur     *Item
}

func NewIndexSection() *IndexSection { return &IndexSection{} }

// Reset clears the section (spec §4.I step 1).
func (s *IndexSection) Reset() {
	s.Headers = nil
	s.cur = nil
}

func (s *IndexSection) openHeader(startOffset uint32) *Item {
	h := &Item{
		Kind:      KindIndexHeader,
		Align:     4,
		IdxHeader: &IndexHeaderData{StartOffset: startOffset},
	}
	s.Headers = append(s.Headers, h)
	s.cur = h
	return h
}

// subIndexLen returns the length of the sub-index of h matching
// idxType, for AddItemDeps's overflow check.
func subIndexLen(h *IndexHeaderData, idxType IndexType) int {
	switch idxType {
	case IndexClass:
		return len(h.ClassIdx)
	case IndexMethod:
		return len(h.MethodIdx)
	case IndexField:
		return len(h.FieldIdx)
	case IndexProto:
		return len(h.ProtoIdx)
	default:
		return 0
	}
}

func appendSubIndex(h *IndexHeaderData, idxType IndexType, it *Item) {
	switch idxType {
	case IndexClass:
		h.ClassIdx = append(h.ClassIdx, it)
	case IndexMethod:
		h.MethodIdx = append(h.MethodIdx, it)
	case IndexField:
		h.FieldIdx = append(h.FieldIdx, it)
	case IndexProto:
		h.ProtoIdx = append(h.ProtoIdx, it)
	}
}

// alreadyIndexed reports whether it is already present in the current
// header's appropriate sub-index, so a dependency visited twice for
// the same item (e.g. two instructions in one method calling the same
// callee) does not consume two slots.
func alreadyIndexed(h *IndexHeaderData, idxType IndexType, it *Item) bool {
	var list []*Item
	switch idxType {
	case IndexClass:
		list = h.ClassIdx
	case IndexMethod:
		list = h.MethodIdx
	case IndexField:
		list = h.FieldIdx
	case IndexProto:
		list = h.ProtoIdx
	}
	for _, x := range list {
		if x == it {
			return true
		}
	}
	return false
}

// AddItemDeps registers deps, the index dependencies of the item at
// ownerOffset, against the current header (skipping deps with no
// scoped IndexType and deps already indexed there), opening a new
// header first if any dependency would overflow a sub-index (spec
// §4.I step 3: "Bulk-insertion is atomic: either all deps of an item
// fit in the current header, or the header is rolled over first").
func (s *IndexSection) AddItemDeps(ownerOffset uint32, deps []*Item) {
	if len(deps) == 0 {
		return
	}
	if s.cur == nil {
		s.openHeader(ownerOffset)
	}

	fits := true
	counts := map[IndexType]int{}
	for _, d := range deps {
		if d.IndexType == IndexNone || d.IndexType == IndexLineNumberProg {
			continue
		}
		if alreadyIndexed(s.cur.IdxHeader, d.IndexType, d) {
			continue
		}
		counts[d.IndexType]++
	}
	for t, n := range counts {
		if subIndexLen(s.cur.IdxHeader, t)+n > maxSubIndexEntries {
			fits = false
			break
		}
	}

	if !fits {
		s.cur.IdxHeader.EndOffset = ownerOffset
		s.openHeader(ownerOffset)
	}

	for _, d := range deps {
		if d.IndexType == IndexNone || d.IndexType == IndexLineNumberProg {
			continue
		}
		if alreadyIndexed(s.cur.IdxHeader, d.IndexType, d) {
			continue
		}
		appendSubIndex(s.cur.IdxHeader, d.IndexType, d)
	}
}

// Close finalizes the last header's end offset against the EndItem's
// offset (spec §4.I step 4) and assigns every indexed item its
// (header, index-within-header) pair (step 5).
func (s *IndexSection) Close(endOffset uint32) {
	if s.cur != nil {
		s.cur.IdxHeader.EndOffset = endOffset
	}
	for _, h := range s.Headers {
		assign := func(list []*Item) {
			for i, it := range list {
				it.Header = h
				it.InHeaderIdx = uint16(i)
			}
		}
		assign(h.IdxHeader.ClassIdx)
		assign(h.IdxHeader.MethodIdx)
		assign(h.IdxHeader.FieldIdx)
		assign(h.IdxHeader.ProtoIdx)
	}
}

// LineNumberProgramIndex is the separate file-wide 32-bit index for
// LineNumberProgramItems (spec §4.I "The separate line-number-program
// index uses 32-bit ids because programs are dedup-shared broadly").
type LineNumberProgramIndex struct {
	entries []*Item
	seen    map[*Item]uint32
}

func NewLineNumberProgramIndex() *LineNumberProgramIndex {
	return &LineNumberProgramIndex{seen: map[*Item]uint32{}}
}

// IDFor returns it's 32-bit id, assigning the next one if this is the
// first time it is seen (spec §4.J step 6: built "last, after all
// line-number programs have been placed").
func (x *LineNumberProgramIndex) IDFor(it *Item) uint32 {
	if id, ok := x.seen[it]; ok {
		return id
	}
	id := uint32(len(x.entries))
	x.entries = append(x.entries, it)
	x.seen[it] = id
	return id
}

func (x *LineNumberProgramIndex) Entries() []*Item { return x.entries }
