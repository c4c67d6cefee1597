// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

// HeaderSize is the fixed byte length of the file header (spec §4.J
// "Header bytes" and §6 "Binary file layout"): 16-byte magic, 4-byte
// checksum, 4-byte version, 4-byte file size, then five (count/offset
// or offset/size uint32) pairs — foreign section, class index,
// line-number-program index, literal-array index, index-header
// section — at 8 bytes each.
const HeaderSize = 16 + 4 + 4 + 4 + 5*8

// Layout carries the offsets ComputeLayout assigns, consumed by the
// binary writer (spec §4.J).
type Layout struct {
	ClassIndexOffset   uint32
	ClassIndexCount    uint32
	LiteralArrayIndexOffset uint32
	LiteralArrayIndexCount  uint32
	IndexHeaderOffset  uint32
	IndexHeaderCount   uint32
	ForeignOffset      uint32
	ForeignSize        uint32
	LineProgramIndexOffset uint32
	LineProgramIndexCount  uint32
	FileSize           uint32
}

func alignUp(off, k uint32) uint32 {
	if k <= 1 {
		return off
	}
	if rem := off % k; rem != 0 {
		return off + (k - rem)
	}
	return off
}

// ComputeLayout assigns every item's Offset field and returns the
// resulting file layout (spec §4.J "Layout"). It assumes every index
// dependency has already been registered (item.IndexSection.AddItemDeps)
// and that both dedup passes have already run, so that NeedsEmit
// correctly excludes duplicates and CodeItem/DebugInfo byte lengths are
// final; it closes the index section itself once the end offset is
// known.
//
// Per-item byte length is computed by itemSize (the sizing table
// below), grounded on original_source/libpandafile/
// file_item_container.cpp's per-item ComputeLayout overrides, adapted
// here into one switch rather than one virtual method per item kind
// to match the tagged-union shape the rest of this package uses.
func (c *Container) ComputeLayout(classList, literalArrayList []*Item) *Layout {
	l := &Layout{}

	offset := uint32(HeaderSize)

	l.ClassIndexOffset = offset
	l.ClassIndexCount = uint32(len(classList))
	offset += l.ClassIndexCount * 4

	l.LiteralArrayIndexOffset = offset
	l.LiteralArrayIndexCount = uint32(len(literalArrayList))
	offset += l.LiteralArrayIndexCount * 4

	l.IndexHeaderOffset = offset
	l.IndexHeaderCount = uint32(len(c.Index.Headers))
	for _, h := range c.Index.Headers {
		offset = alignUp(offset, h.Align)
		h.Offset = offset
		offset += indexHeaderByteSize(h.IdxHeader)
	}

	l.ForeignOffset = offset
	for _, it := range c.Foreign {
		offset = alignUp(offset, it.Align)
		it.Offset = offset
		offset += itemSize(it)
	}
	l.ForeignSize = offset - l.ForeignOffset

	for _, it := range c.Implemented {
		if !it.NeedsEmit {
			continue
		}
		if it.Kind == KindLineNumberProgram {
			continue // placed after every other implemented item, step 6
		}
		offset = alignUp(offset, it.Align)
		it.Offset = offset
		offset += itemSize(it)
	}

	l.LineProgramIndexOffset = offset
	for _, it := range c.Implemented {
		if it.Kind != KindLineNumberProgram || !it.NeedsEmit {
			continue
		}
		offset = alignUp(offset, it.Align)
		it.Offset = offset
		offset += itemSize(it)
	}
	l.LineProgramIndexCount = uint32(len(c.LNPIdx.Entries()))

	if c.End == nil {
		c.NewEnd()
	}
	c.End.Offset = offset
	l.FileSize = offset

	c.Index.Close(offset)

	return l
}

func indexHeaderByteSize(h *IndexHeaderData) uint32 {
	// start_offset, end_offset, then 4 x (count uint32, offset uint32)
	// sub-index descriptors, per spec §4.I, followed by every
	// sub-index's 4-byte entries written inline.
	const descriptor = 4 * 2
	entries := len(h.ClassIdx) + len(h.MethodIdx) + len(h.FieldIdx) + len(h.ProtoIdx)
	return 4 + 4 + 4*descriptor + uint32(entries)*4
}

// itemSize returns the serialized byte length of it's binary-file
// encoding (not the dedup-canonical bytes of marshal.go, which exist
// only to compare items, never to size them). Reference-valued fields
// below cost a fixed 4-byte absolute file offset each, consistent with
// isa.OperandKind.EncodedWidth's STRING/ID width and spec §4.J's
// "write<T>(v)" fixed-width primitive writes.
func itemSize(it *Item) uint32 {
	const idRef = 4
	switch it.Kind {
	case KindPrimitiveType:
		return 4
	case KindString:
		// uleb128 length prefix (worst case 5 bytes) + utf8 bytes + NUL.
		return uint32(5 + len(it.Str.Value) + 1)
	case KindClass, KindForeignClass:
		if it.Kind == KindForeignClass {
			// A foreign class carries no owned fields/methods to
			// reference elsewhere, so its descriptor name is inlined
			// directly (uleb128 length prefix, worst case 5 bytes, plus
			// the descriptor bytes) rather than via a separate
			// StringItem reference.
			return uint32(5 + len(it.Class.Descriptor))
		}
		n := uint32(4*4 + idRef*2) // access flags, counts, source-file, base
		n += uint32(len(it.Class.Interfaces)) * idRef
		n += uint32(len(it.Class.Fields)) * idRef
		n += uint32(len(it.Class.Methods)) * idRef
		return n
	case KindField, KindForeignField:
		if it.Kind == KindForeignField {
			return idRef*2 + 4
		}
		return idRef*4 + 4 // owner, name, type, value, access flags
	case KindMethod, KindForeignMethod:
		n := uint32(idRef*2 + 4) // name, proto, access flags
		if it.Kind == KindForeignMethod {
			n += idRef // owner
		}
		if it.Kind == KindMethod {
			n += idRef * 2 // code, debug-info
			// param count, params
			n += 4 + uint32(len(it.Method.Params))*idRef
		}
		return n
	case KindProto:
		// shorty length, shorty bytes, param count, param types
		return uint32(4 + len(it.Proto.Shorty) + 4 + len(it.Proto.ParamTypes)*idRef)
	case KindCode:
		return uint32(4*3) + it.Code.ByteLength + tryBlockTableSize(it.Code.TryBlocks)
	case KindDebugInfo:
		// initial line, param count, locals count
		n := uint32(4*3 + len(it.DebugInfo.ParamNames)*idRef + len(it.DebugInfo.ConstantPool))
		n += uint32(len(it.DebugInfo.Locals)) * (idRef + 4*3)
		return n + idRef
	case KindLineNumberProgram:
		n := uint32(0)
		for _, op := range it.LNP.Ops {
			n += lineProgramOpSize(op)
		}
		return n + 1 // end sentinel
	case KindAnnotation:
		return uint32(idRef + 4 + len(it.Annot.Elements)*(idRef*2+1))
	case KindScalarValue:
		return 8 + 1
	case KindArrayValue:
		return uint32(4 + 1 + len(it.ArrayVal.Elements)*idRef)
	case KindLiteralArray:
		n := uint32(4)
		for range it.LitArray.Literals {
			n += 1 + 8
		}
		return n
	case KindMethodHandle:
		return 4 + idRef
	case KindParamAnnotations:
		n := uint32(4)
		for _, p := range it.ParamAnn.PerParam {
			n += uint32(4 + len(p)*idRef)
		}
		return n
	case KindEnd:
		return 0
	default:
		return 0
	}
}

func tryBlockTableSize(blocks []TryBlock) uint32 {
	n := uint32(4)
	for _, b := range blocks {
		n += 4 + 4 + 4
		n += uint32(len(b.Catches)) * (4 + 4 + 4)
	}
	return n
}

func lineProgramOpSize(op LineProgramOp) uint32 {
	if op.Arg != "" {
		return uint32(1 + len(op.Arg) + 1)
	}
	return 1 + 5 + 5 // opcode + worst-case two uleb128 advances
}
