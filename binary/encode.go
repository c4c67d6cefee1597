// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package binary

import (
	"fmt"

	"github.com/panda-vm/pandasm/item"
)

// magic is the file's fixed 16-byte preamble (spec §4.J "16-byte
// magic (\"PANDA\\0\\0\\0\" then pad)").
var magic = [16]byte{'P', 'A', 'N', 'D', 'A', 0, 0, 0}

// version is the constant 4-byte version slot spec §6 describes as
// "known at build time"; this assembler targets one fixed container
// version, so it is a literal rather than a derived value.
var version = [4]byte{0, 0, 0, 1}

// EncodeFile serializes c into the final little-endian container
// format spec §6 describes, given the offsets c.ComputeLayout already
// assigned. It must run after both dedup passes and ComputeLayout, and
// after every method's bytecode has been filled in by the instruction
// encoder (spec §4.G phase 12), since CodeItem bytes are written
// verbatim here rather than re-derived.
func EncodeFile(c *item.Container, l *item.Layout) ([]byte, error) {
	w := New()

	if err := w.WriteBytes(magic[:]); err != nil {
		return nil, err
	}
	checksumOffset := w.Offset()
	if err := w.WriteU32(0); err != nil {
		return nil, err
	}

	w.CountChecksum(true)

	if err := w.WriteBytes(version[:]); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.FileSize); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.ForeignOffset); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.ForeignSize); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.ClassIndexCount); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.ClassIndexOffset); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.LineProgramIndexCount); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.LineProgramIndexOffset); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.LiteralArrayIndexCount); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.LiteralArrayIndexOffset); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.IndexHeaderCount); err != nil {
		return nil, err
	}
	if err := w.WriteU32(l.IndexHeaderOffset); err != nil {
		return nil, err
	}

	if w.Offset() != item.HeaderSize {
		return nil, fmt.Errorf("binary: header encoded as %d bytes, want %d", w.Offset(), item.HeaderSize)
	}

	classes := c.Classes()
	for _, cls := range classes {
		if err := w.WriteU32(cls.Offset); err != nil {
			return nil, err
		}
	}

	litArrays := c.LiteralArrays()
	for _, la := range litArrays {
		if err := w.WriteU32(la.Offset); err != nil {
			return nil, err
		}
	}

	for _, h := range c.Index.Headers {
		if err := padTo(w, h.Offset); err != nil {
			return nil, err
		}
		if err := writeIndexHeader(w, h); err != nil {
			return nil, err
		}
	}

	for _, it := range c.Foreign {
		if err := padTo(w, it.Offset); err != nil {
			return nil, err
		}
		if err := writeItem(w, it); err != nil {
			return nil, fmt.Errorf("binary: writing %s: %w", it.Kind, err)
		}
	}

	for _, it := range c.Implemented {
		if !it.NeedsEmit || it.Kind == item.KindLineNumberProgram {
			continue
		}
		if err := padTo(w, it.Offset); err != nil {
			return nil, err
		}
		if err := writeItem(w, it); err != nil {
			return nil, fmt.Errorf("binary: writing %s: %w", it.Kind, err)
		}
	}

	for _, it := range c.LNPIdx.Entries() {
		if err := padTo(w, it.Offset); err != nil {
			return nil, err
		}
		if err := writeItem(w, it); err != nil {
			return nil, fmt.Errorf("binary: writing line-number program: %w", err)
		}
	}

	if err := padTo(w, l.FileSize); err != nil {
		return nil, err
	}

	w.CountChecksum(false)
	w.WriteChecksumAt(checksumOffset)

	return w.Bytes(), nil
}

// padTo writes zero bytes until the writer reaches off, the alignment
// padding ComputeLayout already budgeted for between consecutive items
// (spec §4.J "aligns and assigns final offsets").
func padTo(w *Writer, off uint32) error {
	cur := w.Offset()
	if cur > off {
		return fmt.Errorf("binary: writer already past target offset %d (at %d)", off, cur)
	}
	if cur == off {
		return nil
	}
	return w.WriteBytes(make([]byte, off-cur))
}

func writeIndexHeader(w *Writer, h *item.Item) error {
	d := h.IdxHeader
	if err := w.WriteU32(d.StartOffset); err != nil {
		return err
	}
	if err := w.WriteU32(d.EndOffset); err != nil {
		return err
	}
	subs := [][]*item.Item{d.ClassIdx, d.MethodIdx, d.FieldIdx, d.ProtoIdx}
	for _, s := range subs {
		if err := w.WriteU32(uint32(len(s))); err != nil {
			return err
		}
		if err := w.WriteU32(offsetOf(s)); err != nil {
			return err
		}
	}
	for _, s := range subs {
		for _, it := range s {
			if err := w.WriteU32(it.Offset); err != nil {
				return err
			}
		}
	}
	return nil
}

// offsetOf is a placeholder sub-index table offset: this assembler
// inlines each sub-index immediately after its header (rather than in
// a separately addressed region), so the "offset" field records the
// file offset of the sub-index's first entry item (0 for an empty
// sub-index), not the sub-index table itself; a reader finds the
// inline entries by walking the four counts in order. Spec.md leaves the exact sub-index physical placement to
// the implementer beyond "emitted inline" (spec §6).
func offsetOf(s []*item.Item) uint32 {
	if len(s) == 0 {
		return 0
	}
	return s[0].Offset
}

func writeItem(w *Writer, it *item.Item) error {
	switch it.Kind {
	case item.KindPrimitiveType:
		return w.WriteU32(uint32(it.Primitive.Kind))
	case item.KindString:
		if err := w.WriteULEB128(uint64(len(it.Str.Value))); err != nil {
			return err
		}
		if err := w.WriteBytes([]byte(it.Str.Value)); err != nil {
			return err
		}
		return w.WriteByte(0)
	case item.KindForeignClass:
		if err := w.WriteULEB128(uint64(len(it.Class.Descriptor))); err != nil {
			return err
		}
		return w.WriteBytes([]byte(it.Class.Descriptor))
	case item.KindClass:
		return writeClass(w, it)
	case item.KindForeignField:
		d := it.Field
		if err := writeRef(w, d.Owner); err != nil {
			return err
		}
		if err := writeRef(w, d.Name); err != nil {
			return err
		}
		return writeRef(w, d.Type)
	case item.KindField:
		d := it.Field
		if err := writeRef(w, d.Owner); err != nil {
			return err
		}
		if err := writeRef(w, d.Name); err != nil {
			return err
		}
		if err := writeRef(w, d.Type); err != nil {
			return err
		}
		if err := w.WriteU32(d.AccessFlags); err != nil {
			return err
		}
		return writeRef(w, d.Value)
	case item.KindForeignMethod:
		d := it.Method
		if err := writeRef(w, d.Owner); err != nil {
			return err
		}
		if err := writeRef(w, d.Name); err != nil {
			return err
		}
		if err := writeRef(w, d.Proto); err != nil {
			return err
		}
		return w.WriteU32(d.AccessFlags)
	case item.KindMethod:
		return writeMethod(w, it)
	case item.KindProto:
		return writeProto(w, it)
	case item.KindCode:
		return writeCode(w, it)
	case item.KindDebugInfo:
		return writeDebugInfo(w, it)
	case item.KindLineNumberProgram:
		return writeLNP(w, it)
	case item.KindAnnotation:
		return writeAnnotation(w, it)
	case item.KindScalarValue:
		return writeScalar(w, it.Scalar)
	case item.KindArrayValue:
		return writeArrayValue(w, it)
	case item.KindLiteralArray:
		return writeLiteralArray(w, it)
	case item.KindMethodHandle:
		if err := w.WriteU32(it.MethodHdl.HandleKind); err != nil {
			return err
		}
		return writeRef(w, it.MethodHdl.Target)
	case item.KindParamAnnotations:
		return writeParamAnnotations(w, it)
	case item.KindEnd:
		return nil
	default:
		return fmt.Errorf("binary: no encoding for item kind %s", it.Kind)
	}
}

// writeRef writes a cross-item reference as its absolute file offset;
// a nil reference (an absent optional field such as a field's constant
// value or a class's base) is written as the impossible offset 0,
// where the file's magic preamble starts and no item can sit.
func writeRef(w *Writer, ref *item.Item) error {
	if ref == nil {
		return w.WriteU32(0)
	}
	return w.WriteU32(ref.Offset)
}

func nameRefOf(it *item.Item) *item.Item { return it }

func writeClass(w *Writer, it *item.Item) error {
	d := it.Class
	if err := w.WriteU32(d.AccessFlags); err != nil {
		return err
	}
	if err := writeRef(w, d.SourceFile); err != nil {
		return err
	}
	if err := writeRef(w, d.Base); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.Interfaces))); err != nil {
		return err
	}
	for _, i := range d.Interfaces {
		if err := writeRef(w, i); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint32(len(d.Fields))); err != nil {
		return err
	}
	for _, f := range d.Fields {
		if err := writeRef(w, f); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint32(len(d.Methods))); err != nil {
		return err
	}
	for _, m := range d.Methods {
		if err := writeRef(w, m); err != nil {
			return err
		}
	}
	return nil
}

func writeMethod(w *Writer, it *item.Item) error {
	d := it.Method
	if err := writeRef(w, d.Name); err != nil {
		return err
	}
	if err := writeRef(w, d.Proto); err != nil {
		return err
	}
	if err := w.WriteU32(d.AccessFlags); err != nil {
		return err
	}
	if err := writeRef(w, d.Code); err != nil {
		return err
	}
	if err := writeRef(w, d.DebugInfo); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.Params))); err != nil {
		return err
	}
	for _, p := range d.Params {
		if err := writeRef(w, p.Type); err != nil {
			return err
		}
	}
	return nil
}

func writeProto(w *Writer, it *item.Item) error {
	d := it.Proto
	if err := w.WriteU32(uint32(len(d.Shorty))); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(d.Shorty)); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.ParamTypes))); err != nil {
		return err
	}
	for _, p := range d.ParamTypes {
		if err := writeRef(w, p); err != nil {
			return err
		}
	}
	return nil
}

func writeCode(w *Writer, it *item.Item) error {
	d := it.Code
	if err := w.WriteU32(d.RegsNum); err != nil {
		return err
	}
	if err := w.WriteU32(d.ArgsNum); err != nil {
		return err
	}
	if err := w.WriteU32(d.InstrNum); err != nil {
		return err
	}
	if err := w.WriteBytes(d.Bytecode); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.TryBlocks))); err != nil {
		return err
	}
	for _, t := range d.TryBlocks {
		if err := w.WriteU32(t.StartPC); err != nil {
			return err
		}
		if err := w.WriteU32(t.Length); err != nil {
			return err
		}
		if err := w.WriteU32(uint32(len(t.Catches))); err != nil {
			return err
		}
		for _, c := range t.Catches {
			if err := writeRef(w, c.ClassItem); err != nil {
				return err
			}
			if err := w.WriteU32(c.HandlerPC); err != nil {
				return err
			}
			if err := w.WriteU32(c.HandlerSize); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDebugInfo(w *Writer, it *item.Item) error {
	d := it.DebugInfo
	if err := w.WriteU32(uint32(d.InitialLine)); err != nil {
		return err
	}
	if err := writeRef(w, d.LineProgram); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.ParamNames))); err != nil {
		return err
	}
	for _, p := range d.ParamNames {
		if err := writeRef(w, p); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint32(len(d.Locals))); err != nil {
		return err
	}
	for _, l := range d.Locals {
		if err := writeRef(w, l.Type); err != nil {
			return err
		}
		if err := w.WriteU32(uint32(l.Register)); err != nil {
			return err
		}
		if err := w.WriteU32(uint32(l.StartPC)); err != nil {
			return err
		}
		if err := w.WriteU32(uint32(l.EndPC)); err != nil {
			return err
		}
	}
	return w.WriteBytes(d.ConstantPool)
}

func writeLNP(w *Writer, it *item.Item) error {
	for _, op := range it.LNP.Ops {
		if err := w.WriteByte(op.Op); err != nil {
			return err
		}
		if op.Arg != "" {
			if err := w.WriteBytes([]byte(op.Arg)); err != nil {
				return err
			}
			if err := w.WriteByte(0); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteSLEB128(int64(op.PCDelta)); err != nil {
			return err
		}
		if err := w.WriteSLEB128(int64(op.LineDelta)); err != nil {
			return err
		}
	}
	return w.WriteByte(0) // end sentinel, spec §4.K "must emit the end sentinel even for empty methods"
}

func writeAnnotation(w *Writer, it *item.Item) error {
	d := it.Annot
	if err := writeRef(w, d.Class); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.Elements))); err != nil {
		return err
	}
	for _, e := range d.Elements {
		if err := writeRef(w, e.Name); err != nil {
			return err
		}
		if err := writeRef(w, e.Value); err != nil {
			return err
		}
		if err := w.WriteByte(e.Tag); err != nil {
			return err
		}
	}
	return nil
}

func writeScalar(w *Writer, d *item.ScalarValueData) error {
	if err := w.WriteByte(byte(d.Kind)); err != nil {
		return err
	}
	switch d.Kind {
	case item.ValF32:
		return w.WriteU32(d.Bits32)
	case item.ValF64:
		return w.WriteU64(d.Bits64)
	case item.ValString, item.ValRecord, item.ValMethod, item.ValEnum, item.ValAnnotation:
		return writeRef(w, d.Ref)
	default:
		return w.WriteU64(d.Integer)
	}
}

func writeArrayValue(w *Writer, it *item.Item) error {
	d := it.ArrayVal
	if err := w.WriteByte(byte(d.ComponentKind)); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(d.Elements))); err != nil {
		return err
	}
	for _, e := range d.Elements {
		if err := writeRef(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeLiteralArray(w *Writer, it *item.Item) error {
	d := it.LitArray
	if err := w.WriteU32(uint32(len(d.Literals))); err != nil {
		return err
	}
	for _, l := range d.Literals {
		if err := writeLiteralValue(w, l); err != nil {
			return err
		}
	}
	return nil
}

func writeLiteralValue(w *Writer, l item.LiteralValue) error {
	if err := w.WriteByte(l.Tag); err != nil {
		return err
	}
	if l.Str != nil {
		return writeRef(w, l.Str)
	}
	if len(l.Nested) > 0 {
		if err := w.WriteU32(uint32(len(l.Nested))); err != nil {
			return err
		}
		for _, n := range l.Nested {
			if err := writeLiteralValue(w, n); err != nil {
				return err
			}
		}
		return nil
	}
	return w.WriteU64(l.U64)
}

func writeParamAnnotations(w *Writer, it *item.Item) error {
	d := it.ParamAnn
	if err := w.WriteU32(uint32(len(d.PerParam))); err != nil {
		return err
	}
	for _, p := range d.PerParam {
		if err := w.WriteU32(uint32(len(p))); err != nil {
			return err
		}
		for _, a := range p {
			if err := writeRef(w, a); err != nil {
				return err
			}
		}
	}
	return nil
}
