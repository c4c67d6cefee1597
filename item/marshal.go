// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Marshal writes it's canonical, dedup-comparison bytes into b (spec
// §4.H "serialize it into a private buffer... compute Adler32-like
// hash of the bytes"). Only the five kinds the deduper actually visits
// (Code, DebugInfo, LineNumberProgram, ArrayValue, Annotation) have
// cases; every other kind is unreachable from ItemDeduper and panics
// if asked, which would indicate a caller bug rather than a data
// problem.
//
// This is intentionally NOT the real file encoding: it only needs to
// be a deterministic, content-sensitive byte string for two items with
// identical semantic payloads to hash and compare equal, so references
// are resolved by recursing to a referent's *identity* (an item
// pointer's current address, stable for the duration of one emission)
// rather than by recursively marshaling the referent's own bytes. The
// real little-endian file bytes are produced later, after dedup and
// layout, by the encoder/emit packages using binary.Writer.
// golang.org/x/crypto/cryptobyte is wired here (rather than
// encoding/binary, which has no builder/length-prefix ergonomics) the
// same way tools/ruse/rpkg/encode.go uses it for its own per-item
// dedup-by-serialized-bytes scratch buffer.
func Marshal(it *Item, b *cryptobyte.Builder) error {
	b.AddUint8(uint8(it.Kind))
	switch it.Kind {
	case KindCode:
		marshalCode(it.Code, b)
	case KindDebugInfo:
		marshalDebugInfo(it.DebugInfo, b)
	case KindLineNumberProgram:
		marshalLNP(it.LNP, b)
	case KindArrayValue:
		marshalArrayValue(it.ArrayVal, b)
	case KindAnnotation:
		marshalAnnotation(it.Annot, b)
	default:
		panic("item: Marshal called on non-dedup kind " + it.Kind.String())
	}
	return nil
}

// addPtrRef writes a referent's current address as an opaque
// identity tag (formatted rather than cast through unsafe.Pointer,
// since the builder only needs two equal pointers to produce equal
// bytes within one run, not a portable integer encoding).
func addPtrRef(b *cryptobyte.Builder, it *Item) {
	b.AddBytes([]byte(fmt.Sprintf("%p", it)))
}

func marshalCode(d *CodeData, b *cryptobyte.Builder) {
	b.AddUint32(d.RegsNum)
	b.AddUint32(d.ArgsNum)
	b.AddUint32(d.InstrNum)
	b.AddUint32(uint32(len(d.Bytecode)))
	b.AddBytes(d.Bytecode)
	b.AddUint32(uint32(len(d.TryBlocks)))
	for _, t := range d.TryBlocks {
		b.AddUint32(t.StartPC)
		b.AddUint32(t.Length)
		b.AddUint32(uint32(len(t.Catches)))
		for _, c := range t.Catches {
			addPtrRef(b, c.ClassItem)
			b.AddUint32(c.HandlerPC)
			b.AddUint32(c.HandlerSize)
		}
	}
}

func marshalDebugInfo(d *DebugInfoData, b *cryptobyte.Builder) {
	addPtrRef(b, d.LineProgram)
	b.AddUint32(uint32(d.InitialLine))
	b.AddUint32(uint32(len(d.ParamNames)))
	for _, p := range d.ParamNames {
		addPtrRef(b, p)
	}
	b.AddUint32(uint32(len(d.Locals)))
	for _, l := range d.Locals {
		b.AddBytes([]byte(l.Name))
		addPtrRef(b, l.Type)
		b.AddUint32(uint32(l.Register))
		b.AddUint32(uint32(l.StartPC))
		b.AddUint32(uint32(l.EndPC))
	}
	b.AddBytes(d.ConstantPool)
}

func marshalLNP(d *LineNumberProgramData, b *cryptobyte.Builder) {
	b.AddUint32(uint32(len(d.Ops)))
	for _, op := range d.Ops {
		b.AddUint8(op.Op)
		b.AddUint32(uint32(op.PCDelta))
		b.AddUint32(uint32(op.LineDelta))
		b.AddBytes([]byte(op.Arg))
	}
}

func marshalArrayValue(d *ArrayValueData, b *cryptobyte.Builder) {
	b.AddUint8(uint8(d.ComponentKind))
	b.AddUint32(uint32(len(d.Elements)))
	for _, e := range d.Elements {
		addPtrRef(b, e)
	}
}

func marshalAnnotation(d *AnnotationData, b *cryptobyte.Builder) {
	addPtrRef(b, d.Class)
	b.AddUint32(uint32(len(d.Elements)))
	for _, e := range d.Elements {
		addPtrRef(b, e.Name)
		addPtrRef(b, e.Value)
		b.AddUint8(e.Tag)
	}
}
