// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package types implements the Panda assembly type system: the
// primitive/reference/array type model and its descriptor round-trip
// (spec §4.E), grounded on the type-name tables in
// _examples/original_source/assembler/assembly-type.cpp and styled
// after the teacher's small, value-typed "types/basic.go"-shaped
// packages (named constants + table-driven String/parse methods).
package types

import (
	"fmt"
	"strings"
)

// Kind identifies a primitive type, or Reference for anything that
// is not one of the thirteen primitive keywords.
type Kind int

const (
	Reference Kind = iota
	U1
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
	Void
	Any
)

// primitive holds, for each primitive Kind, its textual keyword and
// its single-character descriptor code. The ordering and character
// assignment (Z u1, B i8, H u8, S i16, C u16, I i32, U u32, F f32,
// D f64, J i64, Q u64, V void, A any) is the reserved mapping from
// spec §3.
type primitiveEntry struct {
	Kind Kind
	Name string
	Char byte
}

var primitives = []primitiveEntry{
	{U1, "u1", 'Z'},
	{I8, "i8", 'B'},
	{U8, "u8", 'H'},
	{I16, "i16", 'S'},
	{U16, "u16", 'C'},
	{I32, "i32", 'I'},
	{U32, "u32", 'U'},
	{F32, "f32", 'F'},
	{F64, "f64", 'D'},
	{I64, "i64", 'J'},
	{U64, "u64", 'Q'},
	{Void, "void", 'V'},
	{Any, "any", 'A'},
}

var (
	nameToPrimitive = func() map[string]primitiveEntry {
		m := make(map[string]primitiveEntry, len(primitives))
		for _, p := range primitives {
			m[p.Name] = p
		}
		return m
	}()
	charToPrimitive = func() map[byte]primitiveEntry {
		m := make(map[byte]primitiveEntry, len(primitives))
		for _, p := range primitives {
			m[p.Char] = p
		}
		return m
	}()
)

// Type is a semantic type value: a component (a primitive keyword or
// a dot-separated reference name) plus a non-negative array rank.
// Equality and hashing are defined over (Component, Rank) — the Name
// form — per spec §3 ("Equality and hashing use the name").
type Type struct {
	Component string
	Rank      int
	Prim      Kind
}

// FromName parses a type written in name form, e.g. "T[][]", "i32",
// "foo.Bar[]".
func FromName(name string) (Type, error) {
	rank := 0
	base := name
	for strings.HasSuffix(base, "[]") {
		base = base[:len(base)-2]
		rank++
	}
	if base == "" {
		return Type{}, fmt.Errorf("types: empty component name in %q", name)
	}
	if p, ok := nameToPrimitive[base]; ok {
		if rank > 0 {
			return Type{Component: base, Rank: rank, Prim: Reference}, nil
		}
		return Type{Component: base, Rank: 0, Prim: p.Kind}, nil
	}
	return Type{Component: base, Rank: rank, Prim: Reference}, nil
}

// FromDescriptor parses a type written in descriptor form, e.g.
// "[[LT;" or "I".
func FromDescriptor(desc string) (Type, error) {
	rank := 0
	i := 0
	for i < len(desc) && desc[i] == '[' {
		rank++
		i++
	}
	if i >= len(desc) {
		return Type{}, fmt.Errorf("types: truncated descriptor %q", desc)
	}
	if desc[i] == 'L' {
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return Type{}, fmt.Errorf("types: reference descriptor %q missing terminating ';'", desc)
		}
		name := desc[i+1 : i+end]
		name = strings.ReplaceAll(name, "/", ".")
		return Type{Component: name, Rank: rank, Prim: Reference}, nil
	}
	p, ok := charToPrimitive[desc[i]]
	if !ok {
		return Type{}, fmt.Errorf("types: unrecognised descriptor character %q in %q", desc[i], desc)
	}
	if rank > 0 {
		return Type{Component: p.Name, Rank: rank, Prim: Reference}, nil
	}
	return Type{Component: p.Name, Rank: 0, Prim: p.Kind}, nil
}

// Name renders the type in name form.
func (t Type) Name() string {
	return t.Component + strings.Repeat("[]", t.Rank)
}

// Descriptor renders the type in descriptor form. When
// ignorePrimitive is true, a component that happens to spell a
// primitive keyword is nonetheless emitted in reference form
// (L<name>;) — used for records whose name collides with a primitive
// keyword (the "conflict" flag on Record, spec §3).
func (t Type) Descriptor(ignorePrimitive bool) string {
	brackets := strings.Repeat("[", t.Rank)
	if !ignorePrimitive && t.Rank == 0 {
		if p, ok := nameToPrimitive[t.Component]; ok {
			return brackets + string(p.Char)
		}
	}
	return brackets + "L" + strings.ReplaceAll(t.Component, ".", "/") + ";"
}

// ComponentType returns the type one rank down (the element type of
// an array). For a non-array type it returns itself.
func (t Type) ComponentType() Type {
	if t.Rank == 0 {
		return t
	}
	if t.Rank == 1 {
		if p, ok := nameToPrimitive[t.Component]; ok {
			return Type{Component: t.Component, Rank: 0, Prim: p.Kind}
		}
	}
	return Type{Component: t.Component, Rank: t.Rank - 1, Prim: Reference}
}

func (t Type) IsArray() bool { return t.Rank > 0 }

// IsObject reports whether the type is a reference type (including
// arrays, which are themselves references).
func (t Type) IsObject() bool { return t.Prim == Reference }

func (t Type) IsIntegral() bool {
	switch t.Prim {
	case U1, I8, U8, I16, U16, I32, U32, I64, U64:
		return t.Rank == 0
	default:
		return false
	}
}

func (t Type) IsFloat() bool {
	if t.Rank != 0 {
		return false
	}
	return t.Prim == F32 || t.Prim == F64
}

// IsPrimitiveName reports whether name spells one of the thirteen
// primitive keywords (used to detect a record whose name collides
// with a primitive, spec §3's Record.conflict flag).
func IsPrimitiveName(name string) bool {
	_, ok := nameToPrimitive[name]
	return ok
}

// ID returns the underlying kind (Reference for any non-primitive or
// array type).
func (t Type) ID() Kind {
	if t.Rank > 0 {
		return Reference
	}
	return t.Prim
}
