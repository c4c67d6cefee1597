// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package program

import "fmt"

// LiteralTag is the closed set of literal-array element tags (spec §3
// "LiteralArray").
type LiteralTag int

const (
	TagValue LiteralTag = iota
	TagBool
	TagArrayI8
	TagArrayI16
	TagArrayI32
	TagArrayI64
	TagArrayF32
	TagArrayF64
	TagInteger
	TagFloat
	TagDouble
	TagString
	TagArrayString
	TagMethod
	TagGeneratorMethod
	TagAccessor
	TagNullValue
)

func (t LiteralTag) String() string {
	names := [...]string{
		"TAGVALUE", "BOOL", "ARRAY_I8", "ARRAY_I16", "ARRAY_I32", "ARRAY_I64",
		"ARRAY_F32", "ARRAY_F64", "INTEGER", "FLOAT", "DOUBLE", "STRING",
		"ARRAY_STRING", "METHOD", "GENERATORMETHOD", "ACCESSOR", "NULLVALUE",
	}
	if int(t) >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("LiteralTag(%d)", int(t))
}

// Literal is one tagged element of a LiteralArray.
type Literal struct {
	Tag     LiteralTag
	Bool    bool
	Integer int64
	Float32 float32
	Float64 float64
	Str     string
	// Array holds nested literals for the ARRAY_* tags; each nested
	// literal's own Tag is the scalar tag implied by the array tag
	// (e.g. ARRAY_I8 nests plain Integer-bearing literals).
	Array []Literal
}

// LiteralArray is an immutable constant pool entry referenced by id
// (spec §3 "LiteralArray").
type LiteralArray struct {
	ID       string
	Literals []Literal
}
