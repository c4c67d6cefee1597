// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNameDescriptorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
	}{
		{"u1", Type{Component: "u1", Prim: U1}},
		{"i8", Type{Component: "i8", Prim: I8}},
		{"u8", Type{Component: "u8", Prim: U8}},
		{"i16", Type{Component: "i16", Prim: I16}},
		{"u16", Type{Component: "u16", Prim: U16}},
		{"i32", Type{Component: "i32", Prim: I32}},
		{"u32", Type{Component: "u32", Prim: U32}},
		{"f32", Type{Component: "f32", Prim: F32}},
		{"f64", Type{Component: "f64", Prim: F64}},
		{"i64", Type{Component: "i64", Prim: I64}},
		{"u64", Type{Component: "u64", Prim: U64}},
		{"void", Type{Component: "void", Prim: Void}},
		{"any", Type{Component: "any", Prim: Any}},
		{"reference", Type{Component: "foo.Bar", Prim: Reference}},
		{"array of i32 rank 1", Type{Component: "i32", Rank: 1, Prim: Reference}},
		{"array of i32 rank 4", Type{Component: "i32", Rank: 4, Prim: Reference}},
		{"array of reference rank 2", Type{Component: "foo.Bar", Rank: 2, Prim: Reference}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FromName(test.typ.Name())
			if err != nil {
				t.Fatalf("FromName(%q): %v", test.typ.Name(), err)
			}
			if diff := cmp.Diff(test.typ, got); diff != "" {
				t.Errorf("FromName(%q) (-want +got):\n%s", test.typ.Name(), diff)
			}

			desc := test.typ.Descriptor(false)
			got2, err := FromDescriptor(desc)
			if err != nil {
				t.Fatalf("FromDescriptor(%q): %v", desc, err)
			}
			if got2.Name() != test.typ.Name() {
				t.Errorf("FromDescriptor(%q).Name() = %q, want %q", desc, got2.Name(), test.typ.Name())
			}
		})
	}
}

func TestDescriptorIgnorePrimitiveConflict(t *testing.T) {
	// A record literally named "i32" must not be confused with the
	// primitive of the same spelling once ignorePrimitive is set.
	typ := Type{Component: "i32", Prim: Reference}
	if got, want := typ.Descriptor(true), "Li32;"; got != want {
		t.Errorf("Descriptor(true) = %q, want %q", got, want)
	}
	if got, want := typ.Descriptor(false), "I"; got != want {
		// Without ignorePrimitive, Descriptor picks the primitive form
		// from the component's spelling alone, even though Prim is
		// Reference here; that is why the conflict case needs the flag.
		t.Errorf("Descriptor(false) = %q, want %q", got, want)
	}
}

func TestComponentType(t *testing.T) {
	arr, err := FromName("i32[][]")
	if err != nil {
		t.Fatal(err)
	}
	inner := arr.ComponentType()
	if inner.Name() != "i32[]" {
		t.Errorf("ComponentType() = %q, want i32[]", inner.Name())
	}
	innermost := inner.ComponentType()
	if innermost.Name() != "i32" || innermost.Prim != I32 {
		t.Errorf("ComponentType().ComponentType() = %+v, want primitive i32", innermost)
	}
	if same := innermost.ComponentType(); same.Name() != "i32" {
		t.Errorf("ComponentType() on non-array changed the type: %+v", same)
	}
}

func TestIsArrayIsObject(t *testing.T) {
	i32, _ := FromName("i32")
	if i32.IsArray() || i32.IsObject() {
		t.Errorf("i32: IsArray=%v IsObject=%v, want false, false", i32.IsArray(), i32.IsObject())
	}
	ref, _ := FromName("foo.Bar")
	if ref.IsArray() || !ref.IsObject() {
		t.Errorf("foo.Bar: IsArray=%v IsObject=%v, want false, true", ref.IsArray(), ref.IsObject())
	}
	arr, _ := FromName("i32[]")
	if !arr.IsArray() || !arr.IsObject() {
		t.Errorf("i32[]: IsArray=%v IsObject=%v, want true, true", arr.IsArray(), arr.IsObject())
	}
}

func TestFromDescriptorMissingTerminator(t *testing.T) {
	if _, err := FromDescriptor("Lfoo.Bar"); err == nil {
		t.Error("FromDescriptor(\"Lfoo.Bar\") succeeded, want an error for a missing ';'")
	}
}
