// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package program

import (
	"testing"

	"github.com/panda-vm/pandasm/types"
)

func mustType(t *testing.T, name string) types.Type {
	t.Helper()
	typ, err := types.FromName(name)
	if err != nil {
		t.Fatalf("FromName(%q): %v", name, err)
	}
	return typ
}

func TestMangleDemangleRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ret    string
	}{
		{"R.get", []string{"R"}, "i32"},
		{"f", nil, "void"},
		{"g", []string{"i32", "foo.Bar[]"}, "foo.Bar"},
	}
	for _, test := range tests {
		var params []types.Type
		for _, p := range test.params {
			params = append(params, mustType(t, p))
		}
		ret := mustType(t, test.ret)

		mangled := Mangle(test.name, params, ret)
		name, gotParams, gotRet, err := Demangle(mangled)
		if err != nil {
			t.Fatalf("Demangle(%q): %v", mangled, err)
		}
		if name != test.name {
			t.Errorf("Demangle(%q).name = %q, want %q", mangled, name, test.name)
		}
		if gotRet.Name() != ret.Name() {
			t.Errorf("Demangle(%q).ret = %q, want %q", mangled, gotRet.Name(), ret.Name())
		}
		if len(gotParams) != len(params) {
			t.Fatalf("Demangle(%q).params has %d entries, want %d", mangled, len(gotParams), len(params))
		}
		for i := range params {
			if gotParams[i].Name() != params[i].Name() {
				t.Errorf("Demangle(%q).params[%d] = %q, want %q", mangled, i, gotParams[i].Name(), params[i].Name())
			}
		}
	}
}

func TestSpecExampleS1Mangling(t *testing.T) {
	got := Mangle("R.get", []types.Type{mustType(t, "R")}, mustType(t, "i32"))
	if want := "R.get:R;i32;"; got != want {
		t.Errorf("Mangle = %q, want %q", got, want)
	}
}

func TestGetOrCreateRecordIsForwardReferenceUntilDefined(t *testing.T) {
	p := New()
	r := p.GetOrCreateRecord("R")
	if r.Defined {
		t.Error("freshly created record reports Defined = true")
	}
	r2 := p.GetOrCreateRecord("R")
	if r != r2 {
		t.Error("GetOrCreateRecord returned a different pointer on second call")
	}
}

func TestInternStringDeduplicates(t *testing.T) {
	p := New()
	p.InternString("hi")
	p.InternString("hi")
	p.InternString("bye")
	if got := p.Strings(); len(got) != 2 {
		t.Errorf("Strings() = %v, want exactly 2 entries", got)
	}
}

func TestLiteralArrayIDsSortedByLengthThenLex(t *testing.T) {
	p := New()
	for _, id := range []string{"bb", "a", "aa", "b", "ccc"} {
		p.GetOrCreateLiteralArray(id)
	}
	got := p.LiteralArrayIDsSorted()
	want := []string{"a", "b", "aa", "bb", "ccc"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LiteralArrayIDsSorted() = %v, want %v", got, want)
		}
	}
}
