// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package parser

import (
	"sort"
	"strings"
	"testing"

	"github.com/panda-vm/pandasm/program"
	"github.com/panda-vm/pandasm/token"
)

func keysOf(m map[string]*program.Function) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestS1MinimalRecordAndMethod(t *testing.T) {
	src := strings.Join([]string{
		".record R { i32 x }",
		".function i32 R.get(R a0) { lda.obj a0 ldobj x return }",
	}, "\n")

	fset := token.NewFileSet()
	prog, _, err := ParseFile(fset, "s1.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	rec, ok := prog.Records["R"]
	if !ok {
		t.Fatal("record R not found")
	}
	if len(rec.Fields) != 1 || rec.Fields[0].Name != "x" {
		t.Fatalf("unexpected fields on R: %+v", rec.Fields)
	}
	fn, ok := prog.Functions["R.get:R;i32;"]
	if !ok {
		t.Fatalf("mangled function R.get:R;i32; not found, have: %v", keysOf(prog.Functions))
	}
	if len(fn.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3: %+v", len(fn.Instructions), fn.Instructions)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(fn.Params))
	}
}

func TestS2StringInterning(t *testing.T) {
	src := `.function void f() { lda.str "hi" lda.str "hi" return }`
	fset := token.NewFileSet()
	prog, _, err := ParseFile(fset, "s2.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if got := prog.Strings(); len(got) != 1 || got[0] != "hi" {
		t.Fatalf("Strings() = %v, want exactly [\"hi\"]", got)
	}
}

func TestS5ParameterRenumbering(t *testing.T) {
	src := strings.Join([]string{
		".function void f(i32 a0, i32 a1) {",
		"  start:",
		"  mov v0, a0",
		"  mov v1, a1",
		"  return",
		"}",
	}, "\n")
	fset := token.NewFileSet()
	prog, _, err := ParseFile(fset, "s5.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	fn := prog.Functions["f:i32;i32;void;"]
	if fn == nil {
		t.Fatalf("mangled function not found, have: %v", keysOf(prog.Functions))
	}
	if fn.ValueOfFirstParam != 1 {
		t.Fatalf("ValueOfFirstParam = %d, want 1", fn.ValueOfFirstParam)
	}
	// a0 -> v2, a1 -> v3 (shift = ValueOfFirstParam + 1 = 2).
	if fn.Instructions[0].Registers[1] != 2 {
		t.Errorf("mov v0, a0: rewritten a0 = %d, want 2", fn.Instructions[0].Registers[1])
	}
	if fn.Instructions[1].Registers[1] != 3 {
		t.Errorf("mov v1, a1: rewritten a1 = %d, want 3", fn.Instructions[1].Registers[1])
	}
}

func TestS3TryCatch(t *testing.T) {
	src := strings.Join([]string{
		".record E {}",
		".function void f() {",
		"  begin: return",
		"  end:",
		"  handler: return",
		"  handler_end:",
		"}",
		".catch E, begin, end, handler, handler_end",
	}, "\n")
	fset := token.NewFileSet()
	prog, _, err := ParseFile(fset, "s3.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	fn := prog.Functions["f:void;"]
	if fn == nil {
		t.Fatalf("function not found, have: %v", keysOf(prog.Functions))
	}
	if len(fn.CatchBlocks) != 1 {
		t.Fatalf("got %d catch blocks, want 1", len(fn.CatchBlocks))
	}
	cb := fn.CatchBlocks[0]
	if cb.ExceptionRecord != "E" {
		t.Errorf("ExceptionRecord = %q, want E", cb.ExceptionRecord)
	}
}

func TestS4CatchAllWithNoCatchEnd(t *testing.T) {
	src := strings.Join([]string{
		".function void f() {",
		"  b: return e: h: return",
		"}",
		".catchall b, e, h",
	}, "\n")
	fset := token.NewFileSet()
	prog, _, err := ParseFile(fset, "s4.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	fn := prog.Functions["f:void;"]
	if fn == nil {
		t.Fatalf("function not found, have: %v", keysOf(prog.Functions))
	}
	cb := fn.CatchBlocks[0]
	if !cb.IsCatchAll() {
		t.Error("expected a .catchall block")
	}
	if cb.CatchEndLabel != cb.CatchBeginLabel {
		t.Errorf("CatchEndLabel = %q, want it to equal CatchBeginLabel %q", cb.CatchEndLabel, cb.CatchBeginLabel)
	}
}

func TestUndefinedLabelIsAnError(t *testing.T) {
	src := `.function void f() { jmp nowhere return }`
	fset := token.NewFileSet()
	_, _, err := ParseFile(fset, "bad.pa", src)
	if err == nil {
		t.Fatal("ParseFile succeeded, want ErrBadLabelExt for an undefined label")
	}
}

func TestBadParamNumberingIsAnError(t *testing.T) {
	src := `.function void f(i32 a1) { return }`
	fset := token.NewFileSet()
	_, _, err := ParseFile(fset, "bad.pa", src)
	if err == nil {
		t.Fatal("ParseFile succeeded, want ErrBadParamName for a0 skipped")
	}
}

func TestCallArgumentMismatchIsAnError(t *testing.T) {
	src := strings.Join([]string{
		".function i32 R.get(R a0) { lda.obj a0 ldobj x return }",
		".function void f(R a0) { call.short R.get, v0, v1 return }",
	}, "\n")
	fset := token.NewFileSet()
	_, _, err := ParseFile(fset, "badcall.pa", src)
	if err == nil {
		t.Fatal("ParseFile succeeded, want ERR_FUNCTION_ARGUMENT_MISMATCH")
	}
}
