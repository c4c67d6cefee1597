// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package emit

import (
	"strings"
	"testing"

	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/parser"
	"github.com/panda-vm/pandasm/token"
)

func TestS1MinimalRecordAndMethodEmitsExpectedItems(t *testing.T) {
	src := strings.Join([]string{
		".record R { i32 x }",
		".function i32 R.get(R a0) { lda.obj a0 ldobj x return }",
	}, "\n")

	fset := token.NewFileSet()
	prog, _, err := parser.ParseFile(fset, "s1.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	result, err := Emit(prog, Options{EmitDebugInfo: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var classes, fields, methods, codes, strs int
	for _, it := range result.Container.Implemented {
		switch it.Kind {
		case item.KindClass:
			classes++
		case item.KindField:
			fields++
		case item.KindMethod:
			methods++
		case item.KindCode:
			codes++
		case item.KindString:
			strs++
		}
	}

	if classes != 1 {
		t.Errorf("got %d ClassItem(s), want 1", classes)
	}
	if fields != 1 {
		t.Errorf("got %d FieldItem(s), want 1", fields)
	}
	if methods != 1 {
		t.Errorf("got %d MethodItem(s), want 1", methods)
	}
	if codes != 1 {
		t.Errorf("got %d CodeItem(s), want 1", codes)
	}
	if strs == 0 {
		t.Errorf("expected at least one StringItem for field name %q", "x")
	}
	if len(result.Container.Classes()) != 1 {
		t.Errorf("class index has %d entries, want 1", len(result.Container.Classes()))
	}
}

// TestS6DedupAcrossIdenticalEmptyMethods is spec §8 scenario S6: two
// functions whose code items encode to the same byte sequence dedupe
// to a single surviving CodeItem.
func TestS6DedupAcrossIdenticalEmptyMethods(t *testing.T) {
	src := strings.Join([]string{
		".function void f() { return.void }",
		".function void g() { return.void }",
	}, "\n")

	fset := token.NewFileSet()
	prog, _, err := parser.ParseFile(fset, "s6.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	result, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var survivor *item.Item
	needEmitCodes := 0
	for _, it := range result.Container.Implemented {
		if it.Kind != item.KindMethod || it.Method.Code == nil {
			continue
		}
		c := it.Method.Code
		if !c.NeedsEmit {
			continue
		}
		needEmitCodes++
		if survivor == nil {
			survivor = c
		} else if survivor != c {
			t.Errorf("two distinct CodeItems survived dedup, want both methods to share one")
		}
	}
	if needEmitCodes != 1 {
		t.Errorf("got %d needs-emit CodeItem(s) after dedup, want 1", needEmitCodes)
	}

	if prog.Functions["f:void;"] == nil || prog.Functions["g:void;"] == nil {
		t.Fatalf("expected mangled functions f:void; and g:void; in program")
	}
}

// TestS3TryCatchProducesOneTryBlock is spec §8 scenario S3: the
// emitted CodeItem has one try block whose catch-class pointer is the
// ClassItem for the named exception record.
func TestS3TryCatchProducesOneTryBlock(t *testing.T) {
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
	prog, _, err := parser.ParseFile(fset, "s3.pa", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	result, err := Emit(prog, Options{EmitDebugInfo: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var code *item.Item
	for _, it := range result.Container.Implemented {
		if it.Kind == item.KindMethod && it.Method.Code != nil {
			code = it.Method.Code
		}
	}
	if code == nil {
		t.Fatal("no CodeItem emitted for f")
	}
	if len(code.Code.TryBlocks) != 1 {
		t.Fatalf("got %d try block(s), want 1: %+v", len(code.Code.TryBlocks), code.Code.TryBlocks)
	}
	tb := code.Code.TryBlocks[0]
	if len(tb.Catches) != 1 {
		t.Fatalf("got %d catch entr(ies), want 1", len(tb.Catches))
	}
	if tb.Catches[0].ClassItem == nil || tb.Catches[0].ClassItem.Kind != item.KindClass {
		t.Errorf("catch class item = %+v, want the ClassItem for E", tb.Catches[0].ClassItem)
	}
}
