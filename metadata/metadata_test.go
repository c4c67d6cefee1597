// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package metadata

import "testing"

func TestSetBoolRejectsUnknown(t *testing.T) {
	m := New(OwnerRecord)
	if err := m.SetBool("static"); err != nil {
		t.Fatalf("SetBool(static): %v", err)
	}
	if !m.Has("static") {
		t.Error("Has(static) = false, want true")
	}
	if err := m.SetBool("not_a_real_attribute"); err == nil {
		t.Error("SetBool(not_a_real_attribute) succeeded, want ErrUnknownAttribute")
	}
}

func TestHasImplementation(t *testing.T) {
	m := New(OwnerFunction)
	if !m.HasImplementation() {
		t.Error("fresh metadata: HasImplementation() = false, want true")
	}
	m.SetBool("external")
	if m.HasImplementation() {
		t.Error("external metadata: HasImplementation() = true, want false")
	}
}

func TestAnnotationBuilderHappyPath(t *testing.T) {
	m := New(OwnerRecord)
	if err := m.BeginAnnotation("my.Ann"); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginElement("x"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetElementType(VI32); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendElementValue(Value{Kind: VI32, Integral: 42}); err != nil {
		t.Fatal(err)
	}
	if err := m.FinishAnnotations(); err != nil {
		t.Fatal(err)
	}
	if len(m.Annotations) != 1 {
		t.Fatalf("len(Annotations) = %d, want 1", len(m.Annotations))
	}
	ann := m.Annotations[0]
	if ann.RecordName != "my.Ann" || len(ann.Elements) != 1 || ann.Elements[0].Name != "x" {
		t.Errorf("unexpected annotation: %+v", ann)
	}
}

func TestAnnotationBuilderArrayRequiresComponentType(t *testing.T) {
	m := New(OwnerRecord)
	if err := m.BeginAnnotation("my.Ann"); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginElement("xs"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetElementType(VArray); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendElementValue(Value{Kind: VI32, Integral: 1}); err == nil {
		t.Error("AppendElementValue before component type succeeded, want ErrMissingAttribute")
	}
}

func TestAnnotationBuilderIncompleteElementIsError(t *testing.T) {
	m := New(OwnerRecord)
	if err := m.BeginAnnotation("my.Ann"); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginElement("x"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetElementType(VI32); err != nil {
		t.Fatal(err)
	}
	if err := m.FinishAnnotations(); err == nil {
		t.Error("FinishAnnotations with no value appended succeeded, want ErrMissingValue")
	}
}
