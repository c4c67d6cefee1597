// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package metadata

import "fmt"

// ValueKind is one of the eighteen concrete annotation value kinds
// (spec §3 "Value (annotation element)"): seventeen scalar kinds plus
// Array, the sum-type discriminator for an array-of-scalars element.
type ValueKind int

const (
	VU1 ValueKind = iota
	VI8
	VU8
	VI16
	VU16
	VI32
	VU32
	VI64
	VU64
	VF32
	VF64
	VString
	VStringNullptr
	VRecord
	VMethod
	VEnum
	VAnnotation
	VArray
)

// Char returns the tag character used to mark this value kind in an
// AnnotationItem element tuple (spec §3, §4.G phase 7). Array itself
// has no tag here ('?'); an array element is tagged with its
// component kind's character. STRING_NULLPTR uses '*', the
// open question spec.md §9 asks implementers to preserve rather than
// resolve.
func (k ValueKind) Char() byte {
	switch k {
	case VU1:
		return 'Z'
	case VI8:
		return 'B'
	case VU8:
		return 'H'
	case VI16:
		return 'S'
	case VU16:
		return 'C'
	case VI32:
		return 'I'
	case VU32:
		return 'U'
	case VI64:
		return 'J'
	case VU64:
		return 'Q'
	case VF32:
		return 'F'
	case VF64:
		return 'D'
	case VString:
		return 's'
	case VStringNullptr:
		return '*'
	case VRecord:
		return 'c'
	case VMethod:
		return 'm'
	case VEnum:
		return 'e'
	case VAnnotation:
		return '@'
	default:
		return '?'
	}
}

// Value holds one scalar (or, for an Array element, one member of the
// array) as the tagged union spec §3 describes: integral kinds share
// a 64-bit store, floating point and reference kinds have typed
// storage.
type Value struct {
	Kind      ValueKind
	Integral  uint64 // U1, I8, U8, I16, U16, I32, U32, I64, U64, Enum (as the ordinal)
	Float32   float32
	Float64   float64
	Str       string // String, Record name, Method name, Enum literal text
	Reference interface{} // resolved *program item, filled by the emitter
}

// Element is one (name, kind, value[, array-component-kind]) tuple of
// an annotation.
type Element struct {
	Name          string
	Type          ValueKind
	ComponentType ValueKind // meaningful only when Type == VArray
	Values        []Value
}

// Annotation is a named tuple of elements attached to an owner, with
// an optional id used for same-owner cross-references.
type Annotation struct {
	RecordName string
	ID         string
	Elements   []Element
}

// builderState is the annotation/element builder's explicit state
// enum (spec §9 Design Notes: "avoid accumulator flags").
type builderState int

const (
	stateIdle builderState = iota
	stateInAnnotation
	stateInElementName
	stateInElementType
	stateInElementComponentType
	stateInElementValue
)

type annotationBuilder struct {
	state   builderState
	current Annotation
	elem    Element
	started bool
}

// BeginAnnotation starts a new annotation scope, finalizing whatever
// annotation was previously in progress on this owner (spec §4.D
// rule 1).
func (m *Metadata) BeginAnnotation(recordName string) error {
	if m.builder != nil && m.builder.started {
		if err := m.flushAnnotation(); err != nil {
			return err
		}
	}
	m.builder = &annotationBuilder{
		state:   stateInAnnotation,
		current: Annotation{RecordName: recordName},
		started: true,
	}
	return nil
}

// SetAnnotationID records the annotation's cross-reference id (rule 2).
func (m *Metadata) SetAnnotationID(id string) error {
	if m.builder == nil || !m.builder.started {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: "id"}
	}
	m.builder.current.ID = id
	return nil
}

// BeginElement starts a new annotation element (rule 3): an
// incomplete previous element (one with a name/type but no value yet)
// is an error.
func (m *Metadata) BeginElement(name string) error {
	b := m.builder
	if b == nil || !b.started {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: name}
	}
	switch b.state {
	case stateInAnnotation:
		// no pending element: fine.
	case stateInElementValue:
		// previous element has at least one value: flush it.
		b.current.Elements = append(b.current.Elements, b.elem)
	default:
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: name}
	}
	b.elem = Element{Name: name}
	b.state = stateInElementName
	return nil
}

// SetElementType sets the element's value kind (rule 4): must follow
// a name, and may not be set twice.
func (m *Metadata) SetElementType(kind ValueKind) error {
	b := m.builder
	if b == nil || b.state != stateInElementName {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: "elem-type"}
	}
	b.elem.Type = kind
	b.state = stateInElementType
	return nil
}

// SetElementComponentType sets the array component kind (rule 5);
// only valid, and required, when the element's kind is Array.
func (m *Metadata) SetElementComponentType(kind ValueKind) error {
	b := m.builder
	if b == nil || b.state != stateInElementType {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: "array-component-type"}
	}
	if b.elem.Type != VArray {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: "array-component-type"}
	}
	b.elem.ComponentType = kind
	b.state = stateInElementComponentType
	return nil
}

// AppendElementValue appends one value to the current element (rule
// 6). It does no range validation (e.g. u1 in {0,1}); that is left
// to the caller, since only the parser knows the literal's source span
// for diagnostics.
func (m *Metadata) AppendElementValue(v Value) error {
	b := m.builder
	if b == nil {
		return &Error{Kind: ErrUnexpectedAttribute, Attribute: "elem-value"}
	}
	switch b.state {
	case stateInElementType, stateInElementComponentType, stateInElementValue:
	default:
		return &Error{Kind: ErrMissingAttribute, Attribute: "elem-type"}
	}
	if b.elem.Type == VArray && b.state == stateInElementType {
		return &Error{Kind: ErrMissingAttribute, Attribute: "array-component-type"}
	}
	b.elem.Values = append(b.elem.Values, v)
	b.state = stateInElementValue
	return nil
}

// flushAnnotation appends the in-progress element (if any) and the
// in-progress annotation to m.Annotations, validating that nothing is
// left incomplete (rule 7).
func (m *Metadata) flushAnnotation() error {
	b := m.builder
	if b == nil || !b.started {
		return nil
	}
	switch b.state {
	case stateInElementName, stateInElementType:
		return &Error{Kind: ErrMissingValue, Attribute: b.elem.Name}
	case stateInElementComponentType, stateInElementValue:
		b.current.Elements = append(b.current.Elements, b.elem)
	}
	m.Annotations = append(m.Annotations, b.current)
	m.builder = nil
	return nil
}

// FinishAnnotations flushes any annotation still being built. Call
// this once an owner's metadata block is fully parsed (rule 7).
func (m *Metadata) FinishAnnotations() error {
	return m.flushAnnotation()
}

func (e ValueKind) String() string {
	names := [...]string{
		"U1", "I8", "U8", "I16", "U16", "I32", "U32", "I64", "U64",
		"F32", "F64", "STRING", "STRING_NULLPTR", "RECORD", "METHOD",
		"ENUM", "ANNOTATION", "ARRAY",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return fmt.Sprintf("ValueKind(%d)", int(e))
}
