// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package metadata implements the attribute engine attached to
// records, fields, functions, and parameters (spec §4.D): a bool
// attribute set, a key=value multimap, and a multi-line annotation
// builder. Grounded on the attribute name tables in
// _examples/original_source/assembler/meta.cpp / meta.h.
package metadata

import "fmt"

// OwnerKind identifies which kind of declaration a Metadata value is
// attached to; a handful of bool attributes and key-value names are
// only meaningful for particular owners.
type OwnerKind int

const (
	OwnerRecord OwnerKind = iota
	OwnerField
	OwnerFunction
	OwnerParam
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerRecord:
		return "record"
	case OwnerField:
		return "field"
	case OwnerFunction:
		return "function"
	case OwnerParam:
		return "param"
	default:
		return "owner(?)"
	}
}

// BoolAttrs is the closed set of bool attributes recognised across
// owner kinds (_examples/original_source/assembler/meta.cpp). Not
// every attribute applies to every owner kind; the parser is
// responsible for rejecting nonsensical combinations via
// ERR_BAD_METADATA_UNKNOWN_ATTRIBUTE.
var BoolAttrs = map[string]bool{
	"external":                true,
	"static":                  true,
	"native":                  true,
	"noimpl":                  true,
	"ctor":                    true,
	"cctor":                   true,
	"final":                   true,
	"public":                  true,
	"private":                 true,
	"protected":               true,
	"abstract":                true,
	"enum":                    true,
	"annotation":              true,
	"runtime_annotation":      true,
	"type_annotation":         true,
	"runtime_type_annotation": true,
	// Language-specific extensions (ECMAScript).
	"ecmascript.generator_kind": true,
	"ecmascript.async":         true,
}

// Metadata accumulates the attributes attached to one declaration.
type Metadata struct {
	Owner       OwnerKind
	Bools       map[string]bool
	KeyValues   map[string][]string
	Annotations []Annotation

	builder *annotationBuilder
}

func New(owner OwnerKind) *Metadata {
	return &Metadata{
		Owner:     owner,
		Bools:     map[string]bool{},
		KeyValues: map[string][]string{},
	}
}

// SetBool records a bool attribute. It rejects attributes outside
// BoolAttrs with ErrUnknownAttribute.
func (m *Metadata) SetBool(name string) error {
	if !BoolAttrs[name] {
		return &Error{Kind: ErrUnknownAttribute, Attribute: name}
	}
	m.Bools[name] = true
	return nil
}

func (m *Metadata) Has(name string) bool { return m.Bools[name] }

// SetKeyValue appends a value under key, supporting the multimap
// shape described in spec §4.D (e.g. repeated "ecmascript.extends").
func (m *Metadata) SetKeyValue(key, value string) {
	m.KeyValues[key] = append(m.KeyValues[key], value)
}

func (m *Metadata) Value(key string) (string, bool) {
	vs := m.KeyValues[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// HasImplementation reports whether this owner's metadata indicates
// a body is expected (spec §4.B.7 item 4): external/foreign owners
// and owners marked noimpl do not carry a body, everything else does.
func (m *Metadata) HasImplementation() bool {
	return !m.Has("external") && !m.Has("noimpl")
}

// ErrorKind enumerates the metadata engine's own local error
// conditions (spec §4.D, §7 "bad metadata {...}" family).
type ErrorKind int

const (
	ErrUnknownAttribute ErrorKind = iota
	ErrUnexpectedAttribute
	ErrMissingAttribute
	ErrMissingValue
	ErrInvalidValue
	ErrMultipleAttribute
	ErrBadNoExpDelim
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownAttribute:
		return "ERR_BAD_METADATA_UNKNOWN_ATTRIBUTE"
	case ErrUnexpectedAttribute:
		return "ERR_BAD_METADATA_UNEXPECTED_ATTRIBUTE"
	case ErrMissingAttribute:
		return "ERR_BAD_METADATA_MISSING_ATTRIBUTE"
	case ErrMissingValue:
		return "ERR_BAD_METADATA_MISSING_VALUE"
	case ErrInvalidValue:
		return "ERR_BAD_METADATA_INVALID_VALUE"
	case ErrMultipleAttribute:
		return "ERR_BAD_METADATA_MULTIPLE_ATTRIBUTE"
	case ErrBadNoExpDelim:
		return "ERR_BAD_NOEXP_DELIM"
	default:
		return "ERR_BAD_METADATA(?)"
	}
}

type Error struct {
	Kind      ErrorKind
	Attribute string
}

func (e *Error) Error() string {
	if e.Attribute == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Attribute)
}
