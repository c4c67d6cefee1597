// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package program is the in-memory typed graph the parser builds and
// the emitter consumes (spec §3, §4.C): records, fields, functions,
// instructions, literal arrays, and interned strings/array types.
// It is purely data, grounded on the struct shapes of
// _examples/original_source/assembler/assembly-{program,record,
// function,ins,label}.h, adapted from that format's header-file
// member layout into ordinary Go structs.
package program

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/panda-vm/pandasm/metadata"
	"github.com/panda-vm/pandasm/token"
	"github.com/panda-vm/pandasm/types"
)

// Program is the root of the graph (spec §3 "Program (root)").
type Program struct {
	Language string

	Records   map[string]*Record
	Functions map[string]*Function // keyed by mangled name

	LiteralArrays     map[string]*LiteralArray
	literalArrayOrder []string // creation order; id→array sorted separately at emission time

	strings    map[string]bool
	ArrayTypes map[string]types.Type // keyed by descriptor
}

func New() *Program {
	return &Program{
		Records:       map[string]*Record{},
		Functions:     map[string]*Function{},
		LiteralArrays: map[string]*LiteralArray{},
		strings:       map[string]bool{},
		ArrayTypes:    map[string]types.Type{},
	}
}

// InternString records s in the program's string set (spec §3, §4.G
// phase 2 consumes this set in the order Strings() returns).
func (p *Program) InternString(s string) string {
	p.strings[s] = true
	return s
}

// Strings returns every interned string, sorted (the source map has
// no ordering of its own; spec §9's determinism note requires a
// stable iteration order).
func (p *Program) Strings() []string {
	out := make([]string, 0, len(p.strings))
	for s := range p.strings {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// InternArrayType records t (which must be an array type) so the
// emitter can materialize a ForeignClassItem for it (spec §4.G phase 3).
func (p *Program) InternArrayType(t types.Type) {
	if !t.IsArray() {
		return
	}
	p.ArrayTypes[t.Descriptor(false)] = t
}

// GetOrCreateRecord returns the named record, creating an undefined
// (forward-referenced) one if it does not yet exist.
func (p *Program) GetOrCreateRecord(name string) *Record {
	if r, ok := p.Records[name]; ok {
		return r
	}
	r := &Record{Name: name, Metadata: metadata.New(metadata.OwnerRecord), FieldIndex: map[string]int{}}
	p.Records[name] = r
	return r
}

// GetOrCreateFunction returns the function keyed by its mangled name,
// creating an undefined (forward-referenced) one if needed.
func (p *Program) GetOrCreateFunction(mangled string) *Function {
	if f, ok := p.Functions[mangled]; ok {
		return f
	}
	f := &Function{MangledName: mangled, Metadata: metadata.New(metadata.OwnerFunction), Labels: map[string]*Label{}}
	p.Functions[mangled] = f
	return f
}

// GetOrCreateLiteralArray returns the literal array with the given id,
// creating an empty one (and recording creation order) if needed.
func (p *Program) GetOrCreateLiteralArray(id string) *LiteralArray {
	if a, ok := p.LiteralArrays[id]; ok {
		return a
	}
	a := &LiteralArray{ID: id}
	p.LiteralArrays[id] = a
	p.literalArrayOrder = append(p.literalArrayOrder, id)
	return a
}

// LiteralArrayIDsByInsertOrder returns literal array ids in the order
// they were first referenced.
func (p *Program) LiteralArrayIDsByInsertOrder() []string {
	out := make([]string, len(p.literalArrayOrder))
	copy(out, p.literalArrayOrder)
	return out
}

// LiteralArrayIDsSorted returns literal array ids ordered by ascending
// length then lexicographically (spec §6 "Literal-array index ordering").
func (p *Program) LiteralArrayIDsSorted() []string {
	out := p.LiteralArrayIDsByInsertOrder()
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Record is a class declaration (spec §3 "Record").
type Record struct {
	Name       string
	Language   string
	Conflict   bool // name collides with a primitive keyword
	Metadata   *metadata.Metadata
	Fields     []*Field
	FieldIndex map[string]int
	SourceFile string
	Body       bool // body-presence flag: a "{ ... }" block was seen
	Defined    bool
	Pos        token.Pos
}

func (r *Record) Foreign() bool { return r.Metadata.Has("external") }

func (r *Record) GetField(name string) (*Field, bool) {
	i, ok := r.FieldIndex[name]
	if !ok {
		return nil, false
	}
	return r.Fields[i], true
}

func (r *Record) AddField(f *Field) {
	r.FieldIndex[f.Name] = len(r.Fields)
	r.Fields = append(r.Fields, f)
}

// Field is a member of a Record (spec §3 "Field").
type Field struct {
	Name      string
	Type      types.Type
	Metadata  *metadata.Metadata
	IsDefined bool
	Pos       token.Pos
}

// Mangle produces the mangled function name key (spec §3, §4.B.3):
// "<name>:<p1-type>;<p2-type>;…;<ret-type>;".
func Mangle(name string, params []types.Type, ret types.Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(':')
	for _, p := range params {
		b.WriteString(p.Name())
		b.WriteByte(';')
	}
	b.WriteString(ret.Name())
	b.WriteByte(';')
	return b.String()
}

// Demangle inverts Mangle (spec §8 property 4).
func Demangle(mangled string) (name string, params []types.Type, ret types.Type, err error) {
	colon := strings.IndexByte(mangled, ':')
	if colon < 0 {
		return "", nil, types.Type{}, fmt.Errorf("program: %q is not a mangled name (missing ':')", mangled)
	}
	name = mangled[:colon]
	rest := strings.TrimSuffix(mangled[colon+1:], ";")
	if rest == "" {
		return "", nil, types.Type{}, fmt.Errorf("program: %q is not a mangled name (no type list)", mangled)
	}
	parts := strings.Split(rest, ";")
	for i, p := range parts {
		t, terr := types.FromName(p)
		if terr != nil {
			return "", nil, types.Type{}, fmt.Errorf("program: demangling %q: %w", mangled, terr)
		}
		if i == len(parts)-1 {
			ret = t
		} else {
			params = append(params, t)
		}
	}
	return name, params, ret, nil
}

// DebugJSON renders the program as JSON for IDE tooling (spec §4.C
// "post-parse debug dump"; not used by the core pipeline and not
// covered by tests, see SPEC_FULL.md §4 item 7).
func (p *Program) DebugJSON() ([]byte, error) {
	type dump struct {
		Language      string   `json:"language"`
		Records       []string `json:"records"`
		Functions     []string `json:"functions"`
		LiteralArrays []string `json:"literal_arrays"`
	}
	d := dump{Language: p.Language}
	for name := range p.Records {
		d.Records = append(d.Records, name)
	}
	sort.Strings(d.Records)
	for name := range p.Functions {
		d.Functions = append(d.Functions, name)
	}
	sort.Strings(d.Functions)
	d.LiteralArrays = p.LiteralArrayIDsSorted()
	return json.MarshalIndent(d, "", "  ")
}
