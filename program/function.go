// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package program

import (
	"github.com/panda-vm/pandasm/metadata"
	"github.com/panda-vm/pandasm/token"
	"github.com/panda-vm/pandasm/types"
)

// Parameter is one declared parameter of a Function.
type Parameter struct {
	Type     types.Type
	Metadata *metadata.Metadata
}

// Label names a point in a function's instruction stream. It may be
// referenced (by a jump, or a catch directive) before it is defined;
// Defined flips true once the label's own line is parsed.
type Label struct {
	Name    string
	Defined bool
	Pos     token.Pos
}

// DeferredParam records one `aN` register operand seen during body
// parsing whose real register number is not known until the
// function's `value_of_first_param` is finalized (spec §4.B.3, §4.B.7
// item 2).
type DeferredParam struct {
	InstrIndex   int
	OperandIndex int
	N            int
}

// Function is a parsed method or global function (spec §3 "Function").
type Function struct {
	Name        string // pre-mangling
	MangledName string
	Language    string
	Metadata    *metadata.Metadata

	Params     []Parameter
	ReturnType types.Type

	RegsNum int
	Labels  map[string]*Label

	// TrailingLabels holds any label-only lines seen after the last
	// instruction but before the closing '}': their PC resolves to the
	// function's total code length (spec S3's "handler_end:").
	TrailingLabels []string

	Instructions []*Instruction
	CatchBlocks  []*CatchBlock
	Locals       []*LocalVariable

	ValueOfFirstParam int
	Deferred          []DeferredParam

	SourceFile string
	SourceCode string

	Body bool
	Pos  token.Pos

	// Defined is set once the function's own .function header has been
	// parsed; a function known only from a forward reference stays false.
	Defined bool
}

func (f *Function) Foreign() bool { return f.Metadata.Has("external") }

// GetOrCreateLabel returns the named label, creating an undefined one
// if this is its first mention.
func (f *Function) GetOrCreateLabel(name string) *Label {
	if l, ok := f.Labels[name]; ok {
		return l
	}
	l := &Label{Name: name}
	f.Labels[name] = l
	return l
}

// NoteRegister updates ValueOfFirstParam to max(prior, N) for a vN
// operand observed in the body (spec §4.B.3).
func (f *Function) NoteRegister(n int) {
	if n > f.ValueOfFirstParam {
		f.ValueOfFirstParam = n
	}
}

// CatchBlock is one `.catch`/`.catchall` directive (spec §3 "CatchBlock").
type CatchBlock struct {
	ExceptionRecord string // empty for .catchall
	TryBeginLabel   string
	TryEndLabel     string
	CatchBeginLabel string
	CatchEndLabel   string // equals CatchBeginLabel when omitted (spec S4)
	Pos             token.Pos
}

func (c *CatchBlock) IsCatchAll() bool { return c.ExceptionRecord == "" }

// LocalVariable is a debug-info record describing a named local's
// register and lifetime (spec §4.K "EmitStartLocal...").
type LocalVariable struct {
	Name      string
	Type      types.Type
	Register  int
	StartPC   int
	EndPC     int
	IsParam   bool
}
