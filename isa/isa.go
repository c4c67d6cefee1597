// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package isa describes the Panda bytecode instruction set: the
// closed set of opcode mnemonics, their operand schemas, and the
// per-opcode flags and register-encoding widths that the lexer,
// parser, and instruction encoder all consult.
//
// Spec §1 treats the instruction set as an external table; this
// package is the concrete table an implementation of that table
// takes the shape of, grounded on the opcode categories described in
// spec §3 ("Instruction") and §4.K.
package isa

import "fmt"

// OperandKind classifies a single operand slot in an instruction's
// schema (spec §4.B.5).
type OperandKind int

const (
	OperandRegister  OperandKind = iota // vN or aN
	OperandCall                        // function identifier
	OperandString                      // string literal
	OperandInteger                     // immediate integer
	OperandFloat                       // immediate float
	OperandLabel                       // branch target
	OperandID                          // bare identifier (label alias)
	OperandType                        // type reference
	OperandField                       // record.field reference
)

// EncodedWidth returns the fixed number of bytes an operand of this
// kind occupies in an encoded instruction (spec §4.K). The width is a
// property of the operand *kind*, not of any particular operand's
// value, which is what lets a CodeItem's byte length (§4.F, needed
// before §4.J layout assigns the 16-bit indices these bytes actually
// carry) be computed from the instruction shapes alone, before the
// index section exists. Register operands fit one byte because every
// opcode in Table uses a register-encoding width of 8 bits or less.
// CLASS/METHOD/FIELD operands carry a 16-bit index scoped to the
// current index header (§4.I); STRING and LITERALARRAY_ID operands are
// not index-scoped kinds (spec §3's index_type enum has no STRING or
// LITERAL_ARRAY arm) and so carry an absolute 32-bit file offset
// instead, as does a resolved jump label (a PC-relative 32-bit delta).
func (k OperandKind) EncodedWidth() int {
	switch k {
	case OperandRegister:
		return 1
	case OperandCall, OperandField, OperandType:
		return 2
	case OperandString, OperandID, OperandLabel:
		return 4
	case OperandInteger, OperandFloat:
		return 8
	default:
		return 0
	}
}

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandCall:
		return "call"
	case OperandString:
		return "string"
	case OperandInteger:
		return "integer"
	case OperandFloat:
		return "float"
	case OperandLabel:
		return "label"
	case OperandID:
		return "id"
	case OperandField:
		return "field"
	case OperandType:
		return "type"
	default:
		return fmt.Sprintf("OperandKind(%d)", int(k))
	}
}

// Flag is a bitmask of per-opcode properties consulted by the parser
// (post-loop argument checking), the emitter (index dependency
// discovery), and the instruction encoder (spec §3, §4.G, §4.K).
type Flag uint32

const (
	FlagJump Flag = 1 << iota
	FlagConditional
	FlagCall
	FlagPseudoCall // calli*: not checked for argument-count compatibility
	FlagReturn
	FlagAccumulatorRead
	FlagAccumulatorWrite
	FlagThrowing
	FlagMethodID
	FlagFieldID
	FlagTypeID
	FlagStringID
	FlagLiteralArrayID
	FlagInitObj // -0 "this" correction instead of -1 (spec §4.B.7.5)
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// Opcode describes one mnemonic's shape.
type Opcode struct {
	Name     string
	Operands []OperandKind
	Flags    Flag

	// RegWidth is the number of bits available to encode a
	// register operand for this opcode (spec §3, §8 property 10).
	// Zero if the opcode takes no register operands.
	RegWidth uint

	// DefIndex/UseIndices describe which operand indices are
	// defined/used for dataflow-oriented consumers (debug info,
	// disassembly); -1 means "no def" (accumulator-only opcodes
	// use register index -1 and rely on the accumulator flags).
	DefIndex    int
	UseIndices  []int
}

// RegisterWidthLimit returns the maximum encodable register value
// (exclusive) for this opcode, i.e. 2^RegWidth.
func (o *Opcode) RegisterWidthLimit() int64 {
	if o.RegWidth == 0 {
		return 0
	}
	return int64(1) << o.RegWidth
}

// EncodedLength returns the total byte length of one encoded
// instruction for this opcode: one opcode byte plus the fixed width of
// each of its operands (spec §4.K). It does not depend on the
// instruction's actual operand values, only its shape.
func (o *Opcode) EncodedLength() int {
	n := 1
	for _, k := range o.Operands {
		n += k.EncodedWidth()
	}
	return n
}

// Table is the closed, name-indexed opcode set. It stands in for the
// ISA definition spec.md treats as an external collaborator.
var Table = buildTable()

func buildTable() map[string]*Opcode {
	t := map[string]*Opcode{}
	add := func(o Opcode) {
		if _, ok := t[o.Name]; ok {
			panic("isa: duplicate opcode " + o.Name)
		}
		cp := o
		t[o.Name] = &cp
	}

	reg := func(n int) []OperandKind {
		out := make([]OperandKind, n)
		for i := range out {
			out[i] = OperandRegister
		}
		return out
	}

	// Register moves.
	add(Opcode{Name: "mov", Operands: append(reg(1), OperandRegister), RegWidth: 4, DefIndex: 0, UseIndices: []int{1}})
	add(Opcode{Name: "mov.64", Operands: []OperandKind{OperandRegister, OperandRegister}, RegWidth: 4, DefIndex: 0, UseIndices: []int{1}})
	add(Opcode{Name: "mov.obj", Operands: []OperandKind{OperandRegister, OperandRegister}, RegWidth: 4, DefIndex: 0, UseIndices: []int{1}})
	add(Opcode{Name: "mov.null", Operands: []OperandKind{OperandRegister}, RegWidth: 4, DefIndex: 0})

	// Accumulator loads/stores.
	add(Opcode{Name: "lda", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "lda.64", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "lda.obj", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "lda.str", Operands: []OperandKind{OperandString}, Flags: FlagAccumulatorWrite | FlagStringID, DefIndex: -1})
	add(Opcode{Name: "lda.type", Operands: []OperandKind{OperandType}, Flags: FlagAccumulatorWrite | FlagTypeID, DefIndex: -1})
	add(Opcode{Name: "lda.const", Operands: []OperandKind{OperandID}, Flags: FlagAccumulatorWrite | FlagLiteralArrayID, DefIndex: -1})
	add(Opcode{Name: "ldai", Operands: []OperandKind{OperandInteger}, Flags: FlagAccumulatorWrite, DefIndex: -1})
	add(Opcode{Name: "fldai", Operands: []OperandKind{OperandFloat}, Flags: FlagAccumulatorWrite, DefIndex: -1})
	add(Opcode{Name: "sta", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead, DefIndex: 0})
	add(Opcode{Name: "sta.64", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead, DefIndex: 0})
	add(Opcode{Name: "sta.obj", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead, DefIndex: 0})

	// Object field access. ldobj reads the field of the object
	// currently held in the accumulator and overwrites the
	// accumulator with the field's value; stobj takes the object in a
	// register and stores the accumulator into one of its fields.
	add(Opcode{Name: "ldobj", Operands: []OperandKind{OperandField}, Flags: FlagAccumulatorRead | FlagAccumulatorWrite | FlagFieldID | FlagThrowing, DefIndex: -1})
	add(Opcode{Name: "ldobj.64", Operands: []OperandKind{OperandField}, Flags: FlagAccumulatorRead | FlagAccumulatorWrite | FlagFieldID | FlagThrowing, DefIndex: -1})
	add(Opcode{Name: "ldobj.obj", Operands: []OperandKind{OperandField}, Flags: FlagAccumulatorRead | FlagAccumulatorWrite | FlagFieldID | FlagThrowing, DefIndex: -1})
	add(Opcode{Name: "stobj", Operands: []OperandKind{OperandRegister, OperandField}, RegWidth: 4, Flags: FlagAccumulatorRead | FlagFieldID | FlagThrowing, UseIndices: []int{0}})
	add(Opcode{Name: "stobj.64", Operands: []OperandKind{OperandRegister, OperandField}, RegWidth: 4, Flags: FlagAccumulatorRead | FlagFieldID | FlagThrowing, UseIndices: []int{0}})
	add(Opcode{Name: "stobj.obj", Operands: []OperandKind{OperandRegister, OperandField}, RegWidth: 4, Flags: FlagAccumulatorRead | FlagFieldID | FlagThrowing, UseIndices: []int{0}})

	// Static field access.
	add(Opcode{Name: "ldstatic", Operands: []OperandKind{OperandField}, Flags: FlagAccumulatorWrite | FlagFieldID | FlagThrowing, DefIndex: -1})
	add(Opcode{Name: "ststatic", Operands: []OperandKind{OperandField}, Flags: FlagAccumulatorRead | FlagFieldID | FlagThrowing})

	// Object/array lifecycle.
	add(Opcode{Name: "newobj", Operands: []OperandKind{OperandRegister, OperandType}, RegWidth: 8, Flags: FlagTypeID | FlagThrowing, DefIndex: 0})
	add(Opcode{Name: "newarr", Operands: []OperandKind{OperandRegister, OperandRegister, OperandType}, RegWidth: 8, Flags: FlagTypeID | FlagThrowing, DefIndex: 0, UseIndices: []int{1}})
	add(Opcode{Name: "lenarr", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorWrite | FlagThrowing, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "ldarr", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorWrite | FlagAccumulatorRead | FlagThrowing, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "starr", Operands: []OperandKind{OperandRegister, OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead | FlagThrowing, UseIndices: []int{0, 1}})
	add(Opcode{Name: "isinstance", Operands: []OperandKind{OperandType}, Flags: FlagAccumulatorWrite | FlagAccumulatorRead | FlagTypeID})
	add(Opcode{Name: "checkcast", Operands: []OperandKind{OperandType}, Flags: FlagAccumulatorWrite | FlagAccumulatorRead | FlagTypeID | FlagThrowing})

	// Calls. The "this" receiver costs one argument slot; initobj
	// variants use the -0 correction (spec §4.B.7.5).
	add(Opcode{Name: "call", Operands: []OperandKind{OperandCall, OperandRegister, OperandRegister, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagMethodID | FlagThrowing, UseIndices: []int{1, 2, 3, 4}})
	add(Opcode{Name: "call.short", Operands: []OperandKind{OperandCall, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagMethodID | FlagThrowing, UseIndices: []int{1, 2}})
	add(Opcode{Name: "call.range", Operands: []OperandKind{OperandCall, OperandRegister}, RegWidth: 8, Flags: FlagCall | FlagMethodID | FlagThrowing, UseIndices: []int{1}})
	add(Opcode{Name: "call.virt", Operands: []OperandKind{OperandCall, OperandRegister, OperandRegister, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagMethodID | FlagThrowing, UseIndices: []int{1, 2, 3, 4}})
	add(Opcode{Name: "calli.dyn", Operands: []OperandKind{OperandRegister, OperandRegister, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagPseudoCall | FlagThrowing, UseIndices: []int{0, 1, 2, 3}})
	add(Opcode{Name: "initobj", Operands: []OperandKind{OperandCall, OperandRegister, OperandRegister, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagMethodID | FlagThrowing | FlagInitObj | FlagAccumulatorWrite, UseIndices: []int{1, 2, 3, 4}, DefIndex: -1})
	add(Opcode{Name: "initobj.short", Operands: []OperandKind{OperandCall, OperandRegister, OperandRegister}, RegWidth: 4, Flags: FlagCall | FlagMethodID | FlagThrowing | FlagInitObj | FlagAccumulatorWrite, UseIndices: []int{1, 2}, DefIndex: -1})

	// Control flow.
	add(Opcode{Name: "jmp", Operands: []OperandKind{OperandLabel}, Flags: FlagJump})
	add(Opcode{Name: "jeqz", Operands: []OperandKind{OperandLabel}, Flags: FlagJump | FlagConditional | FlagAccumulatorRead})
	add(Opcode{Name: "jnez", Operands: []OperandKind{OperandLabel}, Flags: FlagJump | FlagConditional | FlagAccumulatorRead})
	add(Opcode{Name: "throw", Operands: nil, Flags: FlagAccumulatorRead | FlagThrowing})
	add(Opcode{Name: "return", Operands: nil, Flags: FlagReturn | FlagAccumulatorRead})
	add(Opcode{Name: "return.64", Operands: nil, Flags: FlagReturn | FlagAccumulatorRead})
	add(Opcode{Name: "return.obj", Operands: nil, Flags: FlagReturn | FlagAccumulatorRead})
	add(Opcode{Name: "return.void", Operands: nil, Flags: FlagReturn})

	// Arithmetic (accumulator op= register).
	for _, name := range []string{"add2", "sub2", "mul2", "div2", "mod2", "and2", "or2", "xor2", "shl2", "shr2", "ashr2"} {
		add(Opcode{Name: name, Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead | FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	}
	for _, name := range []string{"neg", "not", "inc", "dec"} {
		add(Opcode{Name: name, Operands: nil, Flags: FlagAccumulatorRead | FlagAccumulatorWrite})
	}
	add(Opcode{Name: "cmp", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead | FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "ucmp", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead | FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})
	add(Opcode{Name: "fcmp", Operands: []OperandKind{OperandRegister}, RegWidth: 8, Flags: FlagAccumulatorRead | FlagAccumulatorWrite, UseIndices: []int{0}, DefIndex: -1})

	return t
}

// Lookup returns the opcode entry for a mnemonic, or nil if it is not
// a recognised opcode.
func Lookup(mnemonic string) *Opcode {
	return Table[mnemonic]
}

// ParamCount reports how many call-site arguments a call-family
// instruction's operand list supplies (everything after the callee
// identifier), used by the parser's argument-count check (§4.B.7.5).
func (o *Opcode) ParamCount() int {
	n := 0
	for _, k := range o.Operands {
		if k == OperandRegister {
			n++
		}
	}
	return n
}
