// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package encoder implements the per-method instruction encoder, the
// try-block table builder, and the line-number program encoder (spec
// §4.K). It runs once per method, after index-section layout has
// assigned every CLASS/METHOD/FIELD/PROTO dependency its 16-bit
// in-header index (item.IndexSection), so operand bytes can be
// written in their final form in a single pass — no relocation table
// or second encoding pass is needed, the resolution this package
// relies on from isa.OperandKind.EncodedWidth.
package encoder

import (
	"fmt"
	"math"
	"sort"

	"github.com/panda-vm/pandasm/isa"
	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/program"
)

// opcodeBytes assigns every mnemonic a single deterministic byte: the
// ISA table's names sorted lexicographically, indexed from zero. The
// wire format spec.md describes has no externally fixed byte-code
// table of its own (it treats the ISA as an opaque external
// collaborator, spec §1), so a stable derived assignment is the
// simplest scheme that satisfies spec §5's "two runs on the same
// input produce byte-identical output" determinism requirement.
var opcodeBytes = buildOpcodeBytes()

func buildOpcodeBytes() map[string]byte {
	names := make([]string, 0, len(isa.Table))
	for name := range isa.Table {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(map[string]byte, len(names))
	for i, name := range names {
		out[name] = byte(i)
	}
	return out
}

// Resolver looks up the item backing each kind of identifier operand,
// post-layout, so the encoder can write final bytes (16-bit in-header
// indices, or 32-bit absolute offsets) in one pass.
type Resolver interface {
	ResolveField(ownerHint, name string) (*item.Item, error)
	ResolveMethod(mangled string) (*item.Item, error)
	ResolveType(name string) (*item.Item, error)
	ResolveString(s string) (*item.Item, error)
	ResolveLiteralArray(id string) (*item.Item, error)
}

// LabelPCs maps every label name bound anywhere in fn (its own body
// labels, plus TrailingLabels) to the PC it resolves to: the byte
// offset of the instruction it is attached to, or the function's total
// code length for a trailing label (spec S3's "handler_end:").
func LabelPCs(fn *program.Function) (map[string]uint32, error) {
	pcs := map[string]uint32{}
	pc := uint32(0)
	for _, ins := range fn.Instructions {
		op := isa.Lookup(ins.Opcode)
		if op == nil {
			return nil, fmt.Errorf("encoder: unknown opcode %q", ins.Opcode)
		}
		for _, name := range ins.Labels {
			pcs[name] = pc
		}
		pc += uint32(op.EncodedLength())
	}
	for _, name := range fn.TrailingLabels {
		pcs[name] = pc
	}
	return pcs, nil
}

// Encode writes fn's instruction stream to its final bytecode form
// (spec §4.K "Bytecode emission per method"). labelPCs must already
// be resolved (LabelPCs). Returns the encoded bytes; try-block
// resolution is a separate step (BuildTryBlocks) since it needs the
// same labelPCs map.
func Encode(fn *program.Function, labelPCs map[string]uint32, r Resolver) ([]byte, error) {
	var out []byte
	pc := uint32(0)

	for _, ins := range fn.Instructions {
		op := isa.Lookup(ins.Opcode)
		if op == nil {
			return nil, fmt.Errorf("encoder: unknown opcode %q at line %d", ins.Opcode, ins.Debug.Line)
		}
		out = append(out, opcodeBytes[ins.Opcode])

		regI, idI, immI := 0, 0, 0
		for _, kind := range op.Operands {
			switch kind {
			case isa.OperandRegister:
				if regI >= len(ins.Registers) {
					return nil, fmt.Errorf("encoder: %s at line %d: missing register operand", ins.Opcode, ins.Debug.Line)
				}
				out = append(out, byte(ins.Registers[regI]))
				regI++
			case isa.OperandInteger:
				v := uint64(ins.Immediates[immI].Int)
				out = appendU64(out, v)
				immI++
			case isa.OperandFloat:
				v := floatBits(ins.Immediates[immI].Float)
				out = appendU64(out, v)
				immI++
			case isa.OperandLabel:
				target, ok := labelPCs[ins.Identifiers[idI]]
				if !ok {
					return nil, fmt.Errorf("encoder: %s at line %d: unresolved label %q", ins.Opcode, ins.Debug.Line, ins.Identifiers[idI])
				}
				delta := int32(target) - int32(pc)
				out = appendU32(out, uint32(delta))
				idI++
			case isa.OperandID:
				ref, err := r.ResolveLiteralArray(ins.Identifiers[idI])
				if err != nil {
					return nil, err
				}
				out = appendU32(out, ref.Offset)
				idI++
			case isa.OperandString:
				ref, err := r.ResolveString(ins.Identifiers[idI])
				if err != nil {
					return nil, err
				}
				out = appendU32(out, ref.Offset)
				idI++
			case isa.OperandCall:
				ref, err := r.ResolveMethod(ins.Identifiers[idI])
				if err != nil {
					return nil, err
				}
				out = appendU16(out, ref.InHeaderIdx)
				idI++
			case isa.OperandType:
				ref, err := r.ResolveType(ins.Identifiers[idI])
				if err != nil {
					return nil, err
				}
				out = appendU16(out, ref.InHeaderIdx)
				idI++
			case isa.OperandField:
				ref, err := r.ResolveField("", ins.Identifiers[idI])
				if err != nil {
					return nil, err
				}
				out = appendU16(out, ref.InHeaderIdx)
				idI++
			}
		}
		pc += uint32(op.EncodedLength())
	}
	return out, nil
}

func appendU16(b []byte, v uint16) []byte { return append(b, byte(v), byte(v>>8)) }
func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func appendU64(b []byte, v uint64) []byte {
	return append(appendU32(b, uint32(v)), appendU32(nil, uint32(v>>32))...)
}

func floatBits(f float64) uint64 {
	return math.Float64bits(f)
}
