// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"

	"github.com/panda-vm/pandasm/encoder"
	"github.com/panda-vm/pandasm/isa"
	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/program"
)

// phase8MethodCodeAndAnnotations implements spec §4.G phase 8: for
// every non-foreign method with an implementation, create its CodeItem
// and (when warranted) DebugInfoItem/LineNumberProgramItem, register
// index dependencies, and attach method/parameter annotations.
//
// The code's byte length, label PCs, try-block table and line-number
// program are all computed here rather than deferred to phase 12,
// because none of them depend on index-resolved operand bytes — only
// on instruction shape (isa.Opcode.EncodedLength) and source line
// numbers, both already known. Phase 12 (bytecode.go's
// phase12BytecodeEmission) only has to fill in the final resolved
// bytes once layout has assigned every dependency its offset/in-header
// index.
func (e *emitter) phase8MethodCodeAndAnnotations() error {
	for _, mangled := range sortedFunctionNames(e.prog) {
		fn := e.prog.Functions[mangled]
		if fn.Foreign() || !fn.Metadata.HasImplementation() {
			continue
		}
		mi, ok := e.methodItems[mangled]
		if !ok {
			return fmt.Errorf("emit: phase 8: method %q has no item (phase 5 did not run?)", mangled)
		}

		ci := e.c.NewCode()
		ci.Code.RegsNum = uint32(fn.ValueOfFirstParam + 1 + len(fn.Params))
		ci.Code.ArgsNum = uint32(len(fn.Params))
		ci.Code.InstrNum = uint32(len(fn.Instructions))

		var byteLen uint32
		for _, ins := range fn.Instructions {
			op := isa.Lookup(ins.Opcode)
			if op == nil {
				return fmt.Errorf("emit: method %q: unknown opcode %q", fn.Name, ins.Opcode)
			}
			byteLen += uint32(op.EncodedLength())
		}
		ci.Code.ByteLength = byteLen
		mi.Method.Code = ci

		labelPCs, err := encoder.LabelPCs(fn)
		if err != nil {
			return err
		}

		canThrow := len(fn.CatchBlocks) > 0
		for _, ins := range fn.Instructions {
			if op := isa.Lookup(ins.Opcode); op != nil && op.Flags.Has(isa.FlagThrowing) {
				canThrow = true
			}
		}

		if len(fn.CatchBlocks) > 0 {
			tryBlocks, err := encoder.BuildTryBlocks(fn, labelPCs, func(name string) (*item.Item, error) {
				cls, ok := e.classItems[name]
				if !ok {
					return nil, fmt.Errorf("emit: method %q: catch block references unknown record %q", fn.Name, name)
				}
				mi.Method.IndexDeps = append(mi.Method.IndexDeps, cls)
				return cls, nil
			})
			if err != nil {
				return err
			}
			ci.Code.TryBlocks = tryBlocks
		}

		if e.opts.EmitDebugInfo || canThrow {
			di := e.c.NewDebugInfo()
			di.DebugInfo.InitialLine = firstLine(fn)
			for _, p := range fn.Params {
				name := ""
				if p.Metadata != nil {
					name, _ = p.Metadata.Value("name")
				}
				di.DebugInfo.ParamNames = append(di.DebugInfo.ParamNames, e.c.GetOrCreateString(name))
			}
			lnp := e.c.NewLineNumberProgram()
			lnp.LNP = encoder.EncodeLineProgram(di.DebugInfo.InitialLine, lineEntries(fn), localRecords(fn, e), e.opts.EmitDebugInfo)
			di.DebugInfo.LineProgram = lnp
			mi.Method.DebugInfo = di
		}

		e.collectIndexDeps(fn, mi, labelPCs)

		if err := e.attachMethodAnnotations(fn, mi); err != nil {
			return err
		}
	}
	return nil
}

func firstLine(fn *program.Function) int {
	if len(fn.Instructions) == 0 {
		return 0
	}
	return fn.Instructions[0].Debug.Line
}

func lineEntries(fn *program.Function) []encoder.LineEntry {
	var out []encoder.LineEntry
	pc := uint32(0)
	for _, ins := range fn.Instructions {
		op := isa.Lookup(ins.Opcode)
		out = append(out, encoder.LineEntry{PC: pc, Line: ins.Debug.Line})
		if op != nil {
			pc += uint32(op.EncodedLength())
		}
	}
	return out
}

func localRecords(fn *program.Function, e *emitter) []item.LocalRecord {
	var out []item.LocalRecord
	for _, l := range fn.Locals {
		ti, err := e.typeItem(l.Type)
		if err != nil {
			continue
		}
		out = append(out, item.LocalRecord{Name: l.Name, Type: ti, Register: l.Register, StartPC: l.StartPC, EndPC: l.EndPC})
	}
	return out
}

// collectIndexDeps walks fn's instructions to register every
// METHOD/FIELD/TYPE operand dependency (spec §4.G phase 8 "call
// method.add_index_dependency"). Only CLASS/METHOD/FIELD/PROTO-typed
// items actually consume an index-section slot (item.IndexType);
// STRING and LITERALARRAY_ID operands resolve via an absolute file
// offset instead (isa.go's EncodedWidth doc comment), so they are
// skipped here and are not IndexDeps entries.
func (e *emitter) collectIndexDeps(fn *program.Function, mi *item.Item, labelPCs map[string]uint32) {
	for _, ins := range fn.Instructions {
		op := isa.Lookup(ins.Opcode)
		if op == nil {
			continue
		}
		idI := 0
		for _, kind := range op.Operands {
			switch kind {
			case isa.OperandCall:
				if callee, ok := e.lookupMethodByName(ins.Identifiers[idI]); ok {
					mi.Method.IndexDeps = append(mi.Method.IndexDeps, callee)
				}
				idI++
			case isa.OperandType:
				if cls := e.classItemForDescriptor(ins.Identifiers[idI]); cls != nil {
					mi.Method.IndexDeps = append(mi.Method.IndexDeps, cls)
				}
				idI++
			case isa.OperandField:
				if fi := e.fieldItemFor(fn, ins.Identifiers[idI]); fi != nil {
					mi.Method.IndexDeps = append(mi.Method.IndexDeps, fi)
				}
				idI++
			case isa.OperandString, isa.OperandID, isa.OperandLabel:
				idI++
			}
		}
	}
}

func (e *emitter) classItemForDescriptor(desc string) *item.Item {
	for _, cls := range e.classItems {
		if cls.Class != nil && cls.Class.Descriptor == desc {
			return cls
		}
	}
	return nil
}

func (e *emitter) fieldItemFor(fn *program.Function, text string) *item.Item {
	recName, fieldName := splitFieldRef(text, ownerRecordName(fn.Name))
	cls, ok := e.classItems[recName]
	if !ok || cls.Class == nil {
		return nil
	}
	for i, f := range e.prog.Records[recName].Fields {
		if f.Name == fieldName && i < len(cls.Class.Fields) {
			return cls.Class.Fields[i]
		}
	}
	return nil
}

func splitFieldRef(text, fallbackOwner string) (rec, field string) {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '.' {
			return text[:i], text[i+1:]
		}
	}
	return fallbackOwner, text
}

func (e *emitter) attachMethodAnnotations(fn *program.Function, mi *item.Item) error {
	for i := range fn.Metadata.Annotations {
		ann := &fn.Metadata.Annotations[i]
		runtime, _, err := e.annotationClassify(ann)
		if err != nil {
			return err
		}
		ai, err := e.buildAnnotation(ann)
		if err != nil {
			return err
		}
		if runtime {
			mi.Method.RuntimeAnnotations = append(mi.Method.RuntimeAnnotations, ai)
		} else {
			mi.Method.Annotations = append(mi.Method.Annotations, ai)
		}
	}

	var runtimePer, normalPer [][]*item.Item
	anyParamAnnotations := false
	for _, p := range fn.Params {
		var rp, np []*item.Item
		if p.Metadata != nil {
			for i := range p.Metadata.Annotations {
				ann := &p.Metadata.Annotations[i]
				runtime, _, err := e.annotationClassify(ann)
				if err != nil {
					return err
				}
				ai, err := e.buildAnnotation(ann)
				if err != nil {
					return err
				}
				anyParamAnnotations = true
				if runtime {
					rp = append(rp, ai)
				} else {
					np = append(np, ai)
				}
			}
		}
		runtimePer = append(runtimePer, rp)
		normalPer = append(normalPer, np)
	}
	if anyParamAnnotations {
		mi.Method.RuntimeParamAnnotations = e.c.NewParamAnnotations(runtimePer)
		mi.Method.ParamAnnotations = e.c.NewParamAnnotations(normalPer)
	}
	return nil
}

// phase12BytecodeEmission implements spec §4.G phase 12: run the
// instruction encoder for each implemented method now that layout has
// assigned every dependency's offset/in-header index, and populate the
// CodeItem's final bytecode bytes.
func (e *emitter) phase12BytecodeEmission() error {
	r := &resolver{e: e}
	for _, mangled := range sortedFunctionNames(e.prog) {
		fn := e.prog.Functions[mangled]
		if fn.Foreign() || !fn.Metadata.HasImplementation() {
			continue
		}
		mi := e.methodItems[mangled]
		labelPCs, err := encoder.LabelPCs(fn)
		if err != nil {
			return err
		}
		bytecode, err := encoder.Encode(fn, labelPCs, r)
		if err != nil {
			return err
		}
		mi.Method.Code.Bytecode = bytecode
	}
	return nil
}

// resolver adapts the emitter's name tables to encoder.Resolver.
type resolver struct{ e *emitter }

func (r *resolver) ResolveField(ownerHint, name string) (*item.Item, error) {
	recName, fieldName := splitFieldRef(name, ownerHint)
	cls, ok := r.e.classItems[recName]
	if !ok || cls.Class == nil {
		return nil, fmt.Errorf("encoder: unresolved field owner %q", recName)
	}
	for i, f := range r.e.prog.Records[recName].Fields {
		if f.Name == fieldName && i < len(cls.Class.Fields) {
			return cls.Class.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("encoder: unresolved field %q.%q", recName, fieldName)
}

func (r *resolver) ResolveMethod(name string) (*item.Item, error) {
	mi, ok := r.e.lookupMethodByName(name)
	if !ok {
		return nil, fmt.Errorf("encoder: unresolved call target %q", name)
	}
	return mi, nil
}

func (r *resolver) ResolveType(name string) (*item.Item, error) {
	if cls := r.e.classItemForDescriptor(name); cls != nil {
		return cls, nil
	}
	return nil, fmt.Errorf("encoder: unresolved type %q", name)
}

func (r *resolver) ResolveString(s string) (*item.Item, error) {
	return r.e.c.GetOrCreateString(s), nil
}

func (r *resolver) ResolveLiteralArray(id string) (*item.Item, error) {
	it, ok := r.e.litArrayItems[id]
	if !ok {
		return nil, fmt.Errorf("encoder: unresolved literal array %q", id)
	}
	return it, nil
}
