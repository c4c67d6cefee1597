// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package parser implements the recursive-descent consumer of
// lexer.Scan's per-line token streams, building a program.Program
// (spec §4.B). Entry-point shape (ParseFile, panic/recover "bailout"
// on the first fatal error, an accumulating warnings list returned
// alongside a successful program) is grounded on
// tools/ruse/parser/parser.go; per-directive grammar is grounded on
// _examples/original_source/assembler/assembly-parser.cpp.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/panda-vm/pandasm/isa"
	"github.com/panda-vm/pandasm/lexer"
	"github.com/panda-vm/pandasm/metadata"
	"github.com/panda-vm/pandasm/pasmerr"
	"github.com/panda-vm/pandasm/program"
	"github.com/panda-vm/pandasm/token"
	"github.com/panda-vm/pandasm/types"
)

// bailout unwinds the recursive descent to ParseFile on the first
// fatal error, exactly as tools/ruse/parser/parser.go's own bailout
// type does.
type bailout struct{}

type parser struct {
	fset *token.FileSet
	file *token.File
	prog *program.Program

	errs  pasmerr.List
	warns pasmerr.List

	languageSeen bool

	openRecord   *program.Record
	openFunction *program.Function
	lastFunction *program.Function // most recently closed function, for trailing .catch/.catchall

	// pendingLabels accumulates label-only chunks (a "name:" with no
	// mnemonic following it yet, spec §4.B.5) until the next
	// instruction is parsed, at which point they become additional
	// entries in that instruction's Labels.
	pendingLabels []string
}

// ParseFile parses a complete source file into a Program. On success
// it returns the program and any accumulated warnings. On the first
// fatal error it returns a nil program and a non-nil error (a
// pasmerr.List).
func ParseFile(fset *token.FileSet, filename, src string) (prog *program.Program, warnings pasmerr.List, err error) {
	file := fset.AddFile(filename, -1, len(src)+1)
	file.SetLinesForContent([]byte(src))

	p := &parser{fset: fset, file: file, prog: program.New()}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
		warnings = p.warns
		if len(p.errs) > 0 {
			err = p.errs.Err()
			prog = nil
			return
		}
		prog = p.prog
	}()

	lines := strings.Split(src, "\n")
	offset := 0
	for i, raw := range lines {
		lineNo := i + 1
		stripped := lexer.StripComment(raw)
		toks, lexErr := lexer.Scan(stripped)
		basePos := p.file.Pos(offset)
		if lexErr != nil {
			p.fail(p.file.Pos(offset+lexErr.Left), pasmerr.ErrStringMissingTerminatingCharacter, raw, "%s", lexErr.Message)
		}
		if len(toks) > 0 {
			p.parseLine(toks, basePos, raw, lineNo)
		}
		offset += len(raw) + 1
	}

	p.finalize()
	return
}

func (p *parser) fail(pos token.Pos, kind pasmerr.Kind, line string, format string, args ...interface{}) {
	e := &pasmerr.Error{
		Kind:    kind,
		Class:   pasmerr.ClassError,
		Pos:     p.file.Position(pos),
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
	p.errs.Add(e)
	panic(bailout{})
}

func (p *parser) warn(pos token.Pos, kind pasmerr.Kind, line string, format string, args ...interface{}) {
	p.warns.Add(&pasmerr.Error{
		Kind:    kind,
		Class:   pasmerr.ClassWarning,
		Pos:     p.file.Position(pos),
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// parseLine dispatches one non-empty line, per spec §4.B "Top-level
// dispatch".
func (p *parser) parseLine(toks []lexer.Token, basePos token.Pos, raw string, lineNo int) {
	first := toks[0]

	if p.openRecord != nil {
		if first.Kind == token.DelBraceR {
			p.openRecord.Body = true
			p.openRecord = nil
			return
		}
		p.parseFieldLine(toks, basePos, raw)
		return
	}

	if p.openFunction != nil {
		if first.Kind == token.DelBraceR {
			p.openFunction.TrailingLabels = p.pendingLabels
			p.pendingLabels = nil
			p.openFunction.Body = true
			p.lastFunction = p.openFunction
			p.openFunction = nil
			return
		}
		p.parseInstructionLine(toks, basePos, raw, lineNo)
		return
	}

	// A declaration whose body opens and closes on its own line
	// (".record E {}", ".function void f() { return }") is handled as
	// its header, its body and its closing '}' in turn.
	if (first.Value == ".record" || first.Value == ".function") && toks[len(toks)-1].Kind == token.DelBraceR {
		for i, t := range toks {
			if t.Kind == token.DelBraceL {
				p.parseLine(toks[:i+1], basePos, raw, lineNo)
				if body := toks[i+1 : len(toks)-1]; len(body) > 0 {
					p.parseLine(body, basePos, raw, lineNo)
				}
				p.parseLine(toks[len(toks)-1:], basePos, raw, lineNo)
				return
			}
		}
	}

	switch {
	case first.Value == ".language":
		p.parseLanguage(toks, basePos, raw)
	case first.Value == ".record":
		p.parseRecordHeader(toks, basePos, raw)
	case first.Value == ".function":
		p.parseFunctionHeader(toks, basePos, raw)
	case first.Value == ".catch" || first.Value == ".catchall":
		p.parseCatchDirective(toks, basePos, raw)
	case first.Kind == token.DelBraceR:
		p.fail(p.posAt(basePos, first), pasmerr.ErrBadClose, raw, "unmatched '}'")
	default:
		p.fail(p.posAt(basePos, first), pasmerr.ErrBadKeyword, raw, "unexpected token %q at top level", first.Value)
	}
}

func (p *parser) posAt(base token.Pos, t lexer.Token) token.Pos { return base + token.Pos(t.Left) }

// --- §4.B.1 .language ---

func (p *parser) parseLanguage(toks []lexer.Token, basePos token.Pos, raw string) {
	if p.languageSeen {
		p.fail(basePos, pasmerr.ErrMultipleDirectives, raw, "only one .language directive is permitted")
	}
	if len(p.prog.Records) > 0 || len(p.prog.Functions) > 0 {
		p.fail(basePos, pasmerr.ErrIncorrectDirectiveLocation, raw, ".language must precede any other declaration")
	}
	if len(toks) < 2 {
		p.fail(basePos, pasmerr.ErrBadDirectiveDeclaration, raw, ".language requires a language name")
	}
	name := toks[1].Value
	switch name {
	case "PandaAssembly", "ECMAScript":
		p.prog.Language = name
		p.languageSeen = true
	default:
		p.fail(p.posAt(basePos, toks[1]), pasmerr.ErrUnknownLanguage, raw, "unknown language %q", name)
	}
}

// --- §4.B.2 Records ---

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
		for i := 0; i < len(seg); i++ {
			c := seg[i]
			if i == 0 && (c >= '0' && c <= '9') {
				return false
			}
			isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
			isDigit := c >= '0' && c <= '9'
			if !isLetter && !isDigit {
				return false
			}
		}
	}
	return true
}

func (p *parser) parseRecordHeader(toks []lexer.Token, basePos token.Pos, raw string) {
	if len(toks) < 2 {
		p.fail(basePos, pasmerr.ErrBadRecordName, raw, ".record requires a name")
	}
	name := toks[1].Value
	if !validIdentifier(name) {
		p.fail(p.posAt(basePos, toks[1]), pasmerr.ErrBadRecordName, raw, "invalid record name %q", name)
	}

	rec := p.prog.GetOrCreateRecord(name)
	if rec.Defined && rec.Body {
		p.fail(p.posAt(basePos, toks[1]), pasmerr.ErrBadIDRecord, raw, "record %q is already defined", name)
	}
	rec.Name = name
	rec.Defined = true
	rec.Conflict = types.IsPrimitiveName(name)

	rest := toks[2:]
	bodyOpens := len(rest) > 0 && rest[len(rest)-1].Kind == token.DelBraceL
	if bodyOpens {
		rest = rest[:len(rest)-1]
	}
	p.parseMetadata(rec.Metadata, rest, basePos, raw)
	if bodyOpens {
		p.openRecord = rec
	} else {
		rec.Body = false
	}
}

func (p *parser) parseFieldLine(toks []lexer.Token, basePos token.Pos, raw string) {
	typ, idx, err := p.parseTypeTokens(toks, 0)
	if err != nil {
		p.fail(basePos, pasmerr.ErrBadType, raw, "%s", err)
	}
	if idx >= len(toks) {
		p.fail(basePos, pasmerr.ErrBadFieldMissingName, raw, "field is missing a name")
	}
	nameTok := toks[idx]
	idx++
	if _, exists := p.openRecord.GetField(nameTok.Value); exists {
		p.fail(p.posAt(basePos, nameTok), pasmerr.ErrRepeatingFieldName, raw, "duplicate field %q", nameTok.Value)
	}
	f := &program.Field{Name: nameTok.Value, Type: typ, Metadata: metadata.New(metadata.OwnerField), IsDefined: true}
	p.parseMetadata(f.Metadata, toks[idx:], basePos, raw)
	p.openRecord.AddField(f)
	if typ.IsArray() {
		p.prog.InternArrayType(typ)
	}
}

// parseTypeTokens reads a type starting at toks[start]: a base name
// token followed by zero or more "[]" pairs.
func (p *parser) parseTypeTokens(toks []lexer.Token, start int) (types.Type, int, error) {
	if start >= len(toks) {
		return types.Type{}, start, fmt.Errorf("expected a type")
	}
	base := toks[start].Value
	idx := start + 1
	rank := 0
	for idx+1 < len(toks) && toks[idx].Kind == token.DelSquareBracketL && toks[idx+1].Kind == token.DelSquareBracketR {
		rank++
		idx += 2
	}
	full := base + strings.Repeat("[]", rank)
	typ, err := types.FromName(full)
	if err != nil {
		return types.Type{}, idx, err
	}
	return typ, idx, nil
}

// --- §4.B.6 Metadata (bool attributes and key=value attributes) ---
//
// Full annotation-element construction (spec §4.D rules 1-7) requires
// a concrete textual sub-grammar that spec.md leaves abstract
// ("<ann-record>", "<elem-name>", ... are described generically, not
// as literal keyword spellings). Rather than invent an unfounded
// concrete syntax, this parser wires the bool-attribute and
// key=value forms (which spec.md §4.B.6 states concretely) through to
// metadata.Metadata, and leaves annotation-stream construction to a
// caller that already has a concrete annotation record in hand (see
// metadata.Metadata.BeginAnnotation and friends, exercised directly by
// tests).
func (p *parser) parseMetadata(m *metadata.Metadata, toks []lexer.Token, basePos token.Pos, raw string) {
	if len(toks) == 0 {
		return
	}
	if toks[0].Kind != token.DelLT || toks[len(toks)-1].Kind != token.DelGT {
		p.fail(basePos, pasmerr.ErrBadMetadataBound, raw, "metadata block must be wrapped in '<' '>'")
	}
	body := toks[1 : len(toks)-1]

	start := 0
	flush := func(group []lexer.Token) {
		if len(group) == 0 {
			return
		}
		eq := -1
		for i, t := range group {
			if t.Kind == token.DelEQ {
				eq = i
				break
			}
		}
		if eq < 0 {
			if len(group) != 1 {
				p.fail(basePos, pasmerr.ErrBadMetadataUnexpectedAttribute, raw, "malformed attribute")
			}
			if err := m.SetBool(group[0].Value); err != nil {
				p.fail(p.posAt(basePos, group[0]), pasmerr.ErrBadMetadataUnknownAttribute, raw, "%s", err)
			}
			return
		}
		if eq == 0 || eq != len(group)-2 {
			p.fail(basePos, pasmerr.ErrBadNoExpDelim, raw, "malformed key=value attribute")
		}
		key := group[0].Value
		value := group[eq+1].Value
		value = strings.Trim(value, `"`)
		m.SetKeyValue(key, value)
	}
	for i, t := range body {
		if t.Kind == token.DelComma {
			flush(body[start:i])
			start = i + 1
		}
	}
	flush(body[start:])
}

// --- §4.B.3 Functions ---

func (p *parser) parseFunctionHeader(toks []lexer.Token, basePos token.Pos, raw string) {
	retType, idx, err := p.parseTypeTokens(toks, 1)
	if err != nil {
		p.fail(basePos, pasmerr.ErrBadFunctionReturnValue, raw, "%s", err)
	}
	if idx >= len(toks) {
		p.fail(basePos, pasmerr.ErrBadFunctionName, raw, "function is missing a name")
	}
	name := toks[idx].Value
	if !validIdentifier(name) {
		p.fail(p.posAt(basePos, toks[idx]), pasmerr.ErrBadFunctionName, raw, "invalid function name %q", name)
	}
	idx++
	if idx >= len(toks) || toks[idx].Kind != token.DelBracketL {
		p.fail(basePos, pasmerr.ErrBadFunctionParams, raw, "expected '(' after function name")
	}
	idx++

	var params []program.Parameter
	var paramTypes []types.Type
	expectN := 0
	for idx < len(toks) && toks[idx].Kind != token.DelBracketR {
		ptyp, next, terr := p.parseTypeTokens(toks, idx)
		if terr != nil {
			p.fail(basePos, pasmerr.ErrBadFunctionParams, raw, "%s", terr)
		}
		idx = next
		if idx >= len(toks) {
			p.fail(basePos, pasmerr.ErrBadParamName, raw, "missing parameter name")
		}
		pname := toks[idx].Value
		if !strings.HasPrefix(pname, "a") {
			p.fail(p.posAt(basePos, toks[idx]), pasmerr.ErrBadParamName, raw, "parameter name %q must be of the form aN", pname)
		}
		n, nerr := strconv.Atoi(pname[1:])
		if nerr != nil || n != expectN {
			p.fail(p.posAt(basePos, toks[idx]), pasmerr.ErrBadParamName, raw, "parameter %q: expected a%d", pname, expectN)
		}
		expectN++
		idx++
		params = append(params, program.Parameter{Type: ptyp, Metadata: metadata.New(metadata.OwnerParam)})
		paramTypes = append(paramTypes, ptyp)
		if idx < len(toks) && toks[idx].Kind == token.DelComma {
			idx++
		}
	}
	if idx >= len(toks) || toks[idx].Kind != token.DelBracketR {
		p.fail(basePos, pasmerr.ErrBadFunctionParams, raw, "expected ')'")
	}
	idx++

	mangled := program.Mangle(name, paramTypes, retType)
	fn := p.prog.GetOrCreateFunction(mangled)
	if fn.Defined && fn.Body {
		p.fail(basePos, pasmerr.ErrBadDefinitionFunction, raw, "function %q is already defined", mangled)
	}
	fn.Name = name
	fn.ReturnType = retType
	fn.Params = params
	fn.Defined = true

	rest := toks[idx:]
	bodyOpens := len(rest) > 0 && rest[len(rest)-1].Kind == token.DelBraceL
	if bodyOpens {
		rest = rest[:len(rest)-1]
	}
	p.parseMetadata(fn.Metadata, rest, basePos, raw)
	if bodyOpens {
		p.openFunction = fn
		p.pendingLabels = nil
	} else {
		fn.Body = false
		p.lastFunction = fn
	}
}

// --- §4.B.4 Try/catch directives ---

func (p *parser) parseCatchDirective(toks []lexer.Token, basePos token.Pos, raw string) {
	if p.lastFunction == nil {
		p.fail(basePos, pasmerr.ErrIncorrectDirectiveLocation, raw, ".catch/.catchall must follow a function definition")
	}
	isCatchAll := toks[0].Value == ".catchall"

	// Token counts per spec §4.B.4: 8 or 10 for .catch; 6 or 8 for
	// .catchall (keyword + comma-separated identifiers).
	n := len(toks)
	var fields []string
	if isCatchAll {
		if n != 6 && n != 8 {
			p.fail(basePos, pasmerr.ErrBadArgsBound, raw, ".catchall expects 6 or 8 tokens, got %d", n)
		}
		fields = catchIdentifiers(toks[1:])
	} else {
		if n != 8 && n != 10 {
			p.fail(basePos, pasmerr.ErrBadArgsBound, raw, ".catch expects 8 or 10 tokens, got %d", n)
		}
		fields = catchIdentifiers(toks[1:])
	}

	cb := &program.CatchBlock{}
	i := 0
	if !isCatchAll {
		cb.ExceptionRecord = fields[i]
		i++
		p.prog.GetOrCreateRecord(cb.ExceptionRecord)
	}
	cb.TryBeginLabel = fields[i]
	i++
	cb.TryEndLabel = fields[i]
	i++
	cb.CatchBeginLabel = fields[i]
	i++
	if i < len(fields) {
		cb.CatchEndLabel = fields[i]
	} else {
		cb.CatchEndLabel = cb.CatchBeginLabel
	}

	for _, label := range []string{cb.TryBeginLabel, cb.TryEndLabel, cb.CatchBeginLabel, cb.CatchEndLabel} {
		p.lastFunction.GetOrCreateLabel(label)
	}
	p.lastFunction.CatchBlocks = append(p.lastFunction.CatchBlocks, cb)
}

// catchIdentifiers extracts the comma-separated identifier fields
// following a .catch/.catchall keyword, ignoring the commas.
func catchIdentifiers(toks []lexer.Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind != token.DelComma {
			out = append(out, t.Value)
		}
	}
	return out
}

// --- §4.B.5 Instructions ---

// parseInstructionLine parses every "label? mnemonic operands..." chunk
// packed onto one physical source line (spec §4.B.5). Most lines hold
// exactly one chunk, but spec S4's ".catchall" fixture crams three
// labels and two instructions onto a single line ("b: return e: h:
// return"), so this loops rather than assuming one instruction per
// call. A label with nothing following it on the line (or with only
// further labels following) is a label-only chunk: it is queued in
// p.pendingLabels and attached to whichever instruction comes next,
// possibly on a later line.
func (p *parser) parseInstructionLine(toks []lexer.Token, basePos token.Pos, raw string, lineNo int) {
	fn := p.openFunction
	idx := 0
	for idx < len(toks) {
		var label string
		hasLabel := false
		if idx+1 < len(toks) && toks[idx].Kind == token.ID && toks[idx+1].Kind == token.DelColon {
			label = toks[idx].Value
			l := fn.GetOrCreateLabel(label)
			l.Defined = true
			idx += 2
			hasLabel = true
		}
		if idx >= len(toks) {
			if hasLabel {
				p.pendingLabels = append(p.pendingLabels, label)
			}
			return
		}
		if toks[idx].Kind != token.Operation {
			if hasLabel {
				p.pendingLabels = append(p.pendingLabels, label)
				continue
			}
			p.fail(p.posAt(basePos, toks[idx]), pasmerr.ErrNonexistentOperation, raw, "unknown opcode %q", toks[idx].Value)
		}
		mnemonicTok := toks[idx]
		op := isa.Lookup(mnemonicTok.Value)
		idx++

		var labels []string
		if len(p.pendingLabels) > 0 {
			labels = append(labels, p.pendingLabels...)
			p.pendingLabels = nil
		}
		if hasLabel {
			labels = append(labels, label)
		}

		ins := &program.Instruction{Opcode: op.Name, Labels: labels, Debug: program.DebugInfo{Line: lineNo, Pos: p.posAt(basePos, mnemonicTok)}}

		for _, kind := range op.Operands {
			if idx < len(toks) && toks[idx].Kind == token.DelComma {
				idx++
			}
			if idx >= len(toks) {
				p.fail(basePos, pasmerr.ErrBadOperand, raw, "%s: missing operand", op.Name)
			}
			t := toks[idx]
			switch kind {
			case isa.OperandRegister:
				p.parseRegisterOperand(fn, ins, t, basePos, raw)
				idx++
			case isa.OperandCall:
				// The call target is spelled as the callee's pre-mangling
				// name (e.g. "R.get"), not its full mangled signature: a
				// mangled signature embeds ':' and ';', and ':' collides
				// with the label-definition delimiter in this grammar, so
				// call sites are resolved by name (+ arity, in finalize)
				// instead of by an exact mangled-key forward reference.
				ins.Identifiers = append(ins.Identifiers, t.Value)
				idx++
			case isa.OperandString:
				if t.Kind != token.IDString {
					p.fail(p.posAt(basePos, t), pasmerr.ErrBadOperand, raw, "expected a string literal")
				}
				s := unquote(t.Value)
				p.prog.InternString(s)
				ins.Identifiers = append(ins.Identifiers, s)
				idx++
			case isa.OperandInteger:
				v, err := parseIntLiteral(t.Value)
				if err != nil {
					p.fail(p.posAt(basePos, t), pasmerr.ErrBadInteger, raw, "%s", err)
				}
				ins.Immediates = append(ins.Immediates, program.Immediate{Int: v})
				idx++
			case isa.OperandFloat:
				v, err := strconv.ParseFloat(t.Value, 64)
				if err != nil {
					p.fail(p.posAt(basePos, t), pasmerr.ErrBadFloat, raw, "%s", err)
				}
				ins.Immediates = append(ins.Immediates, program.Immediate{IsFloat: true, Float: v})
				idx++
			case isa.OperandLabel:
				fn.GetOrCreateLabel(t.Value)
				ins.Identifiers = append(ins.Identifiers, t.Value)
				idx++
			case isa.OperandID:
				ins.Identifiers = append(ins.Identifiers, t.Value)
				idx++
			case isa.OperandType:
				typ, next, terr := p.parseTypeTokens(toks, idx)
				if terr != nil {
					p.fail(p.posAt(basePos, t), pasmerr.ErrBadType, raw, "%s", terr)
				}
				if typ.IsArray() {
					p.prog.InternArrayType(typ)
				} else {
					p.prog.GetOrCreateRecord(typ.Component)
				}
				ins.Identifiers = append(ins.Identifiers, typ.Descriptor(false))
				idx = next
			case isa.OperandField:
				var recName, fieldName string
				if dot := strings.LastIndexByte(t.Value, '.'); dot >= 0 {
					recName, fieldName = t.Value[:dot], t.Value[dot+1:]
				} else {
					// Bare field name (spec.md's own S1 scenario writes
					// "ldobj x" rather than "ldobj R.x"): resolve against
					// the enclosing function's owning record.
					recName = ownerRecordName(fn.Name)
					fieldName = t.Value
					if recName == "" {
						p.fail(p.posAt(basePos, t), pasmerr.ErrBadOperand, raw, "bare field %q outside of a method", t.Value)
					}
				}
				rec := p.prog.GetOrCreateRecord(recName)
				if _, ok := rec.GetField(fieldName); !ok {
					rec.AddField(&program.Field{Name: fieldName})
				}
				ins.Identifiers = append(ins.Identifiers, t.Value)
				idx++
			}
		}

		fn.Instructions = append(fn.Instructions, ins)
	}
}

func (p *parser) parseRegisterOperand(fn *program.Function, ins *program.Instruction, t lexer.Token, basePos token.Pos, raw string) {
	if len(t.Value) < 2 || (t.Value[0] != 'v' && t.Value[0] != 'a') {
		p.fail(p.posAt(basePos, t), pasmerr.ErrBadOperand, raw, "expected a register operand (vN or aN)")
	}
	n, err := strconv.Atoi(t.Value[1:])
	if err != nil || n < 0 {
		p.fail(p.posAt(basePos, t), pasmerr.ErrBadOperand, raw, "invalid register number in %q", t.Value)
	}
	if t.Value[0] == 'v' {
		fn.NoteRegister(n)
		ins.Registers = append(ins.Registers, n)
		return
	}
	instrIndex := len(fn.Instructions)
	operandIndex := len(ins.Registers)
	fn.Deferred = append(fn.Deferred, program.DeferredParam{InstrIndex: instrIndex, OperandIndex: operandIndex, N: n})
	ins.Registers = append(ins.Registers, n) // placeholder, rewritten in finalize()
}

// ownerRecordName extracts the record name a method belongs to from
// its pre-mangling name ("R.get" -> "R"); returns "" for a name with
// no owner prefix (a global function).
func ownerRecordName(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ""
	}
	return name[:dot]
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func parseIntLiteral(s string) (int64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	case strings.HasPrefix(s, "0") && len(s) > 1:
		base = 8
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// --- §4.B.7 Post-loop finalization ---

func (p *parser) finalize() {
	for _, fn := range p.prog.Functions {
		for name, l := range fn.Labels {
			if !l.Defined {
				p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadLabelExt, Class: pasmerr.ClassError,
					Message: fmt.Sprintf("label %q is referenced but never defined in %s", name, fn.MangledName)})
			}
		}
	}
	if len(p.errs) > 0 {
		return
	}

	for _, fn := range p.prog.Functions {
		shift := fn.ValueOfFirstParam + 1
		deferred := map[[2]int]bool{}
		for _, d := range fn.Deferred {
			deferred[[2]int{d.InstrIndex, d.OperandIndex}] = true
			ins := fn.Instructions[d.InstrIndex]
			reg := d.N + shift
			op := isa.Lookup(ins.Opcode)
			if op != nil && op.RegWidth > 0 && int64(reg) >= op.RegisterWidthLimit() {
				p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadNameReg, Class: pasmerr.ClassError,
					Message: fmt.Sprintf("register a%d (rewritten to v%d) exceeds %s's %d-bit encoding width", d.N, reg, ins.Opcode, op.RegWidth)})
				continue
			}
			ins.Registers[d.OperandIndex] = reg
		}

		// Directly-spelled vN operands never go through the aN
		// deferred-rewrite path above, but spec §4.B.5/§8 property 10
		// require the same register-encoding-width check for them.
		for instrIdx, ins := range fn.Instructions {
			op := isa.Lookup(ins.Opcode)
			if op == nil || op.RegWidth <= 0 {
				continue
			}
			for operandIdx, reg := range ins.Registers {
				if deferred[[2]int{instrIdx, operandIdx}] {
					continue
				}
				if int64(reg) >= op.RegisterWidthLimit() {
					p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadNameReg, Class: pasmerr.ClassError,
						Message: fmt.Sprintf("register v%d exceeds %s's %d-bit encoding width", reg, ins.Opcode, op.RegWidth)})
				}
			}
		}
	}
	if len(p.errs) > 0 {
		return
	}

	for name, rec := range p.prog.Records {
		if !rec.Defined {
			p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadIDRecord, Class: pasmerr.ClassError,
				Message: fmt.Sprintf("record %q does not exist", name)})
		}
	}
	for name, fn := range p.prog.Functions {
		if !fn.Defined {
			p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadIDFunction, Class: pasmerr.ClassError,
				Message: fmt.Sprintf("function %q does not exist", name)})
		}
	}
	if len(p.errs) > 0 {
		return
	}

	for name, rec := range p.prog.Records {
		if rec.Metadata.HasImplementation() != rec.Body {
			p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadDefinitionRecord, Class: pasmerr.ClassError,
				Message: fmt.Sprintf("record %q: metadata implementation flag does not match body presence", name)})
		}
	}
	for name, fn := range p.prog.Functions {
		if fn.Metadata.HasImplementation() != fn.Body {
			p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadDefinitionFunction, Class: pasmerr.ClassError,
				Message: fmt.Sprintf("function %q: metadata implementation flag does not match body presence", name)})
		}
	}
	if len(p.errs) > 0 {
		return
	}

	for _, fn := range p.prog.Functions {
		for _, ins := range fn.Instructions {
			op := isa.Lookup(ins.Opcode)
			if op == nil || !op.Flags.Has(isa.FlagCall) || op.Flags.Has(isa.FlagPseudoCall) {
				continue
			}
			if len(ins.Identifiers) == 0 {
				continue
			}
			callee := p.lookupCallee(ins.Identifiers[0])
			if callee == nil {
				p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrBadIDFunction, Class: pasmerr.ClassError,
					Message: fmt.Sprintf("call target %q does not exist", ins.Identifiers[0])})
				continue
			}
			want := len(callee.Params)
			got := op.ParamCount()
			if !op.Flags.Has(isa.FlagInitObj) {
				// Ordinary calls spend one argument slot on "this";
				// initobj variants use the -0 correction (spec §4.B.7.5).
				want--
			}
			if got != want {
				p.errs.Add(&pasmerr.Error{Kind: pasmerr.ErrFunctionArgumentMismatch, Class: pasmerr.ClassError,
					Message: fmt.Sprintf("call to %q: %d arguments supplied, %d expected", ins.Identifiers[0], got, want)})
			}
		}
	}
}

// lookupCallee resolves a call-site identifier (the callee's
// pre-mangling name) to a single defined function. Returns nil if no
// function by that name exists, or if the name is ambiguous (more
// than one overload) — in the latter case the argument-count check is
// skipped rather than guessed at.
func (p *parser) lookupCallee(name string) *program.Function {
	var found *program.Function
	for _, fn := range p.prog.Functions {
		if fn.Name == name {
			if found != nil {
				return nil
			}
			found = fn
		}
	}
	return found
}
