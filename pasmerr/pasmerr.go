// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package pasmerr defines the assembler's error taxonomy (spec §7): a
// closed Kind enum, a concrete Error type, and a List type that
// mirrors go/scanner.ErrorList (sortable, de-duplicating, nil-safe
// Err()). Grounded on the teacher's own choice of go/scanner for
// parser error collection (see tools/ruse/parser/parser.go).
package pasmerr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panda-vm/pandasm/token"
)

// Class distinguishes a fatal error from a non-fatal warning (spec §7).
type Class int

const (
	ClassError Class = iota
	ClassWarning
)

func (c Class) String() string {
	if c == ClassWarning {
		return "WARNING"
	}
	return "ERROR"
}

// Kind is the closed taxonomy of lexer, parser, and emitter error
// conditions (spec §7).
type Kind int

const (
	// Lexer.
	ErrStringMissingTerminatingCharacter Kind = iota

	// Parser: identifiers, names, labels.
	ErrBadLabel
	ErrBadLabelExt // referenced but never defined
	ErrBadName
	ErrBadNameReg // register value exceeds the opcode's encoding width
	ErrBadInteger
	ErrBadFloat
	ErrBadOperand
	ErrBadOperationName
	ErrNonexistentOperation
	ErrBadIDFunction
	ErrBadIDRecord
	ErrBadIDField
	ErrBadFunctionName
	ErrBadRecordName
	ErrBadParamName
	ErrFunctionArgumentMismatch

	// Parser: metadata.
	ErrBadMetadataBound
	ErrBadMetadataUnknownAttribute
	ErrBadMetadataInvalidValue
	ErrBadMetadataMissingAttribute
	ErrBadMetadataMissingValue
	ErrBadMetadataUnexpectedAttribute
	ErrBadMetadataUnexpectedValue
	ErrBadMetadataMultipleAttribute
	ErrBadNoExpDelim

	// Parser: function shape.
	ErrBadFunctionParams
	ErrBadFunctionReturnValue

	// Parser: fields.
	ErrBadFieldMissingName
	ErrBadFieldMissingValueType
	ErrRepeatingFieldName

	// Parser: lexical/structural.
	ErrBadCharacter
	ErrBadKeyword
	ErrBadDefinitionFunction
	ErrBadDefinitionRecord
	ErrBadBound
	ErrBadEnd
	ErrBadClose
	ErrBadArgsBound
	ErrBadType
	ErrUndefinedType
	ErrMultipleDirectives
	ErrIncorrectDirectiveLocation
	ErrBadDirectiveDeclaration
	ErrUnknownLanguage
	ErrBadMnemonicName

	// Parser: string literal escapes.
	ErrBadStringInvalidHexEscapeSequence
	ErrBadStringUnknownEscapeSequence

	// Parser: arrays.
	ErrBadArrayTypeBound

	// Emitter.
	ErrEmit
)

var kindNames = [...]string{
	ErrStringMissingTerminatingCharacter: "ERR_STRING_MISSING_TERMINATING_CHARACTER",
	ErrBadLabel:                          "ERR_BAD_LABEL",
	ErrBadLabelExt:                       "ERR_BAD_LABEL_EXT",
	ErrBadName:                           "ERR_BAD_NAME",
	ErrBadNameReg:                        "ERR_BAD_NAME_REG",
	ErrBadInteger:                        "ERR_BAD_INTEGER",
	ErrBadFloat:                          "ERR_BAD_FLOAT",
	ErrBadOperand:                        "ERR_BAD_OPERAND",
	ErrBadOperationName:                  "ERR_BAD_OPERATION_NAME",
	ErrNonexistentOperation:              "ERR_NONEXISTENT_OPERATION",
	ErrBadIDFunction:                     "ERR_BAD_ID_FUNCTION",
	ErrBadIDRecord:                       "ERR_BAD_ID_RECORD",
	ErrBadIDField:                        "ERR_BAD_ID_FIELD",
	ErrBadFunctionName:                   "ERR_BAD_FUNCTION_NAME",
	ErrBadRecordName:                     "ERR_BAD_RECORD_NAME",
	ErrBadParamName:                      "ERR_BAD_PARAM_NAME",
	ErrFunctionArgumentMismatch:          "ERR_FUNCTION_ARGUMENT_MISMATCH",
	ErrBadMetadataBound:                  "ERR_BAD_METADATA_BOUND",
	ErrBadMetadataUnknownAttribute:       "ERR_BAD_METADATA_UNKNOWN_ATTRIBUTE",
	ErrBadMetadataInvalidValue:           "ERR_BAD_METADATA_INVALID_VALUE",
	ErrBadMetadataMissingAttribute:       "ERR_BAD_METADATA_MISSING_ATTRIBUTE",
	ErrBadMetadataMissingValue:           "ERR_BAD_METADATA_MISSING_VALUE",
	ErrBadMetadataUnexpectedAttribute:    "ERR_BAD_METADATA_UNEXPECTED_ATTRIBUTE",
	ErrBadMetadataUnexpectedValue:        "ERR_BAD_METADATA_UNEXPECTED_VALUE",
	ErrBadMetadataMultipleAttribute:      "ERR_BAD_METADATA_MULTIPLE_ATTRIBUTE",
	ErrBadNoExpDelim:                     "ERR_BAD_NOEXP_DELIM",
	ErrBadFunctionParams:                 "ERR_BAD_FUNCTION_PARAMS",
	ErrBadFunctionReturnValue:            "ERR_BAD_FUNCTION_RETURN_VALUE",
	ErrBadFieldMissingName:               "ERR_BAD_FIELD_MISSING_NAME",
	ErrBadFieldMissingValueType:          "ERR_BAD_FIELD_MISSING_VALUE_TYPE",
	ErrRepeatingFieldName:                "ERR_REPEATING_FIELD_NAME",
	ErrBadCharacter:                      "ERR_BAD_CHARACTER",
	ErrBadKeyword:                        "ERR_BAD_KEYWORD",
	ErrBadDefinitionFunction:             "ERR_BAD_DEFINITION_FUNCTION",
	ErrBadDefinitionRecord:               "ERR_BAD_DEFINITION_RECORD",
	ErrBadBound:                          "ERR_BAD_BOUND",
	ErrBadEnd:                            "ERR_BAD_END",
	ErrBadClose:                          "ERR_BAD_CLOSE",
	ErrBadArgsBound:                      "ERR_BAD_ARGS_BOUND",
	ErrBadType:                           "ERR_BAD_TYPE",
	ErrUndefinedType:                     "ERR_UNDEFINED_TYPE",
	ErrMultipleDirectives:                "ERR_MULTIPLE_DIRECTIVES",
	ErrIncorrectDirectiveLocation:        "ERR_INCORRECT_DIRECTIVE_LOCATION",
	ErrBadDirectiveDeclaration:           "ERR_BAD_DIRECTIVE_DECLARATION",
	ErrUnknownLanguage:                   "ERR_UNKNOWN_LANGUAGE",
	ErrBadMnemonicName:                   "ERR_BAD_MNEMONIC_NAME",
	ErrBadStringInvalidHexEscapeSequence: "ERR_BAD_STRING_INVALID_HEX_ESCAPE_SEQUENCE",
	ErrBadStringUnknownEscapeSequence:    "ERR_BAD_STRING_UNKNOWN_ESCAPE_SEQUENCE",
	ErrBadArrayTypeBound:                 "ERR_BAD_ARRAY_TYPE_BOUND",
	ErrEmit:                              "ERR_EMIT",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is one diagnostic (spec §7).
type Error struct {
	Kind     Kind
	Class    Class
	Pos      token.Position
	EndPos   token.Position
	Line     string // the whole offending source line, for a caret diagnostic
	Message  string
	Verbose  string // auxiliary detail, e.g. the expected vs. actual token
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Kind)
}

// Caret renders the offending line with a caret under the error's
// starting column, for the CLI front end (spec §7 "User-visible failure").
func (e *Error) Caret() string {
	col := e.Pos.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(e.Line) {
		col = len(e.Line)
	}
	return e.Line + "\n" + strings.Repeat(" ", col) + "^"
}

// List is an accumulating, sortable error list, mirroring
// go/scanner.ErrorList's contract exactly (Add/Sort/RemoveMultiples/Err).
type List []*Error

func (l *List) Add(e *Error) { *l = append(*l, e) }

func (l List) Len() int      { return len(l) }
func (l List) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l List) Less(i, j int) bool {
	a, b := l[i].Pos, l[j].Pos
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

func (l List) Sort() { sort.Sort(l) }

// RemoveMultiples sorts the list and removes diagnostics that share a
// source line with the one immediately preceding them, exactly as
// go/scanner.ErrorList.RemoveMultiples does, to avoid cascades of
// errors stemming from the same malformed line.
func (l *List) RemoveMultiples() {
	l.Sort()
	var last token.Position
	i := 0
	for _, e := range *l {
		if e.Pos.Filename != last.Filename || e.Pos.Line != last.Line {
			last = e.Pos
			(*l)[i] = e
			i++
		}
	}
	*l = (*l)[:i]
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns nil if the list is empty, and itself (as an error)
// otherwise — go/scanner.ErrorList's exact contract, so callers can
// write "if err := errs.Err(); err != nil".
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Errors returns only the ClassError entries, e.g. for deciding
// whether parsing must stop (spec §4.B.8: warnings do not stop it).
func (l List) Errors() List {
	var out List
	for _, e := range l {
		if e.Class == ClassError {
			out = append(out, e)
		}
	}
	return out
}
