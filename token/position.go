// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package token defines the position and file-set types used to track
// diagnostics through the assembler pipeline.
package token

import (
	"go/token"
)

// We reuse the position and FileSet types from "go/token", as they
// are not Go-specific and suit a line-oriented assembly language just
// as well as they suit Go source.
type (
	Position = token.Position
	Pos      = token.Pos
	File     = token.File
	FileSet  = token.FileSet
)

func NewFileSet() *FileSet {
	return token.NewFileSet()
}

const NoPos = token.NoPos
