// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Command pasm assembles Panda VM textual assembly (.pa) into the
// binary bytecode container format (spec §6 "CLI surface (external
// collaborator; not core)"). Grounded on tools/ruse/main.go's
// single-command flag conventions (flag.Usage listing, log.SetFlags(0)
// + a command-name prefix, log.Fatal on a returned error) adapted from
// a multi-command registry down to the one command this tool needs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/panda-vm/pandasm/binary"
	"github.com/panda-vm/pandasm/emit"
	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/pasmerr"
	"github.com/panda-vm/pandasm/parser"
	"github.com/panda-vm/pandasm/token"
)

func init() {
	log.SetFlags(0)
	log.SetPrefix("pasm: ")
}

func main() {
	var verbose, sizeStat, optimize bool
	var logFile, dumpScopes string

	flag.BoolVar(&verbose, "verbose", false, "Print a line for each completed pipeline stage.")
	flag.StringVar(&logFile, "log-file", "", "Append log messages to FILE instead of stderr; parse errors and warnings still go to stderr.")
	flag.StringVar(&dumpScopes, "dump-scopes", "", "Write a text dump of the index-header scopes to FILE.")
	flag.BoolVar(&sizeStat, "size-stat", false, "Print a per-item-kind count breakdown.")
	flag.BoolVar(&optimize, "optimize", false, "Accepted for compatibility; this assembler performs no bytecode optimization (spec Non-goals).")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  pasm [OPTIONS] INPUT_FILE OUTPUT_FILE\n\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	_ = optimize // no-op: optimization is out of scope (spec §1 Non-goals)

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
	}
	inputFile, outputFile := args[0], args[1]

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open -log-file %s: %v", logFile, err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	opts := runOptions{verbose: verbose, sizeStat: sizeStat, dumpScopes: dumpScopes}
	if err := run(inputFile, outputFile, opts); err != nil {
		log.Fatal(err)
	}
}

type runOptions struct {
	verbose    bool
	sizeStat   bool
	dumpScopes string
}

// run drives the full pipeline: lex+parse -> emit (item container,
// layout, dedup, bytecode) -> binary write, spec §2 "Pipeline, leaves
// first".
func run(inputFile, outputFile string, opts runOptions) error {
	src, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", inputFile, err)
	}

	fset := token.NewFileSet()
	prog, warnings, err := parser.ParseFile(fset, inputFile, string(src))
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.Error())
		fmt.Fprintln(os.Stderr, w.Caret())
	}
	if err != nil {
		if list, ok := err.(pasmerr.List); ok {
			for _, e := range list {
				fmt.Fprintln(os.Stderr, e.Error())
				fmt.Fprintln(os.Stderr, e.Caret())
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("failed to assemble %s", inputFile)
	}
	if opts.verbose {
		log.Printf("parsed %s: %d record(s), %d function(s)", inputFile, len(prog.Records), len(prog.Functions))
	}

	result, err := emit.Emit(prog, emit.Options{EmitDebugInfo: true, BuildMaps: opts.dumpScopes != ""})
	if err != nil {
		return fmt.Errorf("failed to emit %s: %v", inputFile, err)
	}
	if opts.verbose {
		log.Printf("emitted %d implemented item(s), %d foreign item(s)", len(result.Container.Implemented), len(result.Container.Foreign))
	}

	data, err := binary.EncodeFile(result.Container, result.Layout)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %v", inputFile, err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", outputFile, err)
	}
	if opts.verbose {
		log.Printf("wrote %s (%d bytes)", outputFile, len(data))
	}

	if opts.sizeStat {
		printSizeStat(result.Container, len(data))
	}
	if opts.dumpScopes != "" {
		if err := writeScopeDump(opts.dumpScopes, result.Container); err != nil {
			return fmt.Errorf("failed to write -dump-scopes %s: %v", opts.dumpScopes, err)
		}
	}

	return nil
}

func printSizeStat(c *item.Container, fileSize int) {
	counts := map[item.Kind]int{}
	count := func(items []*item.Item) {
		for _, it := range items {
			counts[it.Kind]++
		}
	}
	count(c.Foreign)
	count(c.Implemented)

	fmt.Printf("total file size: %d bytes\n", fileSize)
	for k := item.Kind(0); k < item.KindEnd; k++ {
		if n := counts[k]; n > 0 {
			fmt.Printf("  %-20s %6d item(s)\n", k, n)
		}
	}
}

func writeScopeDump(path string, c *item.Container) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, h := range c.Index.Headers {
		fmt.Fprintf(f, "scope %d: [%d, %d)\n", i, h.IdxHeader.StartOffset, h.IdxHeader.EndOffset)
		fmt.Fprintf(f, "  class:  %d\n", len(h.IdxHeader.ClassIdx))
		fmt.Fprintf(f, "  method: %d\n", len(h.IdxHeader.MethodIdx))
		fmt.Fprintf(f, "  field:  %d\n", len(h.IdxHeader.FieldIdx))
		fmt.Fprintf(f, "  proto:  %d\n", len(h.IdxHeader.ProtoIdx))
	}
	return nil
}
