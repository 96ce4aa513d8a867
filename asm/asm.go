// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a single-pass assembler for the CHIP-8/XO-CHIP
// "Octo" assembly language: a tokenizer, a right-to-left expression
// evaluator, a statement parser, and a backpatching byte emitter.
package asm

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Result holds everything the assembler produced from one source file:
// the ROM image plus the tables a CLI needs to write a symbol file or a
// source map.
type Result struct {
	Code        []byte
	Origin      int
	Labels      map[string]int
	Consts      map[string]float64
	Breakpoints map[string]Breakpoint
	Monitors    []Monitor
	SourceLines []sourceLine
}

// Assemble reads Octo source from r and assembles it into a CHIP-8 ROM
// image. layout supplies the OCTO_KEY_* seed values; pass
// DefaultKeypadLayout() for the standard mapping. In verbose mode, each
// stage logs a section banner and each parsed statement logs its source
// position, mirroring the teacher assembler's verbose trace.
//
// A panic during tokenizing, parsing, or resolution (a coding defect
// rather than a source error) is recovered and reported as an internal
// crash rather than allowed to bring down the caller.
func Assemble(r io.Reader, verbose bool, layout KeypadLayout) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newCrashError(rec)
		}
	}()

	tz := NewTokenizer(r, layout)
	prog := NewProgram()
	parser := NewParser(tz, prog)
	if verbose {
		parser.SetLogging(os.Stdout)
	}

	logSection(verbose, "Tokenizing and Parsing")
	if err := parser.Parse(); err != nil {
		return nil, err
	}

	logSection(verbose, "Resolving Labels")
	if err := prog.Resolve(); err != nil {
		return nil, err
	}

	logSection(verbose, "Generated Code")
	logBytes(verbose, prog.Bytes())

	return &Result{
		Code:        prog.Bytes(),
		Origin:      Origin,
		Labels:      prog.Labels,
		Consts:      tz.Consts(),
		Breakpoints: prog.Breakpoints,
		Monitors:    prog.Monitors,
		SourceLines: prog.SourceLines,
	}, nil
}

// logSection prints a banner the way the teacher's assembler announces
// each pipeline stage in verbose mode.
func logSection(verbose bool, name string) {
	if !verbose {
		return
	}
	fmt.Println(strings.Repeat("-", len(name)+6))
	fmt.Printf("-- %s --\n", name)
	fmt.Println(strings.Repeat("-", len(name)+6))
}

// logBytes prints the assembled image a few bytes per line, addressed
// from the CHIP-8 origin.
func logBytes(verbose bool, code []byte) {
	if !verbose {
		return
	}
	for i, n := 0, len(code); i < n; i += 8 {
		j := i + 8
		if j > n {
			j = n
		}
		fmt.Printf("%04X- %s\n", Origin+i, byteString(code[i:j]))
	}
}
