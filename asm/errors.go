// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"runtime/debug"
)

// A ParseError describes a failure encountered while tokenizing, parsing,
// evaluating an expression, or resolving labels. It carries the token that
// was current when the failure occurred, and may wrap an earlier
// ParseError to form a cause chain (outermost first).
type ParseError struct {
	Msg   string
	Token Token
	cause error
}

func newParseError(tok Token, format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Token: tok}
}

func wrapParseError(tok Token, context string, cause error) *ParseError {
	return &ParseError{Msg: context, Token: tok, cause: cause}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Token, e.Msg)
}

// Unwrap lets errors.Is/errors.As walk the cause chain.
func (e *ParseError) Unwrap() error {
	return e.cause
}

// Chain returns every frame of the error from outermost to innermost, one
// per line. ParseError frames are formatted as "<token>: <message>", the
// same layout the assembler's original Python ancestor produced; a
// recovered panic is marked as an internal crash, and any other error
// (such as a file error from the CLI) is printed as its own message.
func Chain(err error) []string {
	var lines []string
	for err != nil {
		if pe, ok := err.(*ParseError); ok {
			lines = append(lines, pe.Error())
			err = pe.cause
			continue
		}
		if ce, ok := err.(*crashError); ok {
			lines = append(lines, fmt.Sprintf("internal crash: %s", ce))
		} else {
			lines = append(lines, err.Error())
		}
		break
	}
	return lines
}

// crashError wraps a recovered panic so that a coding defect surfaces as a
// plain error instead of terminating the process, with a stack trace
// attached for diagnosis.
type crashError struct {
	value interface{}
	stack []byte
}

func newCrashError(value interface{}) *crashError {
	return &crashError{value: value, stack: debug.Stack()}
}

func (e *crashError) Error() string {
	return fmt.Sprintf("assembler crash: %v\n%s", e.value, e.stack)
}
