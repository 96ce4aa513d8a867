// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// keyNames lists the sixteen OCTO_KEY_* constant names in the order the
// default (COSMAC VIP-derived) keypad layout maps them to nybbles 0x0-0xF.
var keyNames = []string{
	"X", "1", "2", "3", "Q", "W", "E", "A", "S", "D", "Z", "C", "4", "R", "F", "V",
}

// KeypadLayout maps each of the sixteen key names above to a nybble value.
// The default layout is the identity of keyNames' index order; a
// configuration file may supply an alternate ordering.
type KeypadLayout [16]int

// DefaultKeypadLayout returns the standard seed order: key name at index i
// maps to nybble i.
func DefaultKeypadLayout() KeypadLayout {
	var layout KeypadLayout
	for i := range layout {
		layout[i] = i
	}
	return layout
}

// A Tokenizer turns source text into a stream of Tokens and owns the
// symbol tables (named constants and named registers) that the rest of
// the assembler consults while resolving identifiers. Constants are
// stored as float64 because a handful of seeded/derived values (PI, E,
// and anything computed with sin/cos/pow in an expression) are
// irrational; every consumer that needs an integer truncates at the
// point it accepts a ranged operand.
type Tokenizer struct {
	stack     *sourceStack
	consts    map[string]float64
	registers map[string]int
	current   Token
	unread    *Token // one-token pushback buffer
}

// NewTokenizer creates a tokenizer over r, seeding its constant and
// register tables with the standard values. layout overrides the
// OCTO_KEY_* seed values; pass DefaultKeypadLayout() for the standard
// mapping.
func NewTokenizer(r io.Reader, layout KeypadLayout) *Tokenizer {
	t := &Tokenizer{
		stack:     newSourceStack(newLineSource(r)),
		consts:    make(map[string]float64),
		registers: make(map[string]int),
	}
	t.consts["PI"] = math.Pi
	t.consts["E"] = math.E
	for i, name := range keyNames {
		t.consts["OCTO_KEY_"+name] = float64(layout[i])
	}
	const hexDigits = "0123456789ABCDEF"
	for i := 0; i < 16; i++ {
		hexDigit := hexDigits[i : i+1]
		t.registers["v"+strings.ToLower(hexDigit)] = i
		t.registers["v"+hexDigit] = i
	}
	return t
}

// Consts exposes the constant table for symbol-file emission.
func (t *Tokenizer) Consts() map[string]float64 {
	return t.consts
}

// Current returns the most recently produced token.
func (t *Tokenizer) Current() Token {
	return t.current
}

// Advance consumes and returns the next token, or the zero Token with ok
// == false at end of input.
func (t *Tokenizer) Advance() (Token, bool) {
	if t.unread != nil {
		t.current = *t.unread
		t.unread = nil
		return t.current, true
	}
	tok, ok := t.stack.advance()
	if !ok {
		return Token{}, false
	}
	t.current = tok
	return tok, true
}

// Unadvance pushes the current token back so the next Advance returns it
// again. Only one token of pushback is supported.
func (t *Tokenizer) Unadvance() {
	tok := t.current
	t.unread = &tok
}

// SpliceMacro temporarily replaces the active token source with body
// (already parameter-substituted), binding CALLS to callCount for the
// duration. When body is exhausted, the tokenizer transparently resumes
// the source that was active before the splice.
func (t *Tokenizer) SpliceMacro(body []Token, callCount int) {
	t.stack.push(newSpliceSource(body), callCount)
}

// ExpectIdent requires the current token to be a valid identifier: its
// first character must not be a digit, since that would make it parse as
// a number instead.
func (t *Tokenizer) ExpectIdent() (string, error) {
	text := t.current.Text
	if text == "" || (text[0] >= '0' && text[0] <= '9') {
		return "", newParseError(t.current, "expected an identifier")
	}
	return text, nil
}

// AcceptRegister returns the register nybble for the current token, or
// false if it doesn't name a register.
func (t *Tokenizer) AcceptRegister() (int, bool) {
	n, ok := t.registers[t.current.Text]
	return n, ok
}

// ExpectRegister requires the current token to name a register.
func (t *Tokenizer) ExpectRegister() (int, error) {
	n, ok := t.AcceptRegister()
	if !ok {
		return 0, newParseError(t.current, "expected a register")
	}
	return n, nil
}

// parseNumber attempts to resolve the current token as a number via
// CALLS, the constant table, or literal parsing. ok is false if the
// token names neither.
func (t *Tokenizer) parseNumber() (float64, error, bool) {
	text := t.current.Text
	if text == "CALLS" {
		n, active := t.stack.topCalls()
		if !active {
			return 0, newParseError(t.current, "CALLS used outside of a macro"), true
		}
		return float64(n), nil, true
	}
	if v, ok := t.consts[text]; ok {
		return v, nil, true
	}
	n, ok := parseLiteral(text)
	if !ok {
		return 0, nil, false
	}
	return float64(n), nil, true
}

// parseLiteral parses a signed integer literal with auto-radix prefixes
// (0x/0X hex, 0b/0B binary, 0o/0O octal); a bare leading zero is always
// decimal, never octal.
func parseLiteral(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	neg := false
	s := text
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		base, s = 8, s[2:]
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return int(v), true
}

func (t *Tokenizer) acceptRanged(low, high, mask int) (int, error, bool) {
	f, err, ok := t.parseNumber()
	if !ok {
		return 0, nil, false
	}
	if err != nil {
		return 0, err, true
	}
	v := int(math.Trunc(f))
	if v < low || v > high {
		return 0, newParseError(t.current, "number %d out of range [%d, %d]", v, low, high), true
	}
	return v & mask, nil, true
}

// AcceptNybble returns the current token's value masked to 4 bits if it
// is an in-range number.
func (t *Tokenizer) AcceptNybble() (int, error, bool) { return t.acceptRanged(-0x7, 0xF, 0xF) }

// AcceptByte returns the current token's value masked to 8 bits if it is
// an in-range number.
func (t *Tokenizer) AcceptByte() (int, error, bool) { return t.acceptRanged(-0x7F, 0xFF, 0xFF) }

// AcceptAddress returns the current token's value masked to 12 bits if it
// is an in-range number.
func (t *Tokenizer) AcceptAddress() (int, error, bool) { return t.acceptRanged(-0x7FF, 0xFFF, 0xFFF) }

// AcceptLongAddress returns the current token's value masked to 16 bits
// if it is an in-range number.
func (t *Tokenizer) AcceptLongAddress() (int, error, bool) {
	return t.acceptRanged(-0x7FFF, 0xFFFF, 0xFFFF)
}

func (t *Tokenizer) expectRanged(kind string, accept func() (int, error, bool)) (int, error) {
	v, err, ok := accept()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, newParseError(t.current, "expected a %s", kind)
	}
	return v, nil
}

// ExpectNybble requires the current token to be an in-range nybble literal.
func (t *Tokenizer) ExpectNybble() (int, error) { return t.expectRanged("nybble", t.AcceptNybble) }

// ExpectByte requires the current token to be an in-range byte literal.
func (t *Tokenizer) ExpectByte() (int, error) { return t.expectRanged("byte", t.AcceptByte) }

// ExpectAddress requires the current token to be an in-range address literal.
func (t *Tokenizer) ExpectAddress() (int, error) { return t.expectRanged("address", t.AcceptAddress) }

// ExpectLongAddress requires the current token to be an in-range 16-bit literal.
func (t *Tokenizer) ExpectLongAddress() (int, error) {
	return t.expectRanged("long address", t.AcceptLongAddress)
}

// ExpectNumber requires the current token to resolve to any number (via
// CALLS, a named constant, or a literal), with no range restriction.
func (t *Tokenizer) ExpectNumber() (float64, error) {
	v, err, ok := t.parseNumber()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, newParseError(t.current, "expected a number")
	}
	return v, nil
}

// location is either a resolved address (isNum==true) or an identifier
// token to be resolved later by the emitter against the label table.
type location struct {
	addr  int
	token Token
	isNum bool
}

// ExpectLocation accepts either an in-range 12-bit address literal or an
// identifier, for use by jump/call-style operands.
func (t *Tokenizer) ExpectLocation() (location, error) {
	if v, err, ok := t.AcceptAddress(); ok {
		if err != nil {
			return location{}, err
		}
		return location{addr: v, isNum: true}, nil
	}
	name, err := t.ExpectIdent()
	if err != nil {
		return location{}, newParseError(t.current, "expected a number or identifier to start a statement. (Is there an error just before this?)")
	}
	return location{token: Token{Text: name, Line: t.current.Line, Field: t.current.Field}}, nil
}

// ExpectLongLocation is ExpectLocation widened to a full 16-bit literal,
// used by "i := long".
func (t *Tokenizer) ExpectLongLocation() (location, error) {
	if v, err, ok := t.AcceptLongAddress(); ok {
		if err != nil {
			return location{}, err
		}
		return location{addr: v, isNum: true}, nil
	}
	name, err := t.ExpectIdent()
	if err != nil {
		return location{}, err
	}
	return location{token: Token{Text: name, Line: t.current.Line, Field: t.current.Field}}, nil
}

// The Next* family advances to a fresh token and then applies the
// corresponding Expect*, the common case at every statement boundary.

func (t *Tokenizer) NextIdent() (string, error) {
	if _, ok := t.Advance(); !ok {
		return "", newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectIdent()
}

func (t *Tokenizer) NextRegister() (int, error) {
	if _, ok := t.Advance(); !ok {
		return 0, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectRegister()
}

func (t *Tokenizer) NextNybble() (int, error) {
	if _, ok := t.Advance(); !ok {
		return 0, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectNybble()
}

func (t *Tokenizer) NextByte() (int, error) {
	if _, ok := t.Advance(); !ok {
		return 0, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectByte()
}

func (t *Tokenizer) NextLongAddress() (int, error) {
	if _, ok := t.Advance(); !ok {
		return 0, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectLongAddress()
}

func (t *Tokenizer) NextNumber() (float64, error) {
	if _, ok := t.Advance(); !ok {
		return 0, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectNumber()
}

func (t *Tokenizer) NextLocation() (location, error) {
	if _, ok := t.Advance(); !ok {
		return location{}, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectLocation()
}

func (t *Tokenizer) NextLongLocation() (location, error) {
	if _, ok := t.Advance(); !ok {
		return location{}, newParseError(t.current, "unexpected end of input")
	}
	return t.ExpectLongLocation()
}
