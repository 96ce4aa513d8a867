// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprTokens(expr string) []Token {
	fields := strings.Fields(expr)
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token{Text: f}
	}
	return tokens
}

func noRom(int) (float64, error) { panic("no rom provided") }

func evalExpr(t *testing.T, expr string) (float64, error) {
	t.Helper()
	tz := NewTokenizer(strings.NewReader(""), DefaultKeypadLayout())
	return tz.Eval(exprTokens(expr), noRom)
}

func TestCalcSimple(t *testing.T) {
	v, err := evalExpr(t, "4 + 3")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestCalcLong(t *testing.T) {
	v, err := evalExpr(t, "5 - 4 + 3")
	require.NoError(t, err)
	assert.Equal(t, -2.0, v)
}

func TestCalcUnary(t *testing.T) {
	v, err := evalExpr(t, "5 - - 4 + 3")
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)
}

func TestCalcGroup(t *testing.T) {
	v, err := evalExpr(t, "( 4 * 2 ) + 2")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestCalcGroup2(t *testing.T) {
	v, err := evalExpr(t, "4 * ( 2 + 2 )")
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)
}

func TestCalcNoGroup(t *testing.T) {
	v, err := evalExpr(t, "4 * 2 + 2")
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)
}

func TestCalcBadOpen(t *testing.T) {
	_, err := evalExpr(t, "( 4 * 2 + 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed group")
}

func TestCalcBadClose(t *testing.T) {
	_, err := evalExpr(t, "4 * 2 ) + 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected )")
}

func TestCalcDoubleNum(t *testing.T) {
	_, err := evalExpr(t, "4 4 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected number")
}

func TestCalcIncomplete(t *testing.T) {
	_, err := evalExpr(t, "+ 4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete expression")
}

func TestCalcDoubleOp(t *testing.T) {
	_, err := evalExpr(t, "3 + + 4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected number")
}

func TestCalcEmptyGroup(t *testing.T) {
	_, err := evalExpr(t, "( )")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete expression")
}

func TestCalcDoubleGroup(t *testing.T) {
	v, err := evalExpr(t, "( ( 1 ) ) + 3")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestCalcNestedGroup(t *testing.T) {
	v, err := evalExpr(t, "4 * ( 2 + ( 3 * ( 1 + 1 ) ) + 3 ) - 2")
	require.NoError(t, err)
	assert.Equal(t, 36.0, v)
}

func TestCalcStartUnaryNeg(t *testing.T) {
	v, err := evalExpr(t, "- 1 * 6")
	require.NoError(t, err)
	assert.Equal(t, -6.0, v)
}

func TestCalcRomLookup(t *testing.T) {
	tz := NewTokenizer(strings.NewReader(""), DefaultKeypadLayout())
	tz.consts["somewhere"] = 1
	tz.consts["another"] = 3
	rom := []float64{11, 2, 33, 44}
	lookup := func(n int) (float64, error) { return rom[n], nil }

	v, err := tz.Eval(exprTokens("2 * @ somewhere + @ somewhere"), lookup)
	require.NoError(t, err)
	assert.Equal(t, 88.0, v)
}

func TestCalcConstantsAndCalls(t *testing.T) {
	tz := NewTokenizer(strings.NewReader(""), DefaultKeypadLayout())
	tz.stack.push(newSpliceSource(nil), 3)

	v, err := tz.Eval(exprTokens("CALLS * 2"), noRom)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}
