// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "math"

// RomLookup resolves the "@" unary operator: it reads the byte the
// assembler has emitted so far at the given address. It is bound fresh
// for every expression evaluation since the program may have grown since
// the last one.
type RomLookup func(addr int) (float64, error)

// exprCursor walks an expression's tokens in reverse source order;
// newExprCursor does the reversal. That right-to-left order is what the
// single trailing accumulator requires: each operator combines the operand
// on its left with the value accumulated from everything on its right.
type exprCursor struct {
	tokens []Token
	pos    int
	last   Token
}

func newExprCursor(tokens []Token) *exprCursor {
	reversed := make([]Token, len(tokens))
	for i, t := range tokens {
		reversed[len(tokens)-1-i] = t
	}
	return &exprCursor{tokens: reversed}
}

func (c *exprCursor) advance() (Token, bool) {
	if c.pos >= len(c.tokens) {
		return Token{}, false
	}
	tok := c.tokens[c.pos]
	c.pos++
	c.last = tok
	return tok, true
}

// Eval evaluates expr as an arithmetic/bitwise expression using the
// tokenizer's constant table (and CALLS binding) to resolve identifiers,
// and lookup to resolve the "@" ROM-read operator.
func (t *Tokenizer) Eval(expr []Token, lookup RomLookup) (float64, error) {
	cur := newExprCursor(expr)
	return calc(t, cur, lookup, nil)
}

// calc is the right-to-left single-accumulator expression algorithm: a
// pending operator slot plus one running result, fed tokens newest
// (rightmost in source order) first. groupOpen, when non-nil, is the ")"
// token that opened this nested call; the call returns when it consumes
// the matching "(".
func calc(t *Tokenizer, cur *exprCursor, lookup RomLookup, groupOpen *Token) (float64, error) {
	result := 0.0
	pending := "+"

	tok, ok := cur.advance()
	for ok {
		if tok.Text == "(" {
			if groupOpen == nil {
				return 0, newParseError(tok, "unclosed group")
			}
			break
		}

		if pending != "" {
			var (
				num   float64
				isNum bool
				err   error
			)
			if tok.Text == ")" {
				num, err = calc(t, cur, lookup, &tok)
				if err != nil {
					return 0, err
				}
				isNum = true
			} else {
				num, err, isNum = t.resolveTokenNumber(tok)
				if err != nil {
					return 0, err
				}
			}

			if !isNum {
				if !isUnaryOp(pending) || !isBinaryOp(tok.Text) {
					return 0, newParseError(tok, "expected number")
				}
				var err error
				result, err = applyUnary(pending, result, lookup, tok)
				if err != nil {
					return 0, err
				}
				pending = tok.Text
			} else {
				if !isBinaryOp(pending) {
					return 0, newParseError(tok, "unexpected number")
				}
				result = applyBinary(pending, num, result)
				pending = ""
			}
		} else {
			pending = tok.Text
		}

		tok, ok = cur.advance()
	}

	if isUnaryOp(pending) {
		var err error
		result, err = applyUnary(pending, result, lookup, cur.last)
		if err != nil {
			return 0, err
		}
		pending = ""
	}
	if isBinaryOp(pending) {
		return 0, newParseError(cur.last, "incomplete expression")
	}
	if groupOpen != nil && (!ok || tok.Text != "(") {
		return 0, newParseError(*groupOpen, "unexpected )")
	}

	return result, nil
}

// resolveTokenNumber is parseNumber generalized to an arbitrary token
// rather than the tokenizer's current one, so the expression evaluator
// can resolve identifiers inside an expression slice without disturbing
// the tokenizer's own advance/unadvance state.
func (t *Tokenizer) resolveTokenNumber(tok Token) (float64, error, bool) {
	if tok.Text == "CALLS" {
		n, active := t.stack.topCalls()
		if !active {
			return 0, newParseError(tok, "CALLS used outside of a macro"), true
		}
		return float64(n), nil, true
	}
	if v, ok := t.consts[tok.Text]; ok {
		return v, nil, true
	}
	n, ok := parseLiteral(tok.Text)
	if !ok {
		return 0, nil, false
	}
	return float64(n), nil, true
}

func isBinaryOp(op string) bool {
	_, ok := binaryOps[op]
	return ok
}

func isUnaryOp(op string) bool {
	if op == "@" {
		return true
	}
	_, ok := unaryOps[op]
	return ok
}

func applyBinary(op string, num, result float64) float64 {
	return binaryOps[op](num, result)
}

func applyUnary(op string, result float64, lookup RomLookup, tok Token) (float64, error) {
	if op == "@" {
		if lookup == nil {
			return 0, newParseError(tok, "no rom provided for @ lookup")
		}
		return lookup(int(math.Trunc(result)))
	}
	fn, ok := unaryOps[op]
	if !ok {
		return 0, newParseError(tok, "unknown unary operator %q", op)
	}
	return fn(result), nil
}

// binaryOps mirrors the original evaluator's convention: bin[op](num,
// result) - the operand just read is the left-hand argument, the
// accumulator built up so far is the right-hand argument.
var binaryOps = map[string]func(num, result float64) float64{
	"-":   func(n, r float64) float64 { return n - r },
	"+":   func(n, r float64) float64 { return n + r },
	"*":   func(n, r float64) float64 { return n * r },
	"/":   func(n, r float64) float64 { return n / r },
	"%":   func(n, r float64) float64 { return math.Mod(n, r) },
	"&":   func(n, r float64) float64 { return float64(int64(n) & int64(r)) },
	"|":   func(n, r float64) float64 { return float64(int64(n) | int64(r)) },
	"^":   func(n, r float64) float64 { return float64(int64(n) ^ int64(r)) },
	"<<":  func(n, r float64) float64 { return float64(int64(n) << uint(int64(r))) },
	">>":  func(n, r float64) float64 { return float64(int64(n) >> uint(int64(r))) },
	"pow": func(n, r float64) float64 { return math.Pow(n, r) },
	"min": func(n, r float64) float64 { return math.Min(n, r) },
	"max": func(n, r float64) float64 { return math.Max(n, r) },
	">":   func(n, r float64) float64 { return boolf(n > r) },
	"<":   func(n, r float64) float64 { return boolf(n < r) },
	">=":  func(n, r float64) float64 { return boolf(n >= r) },
	"<=":  func(n, r float64) float64 { return boolf(n <= r) },
}

var unaryOps = map[string]func(float64) float64{
	"-":    func(n float64) float64 { return -n },
	"~":    func(n float64) float64 { return float64(^int64(n)) },
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"log":  math.Log,
	"abs":  math.Abs,
	"sqrt": math.Sqrt,
	"sign": func(n float64) float64 {
		switch {
		case n < 0:
			return -1
		case n > 0:
			return 1
		default:
			return 0
		}
	},
	"ceil":  math.Ceil,
	"floor": math.Floor,
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
