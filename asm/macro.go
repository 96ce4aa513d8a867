// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Macro holds the name, ordered parameter list, and unexpanded body
// tokens collected from a ":macro" directive, plus a running invocation
// counter that CALLS resolves to inside the body.
type Macro struct {
	Name   string
	Params []string
	Body   []Token
	calls  int
}

// substitute returns a copy of the macro body with each parameter token
// replaced by the corresponding argument token's text, preserving the
// original body token's source position so diagnostics still point at
// the macro definition site.
func (m *Macro) substitute(args map[string]Token) []Token {
	out := make([]Token, len(m.Body))
	for i, t := range m.Body {
		if arg, ok := args[t.Text]; ok {
			out[i] = Token{Text: arg.Text, Line: t.Line, Field: t.Field}
			continue
		}
		out[i] = t
	}
	return out
}
