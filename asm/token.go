// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// A Token is a single whitespace-delimited field from the source text,
// along with the 1-based line and field position it was read from.
type Token struct {
	Text  string
	Line  int
	Field int
}

func (t Token) String() string {
	return fmt.Sprintf("`%s` (at line %d field %d)", t.Text, t.Line, t.Field)
}

// IsZero reports whether t is the zero Token, used as a sentinel for "no
// token available" in places that can't use a nil pointer.
func (t Token) IsZero() bool {
	return t.Text == "" && t.Line == 0 && t.Field == 0
}
