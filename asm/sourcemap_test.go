// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceMapFromResultSortsLinesAndExports(t *testing.T) {
	r := &Result{
		Origin: Origin,
		Code:   []byte{0x60, 0x01, 0x00, 0xFD},
		Labels: map[string]int{"main": Origin, "loop": Origin + 2},
		SourceLines: []sourceLine{
			{address: Origin + 2, line: 2},
			{address: Origin, line: 1},
		},
	}

	m := NewSourceMapFromResult(r, "game.8o")

	require.Equal(t, []string{"game.8o"}, m.Files)
	require.Len(t, m.Lines, 2)
	assert.Equal(t, Origin, m.Lines[0].Address)
	assert.Equal(t, Origin+2, m.Lines[1].Address)

	require.Len(t, m.Exports, 2)
	assert.Equal(t, uint16(Origin), m.Exports[0].Address)
	assert.Equal(t, uint16(Origin+2), m.Exports[1].Address)
	assert.Equal(t, uint32(len(r.Code)), m.Size)
}

func TestSourceMapWriteToHeaderAndBody(t *testing.T) {
	m := &SourceMap{
		Origin:  0x200,
		Size:    4,
		CRC:     0x12345678,
		Files:   []string{"game.8o"},
		Lines:   []SourceLine{{Address: 0x200, FileIndex: 0, Line: 1}},
		Exports: []Export{{Label: "main", Address: 0x200}},
	}

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.Bytes()
	require.Equal(t, int64(len(out)), n)

	// Header: 4-byte signature, 2-byte version, then origin/size/crc and
	// the three table counts, all little-endian.
	assert.Equal(t, []byte("OCTM"), out[0:4])
	assert.Equal(t, byte(1), out[4]) // versionMajor
	assert.Equal(t, byte(0), out[5]) // versionMinor
	assert.Equal(t, []byte{0x00, 0x02}, out[6:8])             // Origin
	assert.Equal(t, []byte{0x04, 0, 0, 0}, out[8:12])         // Size
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, out[12:16]) // CRC
	assert.Equal(t, []byte{1, 0}, out[16:18])                 // file count
	assert.Equal(t, []byte{1, 0, 0, 0}, out[18:22])           // line count
	assert.Equal(t, []byte{1, 0, 0, 0}, out[22:26])           // export count

	rest := out[26:]
	// A single NUL-terminated file name.
	require.True(t, bytes.HasPrefix(rest, []byte("game.8o\x00")))
	rest = rest[len("game.8o\x00"):]

	// One source line delta-encoded against the zero-value SourceLine:
	// address delta 0x200 (encode67 with continuation into encode7), then
	// a single encode57 byte for line delta 1 with no file-index change.
	addrDelta := encode67Bytes(0x200)
	require.True(t, bytes.HasPrefix(rest, addrDelta))
	rest = rest[len(addrDelta):]
	assert.Equal(t, byte(0x01), rest[0])
	rest = rest[1:]

	// One export: NUL-terminated label then a little-endian uint16 address.
	require.True(t, bytes.HasPrefix(rest, []byte("main\x00")))
	rest = rest[len("main\x00"):]
	assert.Equal(t, []byte{0x00, 0x02}, rest)
}

// encode67Bytes mirrors encode67's bit-packing for a known positive value,
// used to assert the varint-encoded address delta without re-deriving the
// whole codec in the test.
func encode67Bytes(v int) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	encode67(w, v)
	w.Flush()
	return buf.Bytes()
}
