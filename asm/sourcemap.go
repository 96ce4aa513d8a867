// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"hash/crc32"
	"io"
	"slices"
)

const (
	sourceMapSignature = "OCTM"
	versionMajor       = 1
	versionMinor       = 0
)

// Export is a named address exposed by an assembled program, used by the
// source map's export table. CHIP-8 addresses fit in 16 bits, unlike the
// 6502's 16-bit-but-often-zero-page layout this container was originally
// built for; the encoding is unchanged, only the domain.
type Export struct {
	Label   string
	Address uint16
}

// A SourceMap describes the mapping between source code line numbers and
// assembly code addresses. Addresses are CHIP-8 addresses: 16 bits,
// always at or above Origin (0x200).
type SourceMap struct {
	Origin  uint16
	Size    uint32
	CRC     uint32
	Files   []string
	Lines   []SourceLine
	Exports []Export
}

// NewSourceMapFromResult builds a source map from one assembled program,
// treating filename as the single source file every recorded line came
// from. The CRC covers the assembled ROM image, so a consumer can detect
// a stale map before trusting its address-to-line data.
func NewSourceMapFromResult(r *Result, filename string) *SourceMap {
	m := &SourceMap{
		Origin: uint16(r.Origin),
		Size:   uint32(len(r.Code)),
		CRC:    crc32.ChecksumIEEE(r.Code),
		Files:  []string{filename},
	}
	for _, sl := range r.SourceLines {
		m.Lines = append(m.Lines, SourceLine{Address: sl.address, FileIndex: 0, Line: sl.line})
	}
	m.Lines = sortLines(m.Lines)
	for name, addr := range r.Labels {
		m.Exports = append(m.Exports, Export{Label: name, Address: uint16(addr)})
	}
	m.Exports = sortExports(m.Exports)
	return m
}

// A SourceLine represents a mapping between a machine code address and
// the source code file and line number used to generate it.
type SourceLine struct {
	Address   int // Machine code address
	FileIndex int // Source code file index
	Line      int // Source code line number
}

// Encoding flags
const (
	continued        byte = 1 << 7
	negative         byte = 1 << 6
	fileIndexChanged byte = 1 << 5
)

// WriteTo writes the contents of an assembly source map to an output
// stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	fileCount := uint16(len(s.Files))
	lineCount := uint32(len(s.Lines))
	exportCount := uint32(len(s.Exports))

	ww := bufio.NewWriter(w)

	var hdr [26]byte
	copy(hdr[:], []byte(sourceMapSignature))
	hdr[4] = versionMajor
	hdr[5] = versionMinor
	binary.LittleEndian.PutUint16(hdr[6:8], s.Origin)
	binary.LittleEndian.PutUint32(hdr[8:12], s.Size)
	binary.LittleEndian.PutUint32(hdr[12:16], s.CRC)
	binary.LittleEndian.PutUint16(hdr[16:18], fileCount)
	binary.LittleEndian.PutUint32(hdr[18:22], lineCount)
	binary.LittleEndian.PutUint32(hdr[22:26], exportCount)
	nn, err := ww.Write(hdr[:])
	n += int64(nn)
	if err != nil {
		return n, err
	}

	for _, f := range s.Files {
		nn, err = ww.WriteString(f)
		n += int64(nn)
		if err != nil {
			return n, err
		}
		err = ww.WriteByte(0)
		if err != nil {
			return 0, err
		}
		n++
	}

	if len(s.Lines) > 0 {
		var prev SourceLine
		for _, line := range s.Lines {
			nn, err = encodeSourceLine(ww, prev, line)
			n += int64(nn)
			if err != nil {
				return n, err
			}
			prev = line
		}
	}

	for _, e := range s.Exports {
		nn, err = ww.WriteString(e.Label)
		n += int64(nn)
		if err != nil {
			return n, err
		}
		ww.WriteByte(0)
		n++

		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], e.Address)
		nn, err = ww.Write(b[:])
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}

	ww.Flush()

	return n, nil
}

func encodeSourceLine(w *bufio.Writer, l0, l1 SourceLine) (n int, err error) {
	da := l1.Address - l0.Address
	df := l1.FileIndex - l0.FileIndex
	dl := l1.Line - l0.Line

	nn, err := encode67(w, da)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = encode57(w, dl, df != 0)
	n += nn
	if err != nil {
		return n, err
	}

	if df != 0 {
		nn, err = encode67(w, df)
		n += nn
	}
	return n, err
}

func encode7(w *bufio.Writer, v int) (n int, err error) {
	for v != 0 {
		var b byte
		if v >= 0x80 {
			b |= continued
		}
		b |= (byte(v) & 0x7f)

		err = w.WriteByte(b)
		if err != nil {
			return n, err
		}
		n++

		v >>= 7
	}
	return n, nil
}

func encode57(w *bufio.Writer, v int, f bool) (n int, err error) {
	var b byte
	if f {
		b |= fileIndexChanged
	}
	if v < 0 {
		b |= negative
		v = -v
	}
	if v >= 0x20 {
		b |= continued
	}

	b |= (byte(v) & 0x1f)
	err = w.WriteByte(b)
	if err != nil {
		return n, err
	}
	n++
	v >>= 5

	nn, err := encode7(w, v)
	n += nn
	return n, err
}

func encode67(w *bufio.Writer, v int) (n int, err error) {
	var b byte
	if v < 0 {
		b |= negative
		v = -v
	}
	if v >= 0x40 {
		b |= continued
	}

	b |= (byte(v) & 0x3f)
	err = w.WriteByte(b)
	if err != nil {
		return n, err
	}
	n++
	v >>= 6

	nn, err := encode7(w, v)
	n += nn
	return n, err
}

func sortLines(lines []SourceLine) []SourceLine {
	cmp := func(a, b SourceLine) int {
		return cmp.Compare(a.Address, b.Address)
	}
	slices.SortFunc(lines, cmp)
	return lines
}

func sortExports(exports []Export) []Export {
	cmp := func(a, b Export) int {
		return cmp.Compare(a.Address, b.Address)
	}
	slices.SortFunc(exports, cmp)
	return exports
}
