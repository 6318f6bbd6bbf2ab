/*
 * comvm - Low level memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the flat byte-addressable image a real-mode
// 8086 core reads and writes through segment:offset linear addresses.
package memory

import "io"

const (
	// MinCapacity is the smallest memory image this package will build.
	MinCapacity = 256 * 1024

	// MaxCapacity is the largest memory image this package will build,
	// matching the 1MiB real-mode address space.
	MaxCapacity = 1024 * 1024

	// ParagraphShift converts a paragraph number to a byte offset.
	ParagraphShift = 4

	byteSentinel uint8  = 0xff
	wordSentinel uint16 = 0xffff
)

// Image is a flat byte-addressable memory of fixed capacity. Linear
// addresses outside [0, Top()) read as all-ones and drop writes; callers
// are responsible for counting the resulting errors (see emu/cpu).
type Image struct {
	buf []byte
	top uint32
}

// New allocates a memory image of the given capacity in bytes, clamped to
// [MinCapacity, MaxCapacity]. baseOffset reserves that many bytes at the
// top of the image, per spec §3's TOP = CAP - BASE_OFFSET: addresses in
// [0, capacity-baseOffset) are addressable, the rest read as the
// out-of-range sentinel. Pass 0 when no reservation applies.
func New(capacity int, baseOffset uint32) *Image {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	top := uint32(capacity)
	if baseOffset < top {
		top -= baseOffset
	} else {
		top = 0
	}
	return &Image{
		buf: make([]byte, capacity),
		top: top,
	}
}

// Top returns the first linear address that is out of range.
func (m *Image) Top() uint32 {
	return m.top
}

// inRange reports whether a single byte at a is addressable.
func (m *Image) inRange(a uint32) bool {
	return a < m.top
}

// ReadByte returns the byte at a and whether a was in range. Out-of-range
// reads return the all-ones sentinel.
func (m *Image) ReadByte(a uint32) (uint8, bool) {
	if !m.inRange(a) {
		return byteSentinel, false
	}
	return m.buf[a], true
}

// ReadWord returns the little-endian word at a and whether both bytes of
// the access were in range.
func (m *Image) ReadWord(a uint32) (uint16, bool) {
	if !m.inRange(a) || !m.inRange(a+1) {
		return wordSentinel, false
	}
	return uint16(m.buf[a]) | uint16(m.buf[a+1])<<8, true
}

// WriteByte stores b at a. Out-of-range writes are dropped.
func (m *Image) WriteByte(a uint32, b uint8) bool {
	if !m.inRange(a) {
		return false
	}
	m.buf[a] = b
	return true
}

// WriteWord stores w little-endian at a. Out-of-range writes are dropped;
// a partially in-range word access still writes nothing.
func (m *Image) WriteWord(a uint32, w uint16) bool {
	if !m.inRange(a) || !m.inRange(a+1) {
		return false
	}
	m.buf[a] = uint8(w)
	m.buf[a+1] = uint8(w >> 8)
	return true
}

// LoadAt copies bytes from r into the image starting at offset, stopping
// at EOF or at Top(). Oversized input is silently truncated.
func (m *Image) LoadAt(r io.Reader, offset uint32) (int, error) {
	if offset >= m.top {
		return 0, nil
	}
	n, err := io.ReadFull(r, m.buf[offset:m.top])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return n, err
}

// Bytes returns count bytes starting at a for the disassembler and the
// debugger's hex dump; bytes at or past Top() read as zero.
func (m *Image) Bytes(a uint32, count int) []byte {
	out := make([]byte, count)
	for i := range out {
		if b, ok := m.ReadByte(a + uint32(i)); ok {
			out[i] = b
		}
	}
	return out
}

// SegOfs computes the 20-bit linear address for a segment:offset pair.
func SegOfs(seg, ofs uint16) uint32 {
	return (uint32(seg) << ParagraphShift) + uint32(ofs)
}
