/*
	   comvm disassembler

		Copyright (c) 2024, Richard Cornwell

		Permission is hereby granted, free of charge, to any person obtaining a
		copy of this software and associated documentation files (the "Software"),
		to deal in the Software without restriction, including without limitation
		the rights to use, copy, modify, merge, publish, distribute, sublicense,
		and/or sell copies of the Software, and to permit persons to whom the
		Software is furnished to do so, subject to the following conditions:

		The above copyright notice and this permission notice shall be included in
		all copies or substantial portions of the Software.

		THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
		IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
		FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
		RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
		IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
		CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package disassemble renders one decoded 8086 instruction as text, for
// the interactive debugger (command package) and for the CPU's
// per-instruction trace. It is read-only: it never advances CPU state.
package disassemble

import (
	"fmt"
	"strings"

	mem "github.com/rcornwell/comvm/emu/memory"
	op "github.com/rcornwell/comvm/emu/opcodemap"
	hex "github.com/rcornwell/comvm/util/hex"
)

// Instruction is one decoded instruction: its address, raw bytes, and
// rendered text.
type Instruction struct {
	Addr  uint32
	Bytes []byte
	Text  string
}

var segName = [4]string{"ES", "CS", "SS", "DS"}

// One decodes the instruction at linear address a in m and returns it;
// the instruction's length is len(Bytes). An opcode absent
// from opcodemap.Table decodes as "??" and consumes one byte.
func One(m *mem.Image, a uint32) Instruction {
	start := a
	seg := -1

	opcode, _ := m.ReadByte(a)
	a++

	// Segment override prefixes are rendered folded onto the instruction
	// they modify, matching how the dispatcher treats them as transient
	// decode state rather than instructions of their own.
	for {
		switch opcode {
		case op.OpPrefixES:
			seg = 0
		case op.OpPrefixCS:
			seg = 1
		case op.OpPrefixSS:
			seg = 2
		case op.OpPrefixDS:
			seg = 3
		default:
			goto prefixDone
		}
		opcode, _ = m.ReadByte(a)
		a++
	}
prefixDone:

	entry, ok := op.Table[opcode]
	text := "??"
	if ok {
		text = entry.Mnemonic
		switch entry.Form {
		case op.FormImm8:
			b, _ := m.ReadByte(a)
			a++
			text = fmt.Sprintf("%s %02Xh", text, b)
		case op.FormImm16:
			w, _ := m.ReadWord(a)
			a += 2
			text = fmt.Sprintf("%s %04Xh", text, w)
		case op.FormRel8:
			b, _ := m.ReadByte(a)
			a++
			disp := int8(b)
			text = fmt.Sprintf("%s %+d", text, disp)
		case op.FormModRM:
			modrm, _ := m.ReadByte(a)
			a++
			mod := modrm >> 6
			if mod != 3 {
				switch {
				case mod == 1:
					a++
				case mod == 2:
					a += 2
				case mod == 0 && (modrm&7) == 6:
					a += 2
				}
			}
			text = fmt.Sprintf("%s [modrm=%02Xh]", text, modrm)
		}
	}

	if seg >= 0 {
		text = segName[seg] + ": " + text
	}

	raw := m.Bytes(start, int(a-start))
	return Instruction{Addr: start, Bytes: raw, Text: text}
}

// Line renders an Instruction the way a debugger listing does:
// "0100  B4 09        MOV r8,imm8 09h".
func (in Instruction) Line() string {
	var b strings.Builder
	hex.FormatBytes(&b, true, in.Bytes)
	return fmt.Sprintf("%04X  %-12s %s", in.Addr, strings.TrimSpace(b.String()), in.Text)
}
