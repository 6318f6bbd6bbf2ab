/*
   comvm CPU: fetch/decode/execute dispatcher

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
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

import (
	"log/slog"

	dis "github.com/rcornwell/comvm/emu/disassemble"
	op "github.com/rcornwell/comvm/emu/opcodemap"
)

// TickResult reports why Tick stopped, using the same three values as
// spec §7's tick contract: -1 on error, 0 on quantum exhaustion, 1 on
// done.
type TickResult int

const (
	TickError   TickResult = -1 // errors > 0
	TickQuantum TickResult = 0  // instruction budget exhausted
	TickDone    TickResult = 1  // program invoked INT 20h
	TickBreak   TickResult = 2  // halted on an armed breakpoint (debugger only)
)

// linear computes the 20-bit linear address for seg:ofs (spec §3).
func (c *State) linear(seg, ofs uint16) uint32 {
	return (uint32(seg) << 4) + uint32(ofs)
}

// fetchByte reads the byte at CS:IP and advances IP by one.
func (c *State) fetchByte() uint8 {
	a := c.linear(c.segs[SegCS], c.ip)
	c.ip++
	b, ok := c.mem.ReadByte(a)
	if !ok {
		c.errors++
	}
	return b
}

// fetchWord reads the little-endian word at CS:IP and advances IP by two.
func (c *State) fetchWord() uint16 {
	a := c.linear(c.segs[SegCS], c.ip)
	c.ip += 2
	w, ok := c.mem.ReadWord(a)
	if !ok {
		c.errors++
	}
	return w
}

// pushWord decrements SP by two and stores w at SS:SP (spec §4.1).
func (c *State) pushWord(w uint16) {
	c.regs[RegSP] -= 2
	a := c.linear(c.segs[SegSS], c.regs[RegSP])
	if !c.mem.WriteWord(a, w) {
		c.errors++
	}
}

// popWord loads the word at SS:SP and increments SP by two.
func (c *State) popWord() uint16 {
	a := c.linear(c.segs[SegSS], c.regs[RegSP])
	w, ok := c.mem.ReadWord(a)
	if !ok {
		c.errors++
	}
	c.regs[RegSP] += 2
	return w
}

// Tick executes up to n instructions, stopping early on termination or
// error (spec §4.6).
func (c *State) Tick(n int) TickResult {
	for n > 0 {
		if c.done {
			return TickDone
		}
		if c.errors > 0 {
			return TickError
		}
		if c.AtBreakpoint() {
			return TickBreak
		}
		c.step()
		n--
	}
	if c.done {
		return TickDone
	}
	if c.errors > 0 {
		return TickError
	}
	return TickQuantum
}

// step executes exactly one full instruction: it resets the segment
// override, handles any run of prefix bytes, and dispatches the opcode
// that follows (spec §4.3).
func (c *State) step() {
	c.override = segNone
	startIP := c.ip

	var opcode uint8
	for {
		opcode = c.fetchByte()
		switch opcode {
		case op.OpPrefixES:
			c.override = segOverES
		case op.OpPrefixCS:
			c.override = segOverCS
		case op.OpPrefixSS:
			c.override = segOverSS
		case op.OpPrefixDS:
			c.override = segOverDS
		default:
			goto decoded
		}
	}
decoded:
	if c.trace != nil {
		startAddr := c.linear(c.segs[SegCS], startIP)
		c.trace(dis.One(c.mem, startAddr).Line())
	}
	c.execute(opcode)
}

var arithBases = map[uint8]bool{
	op.OpAdd: true, op.OpOr: true, op.OpAdc: true, op.OpSbb: true,
	op.OpAnd: true, op.OpSub: true, op.OpXor: true,
}

// execute dispatches a single already-fetched opcode byte.
func (c *State) execute(opcode uint8) {
	base := opcode &^ 0x07
	form := opcode & 0x07
	if form <= 5 && arithBases[base] {
		c.executeArith(int(base), form)
		return
	}

	switch {
	case opcode >= op.OpPushRegBase && opcode < op.OpPushRegBase+8:
		c.executePushReg(opcode - op.OpPushRegBase)
		return
	case opcode >= op.OpPopRegBase && opcode < op.OpPopRegBase+8:
		idx := opcode - op.OpPopRegBase
		c.regs[idx] = c.popWord()
		return
	case opcode >= op.OpJccBase && opcode < op.OpJccBase+16:
		c.executeJcc(opcode - op.OpJccBase)
		return
	case opcode >= op.OpMovRegImm8 && opcode < op.OpMovRegImm8+8:
		c.SetReg8(opcode-op.OpMovRegImm8, c.fetchByte())
		return
	case opcode >= op.OpMovRegImm16 && opcode < op.OpMovRegImm16+8:
		c.regs[opcode-op.OpMovRegImm16] = c.fetchWord()
		return
	}

	switch opcode {
	case op.OpPushES:
		c.pushWord(c.segs[SegES])
	case op.OpPopES:
		c.segs[SegES] = c.popWord()
	case op.OpPushCS:
		c.pushWord(c.segs[SegCS])
	case op.OpPushSS:
		c.pushWord(c.segs[SegSS])
	case op.OpPopSS:
		c.segs[SegSS] = c.popWord()
	case op.OpPushDS:
		c.pushWord(c.segs[SegDS])
	case op.OpPopDS:
		c.segs[SegDS] = c.popWord()

	case op.OpDAA:
		c.daa()
	case op.OpDAS:
		c.das()

	case op.OpPushImm16:
		c.pushWord(c.fetchWord())
	case op.OpPushImm8:
		c.pushWord(uint16(int16(int8(c.fetchByte()))))

	case op.OpMovRm8Reg8:
		c.executeMov(width8, true)
	case op.OpMovRm16Reg16:
		c.executeMov(width16, true)
	case op.OpMovReg8Rm8:
		c.executeMov(width8, false)
	case op.OpMovReg16Rm16:
		c.executeMov(width16, false)

	case op.OpInt:
		c.interrupt(c.fetchByte())

	case op.OpLoop:
		disp := int8(c.fetchByte())
		c.regs[RegCX]--
		if c.regs[RegCX] != 0 {
			c.ip = uint16(int32(c.ip) + int32(disp))
		}

	case op.OpGroupFE:
		c.executeGroupFE()
	case op.OpGroupFF:
		c.executeGroupFF()

	default:
		c.errors++
		slog.Warn("unknown opcode", "opcode", opcode)
	}
}

// executeArith handles the four ModR/M forms plus the two immediate
// short forms of one arithmetic family (spec §4.3).
func (c *State) executeArith(base int, form uint8) {
	switch form {
	case 0, 1:
		w := width8
		if form == 1 {
			w = width16
		}
		modrm := c.fetchByte()
		rm := c.modRM(modrm, w)
		reg := (modrm >> 3) & 0x07
		a := c.readOperand(rm)
		b := c.readReg(reg, w)
		result := c.aluApply(base, a, b, w)
		c.writeOperand(rm, result)
	case 2, 3:
		w := width8
		if form == 3 {
			w = width16
		}
		modrm := c.fetchByte()
		rm := c.modRM(modrm, w)
		reg := (modrm >> 3) & 0x07
		a := c.readReg(reg, w)
		b := c.readOperand(rm)
		result := c.aluApply(base, a, b, w)
		c.writeReg(reg, w, result)
	case 4:
		a := uint16(c.Reg8(0))
		b := uint16(c.fetchByte())
		c.SetReg8(0, uint8(c.aluApply(base, a, b, width8)))
	case 5:
		a := c.regs[RegAX]
		b := c.fetchWord()
		c.regs[RegAX] = c.aluApply(base, a, b, width16)
	}
}

func (c *State) readReg(i uint8, w width) uint16 {
	if w == width8 {
		return uint16(c.Reg8(i))
	}
	return c.regs[i]
}

func (c *State) writeReg(i uint8, w width, v uint16) {
	if w == width8 {
		c.SetReg8(i, uint8(v))
	} else {
		c.regs[i] = v
	}
}

// executeMov implements the 0x88..0x8B MOV family. toRM selects whether
// the register field is written into r/m (0x88/0x89) or r/m is read into
// the register field (0x8A/0x8B), per Intel convention (spec §9).
func (c *State) executeMov(w width, toRM bool) {
	modrm := c.fetchByte()
	rm := c.modRM(modrm, w)
	reg := (modrm >> 3) & 0x07
	if toRM {
		c.writeOperand(rm, c.readReg(reg, w))
	} else {
		c.writeReg(reg, w, c.readOperand(rm))
	}
}

// executePushReg implements PUSH r16 for 0x50..0x57, special-casing SP
// to push SP-2 rather than the pre-decrement value (spec §4.1, §9).
func (c *State) executePushReg(idx uint8) {
	if idx == RegSP {
		c.pushWord(c.regs[RegSP] - 2)
		return
	}
	c.pushWord(c.regs[idx])
}

// jccTaken evaluates the condition of short jump index idx (0x70+idx)
// against the current flags (spec §8).
func (c *State) jccTaken(idx uint8) bool {
	of := c.FlagSet(FlagOF)
	cf := c.FlagSet(FlagCF)
	zf := c.FlagSet(FlagZF)
	sf := c.FlagSet(FlagSF)
	pf := c.FlagSet(FlagPF)

	switch idx {
	case 0: // JO
		return of
	case 1: // JNO
		return !of
	case 2: // JB/JC
		return cf
	case 3: // JNB/JNC
		return !cf
	case 4: // JE/JZ
		return zf
	case 5: // JNE/JNZ
		return !zf
	case 6: // JBE/JNA
		return cf || zf
	case 7: // JA/JNBE
		return !cf && !zf
	case 8: // JS
		return sf
	case 9: // JNS
		return !sf
	case 10: // JP/JPE
		return pf
	case 11: // JPO/JNP
		return !pf
	case 12: // JL/JNGE
		return sf != of
	case 13: // JGE/JNL
		return sf == of
	case 14: // JLE/JNG
		return zf || sf != of
	case 15: // JG/JNLE
		return !zf && sf == of
	}
	return false
}

func (c *State) executeJcc(idx uint8) {
	disp := int8(c.fetchByte())
	if c.jccTaken(idx) {
		c.ip = uint16(int32(c.ip) + int32(disp))
	}
}

// executeGroupFE implements the 0xFE byte group: INC/DEC r/m8.
func (c *State) executeGroupFE() {
	modrm := c.fetchByte()
	n := (modrm >> 3) & 0x07
	o := c.modRM(modrm, width8)
	switch n {
	case 0:
		c.incOperand(o)
	case 1:
		c.decOperand(o)
	default:
		c.errors++
		slog.Warn("unknown 0xFE subopcode", "n", n)
	}
}

// executeGroupFF implements the subset of the 0xFF word group this core
// supports: INC/DEC/PUSH r/m16 (spec §4.3).
func (c *State) executeGroupFF() {
	modrm := c.fetchByte()
	n := (modrm >> 3) & 0x07
	o := c.modRM(modrm, width16)
	switch n {
	case 0:
		c.incOperand(o)
	case 1:
		c.decOperand(o)
	case 6:
		c.pushWord(c.readOperand(o))
	default:
		c.errors++
		slog.Warn("unknown 0xFF subopcode", "n", n)
	}
}
