/*
   comvm arithmetic/logic execution and flag computation

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

import op "github.com/rcornwell/comvm/emu/opcodemap"

func familyMask(w width) uint16 {
	if w == width8 {
		return 0xFF
	}
	return 0xFFFF
}

func signBit(w width) uint16 {
	if w == width8 {
		return 0x80
	}
	return 0x8000
}

func parity(v uint8) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// setLogicFlags updates CF/OF/ZF/SF/PF for AND/OR/XOR per 8086 semantics
// (CF and OF always cleared); AF is left undefined by the real chip, so
// it is simply preserved.
func (c *State) setLogicFlags(result uint16, w width) {
	mask := familyMask(w)
	result &= mask
	c.SetFlag(FlagCF, false)
	c.SetFlag(FlagOF, false)
	c.SetFlag(FlagZF, result == 0)
	c.SetFlag(FlagSF, result&signBit(w) != 0)
	c.SetFlag(FlagPF, parity(uint8(result)))
}

// setArithFlags updates CF/OF/ZF/SF/PF/AF for an add (sub=false) or
// subtract (sub=true) of b (plus carryIn for ADC/SBB) from/to a,
// producing result, all already masked to w's width.
func (c *State) setArithFlags(a, b, carryIn, result uint16, w width, sub bool) {
	mask := familyMask(w)
	sign := signBit(w)
	a &= mask
	b &= mask
	result &= mask

	c.SetFlag(FlagZF, result == 0)
	c.SetFlag(FlagSF, result&sign != 0)
	c.SetFlag(FlagPF, parity(uint8(result)))
	c.SetFlag(FlagAF, (a^b^result)&0x10 != 0)

	if sub {
		borrow := uint32(a) < uint32(b)+uint32(carryIn)
		c.SetFlag(FlagCF, borrow)
		aSign := a&sign != 0
		bSign := b&sign != 0
		rSign := result&sign != 0
		c.SetFlag(FlagOF, aSign != bSign && rSign != aSign)
	} else {
		sum := uint32(a) + uint32(b) + uint32(carryIn)
		c.SetFlag(FlagCF, sum > uint32(mask))
		aSign := a&sign != 0
		bSign := b&sign != 0
		rSign := result&sign != 0
		c.SetFlag(FlagOF, aSign == bSign && rSign != aSign)
	}
}

// aluApply performs the family selected by base on a OP b and returns the
// masked result, updating flags. base is one of op.OpAdd..op.OpXor.
func (c *State) aluApply(base int, a, b uint16, w width) uint16 {
	mask := familyMask(w)
	var result uint16

	switch base {
	case op.OpAdd:
		result = (a + b) & mask
		c.setArithFlags(a, b, 0, result, w, false)
	case op.OpAdc:
		carry := uint16(0)
		if c.FlagSet(FlagCF) {
			carry = 1
		}
		result = (a + b + carry) & mask
		c.setArithFlags(a, b, carry, result, w, false)
	case op.OpSub:
		result = (a - b) & mask
		c.setArithFlags(a, b, 0, result, w, true)
	case op.OpSbb:
		borrow := uint16(0)
		if c.FlagSet(FlagCF) {
			borrow = 1
		}
		result = (a - b - borrow) & mask
		c.setArithFlags(a, b, borrow, result, w, true)
	case op.OpAnd:
		result = a & b
		c.setLogicFlags(result, w)
	case op.OpOr:
		result = a | b
		c.setLogicFlags(result, w)
	case op.OpXor:
		result = a ^ b
		c.setLogicFlags(result, w)
	}
	return result
}

// daa applies decimal-adjust-after-addition to AL (spec §4.3, §9): an
// approximation that only guarantees CF/AF track the adjustment, not a
// full 8086-correct pre-adjustment CF computation.
func (c *State) daa() {
	al := c.Reg8(0)
	cf := c.FlagSet(FlagCF)
	af := c.FlagSet(FlagAF)

	if af || al&0x0F > 9 {
		al += 6
		af = true
	}
	if cf || al > 0x9F {
		al += 0x60
		cf = true
	}

	c.SetReg8(0, al)
	c.SetFlag(FlagAF, af)
	c.SetFlag(FlagCF, cf)
	c.SetFlag(FlagZF, al == 0)
	c.SetFlag(FlagSF, al&0x80 != 0)
	c.SetFlag(FlagPF, parity(al))
}

// incOperand adds one to a pending operand in place. INC does not touch
// CF, unlike ADD, so the prior carry is saved and restored around the
// shared flag computation (spec §4.3).
func (c *State) incOperand(o operand) {
	cf := c.FlagSet(FlagCF)
	v := c.readOperand(o)
	mask := familyMask(o.Width)
	result := (v + 1) & mask
	c.setArithFlags(v, 1, 0, result, o.Width, false)
	c.SetFlag(FlagCF, cf)
	c.writeOperand(o, result)
}

// decOperand subtracts one from a pending operand in place, preserving
// CF the same way incOperand does.
func (c *State) decOperand(o operand) {
	cf := c.FlagSet(FlagCF)
	v := c.readOperand(o)
	mask := familyMask(o.Width)
	result := (v - 1) & mask
	c.setArithFlags(v, 1, 0, result, o.Width, true)
	c.SetFlag(FlagCF, cf)
	c.writeOperand(o, result)
}

// das applies decimal-adjust-after-subtraction to AL, mirroring daa.
func (c *State) das() {
	al := c.Reg8(0)
	cf := c.FlagSet(FlagCF)
	af := c.FlagSet(FlagAF)

	if af || al&0x0F > 9 {
		al -= 6
		af = true
	}
	if cf || al > 0x9F {
		al -= 0x60
		cf = true
	}

	c.SetReg8(0, al)
	c.SetFlag(FlagAF, af)
	c.SetFlag(FlagCF, cf)
	c.SetFlag(FlagZF, al == 0)
	c.SetFlag(FlagSF, al&0x80 != 0)
	c.SetFlag(FlagPF, parity(al))
}
