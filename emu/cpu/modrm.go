/*
   comvm ModR/M effective-address resolver

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

// modRM decodes a ModR/M byte already fetched by the caller into a
// pending operand (spec §4.2). w selects whether mod==3 resolves to an
// 8-bit or 16-bit register.
func (c *State) modRM(modrm uint8, w width) operand {
	mod := modrm >> 6
	rm := modrm & 0x07

	if mod == 3 {
		return operand{Kind: operandRegister, Width: w, Reg: rm, ModRM: modrm}
	}

	var disp uint16
	var base uint16
	impliedSeg := SegDS

	switch rm {
	case 0:
		base = c.regs[RegBX] + c.regs[RegSI]
	case 1:
		base = c.regs[RegBX] + c.regs[RegDI]
	case 2:
		base = c.regs[RegBP] + c.regs[RegSI]
		impliedSeg = SegSS
	case 3:
		base = c.regs[RegBP] + c.regs[RegDI]
		impliedSeg = SegSS
	case 4:
		base = c.regs[RegSI]
	case 5:
		base = c.regs[RegDI]
	case 6:
		if mod == 0 {
			disp = c.fetchWord()
			base = 0
			impliedSeg = SegDS
			return c.memOperand(disp, w, modrm, impliedSeg)
		}
		base = c.regs[RegBP]
		impliedSeg = SegSS
	case 7:
		base = c.regs[RegBX]
	}

	switch mod {
	case 1:
		disp = uint16(int16(int8(c.fetchByte())))
	case 2:
		disp = c.fetchWord()
	}

	ofs := base + disp
	return c.memOperand(ofs, w, modrm, impliedSeg)
}

// memOperand resolves an offset to a linear address under the implied
// or overridden segment and wraps it as a memory-form pending operand.
func (c *State) memOperand(ofs uint16, w width, modrm uint8, impliedSeg int) operand {
	seg := impliedSeg
	switch c.override {
	case segOverES:
		seg = SegES
	case segOverCS:
		seg = SegCS
	case segOverSS:
		seg = SegSS
	case segOverDS:
		seg = SegDS
	}
	addr := c.linear(c.segs[seg], ofs)
	return operand{Kind: operandMemory, Width: w, Addr: addr, ModRM: modrm}
}

// readOperand returns the value held by a pending operand, honoring its
// width, and counts an out-of-range memory access as an error.
func (c *State) readOperand(o operand) uint16 {
	if o.Kind == operandRegister {
		if o.Width == width8 {
			return uint16(c.Reg8(o.Reg))
		}
		return c.regs[o.Reg]
	}
	if o.Width == width8 {
		b, ok := c.mem.ReadByte(o.Addr)
		if !ok {
			c.errors++
		}
		return uint16(b)
	}
	w, ok := c.mem.ReadWord(o.Addr)
	if !ok {
		c.errors++
	}
	return w
}

// writeOperand stores v into a pending operand, honoring its width, and
// counts an out-of-range memory access as an error.
func (c *State) writeOperand(o operand, v uint16) {
	if o.Kind == operandRegister {
		if o.Width == width8 {
			c.SetReg8(o.Reg, uint8(v))
		} else {
			c.regs[o.Reg] = v
		}
		return
	}
	var ok bool
	if o.Width == width8 {
		ok = c.mem.WriteByte(o.Addr, uint8(v))
	} else {
		ok = c.mem.WriteWord(o.Addr, v)
	}
	if !ok {
		c.errors++
	}
}
