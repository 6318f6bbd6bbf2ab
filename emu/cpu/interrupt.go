/*
   comvm software interrupt dispatcher

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

import "log/slog"

const (
	intTerminate = 0x20
	intDOS       = 0x21

	dosWriteChar   = 0x02
	dosWriteString = 0x09
	dosWriteHandle = 0x40

	accessDenied = 5
	stdoutHandle = 1
)

// interrupt services the interrupt numbered n (spec §4.4).
func (c *State) interrupt(n uint8) {
	switch n {
	case intTerminate:
		c.done = true
		slog.Info("program terminated", "ip", c.ip)
	case intDOS:
		c.dosService()
	default:
		c.errors++
		slog.Warn("unknown interrupt", "number", n)
	}
}

// dosService dispatches one of the small subset of INT 21h DOS services
// trivial .COM programs use, selected by AH.
func (c *State) dosService() {
	ah := c.Reg8(4) // AH

	switch ah {
	case dosWriteChar:
		dl := c.Reg8(2) // DL
		c.sink.Put(dl)
		if dl == '\t' {
			c.SetReg8(0, ' ')
		} else {
			c.SetReg8(0, dl)
		}
	case dosWriteString:
		addr := c.linear(c.segs[SegDS], c.regs[RegDX])
		for {
			b, ok := c.mem.ReadByte(addr)
			if !ok {
				c.errors++
				break
			}
			if b == '$' {
				break
			}
			c.sink.Put(b)
			addr++
		}
		c.SetReg8(0, '$')
	case dosWriteHandle:
		if c.regs[RegBX] != stdoutHandle {
			c.SetFlag(FlagCF, true)
			c.regs[RegAX] = accessDenied
			return
		}
		addr := c.linear(c.segs[SegDS], c.regs[RegDX])
		count := c.regs[RegCX]
		var written uint16
		for ; written < count; written++ {
			b, ok := c.mem.ReadByte(addr)
			if !ok {
				c.errors++
				break
			}
			c.sink.Put(b)
			addr++
		}
		c.SetFlag(FlagCF, false)
		c.regs[RegAX] = written
	default:
		c.errors++
		slog.Warn("unknown DOS service", "ah", ah)
	}
}
