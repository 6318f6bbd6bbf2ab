/*
   comvm CPU state definitions

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

// Package cpu implements the 8086/8088-class instruction core: the
// register file, the ModR/M effective-address resolver, the
// fetch-decode-execute dispatcher, and the software-interrupt handler a
// DOS .COM program drives.
package cpu

import (
	dev "github.com/rcornwell/comvm/emu/device"
	mem "github.com/rcornwell/comvm/emu/memory"
)

// Register indices into the 16-bit register file (spec §3).
const (
	RegAX = 0
	RegCX = 1
	RegDX = 2
	RegBX = 3
	RegSP = 4
	RegBP = 5
	RegSI = 6
	RegDI = 7
)

// Segment register indices (spec §3).
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
)

// Flag bit positions within the 16-bit flag word (spec §3).
const (
	FlagCF = 1 << 0
	FlagPF = 1 << 2
	FlagAF = 1 << 4
	FlagZF = 1 << 6
	FlagSF = 1 << 7
	FlagTF = 1 << 8
	FlagIF = 1 << 9
	FlagDF = 1 << 10
	FlagOF = 1 << 11
)

// segOverride is a sum type over {none, ES, CS, SS, DS}, set by a prefix
// opcode and consumed by the ModR/M resolver (spec §9).
type segOverride int

const (
	segNone segOverride = iota
	segOverES
	segOverCS
	segOverSS
	segOverDS
)

// width distinguishes 8-bit from 16-bit operand access.
type width int

const (
	width8 width = iota
	width16
)

// operandKind distinguishes the two forms a ModR/M byte can resolve to
// (spec §4.2, §9).
type operandKind int

const (
	operandRegister operandKind = iota
	operandMemory
)

// operand is the "pending operand" produced by the ModR/M resolver: a
// tagged register index or a resolved linear address, read and written
// through a pair of accessor functions that dispatch on Kind.
type operand struct {
	Kind  operandKind
	Width width
	Reg   uint8  // valid when Kind == operandRegister
	Addr  uint32 // valid when Kind == operandMemory
	ModRM uint8  // the raw ModR/M byte, retained for subopcode dispatch
}

// State is a single 8086-class CPU: register file, flags, and the
// per-instruction transient decode state, bound to one memory image and
// one console sink. Nothing here is package-level mutable state -- every
// emulated machine owns its own State, so multiple machines can run side
// by side without interference (spec §9).
type State struct {
	mem   *mem.Image
	sink  dev.Sink
	trace func(line string) // optional, called once per decoded instruction

	regs  [8]uint16 // AX CX DX BX SP BP SI DI
	segs  [4]uint16 // ES CS SS DS
	ip    uint16
	flags uint16

	errors uint64
	done   bool

	override segOverride
	pending  operand

	breaks map[uint16]bool
}

// New creates a CPU bound to the given memory image and console sink.
// Callers must call Reset (directly or via the loader) before the first
// Tick.
func New(m *mem.Image, sink dev.Sink) *State {
	return &State{mem: m, sink: sink, breaks: make(map[uint16]bool)}
}

// SetBreak arms a breakpoint at IP addr, checked by Tick before each
// fetch (spec §4.8).
func (c *State) SetBreak(addr uint16) {
	c.breaks[addr] = true
}

// ClearBreak disarms the breakpoint at addr, if any.
func (c *State) ClearBreak(addr uint16) {
	delete(c.breaks, addr)
}

// AtBreakpoint reports whether IP currently sits on an armed breakpoint.
func (c *State) AtBreakpoint() bool {
	return c.breaks[c.ip]
}

// SetTrace installs a callback invoked with one disassembled line per
// instruction fetched; pass nil to disable tracing.
func (c *State) SetTrace(fn func(line string)) {
	c.trace = fn
}

// Errors returns the monotonically non-decreasing error counter.
func (c *State) Errors() uint64 {
	return c.errors
}

// Done reports whether the program has invoked INT 20h.
func (c *State) Done() bool {
	return c.done
}

// IP returns the current instruction pointer.
func (c *State) IP() uint16 {
	return c.ip
}

// SetIP sets the instruction pointer, for the loader and the debugger's
// breakpoint-resume path.
func (c *State) SetIP(v uint16) {
	c.ip = v
}

// Reg16 returns the 16-bit value of register index i (RegAX..RegDI).
func (c *State) Reg16(i int) uint16 {
	return c.regs[i]
}

// SetReg16 sets register index i to v.
func (c *State) SetReg16(i int, v uint16) {
	c.regs[i] = v
}

// Reg8 returns the 8-bit value addressed by the byte-register encoding:
// 0..3 select AL/CL/DL/BL, 4..7 select AH/CH/DH/BH (spec §3).
func (c *State) Reg8(i uint8) uint8 {
	if i < 4 {
		return uint8(c.regs[i])
	}
	return uint8(c.regs[i-4] >> 8)
}

// SetReg8 sets the 8-bit byte-register encoded by i without disturbing
// the other half of the enclosing 16-bit register.
func (c *State) SetReg8(i uint8, v uint8) {
	if i < 4 {
		c.regs[i] = (c.regs[i] & 0xFF00) | uint16(v)
		return
	}
	c.regs[i-4] = (c.regs[i-4] & 0x00FF) | (uint16(v) << 8)
}

// Seg returns the value of segment register index s (SegES..SegDS).
func (c *State) Seg(s int) uint16 {
	return c.segs[s]
}

// SetSeg sets segment register index s to v.
func (c *State) SetSeg(s int, v uint16) {
	c.segs[s] = v
}

// Flags returns the raw flag word.
func (c *State) Flags() uint16 {
	return c.flags
}

// FlagSet reports whether every bit in mask is set in the flag word.
func (c *State) FlagSet(mask uint16) bool {
	return c.flags&mask == mask
}

// SetFlag sets or clears every bit in mask.
func (c *State) SetFlag(mask uint16, v bool) {
	if v {
		c.flags |= mask
	} else {
		c.flags &^= mask
	}
}

// Reset restores the CPU to its reset state: done and errors cleared,
// CS=0xFFFF, IP=0, per spec §3's lifecycle. The loader
// overwrites CS/DS/ES/SS/IP/SP afterward per the .COM contract.
func (c *State) Reset() {
	c.done = false
	c.errors = 0
	c.segs[SegCS] = 0xFFFF
	c.ip = 0
	c.override = segNone
	c.pending = operand{}
}

// Memory returns the CPU's bound memory image, for the loader and
// debugger.
func (c *State) Memory() *mem.Image {
	return c.mem
}
