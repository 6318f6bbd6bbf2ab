/*
   CPU opcodes for disassembly

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

// Package opcodemap names the opcode subset the dispatcher in emu/cpu
// implements and maps each one to a mnemonic and operand form. The opcode
// constants are shared by the dispatcher and emu/disassemble; the mnemonic
// Table is read by emu/disassemble.
package opcodemap

// Opcode base values for the seven arithmetic families of spec §4.3.
// Adding 0..5 to a base selects the r/m8,reg8 / r/m16,reg16 / reg8,r/m8 /
// reg16,r/m16 / AL,imm8 / AX,imm16 forms respectively.
const (
	OpAdd = 0x00
	OpOr  = 0x08
	OpAdc = 0x10
	OpSbb = 0x18
	OpAnd = 0x20
	OpSub = 0x28
	OpXor = 0x30
)

// Segment prefix opcodes.
const (
	OpPrefixES = 0x26
	OpPrefixCS = 0x2E
	OpPrefixSS = 0x36
	OpPrefixDS = 0x3E
)

// Segment push/pop.
const (
	OpPushES = 0x06
	OpPopES  = 0x07
	OpPushCS = 0x0E
	OpPushSS = 0x16
	OpPopSS  = 0x17
	OpPushDS = 0x1E
	OpPopDS  = 0x1F
)

// Decimal adjust.
const (
	OpDAA = 0x27
	OpDAS = 0x2F
)

// General register push/pop, 0x50..0x5F.
const (
	OpPushRegBase = 0x50
	OpPopRegBase  = 0x58
)

// Push immediate.
const (
	OpPushImm16 = 0x68
	OpPushImm8  = 0x6A
)

// Short conditional jumps, 0x70..0x7F.
const OpJccBase = 0x70

// MOV family.
const (
	OpMovRm8Reg8   = 0x88
	OpMovRm16Reg16 = 0x89
	OpMovReg8Rm8   = 0x8A
	OpMovReg16Rm16 = 0x8B
	OpMovRegImm8   = 0xB0
	OpMovRegImm16  = 0xB8
)

// Interrupt and loop.
const (
	OpInt  = 0xCD
	OpLoop = 0xE2
)

// ModR/M subopcode groups.
const (
	OpGroupFE = 0xFE // INC/DEC r/m8
	OpGroupFF = 0xFF // INC/DEC/PUSH r/m16
)

// Form describes how an opcode's operands are encoded, for the
// disassembler's benefit; the dispatcher decodes the same bytes itself.
type Form int

const (
	FormNone      Form = iota // no operand bytes beyond the opcode
	FormImm8                  // one immediate byte follows
	FormImm16                 // one immediate word follows
	FormRel8                  // one signed 8-bit displacement follows
	FormModRM                 // a ModR/M byte (and its own operand) follows
	FormModRMImm8             // ModR/M byte followed by an imm8
)

// Entry names one opcode for the disassembler.
type Entry struct {
	Mnemonic string
	Form     Form
}

// jccNames indexes the 16 short conditional jumps by (opcode - OpJccBase).
var jccNames = [16]string{
	"JO", "JNO", "JB", "JNB", "JE", "JNE", "JBE", "JA",
	"JS", "JNS", "JP", "JNP", "JL", "JGE", "JLE", "JG",
}

var arithNames = map[int]string{
	OpAdd: "ADD", OpOr: "OR", OpAdc: "ADC", OpSbb: "SBB",
	OpAnd: "AND", OpSub: "SUB", OpXor: "XOR",
}

// Table maps every opcode byte the dispatcher in emu/cpu recognizes to a
// disassembler Entry. Bytes absent from Table are unimplemented opcodes.
var Table = buildTable()

func buildTable() map[uint8]Entry {
	t := make(map[uint8]Entry)

	for base, name := range arithNames {
		t[uint8(base+0)] = Entry{name + " r/m8,r8", FormModRM}
		t[uint8(base+1)] = Entry{name + " r/m16,r16", FormModRM}
		t[uint8(base+2)] = Entry{name + " r8,r/m8", FormModRM}
		t[uint8(base+3)] = Entry{name + " r16,r/m16", FormModRM}
		t[uint8(base+4)] = Entry{name + " AL,imm8", FormImm8}
		t[uint8(base+5)] = Entry{name + " AX,imm16", FormImm16}
	}

	t[OpPushES] = Entry{"PUSH ES", FormNone}
	t[OpPopES] = Entry{"POP ES", FormNone}
	t[OpPushCS] = Entry{"PUSH CS", FormNone}
	t[OpPushSS] = Entry{"PUSH SS", FormNone}
	t[OpPopSS] = Entry{"POP SS", FormNone}
	t[OpPushDS] = Entry{"PUSH DS", FormNone}
	t[OpPopDS] = Entry{"POP DS", FormNone}

	t[OpDAA] = Entry{"DAA", FormNone}
	t[OpDAS] = Entry{"DAS", FormNone}

	regNames16 := [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
	for i, name := range regNames16 {
		t[uint8(OpPushRegBase+i)] = Entry{"PUSH " + name, FormNone}
		t[uint8(OpPopRegBase+i)] = Entry{"POP " + name, FormNone}
	}

	t[OpPushImm16] = Entry{"PUSH imm16", FormImm16}
	t[OpPushImm8] = Entry{"PUSH imm8", FormImm8}

	for i, name := range jccNames {
		t[uint8(OpJccBase+i)] = Entry{name, FormRel8}
	}

	t[OpMovRm8Reg8] = Entry{"MOV r/m8,r8", FormModRM}
	t[OpMovRm16Reg16] = Entry{"MOV r/m16,r16", FormModRM}
	t[OpMovReg8Rm8] = Entry{"MOV r8,r/m8", FormModRM}
	t[OpMovReg16Rm16] = Entry{"MOV r16,r/m16", FormModRM}
	for i := range 8 {
		t[uint8(OpMovRegImm8+i)] = Entry{"MOV r8,imm8", FormImm8}
		t[uint8(OpMovRegImm16+i)] = Entry{"MOV r16,imm16", FormImm16}
	}

	t[OpInt] = Entry{"INT imm8", FormImm8}
	t[OpLoop] = Entry{"LOOP rel8", FormRel8}
	t[OpGroupFE] = Entry{"INC/DEC r/m8", FormModRM}
	t[OpGroupFF] = Entry{"INC/DEC/PUSH r/m16", FormModRM}

	return t
}
