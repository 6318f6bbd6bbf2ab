/*
   comvm machine: .COM image loader and synchronous run loop.

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

// Package core ties memory, the CPU, and the .COM loader into one
// runnable machine. There is no scheduler and no concurrency here: a
// Machine is driven entirely by its owner calling Tick (spec §5).
package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	cpu "github.com/rcornwell/comvm/emu/cpu"
	dev "github.com/rcornwell/comvm/emu/device"
	mem "github.com/rcornwell/comvm/emu/memory"
)

const (
	// BaseOffset is the byte offset within the memory image of paragraph
	// 0x0050, where the synthesized PSP begins (spec §3, §4.5).
	BaseOffset = 0x0500

	entryIP = 0x0100
	entrySP = 0xFFFE

	pspCmdLineOffset = 0x80
	pspCmdLineMax    = 126
)

// Machine bundles one CPU with its memory image and console sink.
type Machine struct {
	CPU *cpu.State
	Mem *mem.Image
}

// New allocates a machine with a memory image of the given capacity,
// writing console output through sink.
func New(capacity int, sink dev.Sink) *Machine {
	m := mem.New(capacity, BaseOffset)
	return &Machine{
		CPU: cpu.New(m, sink),
		Mem: m,
	}
}

// LoadFile loads a .COM image from path, synthesizes the PSP, and sets
// up segment registers and SP/IP per spec §4.5. args, if non-empty, are
// joined with single spaces into the PSP command-line area.
func (mc *Machine) LoadFile(path string, args []string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	defer file.Close()

	pspParagraph := uint16(BaseOffset >> mem.ParagraphShift)

	n, err := mc.Mem.LoadAt(file, BaseOffset+entryIP)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	mc.CPU.Reset()
	for _, s := range []int{cpu.SegES, cpu.SegCS, cpu.SegSS, cpu.SegDS} {
		mc.CPU.SetSeg(s, pspParagraph)
	}
	mc.CPU.SetIP(entryIP)
	mc.CPU.SetReg16(cpu.RegSP, entrySP)

	mc.writeCommandLine(pspParagraph, args)

	slog.Info("loaded image", "path", path, "bytes", n,
		"psp", fmt.Sprintf("%04X", pspParagraph),
		"entry", fmt.Sprintf("%04X:%04X", pspParagraph, uint16(entryIP)))
	return nil
}

// writeCommandLine populates PSP offset 0x80..0xFF from args (spec §4.5).
func (mc *Machine) writeCommandLine(pspParagraph uint16, args []string) {
	text := strings.Join(args, " ")
	if len(text) > pspCmdLineMax {
		text = text[:pspCmdLineMax]
	}

	base := mem.SegOfs(pspParagraph, pspCmdLineOffset)
	mc.Mem.WriteByte(base, uint8(len(text)))
	for i := 0; i < len(text); i++ {
		mc.Mem.WriteByte(base+1+uint32(i), text[i])
	}
	mc.Mem.WriteByte(base+1+uint32(len(text)), '\r')
}

// Tick runs up to n instructions, delegating to the CPU (spec §4.6).
func (mc *Machine) Tick(n int) cpu.TickResult {
	return mc.CPU.Tick(n)
}
