/*
 * comvm - Debugger command parser.
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

// Package parser implements the small line-oriented command language the
// interactive debugger accepts on top of a running core.Machine (spec
// §4.8): step, regs, dump, break, unbreak, trace, continue, quit.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	core "github.com/rcornwell/comvm/emu/core"
	cpu "github.com/rcornwell/comvm/emu/cpu"
	dis "github.com/rcornwell/comvm/emu/disassemble"
	mem "github.com/rcornwell/comvm/emu/memory"
	hex "github.com/rcornwell/comvm/util/hex"
)

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *core.Machine) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "step", min: 1, process: step},
	{name: "regs", min: 1, process: regs},
	{name: "dump", min: 1, process: dump},
	{name: "break", min: 2, process: setBreak},
	{name: "unbreak", min: 3, process: clearBreak},
	{name: "trace", min: 1, process: trace},
	{name: "continue", min: 1, process: cont},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one command line against mc, returning true
// when the REPL should exit.
func ProcessCommand(commandLine string, mc *core.Machine) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + name)
	}

	return match[0].process(&line, mc)
}

// CompleteCmd returns the set of command names commandLine's leading
// word could still expand to, for liner's tab completion.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	matches := matchList(name)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

func matchCommand(m cmd, name string) bool {
	if len(name) > len(m.name) {
		return false
	}
	for i := range name {
		if name[i] != m.name[i] {
			return false
		}
	}
	return len(name) >= m.min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			out = append(out, m)
		}
	}
	return out
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line)
}

// getWord returns the next run of non-space characters.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// getAddr parses a segment:offset or flat hex address.
func getAddr(mc *core.Machine, word string) (uint32, error) {
	if seg, ofs, ok := strings.Cut(word, ":"); ok {
		s, err := strconv.ParseUint(seg, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("bad segment: %s", seg)
		}
		o, err := strconv.ParseUint(ofs, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("bad offset: %s", ofs)
		}
		return mem.SegOfs(uint16(s), uint16(o)), nil
	}
	a, err := strconv.ParseUint(word, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address: %s", word)
	}
	return uint32(a), nil
}

func step(line *cmdLine, mc *core.Machine) (bool, error) {
	n := 1
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, fmt.Errorf("bad step count: %s", w)
		}
		n = v
	}
	fmt.Println(disassembleAt(mc))
	result := mc.Tick(n)
	fmt.Println(resultText(result))
	return false, nil
}

func cont(_ *cmdLine, mc *core.Machine) (bool, error) {
	result := mc.Tick(int(^uint(0) >> 1))
	fmt.Println(resultText(result))
	return false, nil
}

func resultText(r cpu.TickResult) string {
	switch r {
	case cpu.TickDone:
		return "done"
	case cpu.TickError:
		return "error"
	case cpu.TickBreak:
		return "breakpoint"
	default:
		return "running"
	}
}

var regNames = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
var segNames = [4]string{"ES", "CS", "SS", "DS"}

func regs(_ *cmdLine, mc *core.Machine) (bool, error) {
	var b strings.Builder
	for i, name := range regNames {
		fmt.Fprintf(&b, "%s=", name)
		hex.FormatWord16(&b, false, []uint16{mc.CPU.Reg16(i)})
		b.WriteByte(' ')
	}
	for i, name := range segNames {
		fmt.Fprintf(&b, "%s=", name)
		hex.FormatWord16(&b, false, []uint16{mc.CPU.Seg(i)})
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "IP=%04X FLAGS=%04X", mc.CPU.IP(), mc.CPU.Flags())
	fmt.Println(b.String())
	return false, nil
}

func dump(line *cmdLine, mc *core.Machine) (bool, error) {
	addrWord := line.getWord()
	if addrWord == "" {
		return false, errors.New("dump requires an address")
	}
	addr, err := getAddr(mc, addrWord)
	if err != nil {
		return false, err
	}

	n := 16
	if w := line.getWord(); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return false, fmt.Errorf("bad length: %s", w)
		}
		n = v
	}

	var b strings.Builder
	hex.FormatBytes(&b, true, mc.Mem.Bytes(addr, n))
	fmt.Printf("%05X  %s\n", addr, strings.TrimSpace(b.String()))
	return false, nil
}

func setBreak(line *cmdLine, mc *core.Machine) (bool, error) {
	w := line.getWord()
	if w == "" {
		return false, errors.New("break requires an address")
	}
	v, err := strconv.ParseUint(w, 16, 16)
	if err != nil {
		return false, fmt.Errorf("bad address: %s", w)
	}
	mc.CPU.SetBreak(uint16(v))
	return false, nil
}

func clearBreak(line *cmdLine, mc *core.Machine) (bool, error) {
	w := line.getWord()
	if w == "" {
		return false, errors.New("unbreak requires an address")
	}
	v, err := strconv.ParseUint(w, 16, 16)
	if err != nil {
		return false, fmt.Errorf("bad address: %s", w)
	}
	mc.CPU.ClearBreak(uint16(v))
	return false, nil
}

func trace(line *cmdLine, mc *core.Machine) (bool, error) {
	switch line.getWord() {
	case "on":
		mc.CPU.SetTrace(func(l string) { slog.Info("trace", "instr", l) })
	case "off":
		mc.CPU.SetTrace(nil)
	default:
		return false, errors.New("trace requires on or off")
	}
	return false, nil
}

func quit(_ *cmdLine, _ *core.Machine) (bool, error) {
	return true, nil
}

// disassembleAt renders the instruction at CS:IP, echoed by step before
// it executes.
func disassembleAt(mc *core.Machine) string {
	return dis.One(mc.Mem, mem.SegOfs(mc.CPU.Seg(cpu.SegCS), mc.CPU.IP())).Line()
}
