/*
 * comvm - Debugger command parser tests.
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

package parser

import (
	"testing"

	core "github.com/rcornwell/comvm/emu/core"
	cpu "github.com/rcornwell/comvm/emu/cpu"
	dev "github.com/rcornwell/comvm/emu/device"
	mem "github.com/rcornwell/comvm/emu/memory"
)

// newTestMachine builds a ready-to-run machine with CS=DS=ES=SS=0x0010,
// IP=0x100, matching the .COM loader's layout, without touching disk.
func newTestMachine(t *testing.T) *core.Machine {
	t.Helper()
	mc := core.New(mem.MinCapacity, &dev.NullSink{})
	mc.CPU.Reset()
	for _, s := range []int{cpu.SegES, cpu.SegCS, cpu.SegSS, cpu.SegDS} {
		mc.CPU.SetSeg(s, 0x0010)
	}
	mc.CPU.SetReg16(cpu.RegSP, 0xFFFE)
	mc.CPU.SetIP(0x0100)
	return mc
}

func loadCode(t *testing.T, mc *core.Machine, code []byte) {
	t.Helper()
	addr := mem.SegOfs(mc.CPU.Seg(cpu.SegCS), mc.CPU.IP())
	for i, b := range code {
		if !mc.Mem.WriteByte(addr+uint32(i), b) {
			t.Fatalf("failed to load test program byte %d", i)
		}
	}
}

func TestProcessCommandUnknown(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("bogus", mc); err == nil {
		t.Errorf("ProcessCommand(bogus) error got: nil expected: non-nil")
	}
}

func TestProcessCommandEmpty(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("", mc); err == nil {
		t.Errorf("ProcessCommand(\"\") error got: nil expected: non-nil")
	}
}

func TestCompleteCmdExpandsPrefix(t *testing.T) {
	got := CompleteCmd("br")
	if len(got) != 1 || got[0] != "break" {
		t.Errorf("CompleteCmd(br) got: %v expected: [break]", got)
	}
}

func TestStepDisassemblesAndAdvancesIP(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{0x50, 0x50}) // PUSH AX ; PUSH AX

	quit, err := ProcessCommand("step", mc)
	if err != nil {
		t.Errorf("step returned error: %v", err)
	}
	if quit {
		t.Errorf("step requested quit")
	}
	if got := mc.CPU.IP(); got != 0x0101 {
		t.Errorf("IP after step got: %#x expected: %#x", got, 0x0101)
	}
}

func TestStepWithCount(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{0x50, 0x50, 0x50}) // PUSH AX x3

	if _, err := ProcessCommand("step 2", mc); err != nil {
		t.Errorf("step 2 returned error: %v", err)
	}
	if got := mc.CPU.IP(); got != 0x0102 {
		t.Errorf("IP after step 2 got: %#x expected: %#x", got, 0x0102)
	}
}

func TestStepBadCount(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{0x90})

	if _, err := ProcessCommand("step xyz", mc); err == nil {
		t.Errorf("step xyz error got: nil expected: non-nil")
	}
}

func TestRegsDoesNotError(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("regs", mc); err != nil {
		t.Errorf("regs returned error: %v", err)
	}
}

func TestDumpRequiresAddress(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("dump", mc); err == nil {
		t.Errorf("dump error got: nil expected: non-nil")
	}
}

func TestDumpWithAddressAndLength(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{0x90, 0x90, 0x90, 0x90})
	if _, err := ProcessCommand("dump 0010:0100 4", mc); err != nil {
		t.Errorf("dump returned error: %v", err)
	}
}

func TestDumpBadAddress(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("dump zzzz", mc); err == nil {
		t.Errorf("dump zzzz error got: nil expected: non-nil")
	}
}

func TestSetAndClearBreak(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("break 0101", mc); err != nil {
		t.Errorf("break returned error: %v", err)
	}
	mc.CPU.SetIP(0x0101)
	if !mc.CPU.AtBreakpoint() {
		t.Errorf("AtBreakpoint got: false expected: true after break 0101")
	}

	if _, err := ProcessCommand("unbreak 0101", mc); err != nil {
		t.Errorf("unbreak returned error: %v", err)
	}
	if mc.CPU.AtBreakpoint() {
		t.Errorf("AtBreakpoint got: true expected: false after unbreak 0101")
	}
}

func TestBreakRequiresAddress(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("break", mc); err == nil {
		t.Errorf("break error got: nil expected: non-nil")
	}
}

func TestTraceOnOffAndBadArg(t *testing.T) {
	mc := newTestMachine(t)
	if _, err := ProcessCommand("trace on", mc); err != nil {
		t.Errorf("trace on returned error: %v", err)
	}
	if _, err := ProcessCommand("trace off", mc); err != nil {
		t.Errorf("trace off returned error: %v", err)
	}
	if _, err := ProcessCommand("trace sideways", mc); err == nil {
		t.Errorf("trace sideways error got: nil expected: non-nil")
	}
}

func TestQuitRequestsExit(t *testing.T) {
	mc := newTestMachine(t)
	quit, err := ProcessCommand("quit", mc)
	if err != nil {
		t.Errorf("quit returned error: %v", err)
	}
	if !quit {
		t.Errorf("quit got: false expected: true")
	}
}

func TestContinueRunsToCompletion(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{0x50, 0xCD, 0x20}) // PUSH AX ; INT 20h

	if _, err := ProcessCommand("continue", mc); err != nil {
		t.Errorf("continue returned error: %v", err)
	}
	if !mc.CPU.Done() {
		t.Errorf("Done() got: false expected: true after continue")
	}
}

// TestBreakpointHaltsContinue exercises the debugger breakpoint property:
// arming a breakpoint on an instruction boundary stops continue before
// that instruction executes, leaving the program resumable.
func TestBreakpointHaltsContinue(t *testing.T) {
	mc := newTestMachine(t)
	loadCode(t, mc, []byte{
		0x50,       // PUSH AX at 0x0100
		0xCD, 0x20, // INT 20h at 0x0101
	})

	if _, err := ProcessCommand("break 0101", mc); err != nil {
		t.Fatalf("break returned error: %v", err)
	}

	quit, err := ProcessCommand("continue", mc)
	if err != nil {
		t.Errorf("continue returned error: %v", err)
	}
	if quit {
		t.Errorf("continue requested quit on breakpoint")
	}
	if mc.CPU.Done() {
		t.Errorf("Done() got: true expected: false at breakpoint")
	}
	if got := mc.CPU.IP(); got != 0x0101 {
		t.Errorf("IP at breakpoint got: %#x expected: %#x", got, 0x0101)
	}

	if _, err := ProcessCommand("unbreak 0101", mc); err != nil {
		t.Fatalf("unbreak returned error: %v", err)
	}
	if _, err := ProcessCommand("continue", mc); err != nil {
		t.Errorf("continue after unbreak returned error: %v", err)
	}
	if !mc.CPU.Done() {
		t.Errorf("Done() got: false expected: true after resuming past breakpoint")
	}
}
