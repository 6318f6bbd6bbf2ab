package disassemble

import (
	"strings"
	"testing"

	mem "github.com/rcornwell/comvm/emu/memory"
)

func TestOneDecodesMovImmediate(t *testing.T) {
	m := mem.New(mem.MinCapacity, 0)
	m.WriteByte(0x100, 0xB4) // MOV AH,imm8
	m.WriteByte(0x101, 0x09)

	in := One(m, 0x100)
	if in.Addr != 0x100 {
		t.Errorf("Addr not correct got: %x expected: %x", in.Addr, 0x100)
	}
	if len(in.Bytes) != 2 {
		t.Errorf("Bytes length not correct got: %d expected: %d", len(in.Bytes), 2)
	}
	if !strings.Contains(in.Text, "09h") {
		t.Errorf("Text missing immediate operand: %s", in.Text)
	}
}

func TestOneDecodesSegmentPrefix(t *testing.T) {
	m := mem.New(mem.MinCapacity, 0)
	m.WriteByte(0x100, 0x2E) // CS: prefix
	m.WriteByte(0x101, 0xCD) // INT
	m.WriteByte(0x102, 0x21)

	in := One(m, 0x100)
	if !strings.HasPrefix(in.Text, "CS: ") {
		t.Errorf("Text missing segment prefix got: %s", in.Text)
	}
	if len(in.Bytes) != 3 {
		t.Errorf("Bytes length not correct got: %d expected: %d", len(in.Bytes), 3)
	}
}

func TestOneUnknownOpcode(t *testing.T) {
	m := mem.New(mem.MinCapacity, 0)
	m.WriteByte(0x100, 0x0F)

	in := One(m, 0x100)
	if in.Text != "??" {
		t.Errorf("Text not correct got: %s expected: %s", in.Text, "??")
	}
}

func TestLineFormatsHexAndAddress(t *testing.T) {
	m := mem.New(mem.MinCapacity, 0)
	m.WriteByte(0x100, 0xCD)
	m.WriteByte(0x101, 0x20)

	in := One(m, 0x100)
	line := in.Line()
	if !strings.HasPrefix(line, "0100  CD 20") {
		t.Errorf("Line not correct got: %s", line)
	}
}
