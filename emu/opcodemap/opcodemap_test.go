package opcodemap

import "testing"

func TestArithmeticFamilyEntries(t *testing.T) {
	for base, name := range arithNames {
		e, ok := Table[uint8(base+4)]
		if !ok {
			t.Errorf("Table missing AL,imm8 form for %s", name)
			continue
		}
		want := name + " AL,imm8"
		if e.Mnemonic != want {
			t.Errorf("Mnemonic not correct got: %s expected: %s", e.Mnemonic, want)
		}
		if e.Form != FormImm8 {
			t.Errorf("Form not correct got: %v expected: %v", e.Form, FormImm8)
		}
	}
}

func TestShortJumpsCoverAllSixteen(t *testing.T) {
	for i, name := range jccNames {
		e, ok := Table[uint8(OpJccBase+i)]
		if !ok {
			t.Errorf("Table missing entry for %s", name)
			continue
		}
		if e.Mnemonic != name {
			t.Errorf("Mnemonic not correct got: %s expected: %s", e.Mnemonic, name)
		}
		if e.Form != FormRel8 {
			t.Errorf("Form not correct got: %v expected: %v", e.Form, FormRel8)
		}
	}
}

func TestPushPopRegistersIncludeSP(t *testing.T) {
	e, ok := Table[uint8(OpPushRegBase+4)]
	if !ok {
		t.Errorf("Table missing PUSH SP entry")
	}
	if e.Mnemonic != "PUSH SP" {
		t.Errorf("Mnemonic not correct got: %s expected: %s", e.Mnemonic, "PUSH SP")
	}
}

func TestUnimplementedOpcodeAbsent(t *testing.T) {
	if _, ok := Table[0x0F]; ok {
		t.Errorf("Table unexpectedly has an entry for unimplemented opcode 0x0F")
	}
}
