package cpu

import "testing"

func TestDisassemble(t *testing.T) {
	mem := NewMockMemory()

	cases := []struct {
		bytes  []uint8
		m, x   bool
		text   string
		length int
	}{
		{[]uint8{0xEA}, true, true, "NOP", 1},
		{[]uint8{0xA9, 0x42}, true, true, "LDA #$42", 2},
		{[]uint8{0xA9, 0x34, 0x12}, false, true, "LDA #$1234", 3},
		{[]uint8{0xA2, 0x34, 0x12}, true, false, "LDX #$1234", 3},
		{[]uint8{0x8D, 0x00, 0x21}, true, true, "STA $2100", 3},
		{[]uint8{0xBD, 0x00, 0x80}, true, true, "LDA $8000,X", 3},
		{[]uint8{0xAF, 0x56, 0x34, 0x12}, true, true, "LDA $123456", 4},
		{[]uint8{0xB1, 0x10}, true, true, "LDA ($10),Y", 2},
		{[]uint8{0xA7, 0x10}, true, true, "LDA [$10]", 2},
		{[]uint8{0x80, 0xFE}, true, true, "BRA $8000", 2},
		{[]uint8{0x54, 0x01, 0x02}, true, true, "MVN $01,$02", 3},
		{[]uint8{0x00, 0x05}, true, true, "BRK #$05", 2},
		{[]uint8{0xF4, 0x34, 0x12}, true, true, "PEA #$1234", 3},
		{[]uint8{0x0A}, true, true, "ASL A", 1},
		{[]uint8{0xC2, 0x20}, true, true, "REP #$20", 2},
	}

	for _, tc := range cases {
		mem.SetBytes(0x8000, tc.bytes...)
		text, length := Disassemble(mem, 0x00, 0x8000, tc.m, tc.x)
		if text != tc.text {
			t.Errorf("bytes % X: text = %q, want %q", tc.bytes, text, tc.text)
		}
		if length != tc.length {
			t.Errorf("bytes % X: length = %d, want %d", tc.bytes, length, tc.length)
		}
	}
}
