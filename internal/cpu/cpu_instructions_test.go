package cpu

import "testing"

func TestADCBinary8Bit(t *testing.T) {
	cases := []struct {
		name    string
		a, m    uint8
		carryIn bool
		result  uint8
		n, v, z, c bool
	}{
		{"simple", 0x10, 0x20, false, 0x30, false, false, false, false},
		{"with carry in", 0x10, 0x20, true, 0x31, false, false, false, false},
		{"carry out", 0xFF, 0x01, false, 0x00, false, false, true, true},
		{"signed overflow", 0x7F, 0x01, false, 0x80, true, true, false, false},
		{"negative overflow", 0x80, 0xFF, false, 0x7F, false, true, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTestHelper()
			h.SetupReset(0x8000)
			h.CPU.A = uint16(tc.a)
			h.CPU.C = tc.carryIn
			h.LoadProgram(0x8000, 0x69, tc.m) // ADC #imm
			h.StepN(1)

			if uint8(h.CPU.A) != tc.result {
				t.Errorf("A = $%02X, want $%02X", uint8(h.CPU.A), tc.result)
			}
			h.AssertFlags(t, tc.name, tc.n, tc.v, tc.z, tc.c)
		})
	}
}

func TestSBCBinary8Bit(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.CPU.A = 0x50
	h.CPU.C = true // no borrow
	h.LoadProgram(0x8000, 0xE9, 0x10) // SBC #$10
	h.StepN(1)

	if uint8(h.CPU.A) != 0x40 {
		t.Errorf("A = $%02X, want $40", uint8(h.CPU.A))
	}
	if !h.CPU.C {
		t.Error("no borrow expected, C should stay set")
	}
}

func TestCompareFlags(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.CPU.A = 0x40
	h.LoadProgram(0x8000, 0xC9, 0x40, 0xC9, 0x41) // CMP #$40, CMP #$41
	h.StepN(1)
	if !h.CPU.Z || !h.CPU.C {
		t.Errorf("CMP equal: Z=%v C=%v, want both set", h.CPU.Z, h.CPU.C)
	}
	h.StepN(1)
	if h.CPU.C {
		t.Error("CMP with A < operand must clear C")
	}
}

func TestShiftAndRotate(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.CPU.A = 0x81
	// ASL A, ROL A
	h.LoadProgram(0x8000, 0x0A, 0x2A)
	h.StepN(1)
	if uint8(h.CPU.A) != 0x02 || !h.CPU.C {
		t.Errorf("ASL: A=$%02X C=%v, want $02 carry set", uint8(h.CPU.A), h.CPU.C)
	}
	h.StepN(1)
	if uint8(h.CPU.A) != 0x05 {
		t.Errorf("ROL pulled carry in: A=$%02X, want $05", uint8(h.CPU.A))
	}
}

func TestMemoryRMW(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.Memory.SetBytes(0x0010, 0x7F)
	h.LoadProgram(0x8000, 0xE6, 0x10) // INC $10
	h.StepN(1)

	if h.Memory.Peek(0x0010) != 0x80 {
		t.Errorf("INC dp: memory = $%02X, want $80", h.Memory.Peek(0x0010))
	}
	if !h.CPU.N {
		t.Error("INC to $80 should set N")
	}
}

func TestBITSemantics(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.Memory.SetBytes(0x0020, 0xC0)
	h.CPU.A = 0x01
	h.LoadProgram(0x8000, 0x24, 0x20) // BIT $20
	h.StepN(1)

	if !h.CPU.N || !h.CPU.V {
		t.Errorf("BIT must copy operand bits 7/6: N=%v V=%v", h.CPU.N, h.CPU.V)
	}
	if !h.CPU.Z {
		t.Error("A & operand == 0 should set Z")
	}

	// Immediate form only touches Z
	h.CPU.N = false
	h.CPU.V = false
	h.CPU.A = 0xC0
	h.LoadProgram(0x8002, 0x89, 0x80) // BIT #$80
	h.StepN(1)
	if h.CPU.Z {
		t.Error("BIT # should clear Z for a nonzero AND")
	}
	if h.CPU.N || h.CPU.V {
		t.Error("BIT # must not touch N or V")
	}
}

func TestTSBandTRB(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.Memory.SetBytes(0x0030, 0x0F)
	h.CPU.A = 0xF0

	h.LoadProgram(0x8000, 0x04, 0x30, 0x14, 0x30) // TSB $30, TRB $30
	h.StepN(1)
	if h.Memory.Peek(0x0030) != 0xFF {
		t.Errorf("TSB: memory = $%02X, want $FF", h.Memory.Peek(0x0030))
	}
	if !h.CPU.Z {
		t.Error("TSB: A & original == 0 should set Z")
	}
	h.StepN(1)
	if h.Memory.Peek(0x0030) != 0x0F {
		t.Errorf("TRB: memory = $%02X, want $0F", h.Memory.Peek(0x0030))
	}
}

func TestBranchesAndSubroutines(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	// BNE forward over a trap, then JSR/RTS round trip
	h.CPU.Z = false
	h.LoadProgram(0x8000,
		0xD0, 0x01, // BNE +1
		0xDB,       // STP (skipped)
		0x20, 0x10, 0x80, // JSR $8010
	)
	h.LoadProgram(0x8010, 0x60) // RTS

	h.StepN(3)
	if h.CPU.PC != 0x8006 {
		t.Errorf("after JSR/RTS, PC = $%04X, want $8006", h.CPU.PC)
	}
	if h.CPU.Stopped() {
		t.Error("branch should have skipped STP")
	}
}

func TestJSRPushesReturnMinusOne(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.LoadProgram(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	h.StepN(1)

	// Return address - 1 = $8002, pushed high byte first
	if h.Memory.Peek(0x0001FF) != 0x80 || h.Memory.Peek(0x0001FE) != 0x02 {
		t.Errorf("stack = %02X %02X, want 80 02",
			h.Memory.Peek(0x0001FF), h.Memory.Peek(0x0001FE))
	}
	if h.CPU.PC != 0x9000 {
		t.Errorf("PC = $%04X, want $9000", h.CPU.PC)
	}
}

func TestJSLandRTL(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()

	h.LoadProgram(0x8000, 0x22, 0x00, 0x90, 0x02) // JSL $02:9000
	h.Memory.SetBytes(0x029000, 0x6B)             // RTL
	h.StepN(1)

	if h.CPU.PBR != 0x02 || h.CPU.PC != 0x9000 {
		t.Fatalf("after JSL: PBR:PC = $%02X:%04X, want $02:9000", h.CPU.PBR, h.CPU.PC)
	}
	h.StepN(1)
	if h.CPU.PBR != 0x00 || h.CPU.PC != 0x8004 {
		t.Errorf("after RTL: PBR:PC = $%02X:%04X, want $00:8004", h.CPU.PBR, h.CPU.PC)
	}
}

func TestDirectPageEmulationWrapQuirk(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	// E=1 with D low byte zero: dp,X wraps within the page
	h.CPU.D = 0x0000
	h.CPU.X = 0x10
	h.Memory.SetBytes(0x0000_000F, 0xAB) // ($FF + $10) & $FF = $0F
	h.LoadProgram(0x8000, 0xB5, 0xFF)    // LDA $FF,X
	h.StepN(1)

	if uint8(h.CPU.A) != 0xAB {
		t.Errorf("dp,X wrap quirk: A = $%02X, want $AB", uint8(h.CPU.A))
	}
}

func TestDirectPageNoWrapWithD(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	// Nonzero D low byte disables the page wrap even in emulation mode
	h.CPU.D = 0x0001
	h.CPU.X = 0x10
	h.Memory.SetBytes(0x000110, 0xCD) // $0001 + $FF + $10
	h.LoadProgram(0x8000, 0xB5, 0xFF) // LDA $FF,X
	h.StepN(1)

	if uint8(h.CPU.A) != 0xCD {
		t.Errorf("dp,X with D set: A = $%02X, want $CD", uint8(h.CPU.A))
	}
}

func TestAbsoluteIndexedBankCross(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()

	h.CPU.DBR = 0x01
	h.CPU.SetP(h.CPU.P() &^ 0x10) // 16-bit index
	h.CPU.X = 0x0100
	h.Memory.SetBytes(0x02000F, 0x5A) // $01:FF0F + $100 carries into bank $02
	h.LoadProgram(0x8000, 0xBD, 0x0F, 0xFF) // LDA $FF0F,X
	h.StepN(1)

	if uint8(h.CPU.A) != 0x5A {
		t.Errorf("bank-crossing indexed load: A = $%02X, want $5A", uint8(h.CPU.A))
	}
}

func TestBlockMoveMVN(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()
	h.CPU.SetP(h.CPU.P() &^ 0x30) // 16-bit everything

	h.CPU.A = 0x0002 // three bytes
	h.CPU.X = 0x1000
	h.CPU.Y = 0x2000
	h.Memory.SetBytes(0x031000, 0x11, 0x22, 0x33)
	h.LoadProgram(0x8000, 0x54, 0x04, 0x03) // MVN $04,$03 (dest, source)
	h.StepN(1)

	for i, want := range []uint8{0x11, 0x22, 0x33} {
		if got := h.Memory.Peek(0x042000 + uint32(i)); got != want {
			t.Errorf("dest[%d] = $%02X, want $%02X", i, got, want)
		}
	}
	if h.CPU.A != 0xFFFF {
		t.Errorf("A = $%04X, want $FFFF", h.CPU.A)
	}
	if h.CPU.X != 0x1003 || h.CPU.Y != 0x2003 {
		t.Errorf("X=$%04X Y=$%04X, want $1003/$2003", h.CPU.X, h.CPU.Y)
	}
	if h.CPU.DBR != 0x04 {
		t.Errorf("DBR = $%02X, want destination bank $04", h.CPU.DBR)
	}
}

func TestStackRelativeAddressing(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()

	h.CPU.SP = 0x1F00
	h.Memory.SetBytes(0x001F03, 0x77)
	h.LoadProgram(0x8000, 0xA3, 0x03) // LDA $03,S
	h.StepN(1)

	if uint8(h.CPU.A) != 0x77 {
		t.Errorf("sr,S load: A = $%02X, want $77", uint8(h.CPU.A))
	}
}

func TestPLPReappliesWidths(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()
	h.CPU.SetP(h.CPU.P() &^ 0x30) // 16-bit A and index
	h.CPU.X = 0x1234

	// Push a P with X=1 set, then PLP
	h.LoadProgram(0x8000, 0xA9, 0x34, 0x12, 0x48) // LDA #$1234, PHA (places $34 low)
	h.StepN(2)
	h.CPU.SP += 2 // discard
	h.Memory.SetBytes(uint32(h.CPU.SP), 0x30)
	h.CPU.SP--
	h.LoadProgram(0x8004, 0x28) // PLP
	h.StepN(1)

	if !h.CPU.M || !h.CPU.XF {
		t.Error("PLP must re-apply M/X sizing immediately")
	}
	if h.CPU.X != 0x34 {
		t.Errorf("X high byte should clear on X=1: X = $%04X", h.CPU.X)
	}
}

func TestXBA(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.CPU.A = 0x12FF
	h.LoadProgram(0x8000, 0xEB) // XBA
	h.StepN(1)

	if h.CPU.A != 0xFF12 {
		t.Errorf("A = $%04X, want $FF12", h.CPU.A)
	}
	if h.CPU.N {
		t.Error("N should reflect the new low byte $12")
	}
}
