package cpu

import "testing"

// MockMemory implements MemoryInterface over the full 24-bit space
type MockMemory struct {
	data map[uint32]uint8

	reads  []uint32
	writes []uint32
}

// NewMockMemory creates an empty mock bus
func NewMockMemory() *MockMemory {
	return &MockMemory{data: make(map[uint32]uint8)}
}

// Read8 implements MemoryInterface
func (m *MockMemory) Read8(address uint32) uint8 {
	m.reads = append(m.reads, address)
	return m.data[address&0xFFFFFF]
}

// Write8 implements MemoryInterface
func (m *MockMemory) Write8(address uint32, value uint8) {
	m.writes = append(m.writes, address)
	m.data[address&0xFFFFFF] = value
}

// SetBytes stores bytes starting at the given address
func (m *MockMemory) SetBytes(address uint32, values ...uint8) {
	for i, value := range values {
		m.data[address+uint32(i)] = value
	}
}

// Peek reads without recording
func (m *MockMemory) Peek(address uint32) uint8 {
	return m.data[address&0xFFFFFF]
}

// TestHelper bundles a CPU with its mock bus
type TestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

// NewTestHelper creates a CPU on a mock bus
func NewTestHelper() *TestHelper {
	memory := NewMockMemory()
	return &TestHelper{CPU: New(memory), Memory: memory}
}

// SetupReset installs a reset vector and resets the CPU
func (h *TestHelper) SetupReset(address uint16) {
	h.Memory.SetBytes(0xFFFC, uint8(address), uint8(address>>8))
	h.CPU.Reset()
}

// LoadProgram places bytes at a bank-0 address
func (h *TestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(uint32(address), program...)
}

// StepN executes n instructions
func (h *TestHelper) StepN(n int) {
	for i := 0; i < n; i++ {
		h.CPU.Step()
	}
}

// EnterNative switches the CPU out of emulation mode via CLC+XCE semantics
func (h *TestHelper) EnterNative() {
	h.CPU.C = false
	h.CPU.C, h.CPU.E = h.CPU.E, h.CPU.C
	h.CPU.applyWidthInvariants()
}

// AssertFlags checks N, V, Z and C
func (h *TestHelper) AssertFlags(t *testing.T, name string, n, v, z, c bool) {
	t.Helper()
	if h.CPU.N != n {
		t.Errorf("%s: N = %v, want %v", name, h.CPU.N, n)
	}
	if h.CPU.V != v {
		t.Errorf("%s: V = %v, want %v", name, h.CPU.V, v)
	}
	if h.CPU.Z != z {
		t.Errorf("%s: Z = %v, want %v", name, h.CPU.Z, z)
	}
	if h.CPU.C != c {
		t.Errorf("%s: C = %v, want %v", name, h.CPU.C, c)
	}
}

func TestResetState(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	if h.CPU.PC != 0x8000 {
		t.Errorf("PC = $%04X, want $8000", h.CPU.PC)
	}
	if h.CPU.PBR != 0 {
		t.Errorf("PBR = $%02X, want $00", h.CPU.PBR)
	}
	if !h.CPU.E {
		t.Error("E should be set after reset")
	}
	if h.CPU.SP != 0x01FF {
		t.Errorf("SP = $%04X, want $01FF", h.CPU.SP)
	}
	if h.CPU.D != 0 || h.CPU.DBR != 0 {
		t.Errorf("D = $%04X, DBR = $%02X, want both zero", h.CPU.D, h.CPU.DBR)
	}
	if p := h.CPU.P(); p != 0x34 {
		t.Errorf("P = $%02X, want $34", p)
	}
}

func TestLoadWidthSwitching(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	// CLC, XCE, REP #$20, LDA #$1234, SEP #$20, LDA #$FF
	h.LoadProgram(0x8000,
		0x18,       // CLC
		0xFB,       // XCE
		0xC2, 0x20, // REP #$20
		0xA9, 0x34, 0x12, // LDA #$1234
		0xE2, 0x20, // SEP #$20
		0xA9, 0xFF, // LDA #$FF
	)

	h.StepN(4)
	if h.CPU.A != 0x1234 {
		t.Errorf("16-bit LDA: A = $%04X, want $1234", h.CPU.A)
	}

	h.StepN(2)
	if h.CPU.A&0xFF != 0xFF {
		t.Errorf("8-bit LDA: A.low = $%02X, want $FF", h.CPU.A&0xFF)
	}
	if h.CPU.A>>8 != 0x12 {
		t.Errorf("8-bit LDA: A.high = $%02X, want $12 (preserved)", h.CPU.A>>8)
	}
	if !h.CPU.N || h.CPU.Z {
		t.Errorf("flags after LDA #$FF: N=%v Z=%v, want N=true Z=false", h.CPU.N, h.CPU.Z)
	}
}

func TestXCEInvariants(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()

	// Widen the index registers and dirty their high bytes
	h.CPU.SetP(h.CPU.P() &^ 0x30)
	h.CPU.X = 0x1234
	h.CPU.Y = 0x5678
	h.CPU.SP = 0x1FF0

	// SEC, XCE back to emulation
	h.LoadProgram(0x8000, 0x38, 0xFB)
	h.StepN(2)

	if !h.CPU.E {
		t.Fatal("XCE with C=1 should enter emulation mode")
	}
	if !h.CPU.M || !h.CPU.XF {
		t.Error("emulation mode must force M=1 and X=1")
	}
	if h.CPU.X&0xFF00 != 0 || h.CPU.Y&0xFF00 != 0 {
		t.Errorf("index high bytes not cleared: X=$%04X Y=$%04X", h.CPU.X, h.CPU.Y)
	}
	if h.CPU.SP&0xFF00 != 0x0100 {
		t.Errorf("SP high byte = $%02X, want $01", h.CPU.SP>>8)
	}
	if h.CPU.C {
		t.Error("XCE should have exchanged the old E (clear) into C")
	}
}

func TestEmulationStackWrap(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	h.CPU.SP = 0x0100
	h.CPU.A = 0x42
	h.LoadProgram(0x8000, 0x48) // PHA
	h.StepN(1)

	if h.Memory.Peek(0x000100) != 0x42 {
		t.Error("PHA should write at $0100")
	}
	if h.CPU.SP != 0x01FF {
		t.Errorf("SP = $%04X, want wrap to $01FF", h.CPU.SP)
	}
}

func TestNativeStackNoWrap(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)
	h.EnterNative()

	h.CPU.SP = 0x2000
	h.CPU.A = 0x99
	h.LoadProgram(0x8000, 0x48) // PHA (8-bit M)
	h.StepN(1)

	if h.Memory.Peek(0x002000) != 0x99 {
		t.Error("PHA should write at $2000")
	}
	if h.CPU.SP != 0x1FFF {
		t.Errorf("SP = $%04X, want $1FFF", h.CPU.SP)
	}
}

func TestUnknownOpcodeIsHarmless(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	// WDM consumes its operand byte and does nothing
	h.LoadProgram(0x8000, 0x42, 0x00, 0xA9, 0x07)
	h.StepN(2)

	if h.CPU.A&0xFF != 0x07 {
		t.Errorf("execution did not continue past WDM: A = $%02X", h.CPU.A&0xFF)
	}
}

func TestLoopDetection(t *testing.T) {
	h := NewTestHelper()
	h.SetupReset(0x8000)

	tripped := false
	h.CPU.EnableLoopDetection(true)
	h.CPU.SetLoopLimit(100)
	h.CPU.SetLoopCallback(func(pc uint16) { tripped = true })

	// BRA -2: a one-instruction infinite loop
	h.LoadProgram(0x8000, 0x80, 0xFE)
	for i := 0; i < 200; i++ {
		h.CPU.Step()
	}

	if !tripped {
		t.Error("loop detector did not fire")
	}
	if h.CPU.PC != 0x8000 {
		t.Errorf("loop detection must not change machine state: PC = $%04X", h.CPU.PC)
	}
}
