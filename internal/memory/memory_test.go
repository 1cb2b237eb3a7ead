package memory

import (
	"testing"

	"gosnes/internal/cartridge"
)

// mockPPU records register traffic
type mockPPU struct {
	writes []struct {
		Addr  uint16
		Value uint8
	}
	regs map[uint16]uint8
}

func newMockPPU() *mockPPU {
	return &mockPPU{regs: make(map[uint16]uint8)}
}

func (p *mockPPU) ReadRegister(address uint16) uint8 {
	return p.regs[address]
}

func (p *mockPPU) WriteRegister(address uint16, value uint8) {
	p.writes = append(p.writes, struct {
		Addr  uint16
		Value uint8
	}{address, value})
	p.regs[address] = value
}

// mockAPU records mailbox traffic
type mockAPU struct {
	ports [4]uint8
}

func (a *mockAPU) ReadPort(port uint8) uint8 {
	return a.ports[port&3]
}

func (a *mockAPU) WritePort(port uint8, value uint8) {
	a.ports[port&3] = value
}

func loROMCart(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	cart, err := cartridge.NewROMBuilder(256*1024, cartridge.MappingLoROM).
		SetRAMSize(5).
		SetResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("building test cartridge: %v", err)
	}
	return cart
}

func hiROMCart(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	cart, err := cartridge.NewROMBuilder(256*1024, cartridge.MappingHiROM).
		SetResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("building test cartridge: %v", err)
	}
	return cart
}

func TestWRAMBanksAndMirror(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write8(0x7E0000, 0x11)
	m.Write8(0x7F_FFFF, 0x22)
	if m.Read8(0x7E0000) != 0x11 || m.Read8(0x7FFFFF) != 0x22 {
		t.Error("WRAM read back failed")
	}

	// Low 8KB mirrors into the system banks
	m.Write8(0x7E1234, 0x33)
	if m.Read8(0x001234) != 0x33 {
		t.Error("low WRAM mirror in bank $00 failed")
	}
	if m.Read8(0x801234) != 0x33 {
		t.Error("low WRAM mirror in bank $80 failed")
	}
	m.Write8(0x3F0042, 0x44)
	if m.Read8(0x7E0042) != 0x44 {
		t.Error("mirror write did not land in WRAM")
	}
}

func TestPPURegisterRouting(t *testing.T) {
	ppu := newMockPPU()
	m := New(ppu, &mockAPU{}, nil)

	m.Write8(0x002100, 0x8F)
	if len(ppu.writes) != 1 || ppu.writes[0].Addr != 0x2100 || ppu.writes[0].Value != 0x8F {
		t.Fatalf("PPU write not routed: %+v", ppu.writes)
	}

	ppu.regs[0x2139] = 0xAB
	if m.Read8(0xBF2139) != 0xAB {
		t.Error("PPU read not routed from a mirror bank")
	}
}

func TestAPUPortRouting(t *testing.T) {
	apu := &mockAPU{}
	m := New(newMockPPU(), apu, nil)

	m.Write8(0x002140, 0xCC)
	m.Write8(0x802143, 0xDD)
	if apu.ports[0] != 0xCC || apu.ports[3] != 0xDD {
		t.Errorf("APU ports = %v", apu.ports)
	}

	apu.ports[1] = 0xBB
	if m.Read8(0x002141) != 0xBB {
		t.Error("APU port read not routed")
	}
}

func TestLoROMMapping(t *testing.T) {
	cart := loROMCart(t)
	m := New(newMockPPU(), &mockAPU{}, cart)

	rom := cart.ROM()
	// Bank $00 $8000 maps to offset 0
	if m.Read8(0x008000) != rom[0] {
		t.Error("LoROM $00:8000 should map to ROM offset 0")
	}
	// Bank $01 $8000 maps to offset $8000
	if m.Read8(0x018000) != rom[0x8000] {
		t.Error("LoROM $01:8000 should map to ROM offset $8000")
	}
	// Mirror banks $80+
	if m.Read8(0x808000) != rom[0] {
		t.Error("LoROM bank $80 should mirror bank $00")
	}
	// Offset within the upper half
	if m.Read8(0x00FFFF) != rom[0x7FFF] {
		t.Error("LoROM $00:FFFF should map to ROM offset $7FFF")
	}
}

func TestHiROMMapping(t *testing.T) {
	cart := hiROMCart(t)
	m := New(newMockPPU(), &mockAPU{}, cart)

	rom := cart.ROM()
	// Bank $C0 exposes a full 64KB window from offset 0
	if m.Read8(0xC00000) != rom[0] {
		t.Error("HiROM $C0:0000 should map to ROM offset 0")
	}
	if m.Read8(0xC11234) != rom[0x11234] {
		t.Error("HiROM $C1:1234 should map to ROM offset $11234")
	}
	// System banks still reach ROM in their upper half
	if m.Read8(0x00FFC0) != rom[0xFFC0] {
		t.Error("HiROM $00:FFC0 should map to ROM offset $FFC0")
	}
}

func TestROMWritesDropped(t *testing.T) {
	cart := loROMCart(t)
	m := New(newMockPPU(), &mockAPU{}, cart)

	before := m.Read8(0x008000)
	m.Write8(0x008000, ^before)
	if m.Read8(0x008000) != before {
		t.Error("ROM write was not dropped")
	}
}

func TestSRAMWindow(t *testing.T) {
	cart := loROMCart(t)
	m := New(newMockPPU(), &mockAPU{}, cart)

	m.Write8(0x706000, 0x5A)
	if m.Read8(0x706000) != 0x5A {
		t.Error("SRAM read back failed in bank $70")
	}
	if m.Read8(0xF06000) != 0x5A {
		t.Error("SRAM should appear in bank $F0 too")
	}

	// Adjacent banks select further 8KB windows
	m.Write8(0x716000, 0xA5)
	if cart.ReadSRAM(0x2000) != 0xA5 {
		t.Error("bank $71 should map to SRAM offset $2000")
	}
}

func TestOpenBusReads(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write8(0x7E0000, 0x77) // drive a value onto the bus
	_ = m.Read8(0x7E0000)
	if got := m.Read8(0x005000); got != 0x77 {
		t.Errorf("unmapped read = $%02X, want open-bus $77", got)
	}
}

func TestWordHelpers(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write16(0x7E1000, 0xBEEF)
	if m.Read16(0x7E1000) != 0xBEEF {
		t.Error("Read16/Write16 round trip failed")
	}
	if m.Read8(0x7E1000) != 0xEF || m.Read8(0x7E1001) != 0xBE {
		t.Error("Write16 must be little-endian")
	}

	// Read16 at a bank edge wraps within the bank
	m.Write8(0x7E0000, 0x12)
	m.Write8(0x7EFFFF, 0x34)
	if m.Read16(0x7EFFFF) != 0x1234 {
		t.Errorf("Read16 at bank edge = $%04X, want $1234 (wrap)", m.Read16(0x7EFFFF))
	}
}

func TestWRAMDataPort(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	// Point the port at $7F0100 and stream two bytes
	m.Write8(0x002181, 0x00)
	m.Write8(0x002182, 0x01)
	m.Write8(0x002183, 0x01)
	m.Write8(0x002180, 0xAB)
	m.Write8(0x002180, 0xCD)

	if m.Read8(0x7F0100) != 0xAB || m.Read8(0x7F0101) != 0xCD {
		t.Error("WMDATA writes did not land with post-increment")
	}

	// Reading streams from the current address
	m.Write8(0x002181, 0x00)
	m.Write8(0x002182, 0x01)
	m.Write8(0x002183, 0x01)
	if m.Read8(0x002180) != 0xAB || m.Read8(0x002180) != 0xCD {
		t.Error("WMDATA reads did not stream")
	}
}

func TestHardwareMultiply(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write8(0x004202, 200)
	m.Write8(0x004203, 100)
	product := uint16(m.Read8(0x004216)) | uint16(m.Read8(0x004217))<<8
	if product != 20000 {
		t.Errorf("RDMPY = %d, want 20000", product)
	}
}

func TestHardwareDivide(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write8(0x004204, 0xE8) // 1000 low
	m.Write8(0x004205, 0x03) // 1000 high
	m.Write8(0x004206, 33)

	quotient := uint16(m.Read8(0x004214)) | uint16(m.Read8(0x004215))<<8
	remainder := uint16(m.Read8(0x004216)) | uint16(m.Read8(0x004217))<<8
	if quotient != 1000/33 || remainder != 1000%33 {
		t.Errorf("divide = %d r %d, want %d r %d", quotient, remainder, 1000/33, 1000%33)
	}
}

func TestDivideByZero(t *testing.T) {
	m := New(newMockPPU(), &mockAPU{}, nil)

	m.Write8(0x004204, 0x34)
	m.Write8(0x004205, 0x12)
	m.Write8(0x004206, 0)

	quotient := uint16(m.Read8(0x004214)) | uint16(m.Read8(0x004215))<<8
	remainder := uint16(m.Read8(0x004216)) | uint16(m.Read8(0x004217))<<8
	if quotient != 0xFFFF || remainder != 0x1234 {
		t.Errorf("divide by zero = $%04X r $%04X, want $FFFF r $1234", quotient, remainder)
	}
}

func TestNMITIMENLatch(t *testing.T) {
	ppu := newMockPPU()
	m := New(ppu, &mockAPU{}, nil)

	m.Write8(0x004200, 0x81)
	if !m.NMIEnabled() {
		t.Error("NMI enable bit not latched")
	}
	if !m.AutoJoypadEnabled() {
		t.Error("auto-joypad bit not latched")
	}
	// The PPU also sees the write for its NMI gating
	found := false
	for _, w := range ppu.writes {
		if w.Addr == 0x4200 && w.Value == 0x81 {
			found = true
		}
	}
	if !found {
		t.Error("$4200 write not forwarded to the PPU")
	}
}
