// Package memory implements the 24-bit system bus, address translation and
// DMA engine for the SNES.
package memory

import "gosnes/internal/cartridge"

// PPUInterface defines the interface for PPU register access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for the four mailbox ports
type APUInterface interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, value uint8)
}

// InputInterface defines the interface for controller access
type InputInterface interface {
	ReadPort(address uint16) uint8
	Write(address uint16, value uint8)
}

// Memory represents the SNES memory map. All CPU-visible accesses go through
// Read8/Write8; routing follows the bank/offset decoding of the real bus.
type Memory struct {
	wram [0x20000]uint8 // 128KB work RAM at $7E0000-$7FFFFF

	cart  *cartridge.Cartridge
	ppu   PPUInterface
	apu   APUInterface
	input InputInterface

	dma *DMA

	// CPU I/O state
	nmitimen uint8 // $4200 latch
	hdmaen   uint8 // $420C, stored but inert

	// Hardware math unit: unsigned 8x8 multiply and 16/8 divide. Results
	// appear in RDDIV/RDMPY immediately; the real latency is not modeled.
	mulA     uint8
	dividend uint16
	rddiv    uint16
	rdmpy    uint16

	// WMDATA port: 17-bit WRAM address with post-increment
	wmAddr uint32

	// Last value driven onto the bus, returned for unmapped reads
	openBus uint8
}

// New creates a new Memory instance wired to its peripherals
func New(ppu PPUInterface, apu APUInterface, cart *cartridge.Cartridge) *Memory {
	m := &Memory{
		ppu:  ppu,
		apu:  apu,
		cart: cart,
	}
	m.dma = NewDMA(m)
	return m
}

// SetInputSystem sets the controller interface
func (m *Memory) SetInputSystem(input InputInterface) {
	m.input = input
}

// SetCartridge replaces the loaded cartridge
func (m *Memory) SetCartridge(cart *cartridge.Cartridge) {
	m.cart = cart
}

// DMA returns the DMA engine for inspection
func (m *Memory) DMA() *DMA {
	return m.dma
}

// NMIEnabled reports bit 7 of the $4200 latch
func (m *Memory) NMIEnabled() bool {
	return m.nmitimen&0x80 != 0
}

// AutoJoypadEnabled reports bit 0 of the $4200 latch
func (m *Memory) AutoJoypadEnabled() bool {
	return m.nmitimen&0x01 != 0
}

// Read8 reads one byte from a 24-bit bus address
func (m *Memory) Read8(address uint32) uint8 {
	bank := uint8(address >> 16)
	offset := uint16(address)

	var value uint8
	switch {
	case bank == 0x7E || bank == 0x7F:
		value = m.wram[address&0x1FFFF]

	case bank < 0x40 || (bank >= 0x80 && bank < 0xC0):
		value = m.readSystem(bank, offset)

	case isSRAMBank(bank) && offset >= 0x6000 && offset < 0x8000:
		if m.cart != nil {
			value = m.cart.ReadSRAM(sramOffset(bank, offset))
		} else {
			value = m.openBus
		}

	default:
		// Banks $40-$7D and $C0-$FF are a full ROM window
		value = m.readROM(bank, offset)
	}

	m.openBus = value
	return value
}

// readSystem handles the system area of banks $00-$3F and $80-$BF
func (m *Memory) readSystem(bank uint8, offset uint16) uint8 {
	switch {
	case offset < 0x2000:
		// Low WRAM mirror
		return m.wram[offset]

	case offset >= 0x2140 && offset <= 0x2143:
		if m.apu != nil {
			return m.apu.ReadPort(uint8(offset - 0x2140))
		}
		return 0

	case offset == 0x2180:
		value := m.wram[m.wmAddr&0x1FFFF]
		m.wmAddr++
		return value

	case offset >= 0x2100 && offset <= 0x21FF:
		if m.ppu != nil {
			return m.ppu.ReadRegister(offset)
		}
		return 0

	case offset == 0x4016 || offset == 0x4017:
		if m.input != nil {
			return m.input.ReadPort(offset)
		}
		return 0

	case offset >= 0x4200 && offset <= 0x421F:
		return m.readCPUIO(offset)

	case offset >= 0x4300 && offset <= 0x437F:
		return m.dma.ReadRegister(offset)

	case offset >= 0x8000:
		return m.readROM(bank, offset)

	default:
		return m.openBus
	}
}

// readCPUIO handles the $4200-$421F register block
func (m *Memory) readCPUIO(offset uint16) uint8 {
	switch offset {
	case 0x4210, 0x4212:
		// NMI flag and PPU status live in the PPU
		if m.ppu != nil {
			return m.ppu.ReadRegister(offset)
		}
		return 0
	case 0x420B:
		return m.dma.EnableBits()
	case 0x420C:
		return m.hdmaen
	case 0x4214:
		return uint8(m.rddiv)
	case 0x4215:
		return uint8(m.rddiv >> 8)
	case 0x4216:
		return uint8(m.rdmpy)
	case 0x4217:
		return uint8(m.rdmpy >> 8)
	default:
		if offset >= 0x4218 && offset <= 0x421F && m.input != nil {
			return m.input.ReadPort(offset)
		}
		return m.openBus
	}
}

// Write8 writes one byte to a 24-bit bus address
func (m *Memory) Write8(address uint32, value uint8) {
	bank := uint8(address >> 16)
	offset := uint16(address)
	m.openBus = value

	switch {
	case bank == 0x7E || bank == 0x7F:
		m.wram[address&0x1FFFF] = value

	case bank < 0x40 || (bank >= 0x80 && bank < 0xC0):
		m.writeSystem(bank, offset, value)

	case isSRAMBank(bank) && offset >= 0x6000 && offset < 0x8000:
		if m.cart != nil {
			m.cart.WriteSRAM(sramOffset(bank, offset), value)
		}
	}
	// Everything else in the upper banks is ROM; writes are dropped
}

// writeSystem handles writes into the system area of banks $00-$3F and $80-$BF
func (m *Memory) writeSystem(bank uint8, offset uint16, value uint8) {
	switch {
	case offset < 0x2000:
		m.wram[offset] = value

	case offset >= 0x2140 && offset <= 0x2143:
		if m.apu != nil {
			m.apu.WritePort(uint8(offset-0x2140), value)
		}

	case offset >= 0x2180 && offset <= 0x2183:
		m.writeWMPort(offset, value)

	case offset >= 0x2100 && offset <= 0x21FF:
		if m.ppu != nil {
			m.ppu.WriteRegister(offset, value)
		}

	case offset == 0x4016:
		if m.input != nil {
			m.input.Write(offset, value)
		}

	case offset >= 0x4200 && offset <= 0x421F:
		m.writeCPUIO(offset, value)

	case offset >= 0x4300 && offset <= 0x437F:
		m.dma.WriteRegister(offset, value)
	}
	// Writes at $8000+ hit ROM and are silently dropped
}

// writeCPUIO handles the $4200-$421F register block
func (m *Memory) writeCPUIO(offset uint16, value uint8) {
	switch offset {
	case 0x4200:
		m.nmitimen = value
		if m.ppu != nil {
			m.ppu.WriteRegister(offset, value)
		}
	case 0x4202: // WRMPYA
		m.mulA = value
	case 0x4203: // WRMPYB: starts the multiply
		m.rdmpy = uint16(m.mulA) * uint16(value)
	case 0x4204: // WRDIVL
		m.dividend = m.dividend&0xFF00 | uint16(value)
	case 0x4205: // WRDIVH
		m.dividend = m.dividend&0x00FF | uint16(value)<<8
	case 0x4206: // WRDIVB: starts the divide
		if value == 0 {
			// Hardware yields $FFFF with the dividend as remainder
			m.rddiv = 0xFFFF
			m.rdmpy = m.dividend
		} else {
			m.rddiv = m.dividend / uint16(value)
			m.rdmpy = m.dividend % uint16(value)
		}
	case 0x420B:
		m.dma.Enable(value)
	case 0x420C:
		// HDMA is out of scope; the latch is kept so reads return it
		m.hdmaen = value
	default:
		if m.ppu != nil {
			m.ppu.WriteRegister(offset, value)
		}
	}
}

// writeWMPort handles the WRAM data port: WMDATA at $2180 and the 17-bit
// address at $2181-$2183.
func (m *Memory) writeWMPort(offset uint16, value uint8) {
	switch offset {
	case 0x2180:
		m.wram[m.wmAddr&0x1FFFF] = value
		m.wmAddr++
	case 0x2181:
		m.wmAddr = m.wmAddr&0x1FF00 | uint32(value)
	case 0x2182:
		m.wmAddr = m.wmAddr&0x100FF | uint32(value)<<8
	case 0x2183:
		m.wmAddr = m.wmAddr&0x0FFFF | uint32(value&0x01)<<16
	}
}

// isSRAMBank reports whether a bank carries the $6000-$7FFF SRAM window
func isSRAMBank(bank uint8) bool {
	return (bank >= 0x70 && bank <= 0x7D) || bank >= 0xF0
}

// sramOffset projects a bank/offset pair onto the linear SRAM space. Carts
// expose 8KB windows per bank in $70-$7D / $F0-$FF.
func sramOffset(bank uint8, offset uint16) uint32 {
	return uint32(bank&0x0F)*0x2000 + uint32(offset-0x6000)
}

// readROM translates a ROM-area access through the cartridge mapping
func (m *Memory) readROM(bank uint8, offset uint16) uint8 {
	if m.cart == nil {
		return m.openBus
	}
	romOffset, ok := romAddress(m.cart.Mapping(), bank, offset)
	if !ok {
		return m.openBus
	}
	return m.cart.ReadROM(romOffset)
}

// romAddress implements the per-mapping projection of a 24-bit address onto a
// linear ROM offset. The bool result is false for addresses outside the map.
func romAddress(mapping cartridge.Mapping, bank uint8, offset uint16) (uint32, bool) {
	switch mapping {
	case cartridge.MappingLoROM, cartridge.MappingExLoROM:
		if offset < 0x8000 {
			return 0, false
		}
		return uint32(bank&0x7F)*0x8000 + uint32(offset-0x8000), true

	case cartridge.MappingHiROM:
		return uint32(bank&0x3F)*0x10000 + uint32(offset), true

	case cartridge.MappingExHiROM:
		// The high half of the address space selects the upper 4MB
		base := uint32(bank&0x3F) * 0x10000
		if bank < 0x80 {
			base += 0x400000
		}
		return base + uint32(offset), true

	default:
		return 0, false
	}
}

// Read16 reads a little-endian word without crossing the bank implicitly
func (m *Memory) Read16(address uint32) uint16 {
	low := m.Read8(address)
	high := m.Read8((address & 0xFF0000) | uint32(uint16(address)+1))
	return uint16(low) | uint16(high)<<8
}

// Read16Cross reads a little-endian word allowing the bank to carry
func (m *Memory) Read16Cross(address uint32) uint16 {
	low := m.Read8(address)
	high := m.Read8((address + 1) & 0xFFFFFF)
	return uint16(low) | uint16(high)<<8
}

// Read24 reads a 24-bit little-endian value, wrapping within the bank
func (m *Memory) Read24(address uint32) uint32 {
	low := m.Read8(address)
	mid := m.Read8((address & 0xFF0000) | uint32(uint16(address)+1))
	high := m.Read8((address & 0xFF0000) | uint32(uint16(address)+2))
	return uint32(low) | uint32(mid)<<8 | uint32(high)<<16
}

// Write16 writes a little-endian word without crossing the bank implicitly
func (m *Memory) Write16(address uint32, value uint16) {
	m.Write8(address, uint8(value))
	m.Write8((address&0xFF0000)|uint32(uint16(address)+1), uint8(value>>8))
}
