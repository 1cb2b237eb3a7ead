// Package ppu implements the SNES picture processing unit: VRAM, CGRAM and
// OAM, the memory-mapped register protocol, and per-scanline rendering into
// a 256x224 framebuffer.
package ppu

// Frame geometry and timing constants
const (
	ScreenWidth  = 256
	ScreenHeight = 224

	DotsPerLine    = 341
	LinesPerFrame  = 262
	VBlankScanline = 225
)

// PPU represents the picture processing unit
type PPU struct {
	// Memories. VRAM is byte-addressed internally; the register interface
	// exposes 16-bit word addresses.
	vram  [0x10000]uint8
	cgram [0x200]uint8
	oam   [0x220]uint8

	// $2100 INIDISP
	forcedBlank bool
	brightness  uint8

	// $2101 OBSEL
	objSizeSel  uint8
	objTileBase uint16 // word address

	// OAM addressing
	oamAddr uint16 // byte address, wraps at 544

	// $2105 BGMODE
	bgMode     uint8
	bgTileSize uint8 // per-BG 16px tile bits, stored

	// Per-background layer configuration
	bgTilemapBase [4]uint16 // word address
	bgTilemapSize [4]uint8  // 0: 32x32, 1: 64x32, 2: 32x64, 3: 64x64
	bgTileBase    [4]uint16 // word address
	bgScrollX     [4]uint16
	bgScrollY     [4]uint16

	// Shared write-twice latches for the scroll registers
	scrollLatchX uint8
	scrollLatchY uint8

	// VRAM port
	vramAddr      uint16 // word address
	vramIncOnHigh bool
	vramIncStep   uint16
	vramPrefetch  uint16

	// CGRAM port
	cgramAddr uint16 // byte address

	// Screen designation
	mainScreen uint8
	subScreen  uint8

	// Registers accepted but without visible effect (windows, color math,
	// Mode 7) are latched here so reads and debuggers see them.
	inert [0x100]uint8

	// Timing
	scanline int
	dot      int

	// NMI state
	nmiFlag        bool
	nmiEnabled     bool
	nmiCallback    func()
	vblankCallback func()

	frameBuffer   [ScreenWidth * ScreenHeight]uint32
	frameCallback func()

	// Per-line compositing scratch, reused across scanlines
	lineMain [ScreenWidth]pixel
}

// pixel is one composited layer sample before brightness
type pixel struct {
	color    uint16 // 15-bit BGR
	priority uint8
	opaque   bool
}

// New creates a PPU in its power-on state: forced blank, brightness zero
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

// Reset restores power-on state
func (p *PPU) Reset() {
	p.forcedBlank = true
	p.brightness = 0
	p.scanline = 0
	p.dot = 0
	p.nmiFlag = false
	p.nmiEnabled = false
	p.vramAddr = 0
	p.vramIncStep = 1
	p.vramIncOnHigh = false
	p.oamAddr = 0
	p.cgramAddr = 0
	p.scrollLatchX = 0
	p.scrollLatchY = 0
	for i := range p.bgScrollX {
		p.bgScrollX[i] = 0
		p.bgScrollY[i] = 0
	}
}

// SetNMICallback installs the handler invoked when V-Blank begins with NMI
// enabled.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCompleteCallback installs the handler invoked when scanline 261
// wraps and the framebuffer is consistent.
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCallback = callback
}

// SetVBlankCallback installs the handler invoked on entering scanline 225
// regardless of the NMI enable bit; the bus uses it for joypad auto-read.
func (p *PPU) SetVBlankCallback(callback func()) {
	p.vblankCallback = callback
}

// Step advances the PPU by one dot
func (p *PPU) Step() {
	p.dot++
	if p.dot < DotsPerLine {
		return
	}
	p.dot = 0

	// Render the just-completed line; under forced blank the previous
	// frame's contents are left in place.
	if p.scanline < ScreenHeight && !p.forcedBlank {
		p.renderScanline(p.scanline)
	}

	p.scanline++

	switch {
	case p.scanline == VBlankScanline:
		// The flag latches regardless of the enable bit; only the
		// interrupt line is gated.
		p.nmiFlag = true
		if p.vblankCallback != nil {
			p.vblankCallback()
		}
		if p.nmiEnabled && p.nmiCallback != nil {
			p.nmiCallback()
		}

	case p.scanline >= LinesPerFrame:
		p.scanline = 0
		p.nmiFlag = false
		if p.frameCallback != nil {
			p.frameCallback()
		}
	}
}

// Scanline returns the current scanline for scheduling and tests
func (p *PPU) Scanline() int {
	return p.scanline
}

// Dot returns the current dot position
func (p *PPU) Dot() int {
	return p.dot
}

// InVBlank reports whether the beam is inside the vertical blanking interval
func (p *PPU) InVBlank() bool {
	return p.scanline >= VBlankScanline
}

// FrameBuffer returns the current framebuffer. Pixels are RGBA8888 packed
// little-endian (R in the low byte) with alpha $FF; the buffer is consistent
// only between frame completion and the next frame start.
func (p *PPU) FrameBuffer() []uint32 {
	return p.frameBuffer[:]
}

// WriteRegister handles a CPU write to $21xx (and the $42xx slots the bus
// routes here).
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2100: // INIDISP
		p.forcedBlank = value&0x80 != 0
		p.brightness = value & 0x0F

	case 0x2101: // OBSEL
		p.objSizeSel = value >> 5
		p.objTileBase = uint16(value&0x07) << 13

	case 0x2102: // OAMADDL
		p.oamAddr = (p.oamAddr&0x200 | uint16(value)<<1) % 544

	case 0x2103: // OAMADDH
		p.oamAddr = (uint16(value&0x01)<<9 | p.oamAddr&0x1FF) % 544

	case 0x2104: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr = (p.oamAddr + 1) % 544

	case 0x2105: // BGMODE
		p.bgMode = value & 0x07
		p.bgTileSize = value >> 4

	case 0x2107, 0x2108, 0x2109, 0x210A: // BGnSC
		bg := int(address - 0x2107)
		p.bgTilemapBase[bg] = uint16(value&0xFC) << 8
		p.bgTilemapSize[bg] = value & 0x03

	case 0x210B: // BG12NBA
		p.bgTileBase[0] = uint16(value&0x0F) << 12
		p.bgTileBase[1] = uint16(value>>4) << 12

	case 0x210C: // BG34NBA
		p.bgTileBase[2] = uint16(value&0x0F) << 12
		p.bgTileBase[3] = uint16(value>>4) << 12

	case 0x210D, 0x210F, 0x2111, 0x2113: // BGnHOFS
		bg := int(address-0x210D) / 2
		p.bgScrollX[bg] = uint16(p.scrollLatchX) | uint16(value)<<8
		p.scrollLatchX = value

	case 0x210E, 0x2110, 0x2112, 0x2114: // BGnVOFS
		bg := int(address-0x210E) / 2
		p.bgScrollY[bg] = uint16(p.scrollLatchY) | uint16(value)<<8
		p.scrollLatchY = value

	case 0x2115: // VMAIN
		p.vramIncOnHigh = value&0x80 != 0
		switch value & 0x03 {
		case 0:
			p.vramIncStep = 1
		case 1:
			p.vramIncStep = 32
		default:
			p.vramIncStep = 128
		}

	case 0x2116: // VMADDL
		p.vramAddr = p.vramAddr&0xFF00 | uint16(value)
		p.reloadPrefetch()

	case 0x2117: // VMADDH
		p.vramAddr = p.vramAddr&0x00FF | uint16(value)<<8
		p.reloadPrefetch()

	case 0x2118: // VMDATAL
		p.vram[uint32(p.vramAddr)*2&0xFFFF] = value
		if !p.vramIncOnHigh {
			p.vramAddr += p.vramIncStep
		}

	case 0x2119: // VMDATAH
		p.vram[(uint32(p.vramAddr)*2+1)&0xFFFF] = value
		if p.vramIncOnHigh {
			p.vramAddr += p.vramIncStep
		}

	case 0x2121: // CGADD
		p.cgramAddr = uint16(value) * 2

	case 0x2122: // CGDATA
		p.cgram[p.cgramAddr&0x1FF] = value
		p.cgramAddr = (p.cgramAddr + 1) & 0x1FF

	case 0x212C: // TM
		p.mainScreen = value

	case 0x212D: // TS
		p.subScreen = value

	case 0x4200: // NMITIMEN
		p.nmiEnabled = value&0x80 != 0

	default:
		if address >= 0x2100 && address <= 0x21FF {
			p.inert[address-0x2100] = value
		}
	}
}

// ReadRegister handles a CPU read from the PPU's register space
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2139: // VMDATALREAD
		value := uint8(p.vramPrefetch)
		if !p.vramIncOnHigh {
			p.advancePrefetch()
		}
		return value

	case 0x213A: // VMDATAHREAD
		value := uint8(p.vramPrefetch >> 8)
		if p.vramIncOnHigh {
			p.advancePrefetch()
		}
		return value

	case 0x213F: // STAT78: chip version 1, latch state clear
		return 0x01

	case 0x4210: // RDNMI: NMI flag (cleared by the read) and CPU version
		value := uint8(0x02)
		if p.nmiFlag {
			value |= 0x80
		}
		p.nmiFlag = false
		return value

	case 0x4212: // HVBJOY
		var value uint8
		if p.InVBlank() {
			value |= 0x80
		}
		if p.dot >= 274 {
			value |= 0x40
		}
		return value

	default:
		if address >= 0x2100 && address <= 0x21FF {
			return p.inert[address-0x2100]
		}
		return 0
	}
}

// reloadPrefetch fills the VRAM read buffer from the current word address
func (p *PPU) reloadPrefetch() {
	byteAddr := uint32(p.vramAddr) * 2
	p.vramPrefetch = uint16(p.vram[byteAddr&0xFFFF]) | uint16(p.vram[(byteAddr+1)&0xFFFF])<<8
}

// advancePrefetch steps the word address and refills the buffer, the
// pipelined half of the classic prefetched VRAM read.
func (p *PPU) advancePrefetch() {
	p.vramAddr += p.vramIncStep
	p.reloadPrefetch()
}

// VRAM returns a VRAM byte for tests and debug tooling
func (p *PPU) VRAM(byteAddr uint16) uint8 {
	return p.vram[byteAddr]
}

// CGRAM returns a CGRAM byte for tests and debug tooling
func (p *PPU) CGRAM(addr uint16) uint8 {
	return p.cgram[addr&0x1FF]
}

// OAM returns an OAM byte for tests and debug tooling
func (p *PPU) OAM(addr uint16) uint8 {
	return p.oam[addr%544]
}

// NMIEnabled reports the $4200 NMI enable bit
func (p *PPU) NMIEnabled() bool {
	return p.nmiEnabled
}

// NMIFlagSet reports the latched NMI flag without clearing it
func (p *PPU) NMIFlagSet() bool {
	return p.nmiFlag
}
