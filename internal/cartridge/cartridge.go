// Package cartridge implements ROM image loading and mapping detection for SNES cartridges.
package cartridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Mapping represents a cartridge memory mapping scheme
type Mapping uint8

const (
	MappingLoROM Mapping = iota
	MappingHiROM
	MappingExLoROM
	MappingExHiROM
)

// String returns the mapping name
func (m Mapping) String() string {
	switch m {
	case MappingLoROM:
		return "LoROM"
	case MappingHiROM:
		return "HiROM"
	case MappingExLoROM:
		return "ExLoROM"
	case MappingExHiROM:
		return "ExHiROM"
	default:
		return "Unknown"
	}
}

// Header base offsets into the ROM image for each mapping candidate.
const (
	headerLoROM   = 0x7FC0
	headerHiROM   = 0xFFC0
	headerExHiROM = 0x40FFC0

	// Offsets within the 32-byte header block
	headerTitleLen   = 21
	headerMapMode    = 0x15
	headerCartType   = 0x16
	headerROMSize    = 0x17
	headerRAMSize    = 0x18
	headerComplement = 0x1C
	headerChecksum   = 0x1E

	copierHeaderSize = 512
	maxSRAMSize      = 32 * 1024
)

// ErrInvalidROM is returned when the image is too small to hold any header.
var ErrInvalidROM = errors.New("invalid ROM image: no parseable SNES header")

// Header holds the parsed cartridge header fields
type Header struct {
	Title      string
	MapMode    uint8
	CartType   uint8
	ROMSizeLog uint8 // log2 KiB
	RAMSizeLog uint8 // log2 KiB
	Checksum   uint16
	Complement uint16
}

// Cartridge represents a loaded SNES cartridge
type Cartridge struct {
	rom     []uint8
	sram    []uint8
	mapping Mapping
	header  Header

	hasBattery bool
}

// LoadFromFile loads a cartridge image from disk
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader loads a cartridge image from an io.Reader
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a raw cartridge image. A 512-byte copier header is
// detected by size modulo 1024 and stripped before mapping detection.
func LoadFromBytes(data []uint8) (*Cartridge, error) {
	if len(data)%1024 == copierHeaderSize {
		data = data[copierHeaderSize:]
	}
	if len(data) < headerLoROM+32 {
		return nil, ErrInvalidROM
	}

	cart := &Cartridge{rom: data}
	cart.mapping = detectMapping(data)

	base := headerBase(cart.mapping)
	if base+32 > len(data) {
		base = headerLoROM
	}
	cart.header = parseHeader(data[base : base+32])

	sramSize := 0
	if cart.header.RAMSizeLog > 0 && cart.header.RAMSizeLog < 0x10 {
		sramSize = 1024 << cart.header.RAMSizeLog
		if sramSize > maxSRAMSize {
			sramSize = maxSRAMSize
		}
	}
	cart.sram = make([]uint8, sramSize)
	cart.hasBattery = cart.header.CartType == 0x02 || cart.header.CartType == 0x05 ||
		cart.header.CartType == 0x06

	return cart, nil
}

// headerBase returns the image offset of the header for a mapping
func headerBase(m Mapping) int {
	switch m {
	case MappingHiROM:
		return headerHiROM
	case MappingExHiROM:
		return headerExHiROM
	default:
		return headerLoROM
	}
}

// parseHeader decodes the 32-byte header block
func parseHeader(block []uint8) Header {
	title := strings.TrimRight(string(block[:headerTitleLen]), " \x00")
	return Header{
		Title:      title,
		MapMode:    block[headerMapMode],
		CartType:   block[headerCartType],
		ROMSizeLog: block[headerROMSize],
		RAMSizeLog: block[headerRAMSize],
		Checksum:   uint16(block[headerChecksum]) | uint16(block[headerChecksum+1])<<8,
		Complement: uint16(block[headerComplement]) | uint16(block[headerComplement+1])<<8,
	}
}

// checksumValid reports whether the header at base carries a checksum and
// complement that agree with each other.
func checksumValid(rom []uint8, base int) bool {
	if base+32 > len(rom) {
		return false
	}
	checksum := uint16(rom[base+headerChecksum]) | uint16(rom[base+headerChecksum+1])<<8
	complement := uint16(rom[base+headerComplement]) | uint16(rom[base+headerComplement+1])<<8
	return checksum^complement == 0xFFFF && checksum != 0
}

// vectorsPlausible checks the three emulation-mode interrupt vectors (NMI,
// RESET, IRQ/BRK at $FFFA-$FFFF) that sit just past the header block. Real programs place handlers in the upper half
// of bank $00, so a vector below $8000 (and nonzero) discredits the candidate.
func vectorsPlausible(rom []uint8, base int) bool {
	vectorBase := base + 0x3A // $FFFA relative to a $FFC0 header
	if vectorBase+6 > len(rom) {
		return false
	}
	for i := 0; i < 3; i++ {
		v := uint16(rom[vectorBase+i*2]) | uint16(rom[vectorBase+i*2+1])<<8
		if v != 0 && v < 0x8000 {
			return false
		}
	}
	return true
}

// detectMapping chooses the cartridge mapping. Candidates are scored by
// checksum/complement agreement, in the fixed order HiROM, LoROM, ExHiROM;
// the map-mode byte breaks the tie when no checksum validates, and LoROM is
// the final default.
func detectMapping(rom []uint8) Mapping {
	if checksumValid(rom, headerHiROM) && vectorsPlausible(rom, headerHiROM) {
		return MappingHiROM
	}
	if checksumValid(rom, headerLoROM) && vectorsPlausible(rom, headerLoROM) {
		return MappingLoROM
	}
	if checksumValid(rom, headerExHiROM) && vectorsPlausible(rom, headerExHiROM) {
		return MappingExHiROM
	}

	// No checksum validated; fall back to the map-mode byte at the LoROM
	// header position if the image is big enough to hold one.
	if len(rom) > headerLoROM+headerMapMode {
		switch rom[headerLoROM+headerMapMode] & 0x0F {
		case 0x00:
			return MappingLoROM
		case 0x01:
			return MappingHiROM
		case 0x05:
			return MappingExHiROM
		}
	}
	return MappingLoROM
}

// ROM returns the raw ROM image (copier header stripped)
func (c *Cartridge) ROM() []uint8 {
	return c.rom
}

// Mapping returns the detected mapping scheme
func (c *Cartridge) Mapping() Mapping {
	return c.mapping
}

// Header returns the parsed header
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the ASCII title from the header
func (c *Cartridge) Title() string {
	return c.header.Title
}

// HasBattery reports whether the cartridge type byte indicates battery-backed SRAM
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// ReadROM returns the ROM byte at the given linear offset, mirroring over the
// image size. Out-of-range reads on an empty image return zero.
func (c *Cartridge) ReadROM(offset uint32) uint8 {
	if len(c.rom) == 0 {
		return 0
	}
	return c.rom[int(offset)%len(c.rom)]
}

// ReadSRAM reads battery RAM at the given offset, mirroring over its size
func (c *Cartridge) ReadSRAM(offset uint32) uint8 {
	if len(c.sram) == 0 {
		return 0
	}
	return c.sram[int(offset)%len(c.sram)]
}

// WriteSRAM writes battery RAM at the given offset
func (c *Cartridge) WriteSRAM(offset uint32, value uint8) {
	if len(c.sram) == 0 {
		return
	}
	c.sram[int(offset)%len(c.sram)] = value
}

// SRAMSize returns the battery RAM size in bytes
func (c *Cartridge) SRAMSize() int {
	return len(c.sram)
}

// LoadSRAM replaces SRAM contents from a previously saved image
func (c *Cartridge) LoadSRAM(data []uint8) error {
	if len(c.sram) == 0 {
		return errors.New("cartridge has no SRAM")
	}
	if len(data) != len(c.sram) {
		return fmt.Errorf("SRAM size mismatch: have %d bytes, want %d", len(data), len(c.sram))
	}
	copy(c.sram, data)
	return nil
}

// SRAM returns the current battery RAM contents for persistence
func (c *Cartridge) SRAM() []uint8 {
	return c.sram
}
