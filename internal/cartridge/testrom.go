package cartridge

// ROMBuilder assembles synthetic cartridge images for tests and diagnostics.
// It produces images with a coherent header, matching checksum/complement
// pair, and interrupt vectors, so mapping detection treats them like real
// dumps.
type ROMBuilder struct {
	data    []uint8
	mapping Mapping
	title   string
	ramLog  uint8
}

// NewROMBuilder creates a builder for an image of the given size in bytes.
// Size is rounded up to a 32 KiB multiple.
func NewROMBuilder(size int, mapping Mapping) *ROMBuilder {
	const chunk = 32 * 1024
	if size < chunk {
		size = chunk
	}
	if size%chunk != 0 {
		size += chunk - size%chunk
	}
	return &ROMBuilder{
		data:    make([]uint8, size),
		mapping: mapping,
		title:   "TEST PROGRAM",
	}
}

// SetTitle sets the header title (truncated to 21 bytes)
func (b *ROMBuilder) SetTitle(title string) *ROMBuilder {
	b.title = title
	return b
}

// SetRAMSize sets the header RAM-size byte (log2 KiB)
func (b *ROMBuilder) SetRAMSize(log2KiB uint8) *ROMBuilder {
	b.ramLog = log2KiB
	return b
}

// WriteProgram places bytes at the given ROM image offset
func (b *ROMBuilder) WriteProgram(offset uint32, program ...uint8) *ROMBuilder {
	copy(b.data[offset:], program)
	return b
}

// SetResetVector stores the emulation-mode reset vector. For a LoROM image
// the vector word at bus address $00FFFC lives at image offset $7FFC.
func (b *ROMBuilder) SetResetVector(target uint16) *ROMBuilder {
	base := b.vectorImageBase()
	b.data[base+0x3C] = uint8(target)
	b.data[base+0x3D] = uint8(target >> 8)
	return b
}

// SetNMIVector stores the native-mode NMI vector ($00FFEA)
func (b *ROMBuilder) SetNMIVector(target uint16) *ROMBuilder {
	base := b.vectorImageBase()
	b.data[base+0x2A] = uint8(target)
	b.data[base+0x2B] = uint8(target >> 8)
	return b
}

// SetEmulationNMIVector stores the emulation-mode NMI vector ($00FFFA)
func (b *ROMBuilder) SetEmulationNMIVector(target uint16) *ROMBuilder {
	base := b.vectorImageBase()
	b.data[base+0x3A] = uint8(target)
	b.data[base+0x3B] = uint8(target >> 8)
	return b
}

// vectorImageBase returns the image offset of the $FFC0 header block
func (b *ROMBuilder) vectorImageBase() uint32 {
	switch b.mapping {
	case MappingHiROM:
		return headerHiROM
	case MappingExHiROM:
		return headerExHiROM
	default:
		return headerLoROM
	}
}

// Build finalizes the header and returns the image bytes
func (b *ROMBuilder) Build() []uint8 {
	base := b.vectorImageBase()

	title := []uint8(b.title)
	for i := 0; i < headerTitleLen; i++ {
		if i < len(title) {
			b.data[base+uint32(i)] = title[i]
		} else {
			b.data[base+uint32(i)] = ' '
		}
	}

	mapMode := uint8(0x20)
	switch b.mapping {
	case MappingHiROM:
		mapMode = 0x21
	case MappingExHiROM:
		mapMode = 0x25
	}
	b.data[base+headerMapMode] = mapMode
	b.data[base+headerCartType] = 0x02 // ROM+RAM+battery
	b.data[base+headerROMSize] = romSizeLog(len(b.data))
	b.data[base+headerRAMSize] = b.ramLog

	// Compute the checksum with the checksum field seeded to $FFFF/$0000 the
	// way real dumps are laid out, then patch both fields.
	b.data[base+headerComplement] = 0xFF
	b.data[base+headerComplement+1] = 0xFF
	b.data[base+headerChecksum] = 0
	b.data[base+headerChecksum+1] = 0

	var sum uint16
	for _, v := range b.data {
		sum += uint16(v)
	}
	b.data[base+headerChecksum] = uint8(sum)
	b.data[base+headerChecksum+1] = uint8(sum >> 8)
	b.data[base+headerComplement] = uint8(^sum)
	b.data[base+headerComplement+1] = uint8(^sum >> 8)

	return b.data
}

// BuildCartridge builds the image and loads it as a Cartridge
func (b *ROMBuilder) BuildCartridge() (*Cartridge, error) {
	return LoadFromBytes(b.Build())
}

// romSizeLog returns the header ROM-size byte (log2 KiB) for a byte size
func romSizeLog(size int) uint8 {
	kib := size / 1024
	log := uint8(0)
	for 1<<log < kib {
		log++
	}
	return log
}
