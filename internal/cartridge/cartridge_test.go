package cartridge

import (
	"bytes"
	"testing"
)

func TestLoROMDetectionByChecksum(t *testing.T) {
	cart, err := NewROMBuilder(128*1024, MappingLoROM).
		SetTitle("LOROM TEST").
		SetResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cart.Mapping() != MappingLoROM {
		t.Errorf("mapping = %s, want LoROM", cart.Mapping())
	}
	if cart.Title() != "LOROM TEST" {
		t.Errorf("title = %q, want %q", cart.Title(), "LOROM TEST")
	}
}

func TestHiROMDetectionByChecksum(t *testing.T) {
	cart, err := NewROMBuilder(128*1024, MappingHiROM).
		SetTitle("HIROM TEST").
		SetResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cart.Mapping() != MappingHiROM {
		t.Errorf("mapping = %s, want HiROM", cart.Mapping())
	}
}

func TestCopierHeaderStripped(t *testing.T) {
	image := NewROMBuilder(64*1024, MappingLoROM).SetTitle("HEADERED").Build()
	headered := append(make([]uint8, 512), image...)

	cart, err := LoadFromBytes(headered)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.Title() != "HEADERED" {
		t.Errorf("title = %q; copier header was not stripped", cart.Title())
	}
	if len(cart.ROM()) != 64*1024 {
		t.Errorf("ROM size = %d, want %d", len(cart.ROM()), 64*1024)
	}
}

func TestTypeByteFallback(t *testing.T) {
	// Build an image, then corrupt both checksum fields so only the
	// map-mode byte can decide.
	image := NewROMBuilder(64*1024, MappingLoROM).Build()
	image[headerLoROM+headerChecksum] = 0x00
	image[headerLoROM+headerChecksum+1] = 0x00
	image[headerLoROM+headerComplement] = 0x00
	image[headerLoROM+headerComplement+1] = 0x00
	image[headerLoROM+headerMapMode] = 0x21 // HiROM type

	cart, err := LoadFromBytes(image)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.Mapping() != MappingHiROM {
		t.Errorf("mapping = %s, want HiROM from the type byte", cart.Mapping())
	}
}

func TestDefaultsToLoROM(t *testing.T) {
	// No checksum, no recognizable type byte
	image := make([]uint8, 64*1024)
	image[headerLoROM+headerMapMode] = 0x0F

	cart, err := LoadFromBytes(image)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.Mapping() != MappingLoROM {
		t.Errorf("mapping = %s, want the LoROM default", cart.Mapping())
	}
}

func TestTooSmallImageRejected(t *testing.T) {
	if _, err := LoadFromBytes(make([]uint8, 1024)); err == nil {
		t.Error("expected an error for an image with no header")
	}
}

func TestSRAMSizing(t *testing.T) {
	cart, err := NewROMBuilder(64*1024, MappingLoROM).
		SetRAMSize(3). // 8 KiB
		BuildCartridge()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.SRAMSize() != 8*1024 {
		t.Errorf("SRAM size = %d, want 8192", cart.SRAMSize())
	}

	cart.WriteSRAM(0x100, 0x5A)
	if cart.ReadSRAM(0x100) != 0x5A {
		t.Error("SRAM write/read round trip failed")
	}
	// Mirrors over the size
	if cart.ReadSRAM(0x100 + 8*1024) != 0x5A {
		t.Error("SRAM should mirror over its size")
	}
}

func TestSRAMPersistenceRoundTrip(t *testing.T) {
	cart, err := NewROMBuilder(64*1024, MappingLoROM).SetRAMSize(1).BuildCartridge()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for i := 0; i < cart.SRAMSize(); i++ {
		cart.WriteSRAM(uint32(i), uint8(i))
	}
	saved := append([]uint8(nil), cart.SRAM()...)

	cart2, _ := NewROMBuilder(64*1024, MappingLoROM).SetRAMSize(1).BuildCartridge()
	if err := cart2.LoadSRAM(saved); err != nil {
		t.Fatalf("LoadSRAM: %v", err)
	}
	if !bytes.Equal(cart2.SRAM(), saved) {
		t.Error("restored SRAM differs")
	}

	if err := cart2.LoadSRAM(make([]uint8, 1)); err == nil {
		t.Error("size mismatch should be rejected")
	}
}

func TestROMReadMirrors(t *testing.T) {
	cart, err := NewROMBuilder(32*1024, MappingLoROM).BuildCartridge()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	// Reads beyond the image wrap over its size
	if cart.ReadROM(0) != cart.ReadROM(32*1024) {
		t.Error("ROM reads should mirror over the image size")
	}
}

func TestLoadFromReader(t *testing.T) {
	image := NewROMBuilder(64*1024, MappingLoROM).SetTitle("READER").Build()
	cart, err := LoadFromReader(bytes.NewReader(image))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.Title() != "READER" {
		t.Errorf("title = %q", cart.Title())
	}
}
