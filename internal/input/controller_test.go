package input

import "testing"

func TestSerialReadOrder(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.SetButton(ButtonStart, true)
	c.SetButton(ButtonR, true)

	c.Strobe(true)
	c.Strobe(false)

	// Hardware order: B Y Select Start Up Down Left Right A X L R
	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.ReadSerial(); got != w {
			t.Errorf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestSerialPastReportReadsHigh(t *testing.T) {
	c := New()
	c.Strobe(true)
	c.Strobe(false)

	for i := 0; i < 16; i++ {
		c.ReadSerial()
	}
	if c.ReadSerial() != 1 {
		t.Error("reads past the 16-bit report should return 1")
	}
}

func TestStrobeHeldReturnsFirstBit(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.Strobe(true)

	for i := 0; i < 3; i++ {
		if c.ReadSerial() != 1 {
			t.Error("with strobe held, every read returns the B bit")
		}
	}
}

func TestLatchSnapshotsState(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.Strobe(true)
	c.Strobe(false)

	// Changing buttons after the latch must not alter the report
	c.SetButton(ButtonB, false)
	if c.ReadSerial() != 1 {
		t.Error("latched snapshot should survive button changes")
	}
}

func TestAutoReadBytes(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller1.SetButton(ButtonUp, true)
	is.AutoRead()

	if got := is.ReadPort(0x4218); got != 0x80 {
		t.Errorf("JOY1L = $%02X, want $80 (A)", got)
	}
	if got := is.ReadPort(0x4219); got != 0x08 {
		t.Errorf("JOY1H = $%02X, want $08 (Up)", got)
	}
	if is.ReadPort(0x421A) != 0 || is.ReadPort(0x421B) != 0 {
		t.Error("pad 2 registers should be clear")
	}
}

// fakeSource drives both pads from fixed words
type fakeSource struct {
	pads [2]uint16
}

func (s *fakeSource) Poll(pad int) uint16 {
	return s.pads[pad]
}

func TestSourceSampledOnStrobe(t *testing.T) {
	is := NewInputState()
	src := &fakeSource{}
	src.pads[0] = uint16(ButtonStart)
	is.SetSource(src)

	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	got := []uint8{}
	for i := 0; i < 4; i++ {
		got = append(got, is.ReadPort(0x4016))
	}
	// Start is the fourth bit
	if got[3] != 1 {
		t.Errorf("serial bits = %v, want Start at index 3", got)
	}
}

func TestSourceSampledOnAutoRead(t *testing.T) {
	is := NewInputState()
	src := &fakeSource{}
	src.pads[1] = uint16(ButtonL)
	is.SetSource(src)

	is.AutoRead()
	if is.ReadPort(0x421A) != 0x20 {
		t.Errorf("JOY2L = $%02X, want $20 (L)", is.ReadPort(0x421A))
	}
}
