// Package input implements SNES controller handling: the $4016 strobe and
// serial-read protocol plus the auto-read registers at $4218-$421F.
package input

// Button identifies one of the twelve SNES pad buttons
type Button uint16

const (
	ButtonB Button = 1 << iota
	ButtonY
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonX
	ButtonL
	ButtonR
)

// Controller represents one SNES joypad
type Controller struct {
	buttons uint16

	// Serial shift state
	strobe   bool
	snapshot uint16
	bitIndex int
}

// New creates a controller
func New() *Controller {
	return &Controller{}
}

// SetButton sets one button's state
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint16(button)
	} else {
		c.buttons &^= uint16(button)
	}
}

// SetButtons replaces the full 12-bit button state
func (c *Controller) SetButtons(buttons uint16) {
	c.buttons = buttons & 0x0FFF
}

// Buttons returns the current 12-bit button state
func (c *Controller) Buttons() uint16 {
	return c.buttons
}

// IsPressed reports one button's state
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint16(button) != 0
}

// Strobe handles writes to $4016 bit 0. While high, the shift register
// follows the live buttons; on the falling edge the state latches for
// serial reading.
func (c *Controller) Strobe(active bool) {
	wasStrobe := c.strobe
	c.strobe = active
	if active || wasStrobe {
		c.snapshot = c.buttons
		c.bitIndex = 0
	}
}

// ReadSerial shifts out one bit in the hardware order: B, Y, Select, Start,
// Up, Down, Left, Right, A, X, L, R, then zeros.
func (c *Controller) ReadSerial() uint8 {
	if c.strobe {
		return uint8(c.buttons & 1)
	}
	if c.bitIndex >= 16 {
		// Past the 16-bit report a real pad drives the line high
		return 1
	}
	bit := uint8(c.snapshot >> c.bitIndex & 1)
	c.bitIndex++
	return bit
}

// AutoReadLow returns the $4218-style low byte: A, X, L, R in bits 7-4
func (c *Controller) AutoReadLow() uint8 {
	var value uint8
	if c.buttons&uint16(ButtonA) != 0 {
		value |= 0x80
	}
	if c.buttons&uint16(ButtonX) != 0 {
		value |= 0x40
	}
	if c.buttons&uint16(ButtonL) != 0 {
		value |= 0x20
	}
	if c.buttons&uint16(ButtonR) != 0 {
		value |= 0x10
	}
	return value
}

// AutoReadHigh returns the $4219-style high byte: B, Y, Select, Start, Up,
// Down, Left, Right in bits 7-0.
func (c *Controller) AutoReadHigh() uint8 {
	var value uint8
	if c.buttons&uint16(ButtonB) != 0 {
		value |= 0x80
	}
	if c.buttons&uint16(ButtonY) != 0 {
		value |= 0x40
	}
	if c.buttons&uint16(ButtonSelect) != 0 {
		value |= 0x20
	}
	if c.buttons&uint16(ButtonStart) != 0 {
		value |= 0x10
	}
	if c.buttons&uint16(ButtonUp) != 0 {
		value |= 0x08
	}
	if c.buttons&uint16(ButtonDown) != 0 {
		value |= 0x04
	}
	if c.buttons&uint16(ButtonLeft) != 0 {
		value |= 0x02
	}
	if c.buttons&uint16(ButtonRight) != 0 {
		value |= 0x01
	}
	return value
}

// Reset clears all controller state
func (c *Controller) Reset() {
	c.buttons = 0
	c.strobe = false
	c.snapshot = 0
	c.bitIndex = 0
}

// Source supplies live button state from the host once per latch. A nil
// source leaves the last pushed state in place.
type Source interface {
	// Poll returns the 12-bit button word for the given pad (0 or 1)
	Poll(pad int) uint16
}

// InputState owns both controller ports and the auto-read latches
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller

	source Source

	// Auto-read result registers $4218-$421B ($421C-$421F stay zero
	// without multitap hardware)
	joyData [4]uint8
}

// NewInputState creates both controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// SetSource installs the host input source
func (is *InputState) SetSource(source Source) {
	is.source = source
}

// Reset clears all input state
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
	is.joyData = [4]uint8{}
}

// sample refreshes both pads from the source, if one is installed
func (is *InputState) sample() {
	if is.source == nil {
		return
	}
	is.Controller1.SetButtons(is.source.Poll(0))
	is.Controller2.SetButtons(is.source.Poll(1))
}

// Write handles the $4016 strobe register
func (is *InputState) Write(address uint16, value uint8) {
	if address != 0x4016 {
		return
	}
	active := value&1 != 0
	if active {
		is.sample()
	}
	is.Controller1.Strobe(active)
	is.Controller2.Strobe(active)
}

// ReadPort handles reads of $4016/$4017 and the auto-read block
func (is *InputState) ReadPort(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.ReadSerial()
	case 0x4017:
		return is.Controller2.ReadSerial()
	case 0x4218:
		return is.joyData[0]
	case 0x4219:
		return is.joyData[1]
	case 0x421A:
		return is.joyData[2]
	case 0x421B:
		return is.joyData[3]
	default:
		return 0
	}
}

// AutoRead latches both pads into the $4218-$421B registers; the bus calls
// this at V-Blank entry when $4200 bit 0 is set.
func (is *InputState) AutoRead() {
	is.sample()
	is.joyData[0] = is.Controller1.AutoReadLow()
	is.joyData[1] = is.Controller1.AutoReadHigh()
	is.joyData[2] = is.Controller2.AutoReadLow()
	is.joyData[3] = is.Controller2.AutoReadHigh()
}
