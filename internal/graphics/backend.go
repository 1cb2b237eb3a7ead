// Package graphics provides the host-side rendering backends that consume
// the core's framebuffer and publish controller input back to it.
package graphics

import "fmt"

// Core is the narrow view of the emulator a backend drives: one frame of
// emulation at a time, a framebuffer to present, audio to drain, and
// buttons to push.
type Core interface {
	// RunFrame advances emulation by one video frame
	RunFrame()

	// FrameBuffer returns the current 256x224 RGBA framebuffer
	FrameBuffer() []uint32

	// DrainAudio returns and consumes buffered stereo samples
	DrainAudio() []int16

	// SetButtons pushes the 12-bit button word for a pad (0 or 1)
	SetButtons(pad int, buttons uint16)

	// Done reports whether the core has requested a stop
	Done() bool
}

// Backend drives the main loop against a host windowing/audio system
type Backend interface {
	// Run loops until the core stops or the host window closes
	Run(core Core) error

	// Name identifies the backend
	Name() string

	// Headless reports whether the backend presents no window
	Headless() bool
}

// Config carries the host presentation options
type Config struct {
	WindowTitle string
	Scale       int
	VSync       bool
	AudioOn     bool

	// Headless options
	FrameLimit int
}

// NewBackend creates a backend by name: "ebitengine" or "headless"
func NewBackend(name string, config Config) (Backend, error) {
	switch name {
	case "", "ebitengine":
		return NewEbitengineBackend(config), nil
	case "headless":
		return NewHeadlessBackend(config), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", name)
	}
}
