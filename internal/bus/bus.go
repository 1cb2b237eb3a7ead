// Package bus wires the SNES components together and schedules them against
// the master clock.
package bus

import (
	"gosnes/internal/apu"
	"gosnes/internal/cartridge"
	"gosnes/internal/cpu"
	"gosnes/internal/input"
	"gosnes/internal/memory"
	"gosnes/internal/ppu"
)

// Clock dividers: each subsystem steps when the master-clock counter is a
// multiple of its divisor, a modulo-24 cycle in total.
const (
	cpuDivider = 6
	ppuDivider = 4
	apuDivider = 8

	// One frame is 262 scanlines of 341 dots at the PPU divider
	masterCyclesPerFrame = 262 * 341 * ppuDivider
)

// FrameSink consumes completed 256x224 RGBA framebuffers. The buffer is
// only valid until the next frame starts; sinks that keep it must copy.
type FrameSink interface {
	Frame(buffer []uint32)
}

// AudioSink consumes interleaved stereo 16-bit samples at 32kHz
type AudioSink interface {
	Audio(samples []int16)
}

// Bus connects all SNES components together
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart *cartridge.Cartridge

	masterClock uint64
	cpuStall    uint64 // remaining CPU cycles of the in-flight instruction
	frameCount  uint64

	frameSink FrameSink
	audioSink AudioSink

	quit bool
}

// New creates a bus with all components wired but no cartridge loaded
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.CPU.TriggerNMI)
	b.PPU.SetVBlankCallback(b.handleVBlank)
	b.PPU.SetFrameCompleteCallback(b.handleFrameComplete)
	b.CPU.SetLoopCallback(func(uint16) { b.quit = true })

	return b
}

// LoadCartridge installs a cartridge and resets the machine
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	b.Memory.SetCartridge(cart)
	b.Reset()
}

// Cartridge returns the loaded cartridge, or nil
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// Reset resets every component and restarts the master clock
func (b *Bus) Reset() {
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()
	b.masterClock = 0
	b.cpuStall = 0
	b.frameCount = 0
	b.quit = false
}

// SetFrameSink installs the framebuffer consumer
func (b *Bus) SetFrameSink(sink FrameSink) {
	b.frameSink = sink
}

// SetAudioSink installs the audio consumer
func (b *Bus) SetAudioSink(sink AudioSink) {
	b.audioSink = sink
}

// SetInputSource installs the host controller source
func (b *Bus) SetInputSource(source input.Source) {
	b.Input.SetSource(source)
}

// Quit reports whether a stop has been requested
func (b *Bus) Quit() bool {
	return b.quit
}

// RequestQuit asks the scheduler to stop at the next frame boundary
func (b *Bus) RequestQuit() {
	b.quit = true
}

// FrameCount returns the number of completed frames
func (b *Bus) FrameCount() uint64 {
	return b.frameCount
}

// Step advances the master clock by one cycle, dispatching each subsystem
// whose divider has elapsed.
func (b *Bus) Step() {
	b.masterClock++

	if b.masterClock%ppuDivider == 0 {
		b.PPU.Step()
	}
	if b.masterClock%cpuDivider == 0 {
		if b.cpuStall > 0 {
			b.cpuStall--
		} else {
			b.cpuStall = b.CPU.Step() - 1
		}
	}
	if b.masterClock%apuDivider == 0 {
		b.APU.Step()
	}
}

// StepInstruction runs master cycles until the CPU completes its next
// instruction, for tests and the debugger.
func (b *Bus) StepInstruction() {
	// Finish any in-flight instruction first
	for b.cpuStall > 0 {
		b.Step()
	}
	start := b.CPU.Cycles()
	for b.CPU.Cycles() == start {
		b.Step()
	}
}

// Frame runs the machine until the current frame completes
func (b *Bus) Frame() {
	target := b.frameCount + 1
	for b.frameCount < target && !b.CPU.Stopped() {
		b.Step()
	}
}

// Run executes frames until a quit is requested
func (b *Bus) Run() {
	for !b.quit && !b.CPU.Stopped() {
		b.Frame()
	}
}

// RunCycles advances the master clock by the given cycle count
func (b *Bus) RunCycles(cycles uint64) {
	target := b.masterClock + cycles
	for b.masterClock < target {
		b.Step()
	}
}

// handleVBlank runs at entry to scanline 225: joypad auto-read latches if
// the enable bit is set. NMI delivery is handled by the PPU itself.
func (b *Bus) handleVBlank() {
	if b.Memory.AutoJoypadEnabled() {
		b.Input.AutoRead()
	}
}

// handleFrameComplete publishes the finished frame and the audio generated
// during it.
func (b *Bus) handleFrameComplete() {
	b.frameCount++
	if b.frameSink != nil {
		b.frameSink.Frame(b.PPU.FrameBuffer())
	}
	if b.audioSink != nil {
		b.audioSink.Audio(b.APU.DrainSamples())
	}
}

// FrameBuffer returns the PPU framebuffer
func (b *Bus) FrameBuffer() []uint32 {
	return b.PPU.FrameBuffer()
}

// AudioSamples returns the APU's accumulated samples without draining them
func (b *Bus) AudioSamples() []int16 {
	return b.APU.Samples()
}
