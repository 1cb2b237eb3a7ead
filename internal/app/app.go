package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gosnes/internal/bus"
	"gosnes/internal/cartridge"
	"gosnes/internal/debug"
	"gosnes/internal/graphics"
)

// Application owns the emulator core and bridges it to a graphics backend.
// It implements graphics.Core and input.Source.
type Application struct {
	config *Config
	bus    *bus.Bus

	romPath string
	buttons [2]uint16
}

// NewApplication creates the application from a config file path
func NewApplication(configPath string) (*Application, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	a := &Application{
		config: config,
		bus:    bus.New(),
	}
	a.bus.SetInputSource(a)
	a.applySettings()
	return a, nil
}

// Config returns the active configuration
func (a *Application) Config() *Config {
	return a.config
}

// Bus returns the system bus for tests and the debugger
func (a *Application) Bus() *bus.Bus {
	return a.bus
}

// applySettings pushes configuration into the core
func (a *Application) applySettings() {
	a.bus.CPU.EnableLoopDetection(a.config.Emulation.LoopDetection)
	a.bus.CPU.SetLoopLimit(a.config.Emulation.LoopLimit)
	a.bus.CPU.EnableTraceLogging(a.config.Debug.TraceCPU)
	if a.config.Debug.DumpFrames {
		dumper := debug.NewFrameDumper("frames", a.config.Debug.FrameInterval)
		a.bus.SetFrameSink(dumper)
	}
}

// LoadROM loads a cartridge image and restores its battery RAM if a save
// file exists.
func (a *Application) LoadROM(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM %s: %w", path, err)
	}

	a.romPath = path
	a.bus.LoadCartridge(cart)
	a.applySettings()

	log.Printf("[APP] loaded %q (%s, %d KB, SRAM %d bytes)",
		cart.Title(), cart.Mapping(), len(cart.ROM())/1024, cart.SRAMSize())

	if cart.SRAMSize() > 0 {
		if data, err := os.ReadFile(a.sramPath()); err == nil {
			if err := cart.LoadSRAM(data); err != nil {
				log.Printf("[APP] ignoring save file: %v", err)
			}
		}
	}
	return nil
}

// sramPath derives the battery save location from the ROM name
func (a *Application) sramPath() string {
	base := strings.TrimSuffix(filepath.Base(a.romPath), filepath.Ext(a.romPath))
	return filepath.Join(a.config.Paths.SaveData, base+".srm")
}

// Run drives the configured backend until the core or window stops
func (a *Application) Run() error {
	backend, err := graphics.NewBackend(a.config.Video.Backend, graphics.Config{
		WindowTitle: a.config.Window.Title,
		Scale:       a.config.Window.Scale,
		VSync:       a.config.Video.VSync,
		AudioOn:     a.config.Audio.Enabled,
		FrameLimit:  a.config.Emulation.FrameLimit,
	})
	if err != nil {
		return err
	}

	log.Printf("[APP] running with %s backend", backend.Name())
	return backend.Run(a)
}

// Cleanup persists battery RAM at shutdown
func (a *Application) Cleanup() error {
	cart := a.bus.Cartridge()
	if cart == nil || cart.SRAMSize() == 0 || !cart.HasBattery() {
		return nil
	}
	if err := os.WriteFile(a.sramPath(), cart.SRAM(), 0o644); err != nil {
		return fmt.Errorf("saving SRAM: %w", err)
	}
	return nil
}

// RunFrame implements graphics.Core
func (a *Application) RunFrame() {
	a.bus.Frame()
}

// FrameBuffer implements graphics.Core
func (a *Application) FrameBuffer() []uint32 {
	return a.bus.FrameBuffer()
}

// DrainAudio implements graphics.Core
func (a *Application) DrainAudio() []int16 {
	return a.bus.APU.DrainSamples()
}

// SetButtons implements graphics.Core
func (a *Application) SetButtons(pad int, buttons uint16) {
	if pad >= 0 && pad < 2 {
		a.buttons[pad] = buttons
	}
}

// Done implements graphics.Core
func (a *Application) Done() bool {
	return a.bus.Quit() || a.bus.CPU.Stopped()
}

// Poll implements input.Source: the core samples pushed button state on
// controller latch.
func (a *Application) Poll(pad int) uint16 {
	if pad >= 0 && pad < 2 {
		return a.buttons[pad]
	}
	return 0
}
