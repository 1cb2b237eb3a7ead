package graphics

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"gosnes/internal/input"
	"gosnes/internal/ppu"
)

const audioSampleRate = 32000

// EbitengineBackend presents frames through an Ebitengine window, plays
// audio through its mixer, and maps the keyboard onto both pads.
type EbitengineBackend struct {
	config Config
}

// NewEbitengineBackend creates the windowed backend
func NewEbitengineBackend(config Config) *EbitengineBackend {
	if config.Scale <= 0 {
		config.Scale = 3
	}
	if config.WindowTitle == "" {
		config.WindowTitle = "gosnes"
	}
	return &EbitengineBackend{config: config}
}

// Name identifies the backend
func (b *EbitengineBackend) Name() string {
	return "ebitengine"
}

// Headless reports false; this backend opens a window
func (b *EbitengineBackend) Headless() bool {
	return false
}

// Run enters the Ebitengine game loop until the window closes or the core
// stops.
func (b *EbitengineBackend) Run(core Core) error {
	ebiten.SetWindowSize(ppu.ScreenWidth*b.config.Scale, ppu.ScreenHeight*b.config.Scale)
	ebiten.SetWindowTitle(b.config.WindowTitle)
	ebiten.SetVsyncEnabled(b.config.VSync)

	g := &game{
		core:   core,
		screen: ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		pixels: make([]uint8, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}

	if b.config.AudioOn {
		g.audioStream = newAudioStream()
		context := audio.NewContext(audioSampleRate)
		player, err := context.NewPlayer(g.audioStream)
		if err != nil {
			return err
		}
		player.Play()
		g.audioPlayer = player
	}

	return ebiten.RunGame(g)
}

// game implements ebiten.Game over the emulator core
type game struct {
	core   Core
	screen *ebiten.Image
	pixels []uint8

	audioStream *audioStream
	audioPlayer *audio.Player
}

// Default keyboard layout for pad 1
var keymap = map[ebiten.Key]input.Button{
	ebiten.KeyZ:          input.ButtonB,
	ebiten.KeyA:          input.ButtonY,
	ebiten.KeyX:          input.ButtonA,
	ebiten.KeyS:          input.ButtonX,
	ebiten.KeyQ:          input.ButtonL,
	ebiten.KeyW:          input.ButtonR,
	ebiten.KeyEnter:      input.ButtonStart,
	ebiten.KeyShiftRight: input.ButtonSelect,
	ebiten.KeyArrowUp:    input.ButtonUp,
	ebiten.KeyArrowDown:  input.ButtonDown,
	ebiten.KeyArrowLeft:  input.ButtonLeft,
	ebiten.KeyArrowRight: input.ButtonRight,
}

// Update advances one frame of emulation per tick
func (g *game) Update() error {
	if g.core.Done() {
		return ebiten.Termination
	}

	var buttons uint16
	for key, button := range keymap {
		if ebiten.IsKeyPressed(key) {
			buttons |= uint16(button)
		}
	}
	g.core.SetButtons(0, buttons)

	g.core.RunFrame()

	if g.audioStream != nil {
		g.audioStream.Push(g.core.DrainAudio())
	}
	return nil
}

// Draw copies the core framebuffer into the window
func (g *game) Draw(screen *ebiten.Image) {
	buffer := g.core.FrameBuffer()
	for i, px := range buffer {
		g.pixels[i*4] = uint8(px)
		g.pixels[i*4+1] = uint8(px >> 8)
		g.pixels[i*4+2] = uint8(px >> 16)
		g.pixels[i*4+3] = uint8(px >> 24)
	}
	g.screen.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/ppu.ScreenWidth, float64(sh)/ppu.ScreenHeight)
	screen.DrawImage(g.screen, op)
}

// Layout reports the logical screen size
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}
