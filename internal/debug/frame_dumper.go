// Package debug provides advisory diagnostics: framebuffer dumps and state
// snapshots. Nothing here affects machine state.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"gosnes/internal/ppu"
)

// FrameDumper periodically writes framebuffer snapshots as PNG files. It
// implements the bus.FrameSink interface.
type FrameDumper struct {
	dir      string
	interval uint64
	count    uint64
}

// NewFrameDumper creates a dumper writing into dir every interval frames
func NewFrameDumper(dir string, interval int) *FrameDumper {
	if interval <= 0 {
		interval = 60
	}
	return &FrameDumper{dir: dir, interval: uint64(interval)}
}

// Frame implements the frame sink; the buffer is copied before returning
func (d *FrameDumper) Frame(buffer []uint32) {
	d.count++
	if d.count%d.interval != 0 {
		return
	}
	if err := d.write(buffer); err != nil {
		log.Printf("[DEBUG] frame dump failed: %v", err)
	}
}

// write encodes the RGBA framebuffer to a numbered PNG
func (d *FrameDumper) write(buffer []uint32) error {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := buffer[y*ppu.ScreenWidth+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(px),
				G: uint8(px >> 8),
				B: uint8(px >> 16),
				A: uint8(px >> 24),
			})
		}
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.dir, fmt.Sprintf("frame_%06d.png", d.count))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
