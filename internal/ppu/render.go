package ppu

// Background layers visible per BG mode. Modes other than 0 and 1 list their
// hardware layer counts but are drawn with the mode 1 bit depths; their
// extended features are not rendered.
var modeLayers = [8][]int{
	0: {0, 1, 2, 3},
	1: {0, 1, 2},
	2: {0, 1},
	3: {0, 1},
	4: {0, 1},
	5: {0, 1},
	6: {0},
	7: {0},
}

// bitsPerPixel returns the plane depth of a background layer in the current
// mode. Mode 0 is four 2bpp layers; mode 1 runs BG1/BG2 at 4bpp and BG3 at
// 2bpp.
func (p *PPU) bitsPerPixel(bg int) int {
	if p.bgMode == 0 {
		return 2
	}
	if bg < 2 {
		return 4
	}
	return 2
}

// renderScanline composites one visible scanline into the framebuffer
func (p *PPU) renderScanline(y int) {
	for x := range p.lineMain {
		p.lineMain[x] = pixel{}
	}

	for _, bg := range modeLayers[p.bgMode&7] {
		if p.mainScreen&(1<<bg) != 0 {
			p.renderBackground(bg, y)
		}
	}
	if p.mainScreen&0x10 != 0 {
		p.renderSprites(y)
	}

	backdrop := p.cgramColor(0)
	for x := 0; x < ScreenWidth; x++ {
		color := backdrop
		if p.lineMain[x].opaque {
			color = p.lineMain[x].color
		}
		p.frameBuffer[y*ScreenWidth+x] = p.applyBrightness(color)
	}
}

// renderBackground draws one BG layer's contribution to the line scratch.
// Layer-on-layer priority uses a single composited rank: BG pixels with the
// tilemap priority bit outrank those without, lower-numbered BGs outrank
// higher ones, and sprites interleave by their own 2-bit priority.
func (p *PPU) renderBackground(bg, y int) {
	bpp := p.bitsPerPixel(bg)

	for x := 0; x < ScreenWidth; x++ {
		px := uint16(x) + p.bgScrollX[bg]
		py := uint16(y) + p.bgScrollY[bg]

		entry := p.tilemapEntry(bg, px/8, py/8)
		tile := entry & 0x03FF
		palette := uint8(entry >> 10 & 0x07)
		hasPriority := entry&0x2000 != 0
		hflip := entry&0x4000 != 0
		vflip := entry&0x8000 != 0

		row := py & 7
		if vflip {
			row = 7 - row
		}
		col := px & 7
		if hflip {
			col = 7 - col
		}

		index := p.tilePixel(p.bgTileBase[bg], tile, bpp, row, col)
		if index == 0 {
			continue
		}

		rank := bgRank(bg, hasPriority)
		if p.lineMain[x].opaque && p.lineMain[x].priority >= rank {
			continue
		}

		cgIndex := p.bgPaletteIndex(bg, bpp, palette, index)
		p.lineMain[x] = pixel{color: p.cgramColor(cgIndex), priority: rank, opaque: true}
	}
}

// bgPaletteIndex maps a layer's palette group and color index into CGRAM.
// Mode 0 gives each background its own 32-entry block.
func (p *PPU) bgPaletteIndex(bg, bpp int, palette, index uint8) uint8 {
	colors := uint8(1) << bpp
	base := palette * colors
	if p.bgMode == 0 {
		base += uint8(bg) * 32
	}
	return base + index
}

// bgRank converts a BG number and its priority bit into a composite rank.
// Sprites use ranks 3/7/11/15 so they slot between BG priorities.
func bgRank(bg int, hasPriority bool) uint8 {
	rank := uint8(8 - bg*2)
	if hasPriority {
		rank += 8
	}
	return rank
}

// spriteRank converts a sprite's 2-bit priority into the shared rank space
func spriteRank(priority uint8) uint8 {
	return priority*4 + 3
}

// tilemapEntry fetches a 2-byte tilemap entry honoring the layer's screen
// size bits. Each 32x32 screen is 1024 words; 64-wide and 64-tall layouts
// append screens in the documented order.
func (p *PPU) tilemapEntry(bg int, tx, ty uint16) uint16 {
	size := p.bgTilemapSize[bg]

	screen := uint16(0)
	switch size {
	case 1: // 64x32
		tx &= 63
		ty &= 31
		if tx >= 32 {
			screen = 1
		}
	case 2: // 32x64
		tx &= 31
		ty &= 63
		if ty >= 32 {
			screen = 1
		}
	case 3: // 64x64
		tx &= 63
		ty &= 63
		if tx >= 32 {
			screen |= 1
		}
		if ty >= 32 {
			screen |= 2
		}
	default:
		tx &= 31
		ty &= 31
	}

	wordAddr := p.bgTilemapBase[bg] + screen*0x400 + (ty&31)*32 + tx&31
	byteAddr := uint32(wordAddr) * 2
	return uint16(p.vram[byteAddr&0xFFFF]) | uint16(p.vram[(byteAddr+1)&0xFFFF])<<8
}

// tilePixel decodes one pixel of a tile from its bitplanes. Planes are
// stored as byte pairs per row: one pair for 2bpp, two for 4bpp.
func (p *PPU) tilePixel(base, tile uint16, bpp int, row, col uint16) uint8 {
	wordsPerTile := uint16(8 * bpp / 2)
	tileAddr := uint32(base+tile*wordsPerTile) * 2

	bit := uint8(7 - col)
	var index uint8
	for pair := 0; pair < bpp/2; pair++ {
		rowAddr := tileAddr + uint32(pair)*16 + uint32(row)*2
		plane0 := p.vram[rowAddr&0xFFFF]
		plane1 := p.vram[(rowAddr+1)&0xFFFF]
		index |= (plane0 >> bit & 1) << (pair * 2)
		index |= (plane1 >> bit & 1) << (pair*2 + 1)
	}
	return index
}

// Sprite dimensions for each OBSEL size selector: small and large variants
var spriteSizes = [8][2][2]int{
	{{8, 8}, {16, 16}},
	{{8, 8}, {32, 32}},
	{{8, 8}, {64, 64}},
	{{16, 16}, {32, 32}},
	{{16, 16}, {64, 64}},
	{{32, 32}, {64, 64}},
	{{16, 32}, {32, 64}},
	{{16, 32}, {32, 32}},
}

// renderSprites scans OAM for sprites covering this scanline and draws them
// into the line scratch. Hardware evaluates at most 32 sprites per line;
// the earliest OAM index wins on overflow.
func (p *PPU) renderSprites(y int) {
	found := 0

	for i := 0; i < 128 && found < 32; i++ {
		base := i * 4
		spriteY := int(p.oam[base+1])
		tile := uint16(p.oam[base+2])
		attr := p.oam[base+3]

		// High table: two bits per sprite
		high := p.oam[512+i/4] >> (uint(i%4) * 2)
		spriteX := int(p.oam[base])
		if high&1 != 0 {
			spriteX -= 256
		}
		large := high&2 != 0

		dims := spriteSizes[p.objSizeSel&7][0]
		if large {
			dims = spriteSizes[p.objSizeSel&7][1]
		}
		width, height := dims[0], dims[1]

		row := y - spriteY
		if row < 0 || row >= height {
			continue
		}
		found++

		if attr&0x80 != 0 { // vflip
			row = height - 1 - row
		}
		if attr&0x01 != 0 {
			tile |= 0x100
		}
		palette := attr >> 1 & 0x07
		priority := attr >> 4 & 0x03
		hflip := attr&0x40 != 0

		rank := spriteRank(priority)

		for sx := 0; sx < width; sx++ {
			x := spriteX + sx
			if x < 0 || x >= ScreenWidth {
				continue
			}
			if p.lineMain[x].opaque && p.lineMain[x].priority >= rank {
				continue
			}

			col := sx
			if hflip {
				col = width - 1 - sx
			}

			// Sprites are 4bpp; large sprites tile across the 16x16
			// name grid.
			cellTile := tile + uint16(col/8) + uint16(row/8)*16
			index := p.tilePixel(p.objTileBase, cellTile&0x1FF, 4, uint16(row%8), uint16(col%8))
			if index == 0 {
				continue
			}

			cgIndex := 128 + palette*16 + index
			p.lineMain[x] = pixel{color: p.cgramColor(cgIndex), priority: rank, opaque: true}
		}
	}
}

// cgramColor reads a 15-bit BGR palette entry
func (p *PPU) cgramColor(index uint8) uint16 {
	addr := uint16(index) * 2
	return uint16(p.cgram[addr]) | uint16(p.cgram[addr+1])<<8
}

// applyBrightness expands 15-bit BGR to RGBA8888 (little-endian, alpha $FF)
// scaled by the master brightness.
func (p *PPU) applyBrightness(color uint16) uint32 {
	r := expand5(color & 0x1F)
	g := expand5(color >> 5 & 0x1F)
	b := expand5(color >> 10 & 0x1F)

	scale := uint32(p.brightness)
	r = r * scale / 15
	g = g * scale / 15
	b = b * scale / 15

	return 0xFF000000 | b<<16 | g<<8 | r
}

// expand5 widens a 5-bit channel to 8 bits, replicating the top bits so
// full intensity maps to $FF.
func expand5(c uint16) uint32 {
	return uint32(c)<<3 | uint32(c)>>2
}
