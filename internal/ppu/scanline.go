package ppu

import "sort"

// The four DMG shades as RGB values, indexed by palette output.
var shades = [4][3]byte{
	{255, 255, 255},
	{192, 192, 192},
	{96, 96, 96},
	{0, 0, 0},
}

// paletteShade maps a 2-bit color index through a palette byte.
func paletteShade(pal, ci byte) byte {
	return (pal >> (ci * 2)) & 0x03
}

func (p *PPU) setPixel(x int, shade byte) {
	off := (int(p.ly)*ScreenWidth + x) * 4
	c := shades[shade]
	p.fb[off+0] = c[0]
	p.fb[off+1] = c[1]
	p.fb[off+2] = c[2]
	p.fb[off+3] = 0xFF
}

// renderScanline composes the current LY into the framebuffer:
// background, then window, then sprites.
func (p *PPU) renderScanline() {
	if p.showVRAM {
		p.renderTileViewer()
		return
	}

	// bgIdx keeps the raw BG/window color index per pixel so sprite
	// priority can distinguish color 0 from the rest.
	var bgIdx [ScreenWidth]byte

	if p.lcdc&0x01 != 0 {
		p.renderBackground(&bgIdx)
		if p.lcdc&(1<<5) != 0 && p.winLatch && p.wx <= 166 {
			p.renderWindow(&bgIdx)
			p.winLine++
		}
	} else {
		for x := 0; x < ScreenWidth; x++ {
			p.setPixel(x, 0)
		}
	}

	if p.lcdc&(1<<1) != 0 {
		p.renderSprites(&bgIdx)
	}
}

// tileAt resolves a tile-map entry to a decoded tile honoring the
// LCDC bit-4 addressing mode (0x8000 unsigned vs 0x8800 signed).
func (p *PPU) tileAt(mapBase uint16, mapIndex uint16) *tile {
	num := p.vram[mapBase+mapIndex]
	if p.lcdc&(1<<4) != 0 {
		return &p.tiles[num]
	}
	return &p.tiles[256+int(int8(num))]
}

func (p *PPU) renderBackground(bgIdx *[ScreenWidth]byte) {
	mapBase := uint16(0x1800)
	if p.lcdc&(1<<3) != 0 {
		mapBase = 0x1C00
	}
	bgY := uint16(p.ly) + uint16(p.scy)
	fineY := bgY & 7
	mapRow := (bgY >> 3) & 31
	for x := 0; x < ScreenWidth; x++ {
		bgX := uint16(x) + uint16(p.scx)
		mapCol := (bgX >> 3) & 31
		t := p.tileAt(mapBase, mapRow*32+mapCol)
		ci := t.pix[fineY*8+(bgX&7)]
		bgIdx[x] = ci
		p.setPixel(x, paletteShade(p.bgp, ci))
	}
}

func (p *PPU) renderWindow(bgIdx *[ScreenWidth]byte) {
	mapBase := uint16(0x1800)
	if p.lcdc&(1<<6) != 0 {
		mapBase = 0x1C00
	}
	startX := int(p.wx) - 7
	if startX < 0 {
		startX = 0
	}
	fineY := uint16(p.winLine) & 7
	mapRow := (uint16(p.winLine) >> 3) & 31
	for x := startX; x < ScreenWidth; x++ {
		winX := uint16(x - (int(p.wx) - 7))
		mapCol := (winX >> 3) & 31
		t := p.tileAt(mapBase, mapRow*32+mapCol)
		ci := t.pix[fineY*8+(winX&7)]
		bgIdx[x] = ci
		p.setPixel(x, paletteShade(p.bgp, ci))
	}
}

func (p *PPU) renderSprites(bgIdx *[ScreenWidth]byte) {
	height := 8
	if p.lcdc&(1<<2) != 0 {
		height = 16
	}

	// Collect up to 10 sprites covering this line, in OAM order.
	var line []int
	for i := 0; i < 40 && len(line) < 10; i++ {
		sy := int(p.oam[i*4]) - 16
		if sy <= int(p.ly) && int(p.ly) < sy+height {
			line = append(line, i)
		}
	}

	// Priority: lower X wins, ties broken by OAM order. Drawing back to
	// front lets the winner simply overwrite.
	sort.SliceStable(line, func(a, b int) bool {
		return p.oam[line[a]*4+1] < p.oam[line[b]*4+1]
	})
	for n := len(line) - 1; n >= 0; n-- {
		i := line[n]
		sy := int(p.oam[i*4]) - 16
		sx := int(p.oam[i*4+1]) - 8
		tileID := p.oam[i*4+2]
		attr := p.oam[i*4+3]

		row := int(p.ly) - sy
		if attr&(1<<6) != 0 { // vertical flip
			row = height - 1 - row
		}
		idx := int(tileID)
		if height == 16 {
			idx = int(tileID & 0xFE)
			if row >= 8 {
				idx++
				row -= 8
			}
		}
		pal := p.obp0
		if attr&(1<<4) != 0 {
			pal = p.obp1
		}
		for k := 0; k < 8; k++ {
			x := sx + k
			if x < 0 || x >= ScreenWidth {
				continue
			}
			col := k
			if attr&(1<<5) != 0 { // horizontal flip
				col = 7 - k
			}
			ci := p.tiles[idx].pix[row*8+col]
			if ci == 0 {
				continue // color 0 is transparent
			}
			if attr&(1<<7) != 0 && bgIdx[x] != 0 {
				continue // BG colors 1..3 stay on top
			}
			p.setPixel(x, paletteShade(pal, ci))
		}
	}
}

// renderTileViewer lays the decoded tile cache out as a 20-wide grid;
// the ShowVRam control message swaps this in for the scanline composer.
func (p *PPU) renderTileViewer() {
	row := int(p.ly) / 8
	fineY := int(p.ly) % 8
	for tx := 0; tx < 20; tx++ {
		idx := row*20 + tx
		if idx >= len(p.tiles) {
			for k := 0; k < 8; k++ {
				p.setPixel(tx*8+k, 0)
			}
			continue
		}
		for k := 0; k < 8; k++ {
			p.setPixel(tx*8+k, p.tiles[idx].pix[fineY*8+k])
		}
	}
}
