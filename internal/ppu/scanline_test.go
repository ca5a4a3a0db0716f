package ppu

import "testing"

// pixelShade reads back the rendered shade index at (x, line) by matching
// the RGB triple.
func pixelShade(t *testing.T, p *PPU, x, line int) byte {
	t.Helper()
	off := (line*ScreenWidth + x) * 4
	for s, c := range shades {
		if p.fb[off] == c[0] && p.fb[off+1] == c[1] && p.fb[off+2] == c[2] {
			return byte(s)
		}
	}
	t.Fatalf("pixel (%d,%d) has non-palette color % X", x, line, p.fb[off:off+3])
	return 0
}

// renderLine0 drives the PPU from the start of line 0 into HBLANK so the
// line gets composed.
func renderLine0(p *PPU) {
	for i := 0; i < oamCycles+drawCycles+1; i++ {
		p.Cycle()
	}
}

func TestBGScanline_TilePattern(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x91) // LCD on, BG on, unsigned tile data, map 0x9800
	p.Write(0xFF47, 0xE4) // identity palette
	// tile 0 row 0 decodes to {0,1,2,3,0,1,2,3}
	p.Write(0x8000, 0x55)
	p.Write(0x8001, 0x33)
	// tile map 0 is all zeros already

	renderLine0(p)

	for rep := 0; rep < 20; rep++ {
		for k := 0; k < 8; k++ {
			want := byte(k % 4)
			if got := pixelShade(t, p, rep*8+k, 0); got != want {
				t.Fatalf("px %d got shade %d want %d", rep*8+k, got, want)
			}
		}
	}
}

func TestBGScanline_PaletteRemap(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x91)
	p.Write(0xFF47, 0x1B) // 00 01 10 11: inverts the identity mapping
	p.Write(0x8000, 0x55)
	p.Write(0x8001, 0x33)

	renderLine0(p)

	want := [8]byte{3, 2, 1, 0, 3, 2, 1, 0}
	for k, w := range want {
		if got := pixelShade(t, p, k, 0); got != w {
			t.Fatalf("px %d got shade %d want %d", k, got, w)
		}
	}
}

func TestBGScanline_SCXWraparound(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x91)
	p.Write(0xFF47, 0xE4)
	p.Write(0x8000, 0x55)
	p.Write(0x8001, 0x33)
	p.Write(0xFF43, 3) // SCX=3 shifts the pattern left by 3

	renderLine0(p)

	for x := 0; x < ScreenWidth; x++ {
		want := byte((x + 3) % 4)
		if got := pixelShade(t, p, x, 0); got != want {
			t.Fatalf("px %d got shade %d want %d", x, got, want)
		}
	}
}

func TestBGScanline_SignedTileData(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x81) // LCD on, BG on, signed (0x8800) addressing
	p.Write(0xFF47, 0xE4)
	// map entry 0 now selects tile 256, whose data lives at 0x9000
	p.Write(0x9000, 0xFF)
	p.Write(0x9001, 0xFF)

	renderLine0(p)

	if got := pixelShade(t, p, 0, 0); got != 3 {
		t.Fatalf("signed-mode px0 got shade %d want 3", got)
	}
}

func TestBGDisabled_LineIsWhite(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x90) // LCD on, BG off
	p.Write(0x8000, 0xFF)
	p.Write(0x8001, 0xFF)

	renderLine0(p)

	for x := 0; x < ScreenWidth; x++ {
		if got := pixelShade(t, p, x, 0); got != 0 {
			t.Fatalf("px %d got shade %d want 0 (white)", x, got)
		}
	}
}

func TestWindowScanline(t *testing.T) {
	p, _ := newTestPPU()
	// LCD on, BG on, window on, window map 0x9C00, unsigned data
	p.Write(0xFF40, 0x91|(1<<5)|(1<<6))
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF4A, 0) // WY=0
	p.Write(0xFF4B, 7+40)
	// window map selects tile 1 everywhere; tile 1 is solid color 3
	for i := uint16(0); i < 0x400; i++ {
		p.Write(0x9C00+i, 0x01)
	}
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}

	renderLine0(p)

	// BG (tile 0, all zero) up to WX-7, window from there on
	if got := pixelShade(t, p, 39, 0); got != 0 {
		t.Fatalf("px 39 got shade %d want 0 (BG)", got)
	}
	if got := pixelShade(t, p, 40, 0); got != 3 {
		t.Fatalf("px 40 got shade %d want 3 (window)", got)
	}
	if got := pixelShade(t, p, 159, 0); got != 3 {
		t.Fatalf("px 159 got shade %d want 3 (window)", got)
	}
}

func TestWindowNotArmedBeforeWY(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x91|(1<<5)|(1<<6))
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF4A, 10) // window starts at line 10
	p.Write(0xFF4B, 7)
	for i := uint16(0); i < 0x400; i++ {
		p.Write(0x9C00+i, 0x01)
	}
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}

	renderLine0(p)

	if got := pixelShade(t, p, 0, 0); got != 0 {
		t.Fatalf("window drawn on line 0 before WY: shade %d", got)
	}
}

func TestSpriteScanline_BasicAndTransparency(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x93) // LCD, BG, sprites
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF48, 0xE4) // OBP0 identity
	// tile 1: row 0 pattern {0,1,2,3,...} so pixel 0 is transparent
	p.Write(0x8010, 0x55)
	p.Write(0x8011, 0x33)
	// sprite 0 at screen (0,0)
	p.Write(0xFE00, 16)
	p.Write(0xFE01, 8)
	p.Write(0xFE02, 1)
	p.Write(0xFE03, 0)

	renderLine0(p)

	// color 0 shows BG (white); the rest show the sprite
	if got := pixelShade(t, p, 0, 0); got != 0 {
		t.Fatalf("transparent sprite pixel overwrote BG: shade %d", got)
	}
	for k := 1; k < 4; k++ {
		if got := pixelShade(t, p, k, 0); got != byte(k) {
			t.Fatalf("sprite px %d got shade %d want %d", k, got, k)
		}
	}
}

func TestSpriteScanline_XPriority(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x93)
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF48, 0xE4)
	p.Write(0xFF49, 0xE4)
	// tile 1 solid color 3, tile 2 solid color 1
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}
	for i := uint16(0); i < 16; i += 2 {
		p.Write(0x8020+i, 0xFF)
		p.Write(0x8021+i, 0x00)
	}
	// sprite 0: x=12, tile 2 (color 1); sprite 1: x=8, tile 1 (color 3)
	p.Write(0xFE00, 16)
	p.Write(0xFE01, 12)
	p.Write(0xFE02, 2)
	p.Write(0xFE03, 0)
	p.Write(0xFE04, 16)
	p.Write(0xFE05, 8)
	p.Write(0xFE06, 1)
	p.Write(0xFE07, 0)

	renderLine0(p)

	// overlap at x=4..7: sprite with lower X (tile 1, color 3) wins
	if got := pixelShade(t, p, 4, 0); got != 3 {
		t.Fatalf("overlap px got shade %d want 3 (lower X wins)", got)
	}
	// x=8..11 only the tile-2 sprite remains
	if got := pixelShade(t, p, 8, 0); got != 1 {
		t.Fatalf("px 8 got shade %d want 1", got)
	}
}

func TestSpriteScanline_BehindBG(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x93)
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF48, 0xE4)
	// BG tile 0 solid color 2, sprite tile 1 solid color 3
	for i := uint16(0); i < 16; i += 2 {
		p.Write(0x8000+i, 0x00)
		p.Write(0x8001+i, 0xFF)
	}
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}
	// sprite with BG-priority attribute
	p.Write(0xFE00, 16)
	p.Write(0xFE01, 8)
	p.Write(0xFE02, 1)
	p.Write(0xFE03, 1<<7)

	renderLine0(p)

	if got := pixelShade(t, p, 0, 0); got != 2 {
		t.Fatalf("behind-BG sprite drew over BG: shade %d want 2", got)
	}
}

func TestSpriteScanline_TenSpriteLimit(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x93)
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF48, 0xE4)
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}
	// 11 sprites on line 0, each 8px apart; the 11th must not render
	for i := 0; i < 11; i++ {
		base := uint16(0xFE00 + i*4)
		p.Write(base+0, 16)
		p.Write(base+1, byte(8+i*8))
		p.Write(base+2, 1)
		p.Write(base+3, 0)
	}

	renderLine0(p)

	if got := pixelShade(t, p, 9*8, 0); got != 3 {
		t.Fatalf("10th sprite missing: shade %d", got)
	}
	if got := pixelShade(t, p, 10*8, 0); got != 0 {
		t.Fatalf("11th sprite rendered: shade %d", got)
	}
}

func TestSpriteScanline_Tall16AndFlips(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x93|(1<<2)) // 8x16 sprites
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF48, 0xE4)
	// tile pair 2/3: top tile solid color 1, bottom tile solid color 3
	for i := uint16(0); i < 16; i += 2 {
		p.Write(0x8020+i, 0xFF)
		p.Write(0x8021+i, 0x00)
		p.Write(0x8030+i, 0xFF)
		p.Write(0x8031+i, 0xFF)
	}
	// vertically flipped: line 0 shows the bottom tile
	p.Write(0xFE00, 16)
	p.Write(0xFE01, 8)
	p.Write(0xFE02, 2)
	p.Write(0xFE03, 1<<6)

	renderLine0(p)

	if got := pixelShade(t, p, 0, 0); got != 3 {
		t.Fatalf("flipped 8x16 sprite got shade %d want 3 (bottom tile)", got)
	}
}

func TestTileViewerMode(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0xFF40, 0x91)
	p.SetShowVRAM(true)
	// tile 1 solid color 3 lands at grid position x=8..15 on line 0
	for i := uint16(0); i < 16; i++ {
		p.Write(0x8010+i, 0xFF)
	}

	renderLine0(p)

	if got := pixelShade(t, p, 8, 0); got != 3 {
		t.Fatalf("tile viewer px 8 got shade %d want 3", got)
	}
	if got := pixelShade(t, p, 0, 0); got != 0 {
		t.Fatalf("tile viewer px 0 got shade %d want 0", got)
	}
}
