// Package ppu simulates the DMG pixel processing unit: VRAM, OAM, the
// LCDC/STAT register block, the per-scanline mode state machine and the
// scanline renderer.
package ppu

import "fmt"

// InterruptRequester is a callback used to request IF bits
// (0: VBlank, 1: LCD STAT).
type InterruptRequester func(bit int)

// PPU modes as encoded in STAT bits 1..0.
const (
	modeHBlank byte = 0
	modeVBlank byte = 1
	modeOAM    byte = 2
	modeDraw   byte = 3
)

// Scanline timing in M-cycles.
const (
	lineCycles    = 114
	oamCycles     = 20
	drawCycles    = 43
	linesPerFrame = 154

	// FrameCycles is the full frame period in M-cycles (~59.73 Hz).
	FrameCycles = lineCycles * linesPerFrame
)

// PPU owns the video address space and drives LY/STAT and the VBlank and
// LCD-STAT interrupt lines. Rendering happens one scanline at a time on
// entry to HBLANK; the finished frame is published to the shared
// framebuffer on entry to VBLANK.
type PPU struct {
	vram  [0x2000]byte // 0x8000–0x9FFF raw bytes (tiles + both tile maps)
	oam   [0xA0]byte   // 0xFE00–0xFE9F
	tiles [384]tile    // decoded mirror of 0x8000–0x97FF

	lcdc byte // FF40
	stat byte // FF41, writable source-enable bits 3..6 only
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	mode        byte
	modeCounter int // M-cycles into the current scanline

	winLatch bool // window Y condition met this frame
	winLine  byte // next window row to render

	showVRAM bool // tile-viewer debug rendering instead of scanline composition

	fb     [ScreenWidth * ScreenHeight * 4]byte
	shared *Framebuffer

	req InterruptRequester
}

func New(shared *Framebuffer, req InterruptRequester) *PPU {
	p := &PPU{shared: shared, req: req}
	p.Reset()
	return p
}

// Reset restores post-boot register state and blanks the frame.
func (p *PPU) Reset() {
	p.vram = [0x2000]byte{}
	p.oam = [0xA0]byte{}
	p.tiles = [384]tile{}
	p.lcdc = 0x91
	p.stat = 0x00
	p.scy, p.scx = 0, 0
	p.ly, p.lyc = 0, 0
	p.bgp = 0xFC
	p.obp0, p.obp1 = 0x00, 0x00
	p.wy, p.wx = 0, 0
	p.mode = modeVBlank
	p.modeCounter = 0
	p.winLatch = false
	p.winLine = 0
	p.clearFrame(0xFF)
}

// SetShowVRAM toggles the tile-viewer rendering mode.
func (p *PPU) SetShowVRAM(on bool) { p.showVRAM = on }

// LY returns the current scanline counter (tests and debug dumps).
func (p *PPU) LY() byte { return p.ly }

// Mode returns the current STAT mode bits.
func (p *PPU) Mode() byte { return p.mode }

// DebugString summarizes the video state for the Debug control message.
func (p *PPU) DebugString() string {
	return fmt.Sprintf("LCDC=%02X STAT=%02X LY=%d LYC=%d SCX=%d SCY=%d WX=%d WY=%d mode=%d",
		p.lcdc, p.Read(0xFF41), p.ly, p.lyc, p.scx, p.scy, p.wx, p.wy, p.mode)
}

func (p *PPU) Read(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		st := 0x80 | (p.stat & 0x78) | (p.mode & 0x03)
		if p.ly == p.lyc {
			st |= 1 << 2
		}
		return st
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) Write(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		p.vram[addr-0x8000] = value
		if addr <= 0x97FF {
			// keep the decoded tile cache coherent
			off := int(addr - 0x8000)
			p.tiles[off/16].setByte(off%16, value)
		}
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		p.oam[addr-0xFE00] = value
		return
	}
	switch addr {
	case 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			// LCD off: LY and the mode machine reset, the frame blanks
			p.ly = 0
			p.modeCounter = 0
			p.mode = modeOAM
			p.winLatch = false
			p.winLine = 0
			p.clearFrame(0xFF)
			p.shared.publish(&p.fb)
		}
	case 0xFF41:
		p.stat = value & 0x78
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF44:
		// LY is read-only
	case 0xFF45:
		p.lyc = value
		p.checkLYC()
	case 0xFF47:
		p.bgp = value
	case 0xFF48:
		p.obp0 = value
	case 0xFF49:
		p.obp1 = value
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

// WriteOAM stores a byte directly into OAM; the bus uses it for DMA.
func (p *PPU) WriteOAM(index int, value byte) {
	p.oam[index] = value
}

// Cycle advances the PPU by one M-cycle.
func (p *PPU) Cycle() {
	if p.lcdc&0x80 == 0 {
		return
	}
	p.modeCounter++
	if p.modeCounter >= lineCycles {
		p.modeCounter -= lineCycles
		p.ly = (p.ly + 1) % linesPerFrame
		p.checkLYC()
		if p.ly >= ScreenHeight && p.mode != modeVBlank {
			p.setMode(modeVBlank)
		}
	}
	if p.ly < ScreenHeight {
		switch {
		case p.modeCounter < oamCycles:
			if p.mode != modeOAM {
				p.setMode(modeOAM)
			}
		case p.modeCounter < oamCycles+drawCycles:
			if p.mode != modeDraw {
				p.setMode(modeDraw)
			}
		default:
			if p.mode != modeHBlank {
				p.setMode(modeHBlank)
			}
		}
	}
}

func (p *PPU) setMode(mode byte) {
	p.mode = mode
	switch mode {
	case modeOAM:
		if p.stat&(1<<5) != 0 {
			p.req(1)
		}
	case modeDraw:
		if p.lcdc&(1<<5) != 0 && !p.winLatch && p.ly == p.wy {
			p.winLatch = true
			p.winLine = 0
		}
	case modeHBlank:
		p.renderScanline()
		if p.stat&(1<<3) != 0 {
			p.req(1)
		}
	case modeVBlank:
		p.shared.publish(&p.fb)
		p.winLatch = false
		p.req(0)
		if p.stat&(1<<4) != 0 {
			p.req(1)
		}
	}
}

func (p *PPU) checkLYC() {
	if p.ly == p.lyc && p.stat&(1<<6) != 0 {
		p.req(1)
	}
}

func (p *PPU) clearFrame(shade byte) {
	for i := range p.fb {
		p.fb[i] = shade
	}
	for i := 3; i < len(p.fb); i += 4 {
		p.fb[i] = 0xFF
	}
}
