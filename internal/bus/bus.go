// Package bus is the sole arbiter of the 16-bit address space. It owns
// every mapped device, routes reads and writes, and advances the devices
// once per CPU M-cycle.
package bus

import (
	"io"

	"github.com/cbeck/dmge/internal/apu"
	"github.com/cbeck/dmge/internal/cart"
	"github.com/cbeck/dmge/internal/joypad"
	"github.com/cbeck/dmge/internal/ppu"
	"github.com/cbeck/dmge/internal/serial"
	"github.com/cbeck/dmge/internal/timer"
)

// Interrupt line bit positions in IE/IF, in priority order.
const (
	IntVBlank = 0
	IntStat   = 1
	IntTimer  = 2
	IntSerial = 3
	IntJoypad = 4
)

// Bus wires the CPU-visible address space to the cartridge, WRAM, HRAM,
// and the memory-mapped devices. Raised device interrupts are OR-ed into
// IF as they happen.
type Bus struct {
	mbc cart.MBC

	// Work RAM 8 KiB at 0xC000–0xDFFF; Echo 0xE000–0xFDFF mirrors 0xC000–0xDDFF.
	wram [0x2000]byte

	// High RAM 0xFF80–0xFFFE (127 bytes)
	hram [0x7F]byte

	ppu *ppu.PPU
	tmr *timer.Timer
	joy *joypad.Joypad
	ser *serial.Serial
	snd *apu.APU

	ie    byte // IE at 0xFFFF
	ifReg byte // IF at 0xFF0F (lower 5 bits)

	dma byte // FF46 readback
}

// New wires a bus around the given cartridge. The shared framebuffer is
// handed through to the PPU, which publishes into it on VBlank.
func New(mbc cart.MBC, fb *ppu.Framebuffer) *Bus {
	b := &Bus{mbc: mbc}
	b.ppu = ppu.New(fb, func(bit int) { b.ifReg |= 1 << bit })
	b.tmr = timer.New(func() { b.ifReg |= 1 << IntTimer })
	b.joy = joypad.New(func() { b.ifReg |= 1 << IntJoypad })
	b.ser = serial.New(func() { b.ifReg |= 1 << IntSerial })
	b.snd = apu.New()
	// post-boot IF has the VBlank bit already requested
	b.ifReg = 0x01
	return b
}

// PPU exposes the video unit for debug dumps and the tile-viewer toggle.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Joypad exposes the button matrix so control messages can reach it.
func (b *Bus) Joypad() *joypad.Joypad { return b.joy }

// SetSerialSink routes serial transfers into w.
func (b *Bus) SetSerialSink(w io.Writer) { b.ser.SetSink(w) }

// Cycle advances every clocked device by one M-cycle.
func (b *Bus) Cycle() {
	b.tmr.Cycle()
	b.ppu.Cycle()
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.mbc.ReadROM(addr)
	case addr <= 0x9FFF:
		return b.ppu.Read(addr)
	case addr <= 0xBFFF:
		return b.mbc.ReadRAM(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		// Echo RAM mirrors 0xC000–0xDDFF
		return b.wram[addr-0xE000]
	case addr <= 0xFE9F:
		return b.ppu.Read(addr)
	case addr <= 0xFEFF:
		// unusable region
		return 0xFF
	case addr == 0xFF00:
		return b.joy.Read()
	case addr == 0xFF01 || addr == 0xFF02:
		return b.ser.Read(addr)
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.tmr.Read(addr)
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.snd.Read(addr)
	case addr == 0xFF46:
		return b.dma
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.Read(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		// ROM-region writes drive the bank controller
		b.mbc.Write(addr, value)
	case addr <= 0x9FFF:
		b.ppu.Write(addr, value)
	case addr <= 0xBFFF:
		b.mbc.Write(addr, value)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr <= 0xFDFF:
		b.wram[addr-0xE000] = value
	case addr <= 0xFE9F:
		b.ppu.Write(addr, value)
	case addr <= 0xFEFF:
		// unusable region: dropped
	case addr == 0xFF00:
		b.joy.Write(value)
	case addr == 0xFF01 || addr == 0xFF02:
		b.ser.Write(addr, value)
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.tmr.Write(addr, value)
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.snd.Write(addr, value)
	case addr == 0xFF46:
		b.oamDMA(value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.Write(addr, value)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value
	}
}

// oamDMA copies 160 bytes from value<<8 into OAM. The copy completes
// atomically inside this write; the 160-cycle window in which only HRAM
// is reachable on hardware is not modeled. Sources above 0xDF fold into
// the WRAM echo, matching where the hardware would fetch from.
func (b *Bus) oamDMA(value byte) {
	b.dma = value
	if value > 0xDF {
		value -= 0x20
	}
	src := uint16(value) << 8
	for i := 0; i < 0xA0; i++ {
		b.ppu.WriteOAM(i, b.Read(src+uint16(i)))
	}
}
