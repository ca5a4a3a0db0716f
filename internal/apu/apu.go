// Package apu absorbs writes to the audio register block 0xFF10–0xFF3F.
// No sound is synthesized; the registers are plain storage so programs
// that poke them keep running.
package apu

type APU struct {
	regs [0x30]byte // 0xFF10–0xFF3F
}

func New() *APU {
	a := &APU{}
	a.Reset()
	return a
}

// Reset installs the documented DMG post-boot register values.
func (a *APU) Reset() {
	a.regs = [0x30]byte{}
	for addr, v := range map[uint16]byte{
		0xFF10: 0x80, 0xFF11: 0xBF, 0xFF12: 0xF3, 0xFF13: 0xFF, 0xFF14: 0xBF,
		0xFF16: 0x3F, 0xFF17: 0x00, 0xFF18: 0xFF, 0xFF19: 0xBF,
		0xFF1A: 0x7F, 0xFF1B: 0xFF, 0xFF1C: 0x9F, 0xFF1D: 0xFF, 0xFF1E: 0xBF,
		0xFF20: 0xFF, 0xFF21: 0x00, 0xFF22: 0x00, 0xFF23: 0xBF,
		0xFF24: 0x77, 0xFF25: 0xF3, 0xFF26: 0xF1,
	} {
		a.regs[addr-0xFF10] = v
	}
}

func (a *APU) Read(addr uint16) byte {
	if addr < 0xFF10 || addr > 0xFF3F {
		return 0xFF
	}
	return a.regs[addr-0xFF10]
}

func (a *APU) Write(addr uint16, value byte) {
	if addr < 0xFF10 || addr > 0xFF3F {
		return
	}
	a.regs[addr-0xFF10] = value
}
