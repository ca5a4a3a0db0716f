package cart

// ROMOnly is a cartridge without banking hardware or external RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) ReadROM(addr uint16) byte {
	if int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0xFF
}

func (c *ROMOnly) ReadRAM(addr uint16) byte { return 0xFF }

// Write is ignored: there is no bank register and no RAM to hit.
func (c *ROMOnly) Write(addr uint16, value byte) {}
