package cart

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMBC is returned when the header names a bank controller
// the emulator does not implement.
var ErrUnsupportedMBC = errors.New("unsupported cartridge type")

// MBC is the bank-controller contract the bus relies on. Addresses are CPU
// addresses: ReadROM serves 0x0000–0x7FFF, ReadRAM serves 0xA000–0xBFFF,
// and Write covers both ranges (writes below 0x8000 drive bank selection).
type MBC interface {
	ReadROM(addr uint16) byte
	ReadRAM(addr uint16) byte
	Write(addr uint16, value byte)
}

// New picks an MBC implementation from the ROM header.
func New(rom []byte) (MBC, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03: // MBC1 variants (battery not persisted)
		return NewMBC1(rom, h.RAMSizeBytes), nil
	default:
		return nil, fmt.Errorf("%w: %#02x (%s)", ErrUnsupportedMBC, h.CartType, h.CartTypeStr)
	}
}
