// Package cpu implements the SM83 execution engine: the register file,
// the M-cycle step loop with stall accounting, and the interrupt
// pipeline. Instructions are decoded by the isa package and dispatched
// per family.
package cpu

import (
	"fmt"

	"github.com/cbeck/dmge/internal/bus"
	"github.com/cbeck/dmge/internal/isa"
	"github.com/cbeck/dmge/internal/logger"
)

// Interrupt vectors by IF bit, in priority order.
var intVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// CPU drives the bus one M-cycle per Step call. An instruction executes
// in full on its first cycle; the remaining cost is charged by counting
// the stall counter down across subsequent calls.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME     bool
	halted  bool
	stopped bool

	stall int // M-cycles still owed for the current instruction

	// EI/DI take effect one instruction after they execute. The
	// countdowns tick at instruction boundaries.
	eiPending int
	diPending int

	err error // terminal decode fault, sticky

	bus *bus.Bus
}

// New returns a CPU in the documented post-boot state (no boot ROM).
func New(b *bus.Bus) *CPU {
	return &CPU{
		A: 0x01, F: 0x80,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP:  0xFFFE,
		PC:  0x0100,
		bus: b,
	}
}

// Bus exposes the underlying bus for tests and tools.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// Halted reports whether the CPU is suspended by HALT.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU hit STOP; only a reset revives it.
func (c *CPU) Stopped() bool { return c.stopped }

// Err returns the sticky terminal fault, if any.
func (c *CPU) Err() error { return c.err }

// Step advances the machine by one M-cycle: it services the EI/DI
// latches, pays down any owed instruction cycles, dispatches a pending
// interrupt, or decodes and executes the next instruction. The bus is
// advanced exactly one M-cycle, except on a decode fault: then Step
// returns the error without advancing the bus.
func (c *CPU) Step() error {
	if c.err != nil {
		return c.err
	}
	if c.stall > 0 {
		c.stall--
		c.bus.Cycle()
		return nil
	}

	c.serviceLatches()

	if c.stopped {
		// STOP suspends everything but the bus; only a reset revives it.
		c.bus.Cycle()
		return nil
	}

	if c.dispatchInterrupt() {
		c.bus.Cycle()
		return nil
	}

	if c.halted {
		c.bus.Cycle()
		return nil
	}

	inst, next, err := isa.Decode(c.bus, c.PC)
	if err != nil {
		c.err = err
		logger.Error("cpu fault", "pc", fmt.Sprintf("$%04X", c.PC), "err", err)
		return err
	}
	c.PC = next
	c.stall = c.exec(inst) - 1
	c.bus.Cycle()
	return nil
}

// StepInstruction runs M-cycle steps until the current instruction (or
// interrupt dispatch) is fully charged and returns the cycle count.
func (c *CPU) StepInstruction() (int, error) {
	n := 0
	for {
		if err := c.Step(); err != nil {
			return n, err
		}
		n++
		if c.stall == 0 {
			return n, nil
		}
	}
}

// serviceLatches applies the one-instruction EI/DI delay. Called only at
// instruction boundaries.
func (c *CPU) serviceLatches() {
	if c.eiPending > 0 {
		c.eiPending--
		if c.eiPending == 0 {
			c.IME = true
		}
	}
	if c.diPending > 0 {
		c.diPending--
		if c.diPending == 0 {
			c.IME = false
		}
	}
}

// dispatchInterrupt implements the pipeline: any pending enabled line
// wakes a halted CPU regardless of IME; with IME set, the
// highest-priority line is acknowledged, PC pushed, and control
// transferred to the vector at a cost of 5 M-cycles.
func (c *CPU) dispatchInterrupt() bool {
	triggered := c.bus.Read(0xFFFF) & c.bus.Read(0xFF0F) & 0x1F
	if c.halted && triggered != 0 {
		c.halted = false
	}
	if !c.IME || triggered == 0 {
		return false
	}
	var bit uint
	for bit = 0; bit < 5; bit++ {
		if triggered&(1<<bit) != 0 {
			break
		}
	}
	c.bus.Write(0xFF0F, c.bus.Read(0xFF0F)&^(1<<bit))
	c.IME = false
	c.push16(c.PC)
	c.PC = intVectors[bit]
	c.stall = 4 // 5 M-cycles including this one
	return true
}

// Register pair views. F keeps its low nibble zero on every assignment.

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) setF(f byte) { c.F = f & 0xF0 }

func (c *CPU) reg(r isa.Reg) byte {
	switch r {
	case isa.B:
		return c.B
	case isa.C:
		return c.C
	case isa.D:
		return c.D
	case isa.E:
		return c.E
	case isa.H:
		return c.H
	case isa.L:
		return c.L
	default:
		return c.A
	}
}

func (c *CPU) setReg(r isa.Reg, v byte) {
	switch r {
	case isa.B:
		c.B = v
	case isa.C:
		c.C = v
	case isa.D:
		c.D = v
	case isa.E:
		c.E = v
	case isa.H:
		c.H = v
	case isa.L:
		c.L = v
	default:
		c.A = v
	}
}

func (c *CPU) pair(p isa.RegPair) uint16 {
	switch p {
	case isa.BC:
		return c.getBC()
	case isa.DE:
		return c.getDE()
	case isa.HL:
		return c.getHL()
	default:
		return c.SP
	}
}

func (c *CPU) setPair(p isa.RegPair, v uint16) {
	switch p {
	case isa.BC:
		c.setBC(v)
	case isa.DE:
		c.setDE(v)
	case isa.HL:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// pairMemAddr resolves an r16mem operand, applying the HL post-inc or
// post-dec side effect.
func (c *CPU) pairMemAddr(p isa.RegPairMem) uint16 {
	switch p {
	case isa.MemBC:
		return c.getBC()
	case isa.MemDE:
		return c.getDE()
	case isa.MemHLI:
		hl := c.getHL()
		c.setHL(hl + 1)
		return hl
	default:
		hl := c.getHL()
		c.setHL(hl - 1)
		return hl
	}
}

func (c *CPU) pairStk(p isa.RegPairStk) uint16 {
	switch p {
	case isa.StkBC:
		return c.getBC()
	case isa.StkDE:
		return c.getDE()
	case isa.StkHL:
		return c.getHL()
	default:
		return c.getAF()
	}
}

func (c *CPU) setPairStk(p isa.RegPairStk, v uint16) {
	switch p {
	case isa.StkBC:
		c.setBC(v)
	case isa.StkDE:
		c.setDE(v)
	case isa.StkHL:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}

func (c *CPU) condMet(cond isa.Cond) bool {
	switch cond {
	case isa.CondNZ:
		return c.F&flagZ == 0
	case isa.CondZ:
		return c.F&flagZ != 0
	case isa.CondNC:
		return c.F&flagC == 0
	default:
		return c.F&flagC != 0
	}
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return hi<<8 | lo
}

func (c *CPU) write16(addr, v uint16) {
	c.bus.Write(addr, byte(v))
	c.bus.Write(addr+1, byte(v>>8))
}

// push16 decrements SP by 2, then stores the high byte at SP+1 and the
// low byte at SP.
func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

// pop16 reads low from SP and high from SP+1, then increments SP by 2.
func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// DebugString summarizes the register file for the Debug control message.
func (c *CPU) DebugString() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X IME=%v halted=%v",
		c.getAF(), c.getBC(), c.getDE(), c.getHL(), c.SP, c.PC, c.IME, c.halted)
}
