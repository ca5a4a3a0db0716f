package cpu

import "github.com/cbeck/dmge/internal/isa"

// exec dispatches a decoded instruction and returns its M-cycle cost.
// Branches return the taken or not-taken cost as appropriate.
func (c *CPU) exec(inst isa.Instruction) int {
	switch i := inst.(type) {
	case isa.Arithmetic:
		return c.execArithmetic(i)
	case isa.Bit:
		return c.execBit(i)
	case isa.Load:
		return c.execLoad(i)
	case isa.Jump:
		return c.execJump(i)
	case isa.Stack:
		return c.execStack(i)
	default:
		return c.execMisc(inst.(isa.Misc))
	}
}

// aluA stores an ALU result into A and F.
func (c *CPU) aluA(res, f byte) {
	c.A = res
	c.setF(f)
}

func (c *CPU) execArithmetic(i isa.Arithmetic) int {
	switch i.Kind {
	case isa.AddAR8:
		c.aluA(add8(c.A, c.reg(i.Reg)))
		return 1
	case isa.AddAMemHL:
		c.aluA(add8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.AddAN8:
		c.aluA(add8(c.A, i.Imm))
		return 2
	case isa.AdcAR8:
		c.aluA(adc8(c.A, c.reg(i.Reg), c.F&flagC != 0))
		return 1
	case isa.AdcAMemHL:
		c.aluA(adc8(c.A, c.bus.Read(c.getHL()), c.F&flagC != 0))
		return 2
	case isa.AdcAN8:
		c.aluA(adc8(c.A, i.Imm, c.F&flagC != 0))
		return 2
	case isa.SubAR8:
		c.aluA(sub8(c.A, c.reg(i.Reg)))
		return 1
	case isa.SubAMemHL:
		c.aluA(sub8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.SubAN8:
		c.aluA(sub8(c.A, i.Imm))
		return 2
	case isa.SbcAR8:
		c.aluA(sbc8(c.A, c.reg(i.Reg), c.F&flagC != 0))
		return 1
	case isa.SbcAMemHL:
		c.aluA(sbc8(c.A, c.bus.Read(c.getHL()), c.F&flagC != 0))
		return 2
	case isa.SbcAN8:
		c.aluA(sbc8(c.A, i.Imm, c.F&flagC != 0))
		return 2
	case isa.AndAR8:
		c.aluA(and8(c.A, c.reg(i.Reg)))
		return 1
	case isa.AndAMemHL:
		c.aluA(and8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.AndAN8:
		c.aluA(and8(c.A, i.Imm))
		return 2
	case isa.XorAR8:
		c.aluA(xor8(c.A, c.reg(i.Reg)))
		return 1
	case isa.XorAMemHL:
		c.aluA(xor8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.XorAN8:
		c.aluA(xor8(c.A, i.Imm))
		return 2
	case isa.OrAR8:
		c.aluA(or8(c.A, c.reg(i.Reg)))
		return 1
	case isa.OrAMemHL:
		c.aluA(or8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.OrAN8:
		c.aluA(or8(c.A, i.Imm))
		return 2
	case isa.CpAR8:
		c.setF(cp8(c.A, c.reg(i.Reg)))
		return 1
	case isa.CpAMemHL:
		c.setF(cp8(c.A, c.bus.Read(c.getHL())))
		return 2
	case isa.CpAN8:
		c.setF(cp8(c.A, i.Imm))
		return 2
	case isa.IncR8:
		res, f := inc8(c.reg(i.Reg), c.F)
		c.setReg(i.Reg, res)
		c.setF(f)
		return 1
	case isa.IncMemHL:
		res, f := inc8(c.bus.Read(c.getHL()), c.F)
		c.bus.Write(c.getHL(), res)
		c.setF(f)
		return 3
	case isa.DecR8:
		res, f := dec8(c.reg(i.Reg), c.F)
		c.setReg(i.Reg, res)
		c.setF(f)
		return 1
	case isa.DecMemHL:
		res, f := dec8(c.bus.Read(c.getHL()), c.F)
		c.bus.Write(c.getHL(), res)
		c.setF(f)
		return 3
	case isa.AddHLR16:
		res, f := add16(c.getHL(), c.pair(i.Pair), c.F)
		c.setHL(res)
		c.setF(f)
		return 2
	case isa.IncR16:
		c.setPair(i.Pair, c.pair(i.Pair)+1)
		return 2
	default: // DecR16
		c.setPair(i.Pair, c.pair(i.Pair)-1)
		return 2
	}
}

func (c *CPU) execBit(i isa.Bit) int {
	// read-modify-write on (HL) for the MemHL forms
	rmw := func(fn func(byte) (byte, byte)) {
		res, f := fn(c.bus.Read(c.getHL()))
		c.bus.Write(c.getHL(), res)
		c.setF(f)
	}
	reg := func(fn func(byte) (byte, byte)) {
		res, f := fn(c.reg(i.Reg))
		c.setReg(i.Reg, res)
		c.setF(f)
	}

	switch i.Kind {
	case isa.BitR8:
		c.setF(bit8(i.Bit, c.reg(i.Reg), c.F))
		return 2
	case isa.BitMemHL:
		c.setF(bit8(i.Bit, c.bus.Read(c.getHL()), c.F))
		return 3
	case isa.ResR8:
		c.setReg(i.Reg, c.reg(i.Reg)&^(1<<i.Bit))
		return 2
	case isa.ResMemHL:
		c.bus.Write(c.getHL(), c.bus.Read(c.getHL())&^(1<<i.Bit))
		return 4
	case isa.SetR8:
		c.setReg(i.Reg, c.reg(i.Reg)|1<<i.Bit)
		return 2
	case isa.SetMemHL:
		c.bus.Write(c.getHL(), c.bus.Read(c.getHL())|1<<i.Bit)
		return 4
	case isa.SwapR8:
		reg(swap8)
		return 2
	case isa.SwapMemHL:
		rmw(swap8)
		return 4
	case isa.RlcR8:
		reg(func(v byte) (byte, byte) { return rlc8(v, false) })
		return 2
	case isa.RlcMemHL:
		rmw(func(v byte) (byte, byte) { return rlc8(v, false) })
		return 4
	case isa.Rlca:
		c.aluA(rlc8(c.A, true))
		return 1
	case isa.RrcR8:
		reg(func(v byte) (byte, byte) { return rrc8(v, false) })
		return 2
	case isa.RrcMemHL:
		rmw(func(v byte) (byte, byte) { return rrc8(v, false) })
		return 4
	case isa.Rrca:
		c.aluA(rrc8(c.A, true))
		return 1
	case isa.RlR8:
		reg(func(v byte) (byte, byte) { return rl8(v, c.F&flagC != 0, false) })
		return 2
	case isa.RlMemHL:
		rmw(func(v byte) (byte, byte) { return rl8(v, c.F&flagC != 0, false) })
		return 4
	case isa.Rla:
		c.aluA(rl8(c.A, c.F&flagC != 0, true))
		return 1
	case isa.RrR8:
		reg(func(v byte) (byte, byte) { return rr8(v, c.F&flagC != 0, false) })
		return 2
	case isa.RrMemHL:
		rmw(func(v byte) (byte, byte) { return rr8(v, c.F&flagC != 0, false) })
		return 4
	case isa.Rra:
		c.aluA(rr8(c.A, c.F&flagC != 0, true))
		return 1
	case isa.SlaR8:
		reg(sla8)
		return 2
	case isa.SlaMemHL:
		rmw(sla8)
		return 4
	case isa.SraR8:
		reg(sra8)
		return 2
	case isa.SraMemHL:
		rmw(sra8)
		return 4
	case isa.SrlR8:
		reg(srl8)
		return 2
	default: // SrlMemHL
		rmw(srl8)
		return 4
	}
}

func (c *CPU) execLoad(i isa.Load) int {
	switch i.Kind {
	case isa.LdR8R8:
		c.setReg(i.Dst, c.reg(i.Src))
		return 1
	case isa.LdR8N8:
		c.setReg(i.Dst, i.Imm8)
		return 2
	case isa.LdR16N16:
		c.setPair(i.Pair, i.Imm16)
		return 3
	case isa.LdMemHLR8:
		c.bus.Write(c.getHL(), c.reg(i.Src))
		return 2
	case isa.LdMemHLN8:
		c.bus.Write(c.getHL(), i.Imm8)
		return 3
	case isa.LdR8MemHL:
		c.setReg(i.Dst, c.bus.Read(c.getHL()))
		return 2
	case isa.LdMemR16A:
		c.bus.Write(c.pairMemAddr(i.PairMem), c.A)
		return 2
	case isa.LdAMemR16:
		c.A = c.bus.Read(c.pairMemAddr(i.PairMem))
		return 2
	case isa.LdMemN16A:
		c.bus.Write(i.Imm16, c.A)
		return 4
	case isa.LdAMemN16:
		c.A = c.bus.Read(i.Imm16)
		return 4
	case isa.LdhMemN8A:
		c.bus.Write(0xFF00+uint16(i.Imm8), c.A)
		return 3
	case isa.LdhAMemN8:
		c.A = c.bus.Read(0xFF00 + uint16(i.Imm8))
		return 3
	case isa.LdhMemCA:
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 2
	default: // LdhAMemC
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 2
	}
}

func (c *CPU) execJump(i isa.Jump) int {
	switch i.Kind {
	case isa.JpN16:
		c.PC = i.Addr
		return 4
	case isa.JpCC:
		if c.condMet(i.Cond) {
			c.PC = i.Addr
			return 4
		}
		return 3
	case isa.JpHL:
		c.PC = c.getHL()
		return 1
	case isa.JrE8:
		c.PC = uint16(int32(c.PC) + int32(i.Rel))
		return 3
	case isa.JrCC:
		if c.condMet(i.Cond) {
			c.PC = uint16(int32(c.PC) + int32(i.Rel))
			return 3
		}
		return 2
	case isa.CallN16:
		c.push16(c.PC)
		c.PC = i.Addr
		return 6
	case isa.CallCC:
		if c.condMet(i.Cond) {
			c.push16(c.PC)
			c.PC = i.Addr
			return 6
		}
		return 3
	case isa.Ret:
		c.PC = c.pop16()
		return 4
	case isa.RetCC:
		if c.condMet(i.Cond) {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case isa.Reti:
		c.PC = c.pop16()
		c.IME = true
		return 4
	default: // Rst
		c.push16(c.PC)
		c.PC = i.Addr
		return 4
	}
}

func (c *CPU) execStack(i isa.Stack) int {
	switch i.Kind {
	case isa.PushR16:
		c.push16(c.pairStk(i.Pair))
		return 4
	case isa.PopR16:
		c.setPairStk(i.Pair, c.pop16())
		return 3
	case isa.AddSPE8:
		res, f := addSPe8(c.SP, i.Rel)
		c.SP = res
		c.setF(f)
		return 4
	case isa.LdHLSPPlusE8:
		res, f := addSPe8(c.SP, i.Rel)
		c.setHL(res)
		c.setF(f)
		return 3
	case isa.LdSPHL:
		c.SP = c.getHL()
		return 2
	default: // LdMemN16SP
		c.write16(i.Imm16, c.SP)
		return 5
	}
}

func (c *CPU) execMisc(i isa.Misc) int {
	switch i.Kind {
	case isa.Nop:
		return 1
	case isa.Halt:
		c.halted = true
		return 1
	case isa.Stop:
		c.stopped = true
		return 1
	case isa.Di:
		c.diPending = 2
		c.eiPending = 0
		return 1
	case isa.Ei:
		c.eiPending = 2
		c.diPending = 0
		return 1
	case isa.Daa:
		res, f := daa(c.A, c.F)
		c.A = res
		c.setF(f)
		return 1
	case isa.Cpl:
		c.A = ^c.A
		c.F = c.F&(flagZ|flagC) | flagN | flagH
		return 1
	case isa.Scf:
		c.F = c.F&flagZ | flagC
		return 1
	default: // Ccf
		c.F = c.F&flagZ | (c.F&flagC ^ flagC)
		return 1
	}
}
