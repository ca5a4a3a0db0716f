package cpu

import "testing"

func TestLoads_HLIncDec(t *testing.T) {
	// LD (HL+),A ; LD (HL-),A ; LD A,(HL+) ; LD A,(HL-)
	c := newCPUWithROM([]byte{0x22, 0x32, 0x2A, 0x3A})
	c.setHL(0xC000)
	c.A = 0x11
	step(t, c)
	if c.getHL() != 0xC001 || c.Bus().Read(0xC000) != 0x11 {
		t.Fatalf("LD (HL+),A: HL=%04X mem=%02X", c.getHL(), c.Bus().Read(0xC000))
	}
	c.A = 0x22
	step(t, c)
	if c.getHL() != 0xC000 || c.Bus().Read(0xC001) != 0x22 {
		t.Fatalf("LD (HL-),A: HL=%04X mem=%02X", c.getHL(), c.Bus().Read(0xC001))
	}
	step(t, c)
	if c.A != 0x11 || c.getHL() != 0xC001 {
		t.Fatalf("LD A,(HL+): A=%02X HL=%04X", c.A, c.getHL())
	}
	step(t, c)
	if c.A != 0x22 || c.getHL() != 0xC000 {
		t.Fatalf("LD A,(HL-): A=%02X HL=%04X", c.A, c.getHL())
	}
}

func TestLoads_HighPage(t *testing.T) {
	// LD (FF00+n),A ; LD A,(FF00+n) ; LD (FF00+C),A ; LD A,(FF00+C)
	c := newCPUWithROM([]byte{0xE0, 0x80, 0xF0, 0x80, 0xE2, 0xF2})
	c.A = 0x5A
	if n := step(t, c); n != 3 {
		t.Fatalf("LDH (n8),A cost got %d want 3", n)
	}
	if got := c.Bus().Read(0xFF80); got != 0x5A {
		t.Fatalf("HRAM got %02X want 5A", got)
	}
	c.A = 0x00
	step(t, c)
	if c.A != 0x5A {
		t.Fatalf("LDH A,(n8) got %02X want 5A", c.A)
	}
	c.C = 0x81
	c.A = 0x99
	if n := step(t, c); n != 2 {
		t.Fatalf("LDH (C),A cost got %d want 2", n)
	}
	c.A = 0x00
	step(t, c)
	if c.A != 0x99 {
		t.Fatalf("LDH A,(C) got %02X want 99", c.A)
	}
}

func TestLoads_Absolute(t *testing.T) {
	c := newCPUWithROM([]byte{0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xC0})
	c.A = 0x77
	if n := step(t, c); n != 4 {
		t.Fatalf("LD (n16),A cost got %d want 4", n)
	}
	step(t, c) // LD A,0
	if n := step(t, c); n != 4 {
		t.Fatalf("LD A,(n16) cost got %d want 4", n)
	}
	if c.A != 0x77 {
		t.Fatalf("round trip through C000 got %02X", c.A)
	}
}

func TestALU_MemHLForms(t *testing.T) {
	c := newCPUWithROM([]byte{0x86, 0x34, 0x35}) // ADD A,(HL); INC (HL); DEC (HL)
	c.setHL(0xC000)
	c.Bus().Write(0xC000, 0x0F)
	c.A = 0x01
	c.F = 0
	if n := step(t, c); n != 2 {
		t.Fatalf("ADD A,(HL) cost got %d want 2", n)
	}
	if c.A != 0x10 || c.F != flagH {
		t.Fatalf("ADD A,(HL): A=%02X F=%02X", c.A, c.F)
	}
	if n := step(t, c); n != 3 {
		t.Fatalf("INC (HL) cost got %d want 3", n)
	}
	if got := c.Bus().Read(0xC000); got != 0x10 {
		t.Fatalf("INC (HL) got %02X want 10", got)
	}
	step(t, c)
	if got := c.Bus().Read(0xC000); got != 0x0F {
		t.Fatalf("DEC (HL) got %02X want 0F", got)
	}
}

func TestCB_RegisterAndMemHL(t *testing.T) {
	// SWAP A ; SET 3,(HL) ; BIT 3,(HL) ; RES 3,(HL)
	c := newCPUWithROM([]byte{0xCB, 0x37, 0xCB, 0xDE, 0xCB, 0x5E, 0xCB, 0x9E})
	c.setHL(0xC000)
	c.A = 0xA5
	if n := step(t, c); n != 2 {
		t.Fatalf("SWAP A cost got %d want 2", n)
	}
	if c.A != 0x5A {
		t.Fatalf("SWAP A got %02X", c.A)
	}
	if n := step(t, c); n != 4 {
		t.Fatalf("SET 3,(HL) cost got %d want 4", n)
	}
	if got := c.Bus().Read(0xC000); got != 0x08 {
		t.Fatalf("SET 3,(HL) got %02X", got)
	}
	if n := step(t, c); n != 3 {
		t.Fatalf("BIT 3,(HL) cost got %d want 3", n)
	}
	if c.F&flagZ != 0 {
		t.Fatalf("BIT 3,(HL) set Z for a set bit")
	}
	if n := step(t, c); n != 4 {
		t.Fatalf("RES 3,(HL) cost got %d want 4", n)
	}
	if got := c.Bus().Read(0xC000); got != 0x00 {
		t.Fatalf("RES 3,(HL) got %02X", got)
	}
}

func TestAccumulatorRotates_ClearZ(t *testing.T) {
	c := newCPUWithROM([]byte{0x07}) // RLCA
	c.A = 0x00
	c.F = 0xF0
	if n := step(t, c); n != 1 {
		t.Fatalf("RLCA cost got %d want 1", n)
	}
	if c.F&flagZ != 0 {
		t.Fatalf("RLCA left Z set")
	}
	// CB-form RLC A does set Z on zero
	c = newCPUWithROM([]byte{0xCB, 0x07})
	c.A = 0x00
	step(t, c)
	if c.F&flagZ == 0 {
		t.Fatalf("RLC A should set Z for zero result")
	}
}

func TestADDSP_LDHLSP(t *testing.T) {
	c := newCPUWithROM([]byte{0xE8, 0x08, 0xF8, 0xF8, 0xF9}) // ADD SP,8; LD HL,SP-8; LD SP,HL
	c.SP = 0xFFF0
	if n := step(t, c); n != 4 {
		t.Fatalf("ADD SP,e8 cost got %d want 4", n)
	}
	if c.SP != 0xFFF8 {
		t.Fatalf("ADD SP,8 got %04X", c.SP)
	}
	if n := step(t, c); n != 3 {
		t.Fatalf("LD HL,SP+e8 cost got %d want 3", n)
	}
	if c.getHL() != 0xFFF0 {
		t.Fatalf("LD HL,SP-8 got %04X", c.getHL())
	}
	if n := step(t, c); n != 2 {
		t.Fatalf("LD SP,HL cost got %d want 2", n)
	}
	if c.SP != 0xFFF0 {
		t.Fatalf("LD SP,HL got %04X", c.SP)
	}
}

func TestJPHLAndRST(t *testing.T) {
	c := newCPUWithROM([]byte{0xE9})
	c.setHL(0xC000)
	c.Bus().Write(0xC000, 0xEF) // RST $28
	if n := step(t, c); n != 1 {
		t.Fatalf("JP HL cost got %d want 1", n)
	}
	if c.PC != 0xC000 {
		t.Fatalf("JP HL PC got %04X", c.PC)
	}
	if n := step(t, c); n != 4 {
		t.Fatalf("RST cost got %d want 4", n)
	}
	if c.PC != 0x0028 {
		t.Fatalf("RST PC got %04X", c.PC)
	}
	// return address C001 pushed
	lo, hi := c.Bus().Read(c.SP), c.Bus().Read(c.SP+1)
	if uint16(hi)<<8|uint16(lo) != 0xC001 {
		t.Fatalf("RST pushed %02X%02X want C001", hi, lo)
	}
}

func TestCALLcc_RETcc_Costs(t *testing.T) {
	// CALL NZ taken with Z=0
	c := newCPUWithROM([]byte{0xC4, 0x00, 0xC0})
	c.F = 0
	c.Bus().Write(0xC000, 0xC0) // RET NZ
	if n := step(t, c); n != 6 {
		t.Fatalf("CALL cc taken cost got %d want 6", n)
	}
	if n := step(t, c); n != 5 {
		t.Fatalf("RET cc taken cost got %d want 5", n)
	}
	if c.PC != 0x0103 {
		t.Fatalf("PC got %04X want 0103", c.PC)
	}

	// not taken variants
	c = newCPUWithROM([]byte{0xC4, 0x00, 0xC0, 0xC0})
	c.F = flagZ
	if n := step(t, c); n != 3 {
		t.Fatalf("CALL cc not-taken cost got %d want 3", n)
	}
	if n := step(t, c); n != 2 {
		t.Fatalf("RET cc not-taken cost got %d want 2", n)
	}
}

func TestJPcc_Costs(t *testing.T) {
	c := newCPUWithROM([]byte{0xC2, 0x00, 0xC0})
	c.F = 0
	if n := step(t, c); n != 4 {
		t.Fatalf("JP cc taken cost got %d want 4", n)
	}
	c = newCPUWithROM([]byte{0xC2, 0x00, 0xC0})
	c.F = flagZ
	if n := step(t, c); n != 3 {
		t.Fatalf("JP cc not-taken cost got %d want 3", n)
	}
}

func TestMiscFlagOps(t *testing.T) {
	c := newCPUWithROM([]byte{0x2F, 0x37, 0x3F}) // CPL; SCF; CCF
	c.A = 0x35
	c.F = flagZ | flagC
	step(t, c)
	if c.A != 0xCA {
		t.Fatalf("CPL got %02X", c.A)
	}
	if c.F != flagZ|flagC|flagN|flagH {
		t.Fatalf("CPL flags %02X", c.F)
	}
	step(t, c)
	if c.F != flagZ|flagC {
		t.Fatalf("SCF flags %02X", c.F)
	}
	step(t, c)
	if c.F != flagZ {
		t.Fatalf("CCF flags %02X", c.F)
	}
}

func TestDAA_AfterAddProgram(t *testing.T) {
	// LD A,0x45 ; ADD A,0x38 ; DAA => BCD 83
	c := newCPUWithROM([]byte{0x3E, 0x45, 0xC6, 0x38, 0x27})
	step(t, c)
	step(t, c)
	step(t, c)
	if c.A != 0x83 {
		t.Fatalf("DAA got %02X want 83", c.A)
	}
}

func TestADDHL_Flags(t *testing.T) {
	c := newCPUWithROM([]byte{0x09}) // ADD HL,BC
	c.setHL(0x8A23)
	c.setBC(0x0605)
	c.F = flagZ
	if n := step(t, c); n != 2 {
		t.Fatalf("ADD HL,r16 cost got %d want 2", n)
	}
	if c.getHL() != 0x9028 {
		t.Fatalf("ADD HL got %04X", c.getHL())
	}
	if c.F != flagZ|flagH {
		t.Fatalf("ADD HL flags %02X want Z|H", c.F)
	}
}

func TestEcho_ThroughInstructions(t *testing.T) {
	// LD (C000),A ; LD A,(E000)
	c := newCPUWithROM([]byte{0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xE0})
	c.A = 0x42
	step(t, c)
	step(t, c)
	step(t, c)
	if c.A != 0x42 {
		t.Fatalf("echo readback got %02X", c.A)
	}
}
