package isa

import (
	"errors"
	"fmt"
)

// ErrIllegalOpcode marks the terminal decode fault for the bytes the SM83
// leaves undefined.
var ErrIllegalOpcode = errors.New("illegal opcode")

// cursor walks memory while decoding; pos ends up just past the last
// byte the instruction consumed.
type cursor struct {
	mem Memory
	pos uint16
}

func (c *cursor) next() byte {
	b := c.mem.Read(c.pos)
	c.pos++
	return b
}

func (c *cursor) next16() uint16 {
	lo := uint16(c.next())
	hi := uint16(c.next())
	return hi<<8 | lo
}

// Decode reads one instruction starting at pc and returns it together
// with the address just past its last byte. Decoding never mutates
// memory, so decoding the same address twice yields the same result.
func Decode(mem Memory, pc uint16) (Instruction, uint16, error) {
	cur := &cursor{mem: mem, pos: pc}
	op := cur.next()

	var inst Instruction
	switch op >> 6 {
	case 0:
		inst = decodeBlock0(cur, op)
	case 1:
		inst = decodeBlock1(op)
	case 2:
		inst = decodeBlock2(op)
	default:
		inst = decodeBlock3(cur, op)
	}
	if inst == nil {
		return nil, pc, fmt.Errorf("%w: $%02X at $%04X", ErrIllegalOpcode, op, pc)
	}
	return inst, cur.pos, nil
}

// decodeBlock0 covers opcodes 0x00–0x3F: 16-bit loads and arithmetic,
// indirect A loads, INC/DEC, immediate loads, accumulator rotates,
// flag ops and relative jumps.
func decodeBlock0(cur *cursor, op byte) Instruction {
	switch op & 0x07 {
	case 0:
		switch op {
		case 0x00:
			return Misc{Kind: Nop}
		case 0x08:
			return Stack{Kind: LdMemN16SP, Imm16: cur.next16()}
		case 0x10:
			return Misc{Kind: Stop}
		case 0x18:
			return Jump{Kind: JrE8, Rel: int8(cur.next())}
		default: // 0x20, 0x28, 0x30, 0x38
			return Jump{Kind: JrCC, Cond: condFromBits(op >> 3), Rel: int8(cur.next())}
		}
	case 1:
		if op&0x08 == 0 {
			return Load{Kind: LdR16N16, Pair: pairFromBits(op >> 4), Imm16: cur.next16()}
		}
		return Arithmetic{Kind: AddHLR16, Pair: pairFromBits(op >> 4)}
	case 2:
		if op&0x08 == 0 {
			return Load{Kind: LdMemR16A, PairMem: pairMemFromBits(op >> 4)}
		}
		return Load{Kind: LdAMemR16, PairMem: pairMemFromBits(op >> 4)}
	case 3:
		if op&0x08 == 0 {
			return Arithmetic{Kind: IncR16, Pair: pairFromBits(op >> 4)}
		}
		return Arithmetic{Kind: DecR16, Pair: pairFromBits(op >> 4)}
	case 4:
		if r, ok := regFromBits(op >> 3); ok {
			return Arithmetic{Kind: IncR8, Reg: r}
		}
		return Arithmetic{Kind: IncMemHL}
	case 5:
		if r, ok := regFromBits(op >> 3); ok {
			return Arithmetic{Kind: DecR8, Reg: r}
		}
		return Arithmetic{Kind: DecMemHL}
	case 6:
		if r, ok := regFromBits(op >> 3); ok {
			return Load{Kind: LdR8N8, Dst: r, Imm8: cur.next()}
		}
		return Load{Kind: LdMemHLN8, Imm8: cur.next()}
	default:
		switch op {
		case 0x07:
			return Bit{Kind: Rlca, Reg: A}
		case 0x0F:
			return Bit{Kind: Rrca, Reg: A}
		case 0x17:
			return Bit{Kind: Rla, Reg: A}
		case 0x1F:
			return Bit{Kind: Rra, Reg: A}
		case 0x27:
			return Misc{Kind: Daa}
		case 0x2F:
			return Misc{Kind: Cpl}
		case 0x37:
			return Misc{Kind: Scf}
		default: // 0x3F
			return Misc{Kind: Ccf}
		}
	}
}

// decodeBlock1 covers 0x40–0x7F: LD r8,r8 with [HL] forms, and HALT in
// the would-be LD (HL),(HL) slot.
func decodeBlock1(op byte) Instruction {
	if op == 0x76 {
		return Misc{Kind: Halt}
	}
	dst, dstOK := regFromBits(op >> 3)
	src, srcOK := regFromBits(op)
	switch {
	case dstOK && srcOK:
		return Load{Kind: LdR8R8, Dst: dst, Src: src}
	case dstOK:
		return Load{Kind: LdR8MemHL, Dst: dst}
	default:
		return Load{Kind: LdMemHLR8, Src: src}
	}
}

// aluKinds orders the block-2/3 ALU rows: ADD, ADC, SUB, SBC, AND, XOR,
// OR, CP. Columns within a row select r8, [HL] or n8.
var aluKinds = [8][3]ArithKind{
	{AddAR8, AddAMemHL, AddAN8},
	{AdcAR8, AdcAMemHL, AdcAN8},
	{SubAR8, SubAMemHL, SubAN8},
	{SbcAR8, SbcAMemHL, SbcAN8},
	{AndAR8, AndAMemHL, AndAN8},
	{XorAR8, XorAMemHL, XorAN8},
	{OrAR8, OrAMemHL, OrAN8},
	{CpAR8, CpAMemHL, CpAN8},
}

// decodeBlock2 covers 0x80–0xBF: ALU over r8/[HL].
func decodeBlock2(op byte) Instruction {
	row := aluKinds[(op>>3)&0x07]
	if r, ok := regFromBits(op); ok {
		return Arithmetic{Kind: row[0], Reg: r}
	}
	return Arithmetic{Kind: row[1]}
}

// decodeBlock3 covers 0xC0–0xFF: ALU immediates, control flow, stack ops,
// the high-page loads, EI/DI and the CB prefix. Unassigned bytes are
// illegal.
func decodeBlock3(cur *cursor, op byte) Instruction {
	switch op {
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		return Arithmetic{Kind: aluKinds[(op>>3)&0x07][2], Imm: cur.next()}
	case 0xC0, 0xC8, 0xD0, 0xD8:
		return Jump{Kind: RetCC, Cond: condFromBits(op >> 3)}
	case 0xC9:
		return Jump{Kind: Ret}
	case 0xD9:
		return Jump{Kind: Reti}
	case 0xC2, 0xCA, 0xD2, 0xDA:
		return Jump{Kind: JpCC, Cond: condFromBits(op >> 3), Addr: cur.next16()}
	case 0xC3:
		return Jump{Kind: JpN16, Addr: cur.next16()}
	case 0xE9:
		return Jump{Kind: JpHL}
	case 0xC4, 0xCC, 0xD4, 0xDC:
		return Jump{Kind: CallCC, Cond: condFromBits(op >> 3), Addr: cur.next16()}
	case 0xCD:
		return Jump{Kind: CallN16, Addr: cur.next16()}
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		return Jump{Kind: Rst, Addr: uint16((op>>3)&0x07) * 8}
	case 0xC1, 0xD1, 0xE1, 0xF1:
		return Stack{Kind: PopR16, Pair: pairStkFromBits(op >> 4)}
	case 0xC5, 0xD5, 0xE5, 0xF5:
		return Stack{Kind: PushR16, Pair: pairStkFromBits(op >> 4)}
	case 0xCB:
		return decodePrefix(cur.next())
	case 0xE0:
		return Load{Kind: LdhMemN8A, Imm8: cur.next()}
	case 0xF0:
		return Load{Kind: LdhAMemN8, Imm8: cur.next()}
	case 0xE2:
		return Load{Kind: LdhMemCA}
	case 0xF2:
		return Load{Kind: LdhAMemC}
	case 0xEA:
		return Load{Kind: LdMemN16A, Imm16: cur.next16()}
	case 0xFA:
		return Load{Kind: LdAMemN16, Imm16: cur.next16()}
	case 0xE8:
		return Stack{Kind: AddSPE8, Rel: int8(cur.next())}
	case 0xF8:
		return Stack{Kind: LdHLSPPlusE8, Rel: int8(cur.next())}
	case 0xF9:
		return Stack{Kind: LdSPHL}
	case 0xF3:
		return Misc{Kind: Di}
	case 0xFB:
		return Misc{Kind: Ei}
	default:
		// 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD
		return nil
	}
}

// rotKinds orders the CB rotate/shift/swap row: RLC, RRC, RL, RR, SLA,
// SRA, SWAP, SRL; columns select r8 vs [HL].
var rotKinds = [8][2]BitKind{
	{RlcR8, RlcMemHL},
	{RrcR8, RrcMemHL},
	{RlR8, RlMemHL},
	{RrR8, RrMemHL},
	{SlaR8, SlaMemHL},
	{SraR8, SraMemHL},
	{SwapR8, SwapMemHL},
	{SrlR8, SrlMemHL},
}

// decodePrefix covers the 256-entry CB table: 00 op3 r8 rotates, then
// 01/10/11 bit3 r8 for BIT/RES/SET. Every byte is defined.
func decodePrefix(cb byte) Instruction {
	y := (cb >> 3) & 0x07
	r, rOK := regFromBits(cb)
	switch cb >> 6 {
	case 0:
		row := rotKinds[y]
		if rOK {
			return Bit{Kind: row[0], Reg: r}
		}
		return Bit{Kind: row[1]}
	case 1:
		if rOK {
			return Bit{Kind: BitR8, Reg: r, Bit: y}
		}
		return Bit{Kind: BitMemHL, Bit: y}
	case 2:
		if rOK {
			return Bit{Kind: ResR8, Reg: r, Bit: y}
		}
		return Bit{Kind: ResMemHL, Bit: y}
	default:
		if rOK {
			return Bit{Kind: SetR8, Reg: r, Bit: y}
		}
		return Bit{Kind: SetMemHL, Bit: y}
	}
}
