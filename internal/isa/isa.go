// Package isa defines the SM83 instruction set data model and the decoder.
//
// A decoded instruction is one of six families (Arithmetic, Bit, Load,
// Jump, Stack, Misc), each carrying its operands. The decoder is a pure
// function over a byte-addressable read oracle; execution lives in the
// cpu package.
package isa

import "fmt"

// Memory is the read oracle the decoder fetches opcode and immediate
// bytes through.
type Memory interface {
	Read(addr uint16) byte
}

// Reg is an 8-bit register operand. The [HL] operand code (110) never
// appears as a Reg; it decodes to the distinct *MemHL instruction kinds.
type Reg int

const (
	B Reg = iota
	C
	D
	E
	H
	L
	A
)

var regNames = [...]string{"B", "C", "D", "E", "H", "L", "A"}

func (r Reg) String() string { return regNames[r] }

// regFromBits maps a 3-bit register code. ok is false for code 110 ([HL]).
func regFromBits(code byte) (Reg, bool) {
	switch code & 0x07 {
	case 0:
		return B, true
	case 1:
		return C, true
	case 2:
		return D, true
	case 3:
		return E, true
	case 4:
		return H, true
	case 5:
		return L, true
	case 7:
		return A, true
	}
	return 0, false
}

// RegPair is a 16-bit operand for arithmetic and immediate loads.
type RegPair int

const (
	BC RegPair = iota
	DE
	HL
	SP
)

var pairNames = [...]string{"BC", "DE", "HL", "SP"}

func (p RegPair) String() string { return pairNames[p] }

func pairFromBits(code byte) RegPair { return RegPair(code & 0x03) }

// RegPairMem is the indirect-load operand set: BC, DE, HL post-increment,
// HL post-decrement.
type RegPairMem int

const (
	MemBC RegPairMem = iota
	MemDE
	MemHLI
	MemHLD
)

var pairMemNames = [...]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}

func (p RegPairMem) String() string { return pairMemNames[p] }

func pairMemFromBits(code byte) RegPairMem { return RegPairMem(code & 0x03) }

// RegPairStk is the push/pop operand set.
type RegPairStk int

const (
	StkBC RegPairStk = iota
	StkDE
	StkHL
	StkAF
)

var pairStkNames = [...]string{"BC", "DE", "HL", "AF"}

func (p RegPairStk) String() string { return pairStkNames[p] }

func pairStkFromBits(code byte) RegPairStk { return RegPairStk(code & 0x03) }

// Cond is a branch condition.
type Cond int

const (
	CondNZ Cond = iota
	CondZ
	CondNC
	CondC
)

var condNames = [...]string{"NZ", "Z", "NC", "C"}

func (c Cond) String() string { return condNames[c] }

func condFromBits(code byte) Cond { return Cond(code & 0x03) }

// Instruction is the closed sum over the six families.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

func (Arithmetic) isInstruction() {}
func (Bit) isInstruction()        {}
func (Load) isInstruction()       {}
func (Jump) isInstruction()       {}
func (Stack) isInstruction()      {}
func (Misc) isInstruction()       {}

// ArithKind enumerates the 8/16-bit arithmetic and logic forms.
type ArithKind int

const (
	AddAR8 ArithKind = iota
	AddAMemHL
	AddAN8
	AdcAR8
	AdcAMemHL
	AdcAN8
	SubAR8
	SubAMemHL
	SubAN8
	SbcAR8
	SbcAMemHL
	SbcAN8
	AndAR8
	AndAMemHL
	AndAN8
	XorAR8
	XorAMemHL
	XorAN8
	OrAR8
	OrAMemHL
	OrAN8
	CpAR8
	CpAMemHL
	CpAN8
	IncR8
	IncMemHL
	DecR8
	DecMemHL
	AddHLR16
	IncR16
	DecR16
)

// Arithmetic carries the operand for one arithmetic/logic instruction:
// Reg for r8 forms, Pair for r16 forms, Imm for n8 forms.
type Arithmetic struct {
	Kind ArithKind
	Reg  Reg
	Pair RegPair
	Imm  uint8
}

// BitKind enumerates bit test/set/reset, swaps, rotates and shifts.
type BitKind int

const (
	BitR8 BitKind = iota
	BitMemHL
	ResR8
	ResMemHL
	SetR8
	SetMemHL
	SwapR8
	SwapMemHL
	RlcR8
	RlcMemHL
	Rlca
	RrcR8
	RrcMemHL
	Rrca
	RlR8
	RlMemHL
	Rla
	RrR8
	RrMemHL
	Rra
	SlaR8
	SlaMemHL
	SraR8
	SraMemHL
	SrlR8
	SrlMemHL
)

// Bit carries a register target and, for BIT/RES/SET, the bit index.
type Bit struct {
	Kind BitKind
	Reg  Reg
	Bit  uint8
}

// LoadKind enumerates the load forms.
type LoadKind int

const (
	LdR8R8 LoadKind = iota
	LdR8N8
	LdR16N16
	LdMemHLR8
	LdMemHLN8
	LdR8MemHL
	LdMemR16A
	LdAMemR16
	LdMemN16A
	LdAMemN16
	LdhMemN8A
	LdhAMemN8
	LdhMemCA
	LdhAMemC
)

type Load struct {
	Kind    LoadKind
	Dst     Reg
	Src     Reg
	Pair    RegPair
	PairMem RegPairMem
	Imm8    uint8
	Imm16   uint16
}

// JumpKind enumerates jumps, calls and returns.
type JumpKind int

const (
	JpN16 JumpKind = iota
	JpCC
	JpHL
	JrE8
	JrCC
	CallN16
	CallCC
	Ret
	RetCC
	Reti
	Rst
)

type Jump struct {
	Kind JumpKind
	Cond Cond
	Addr uint16 // absolute target, or RST vector
	Rel  int8   // JR displacement
}

// StackKind enumerates the stack-pointer instruction forms.
type StackKind int

const (
	PushR16 StackKind = iota
	PopR16
	AddSPE8
	LdHLSPPlusE8
	LdSPHL
	LdMemN16SP
)

type Stack struct {
	Kind  StackKind
	Pair  RegPairStk
	Imm16 uint16
	Rel   int8
}

// MiscKind enumerates the remaining one-byte instructions.
type MiscKind int

const (
	Nop MiscKind = iota
	Halt
	Stop
	Di
	Ei
	Daa
	Cpl
	Scf
	Ccf
)

type Misc struct {
	Kind MiscKind
}
