// Package vm implements the register-based virtual machine: its 32-bit
// instruction encoding, register file, memory regions, instruction
// semantics, dispatch tables, and fetch/decode/execute loop.
package vm

// Word widths used throughout the instruction encoding.
const (
	XLEN          = 64 // register width in bits
	ShiftMaskBits = 6  // low bits of a shift amount that are significant for XLEN=64
)

// NumRegisters is the size of the register file.
const NumRegisters = 32

// Register aliases, per the fixed index table.
const (
	PC  = 0
	RA  = 1
	BP  = 2
	SP  = 3
	GP  = 4
	TP  = 5
	CP  = 6
	RV  = 7
	X08 = 8
	X09 = 9
	X10 = 10
	X11 = 11
	X12 = 12
	X13 = 13
	X14 = 14
	X15 = 15
	X16 = 16
	X17 = 17
	X18 = 18
	X19 = 19
	X20 = 20
	X21 = 21
	X22 = 22
	X23 = 23
	X24 = 24
	X25 = 25
	X26 = 26
	X27 = 27
	X28 = 28
	X29 = 29
	X30 = 30
	ZR  = 31
)

// RegisterNames maps a register index to its canonical assembler name,
// used by the disassembler.
var RegisterNames = [NumRegisters]string{
	"PC", "RA", "BP", "SP", "GP", "TP", "CP", "RV",
	"X08", "X09", "X10", "X11", "X12", "X13", "X14", "X15",
	"X16", "X17", "X18", "X19", "X20", "X21", "X22", "X23",
	"X24", "X25", "X26", "X27", "X28", "X29", "X30", "ZR",
}

// Primary opcode values, bits 6:0 of the instruction word.
const (
	OpArith  Word = 0 // R3
	OpLoad   Word = 1 // R2I1
	OpSave   Word = 2 // R2I1
	OpImm    Word = 3 // R2I1 (+ImmShift sub-shape)
	OpBranch Word = 4 // R2I1

	// OpLUI, OpAUIPC, and OpJAL are literal primary opcode values reserved
	// outside the five group codes for the R1I1 shape. They're chosen to
	// have bit3 and bit4 clear, so they never collide with the V/R1 "unique"
	// test below (see dispatch.go).
	OpLUI   Word = 5
	OpAUIPC Word = 6
	OpJAL   Word = 7

	// OpMOV is the literal primary opcode for the lone R2-shape instruction.
	// Like LUI/AUIPC/JAL it is chosen with bits 3 and 4 clear.
	OpMOV Word = 32
)

// Within the "unique" opcode space (primary opcode not one of the five
// groups, and not LUI/AUIPC/JAL/MOV), bit 3 selects the V shape and bit 4
// selects the R1 shape.
const (
	uniqueVBit  Word = 1 << 3
	uniqueR1Bit Word = 1 << 4
)

// Sub-opcode numbering inside the ARITH (R3) group.
const (
	ArithAdd Word = iota
	ArithSub
	ArithSlt
	ArithSltu

	ArithMul
	ArithMulh
	ArithMulhsu
	ArithMulhu

	ArithDiv
	ArithDivu
	ArithRem
	ArithRemu

	ArithSll
	ArithSrl
	ArithSra
	ArithAnd
	ArithOr
	ArithXor

	numArith
)

// Sub-opcode numbering inside the LOAD group.
const (
	LoadLB Word = iota
	LoadLH
	LoadLW
	LoadLBU
	LoadLHU
	LoadLWU
	LoadLD

	numLoad
)

// Sub-opcode numbering inside the SAVE group.
const (
	SaveSB Word = iota
	SaveSH
	SaveSW
	SaveSD

	numSave
)

// Sub-opcode numbering inside the IMM group. ImmShift is a sentinel op2
// value that re-decodes the word as the ImmShift sub-shape instead.
const (
	ImmAddi Word = iota
	ImmMuli
	ImmSlti
	ImmSltui
	ImmAndi
	ImmOri
	ImmXori
	ImmShift

	numImm
)

// Sub-opcode (op3) numbering inside the ImmShift sub-shape.
const (
	ShiftSLLI Word = iota
	ShiftSRLI
	ShiftSRAI

	numShift
)

// Sub-opcode numbering inside the BRANCH group.
const (
	BranchJALR Word = iota
	BranchBEQ
	BranchBNE
	BranchBLT
	BranchBGE
	BranchBLTU
	BranchBGEU

	numBranch
)

// Sub-opcode numbering inside the V (no-operand) shape.
const (
	VRet Word = iota
	VHlt
	VNop

	numV
)

// Sub-opcode numbering inside the R1 (stack/control) shape.
const (
	R1Push Word = iota
	R1Pop
	R1Call

	numR1
)
