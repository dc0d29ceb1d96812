package vm

import "encoding/binary"

// Test-only encoders, the inverse of DecodeR3/DecodeR2I1/etc in encoding.go,
// used to build literal instruction streams for the fetch/dispatch tests
// without depending on a separate assembler package.

// opV and opR1 are primary opcode values from the "unique" space: opV has
// only bit3 set, opR1 only bit4 set, neither collides with the group codes
// or LUI/AUIPC/JAL/MOV.
const (
	opV  Word = 0x08
	opR1 Word = 0x10
)

func encR3(op, rd, ra, rb, op2 Word) Word {
	return op | rd<<7 | ra<<12 | rb<<17 | op2<<22
}

func encR2I1(op, rd, ra, op2, imm Word) Word {
	return op | rd<<7 | ra<<12 | op2<<17 | (imm&0xFFF)<<20
}

func encImmShift(rd, ra, op3, count Word) Word {
	return OpImm | rd<<7 | ra<<12 | ImmShift<<17 | op3<<20 | (count&0x3FF)<<22
}

func encR1I1(op, rd, imm Word) Word {
	return op | rd<<7 | (imm&0xFFFFF)<<12
}

func encR2(rd, ra Word) Word {
	return OpMOV | rd<<7 | ra<<12
}

func encV(op2 Word) Word {
	return opV | op2<<7
}

func encR1(op2, rd Word) Word {
	return opR1 | op2<<7 | rd<<10
}

func addi(rd, ra, imm Word) Word   { return encR2I1(OpImm, rd, ra, ImmAddi, imm) }
func lui(rd, imm Word) Word        { return encR1I1(OpLUI, rd, imm) }
func auipc(rd, imm Word) Word      { return encR1I1(OpAUIPC, rd, imm) }
func sw(rd, ra, imm Word) Word     { return encR2I1(OpSave, rd, ra, SaveSW, imm) }
func lw(rd, ra, imm Word) Word     { return encR2I1(OpLoad, rd, ra, LoadLW, imm) }
func blt(rd, ra, imm Word) Word    { return encR2I1(OpBranch, rd, ra, BranchBLT, imm) }
func addR3(rd, ra, rb Word) Word   { return encR3(OpArith, rd, ra, rb, ArithAdd) }
func sltR3(rd, ra, rb Word) Word   { return encR3(OpArith, rd, ra, rb, ArithSlt) }
func call(rd Word) Word            { return encR1(R1Call, rd) }
func hlt() Word                    { return encV(VHlt) }
func ret() Word                    { return encV(VRet) }

// assemble packs a sequence of 32-bit words into a little-endian byte
// stream suitable for VM.Load's code argument.
func assemble(words ...Word) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
