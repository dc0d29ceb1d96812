// Package disasm renders a 32-bit instruction word as a single assembler
// text line, the way the debugger's disassembly view and the CLI's -trace
// output present executed instructions.
package disasm

import (
	"fmt"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

func reg(id vm.Word) string {
	return vm.RegisterNames[id]
}

var arithMnemonics = [...]string{
	vm.ArithAdd: "ADD", vm.ArithSub: "SUB", vm.ArithSlt: "SLT", vm.ArithSltu: "SLTU",
	vm.ArithMul: "MUL", vm.ArithMulh: "MULH", vm.ArithMulhsu: "MULHSU", vm.ArithMulhu: "MULHU",
	vm.ArithDiv: "DIV", vm.ArithDivu: "DIVU", vm.ArithRem: "REM", vm.ArithRemu: "REMU",
	vm.ArithSll: "SLL", vm.ArithSrl: "SRL", vm.ArithSra: "SRA",
	vm.ArithAnd: "AND", vm.ArithOr: "OR", vm.ArithXor: "XOR",
}

var loadMnemonics = [...]string{
	vm.LoadLB: "LB", vm.LoadLH: "LH", vm.LoadLW: "LW",
	vm.LoadLBU: "LBU", vm.LoadLHU: "LHU", vm.LoadLWU: "LWU", vm.LoadLD: "LD",
}

var saveMnemonics = [...]string{
	vm.SaveSB: "SB", vm.SaveSH: "SH", vm.SaveSW: "SW", vm.SaveSD: "SD",
}

var immMnemonics = [...]string{
	vm.ImmAddi: "ADDI", vm.ImmMuli: "MULI", vm.ImmSlti: "SLTI", vm.ImmSltui: "SLTUI",
	vm.ImmAndi: "ANDI", vm.ImmOri: "ORI", vm.ImmXori: "XORI",
}

var shiftMnemonics = [...]string{
	vm.ShiftSLLI: "SLLI", vm.ShiftSRLI: "SRLI", vm.ShiftSRAI: "SRAI",
}

var branchMnemonics = [...]string{
	vm.BranchJALR: "JALR", vm.BranchBEQ: "BEQ", vm.BranchBNE: "BNE", vm.BranchBLT: "BLT",
	vm.BranchBGE: "BGE", vm.BranchBLTU: "BLTU", vm.BranchBGEU: "BGEU",
}

var vMnemonics = [...]string{
	vm.VRet: "RET", vm.VHlt: "HLT", vm.VNop: "NOP",
}

var r1Mnemonics = [...]string{
	vm.R1Push: "PUSH", vm.R1Pop: "POP", vm.R1Call: "CALL",
}

// Instruction decodes a 32-bit word at addr into a single disassembly
// line. It never fails: an opcode pattern the dispatch tables would
// reject at runtime is rendered as "???\t0x%08X" instead.
func Instruction(addr uint64, w vm.Word) string {
	op := vm.PrimaryOpcode(w)

	switch op {
	case vm.OpArith:
		f := vm.DecodeR3(w)
		if int(f.Op2) < len(arithMnemonics) && arithMnemonics[f.Op2] != "" {
			return fmt.Sprintf("%s\t%s, %s, %s", arithMnemonics[f.Op2], reg(f.Rd), reg(f.Ra), reg(f.Rb))
		}

	case vm.OpLoad:
		f := vm.DecodeR2I1(w)
		if int(f.Op2) < len(loadMnemonics) && loadMnemonics[f.Op2] != "" {
			return fmt.Sprintf("%s\t%s, %d(%s)", loadMnemonics[f.Op2], reg(f.Rd), signExtend12(f.Imm), reg(f.Ra))
		}

	case vm.OpSave:
		f := vm.DecodeR2I1(w)
		if int(f.Op2) < len(saveMnemonics) && saveMnemonics[f.Op2] != "" {
			return fmt.Sprintf("%s\t%s, %d(%s)", saveMnemonics[f.Op2], reg(f.Ra), signExtend12(f.Imm), reg(f.Rd))
		}

	case vm.OpImm:
		f := vm.DecodeR2I1(w)
		if f.Op2 == vm.ImmShift {
			s := vm.DecodeImmShift(w)
			if int(s.Op3) < len(shiftMnemonics) {
				return fmt.Sprintf("%s\t%s, %s, %d", shiftMnemonics[s.Op3], reg(s.Rd), reg(s.Ra), s.Imm&0x3F)
			}
			break
		}
		if int(f.Op2) < len(immMnemonics) && immMnemonics[f.Op2] != "" {
			return fmt.Sprintf("%s\t%s, %s, %d", immMnemonics[f.Op2], reg(f.Rd), reg(f.Ra), signExtend12(f.Imm))
		}

	case vm.OpBranch:
		f := vm.DecodeR2I1(w)
		if int(f.Op2) < len(branchMnemonics) {
			target := addr + 4 + uint64(signExtend12(f.Imm)<<1)
			return fmt.Sprintf("%s\t%s, %s, 0x%X", branchMnemonics[f.Op2], reg(f.Rd), reg(f.Ra), target)
		}

	case vm.OpLUI:
		f := vm.DecodeR1I1(w)
		return fmt.Sprintf("LUI\t%s, 0x%X", reg(f.Rd), f.Imm)

	case vm.OpAUIPC:
		f := vm.DecodeR1I1(w)
		return fmt.Sprintf("AUIPC\t%s, 0x%X", reg(f.Rd), f.Imm)

	case vm.OpJAL:
		f := vm.DecodeR1I1(w)
		target := addr + 4 + uint64(signExtend20(f.Imm)<<1)
		return fmt.Sprintf("JAL\t%s, 0x%X", reg(f.Rd), target)

	case vm.OpMOV:
		f := vm.DecodeR2(w)
		return fmt.Sprintf("MOV\t%s, %s", reg(f.Rd), reg(f.Ra))
	}

	if op&0x08 != 0 {
		f := vm.DecodeV(w)
		if int(f.Op2) < len(vMnemonics) && vMnemonics[f.Op2] != "" {
			return vMnemonics[f.Op2]
		}
	}
	if op&0x10 != 0 {
		f := vm.DecodeR1(w)
		if int(f.Op2) < len(r1Mnemonics) && r1Mnemonics[f.Op2] != "" {
			return fmt.Sprintf("%s\t%s", r1Mnemonics[f.Op2], reg(f.Rd))
		}
	}

	return fmt.Sprintf("???\t0x%08X", w)
}

func signExtend12(v vm.Word) int64 {
	x := int64(v & 0xFFF)
	if x&0x800 != 0 {
		x -= 0x1000
	}
	return x
}

func signExtend20(v vm.Word) int64 {
	x := int64(v & 0xFFFFF)
	if x&0x80000 != 0 {
		x -= 0x100000
	}
	return x
}
