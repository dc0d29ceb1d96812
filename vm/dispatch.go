package vm

// Dispatch tables route a decoded sub-opcode to its semantic function, one
// table per instruction group, mirroring the asm_table_* function-pointer
// arrays in original_source/vm/vm.cpp. Each table is sized to the full
// field width rather than just the number of defined instructions, so an
// unassigned slot is a nil entry -- there is no "default: panic" path.
//
// A nil table entry is a *valid* opcode dispatching into a padded error
// slot: a fatal instruction, not a recoverable fault. It halts the same
// way HLT does (PC <- 0, State <- Halted, Fault <- none) after recording a
// diagnostic, instead of returning FaultInvalidCode. FaultInvalidCode is
// reserved for the genuine top-level fallthrough, where the primary opcode
// itself doesn't decode to any group and isn't V/R1 shaped either; there
// PC is left where it naturally landed (already advanced past the word),
// since the instruction is recoverable.

var arithTable = [32]arithFunc{
	ArithAdd:    arithADD,
	ArithSub:    arithSUB,
	ArithSlt:    arithSLT,
	ArithSltu:   arithSLTU,
	ArithMul:    arithMUL,
	ArithMulh:   arithMULH,
	ArithMulhsu: arithMULHSU,
	ArithMulhu:  arithMULHU,
	ArithDiv:    arithDIV,
	ArithDivu:   arithDIVU,
	ArithRem:    arithREM,
	ArithRemu:   arithREMU,
	ArithSll:    arithSLL,
	ArithSrl:    arithSRL,
	ArithSra:    arithSRA,
	ArithAnd:    arithAND,
	ArithOr:     arithOR,
	ArithXor:    arithXOR,
}

var loadTable = [8]memFunc{
	LoadLB:  loadLB,
	LoadLH:  loadLH,
	LoadLW:  loadLW,
	LoadLBU: loadLBU,
	LoadLHU: loadLHU,
	LoadLWU: loadLWU,
	LoadLD:  loadLD,
}

var saveTable = [8]memFunc{
	SaveSB: saveSB,
	SaveSH: saveSH,
	SaveSW: saveSW,
	SaveSD: saveSD,
}

var immTable = [8]immFunc{
	ImmAddi:  immADDI,
	ImmMuli:  immMULI,
	ImmSlti:  immSLTI,
	ImmSltui: immSLTUI,
	ImmAndi:  immANDI,
	ImmOri:   immORI,
	ImmXori:  immXORI,
	// ImmShift is handled separately: it re-decodes the word rather than
	// dispatching through this table.
}

var shiftTable = [4]shiftFunc{
	ShiftSLLI: shiftSLLI,
	ShiftSRLI: shiftSRLI,
	ShiftSRAI: shiftSRAI,
}

var branchTable = [8]immFunc{
	BranchJALR: branchJALR,
	BranchBEQ:  branchBEQ,
	BranchBNE:  branchBNE,
	BranchBLT:  branchBLT,
	BranchBGE:  branchBGE,
	BranchBLTU: branchBLTU,
	BranchBGEU: branchBGEU,
}

var vTable = [8]vFunc{
	VRet: vRET,
	VHlt: vHLT,
	VNop: vNOP,
}

var r1Table = [8]r1Func{
	R1Push: r1PUSH,
	R1Pop:  r1POP,
	R1Call: r1CALL,
}

// haltOnPaddedSlot implements the fatal-instruction path for a decoded
// group whose op2/op3 landed on an unassigned table entry: it records a
// diagnostic, zeroes PC, and halts the same way HLT does. The returned
// Fault is always FaultNone -- dispatch into a padded slot is a valid,
// if useless, opcode, not a recoverable decode failure.
func haltOnPaddedSlot(v *VM, shape string, addr uint64, w Word) Fault {
	v.LastDiagnostic = faultDiagnostic(shape, w, addr, &v.X)
	v.X.Set(PC, 0)
	v.State = StateHalted
	return FaultNone
}

// execute decodes and runs a single instruction word, returning the Fault
// produced (FaultNone on success). It does not touch PC itself on the
// normal path -- the caller (Step, in fetch.go) has already advanced PC
// past this word before calling execute, per the fetch-then-advance-then-
// execute order. addr is the word's own fetch address, pre-advance, used
// only for diagnostics.
func execute(v *VM, addr uint64, w Word) Fault {
	op := PrimaryOpcode(w)

	switch op {
	case OpArith:
		f := DecodeR3(w)
		fn := arithTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "ARITH", addr, w)
		}
		fn(v, f.Rd, f.Ra, f.Rb)
		return FaultNone

	case OpLoad:
		f := DecodeR2I1(w)
		fn := loadTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "LOAD", addr, w)
		}
		return fn(v, f.Rd, f.Ra, f.Imm)

	case OpSave:
		f := DecodeR2I1(w)
		fn := saveTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "SAVE", addr, w)
		}
		return fn(v, f.Rd, f.Ra, f.Imm)

	case OpImm:
		f := DecodeR2I1(w)
		if f.Op2 == ImmShift {
			s := DecodeImmShift(w)
			fn := shiftTable[s.Op3]
			if fn == nil {
				return haltOnPaddedSlot(v, "IMMSHIFT", addr, w)
			}
			fn(v, s.Rd, s.Ra, s.Imm)
			return FaultNone
		}
		fn := immTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "IMM", addr, w)
		}
		fn(v, f.Rd, f.Ra, f.Imm)
		return FaultNone

	case OpBranch:
		f := DecodeR2I1(w)
		fn := branchTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "BRANCH", addr, w)
		}
		fn(v, f.Rd, f.Ra, f.Imm)
		return FaultNone

	case OpLUI:
		f := DecodeR1I1(w)
		r1i1LUI(v, f.Rd, f.Imm)
		return FaultNone

	case OpAUIPC:
		f := DecodeR1I1(w)
		r1i1AUIPC(v, f.Rd, f.Imm)
		return FaultNone

	case OpJAL:
		f := DecodeR1I1(w)
		r1i1JAL(v, f.Rd, f.Imm)
		return FaultNone

	case OpMOV:
		f := DecodeR2(w)
		r2MOV(v, f.Rd, f.Ra)
		return FaultNone
	}

	// Unique opcode space: bit3 selects V shape, bit4 selects R1 shape.
	switch {
	case op&uniqueVBit != 0:
		f := DecodeV(w)
		fn := vTable[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "V", addr, w)
		}
		return fn(v)

	case op&uniqueR1Bit != 0:
		f := DecodeR1(w)
		fn := r1Table[f.Op2]
		if fn == nil {
			return haltOnPaddedSlot(v, "R1", addr, w)
		}
		return fn(v, f.Rd)
	}

	// Neither a known group nor a V/R1 shape: the opcode itself is
	// undecodable. Unlike a padded slot this is a recoverable fault --
	// PC is left where Step already advanced it, past the failing word.
	v.LastDiagnostic = faultDiagnostic("OPCODE", w, addr, &v.X)
	return FaultInvalidCode
}
