package vm

// r1Func is the signature for the R1 (stack/control) shape: PUSH, POP, CALL.
// Each can fault on an out-of-range stack access.
type r1Func func(v *VM, rd Word) Fault

func r1PUSH(v *VM, rd Word) Fault {
	newSP := v.X.Get(SP) - 8
	if !v.Memory.WriteUint64(newSP, v.X.Get(rd)) {
		return FaultMemoryRange
	}
	v.X.Set(SP, newSP)
	return FaultNone
}

func r1POP(v *VM, rd Word) Fault {
	sp := v.X.Get(SP)
	val, ok := v.Memory.ReadUint64(sp)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, val)
	v.X.Set(SP, sp+8)
	return FaultNone
}

// r1CALL pushes a frame of (saved BP, return address) below the current
// stack top, sets BP to that frame, and transfers control to X[rd]. The
// return address is PC as already advanced past the CALL instruction
// itself. This mirrors the layout seedHaltFrame prepares at the top of the
// data region, so a bare top-level RET unwinds straight into it.
func r1CALL(v *VM, rd Word) Fault {
	target := v.X.Get(rd)
	retAddr := v.X.Get(PC)
	oldBP := v.X.Get(BP)
	frame := v.X.Get(SP) - 16
	if !v.Memory.WriteUint64(frame, oldBP) {
		return FaultMemoryRange
	}
	if !v.Memory.WriteUint64(frame+8, retAddr) {
		return FaultMemoryRange
	}
	v.X.Set(SP, frame)
	v.X.Set(BP, frame)
	v.X.Set(PC, target)
	return FaultNone
}

// vFunc is the signature for the V (no-operand) shape: RET, HLT, NOP.
type vFunc func(v *VM) Fault

// vRET unwinds the frame at BP: saved BP lives at [BP], the return address
// at [BP+8]. The pre-wired halt frame seedHaltFrame installs holds zero in
// both fields, so unwinding through it sets PC to 0 -- the fetch loop
// recognizes that as a clean halt rather than an out-of-range fault.
func vRET(v *VM) Fault {
	bp := v.X.Get(BP)
	savedBP, ok := v.Memory.ReadUint64(bp)
	if !ok {
		return FaultMemoryRange
	}
	savedPC, ok := v.Memory.ReadUint64(bp + 8)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(SP, bp+16)
	v.X.Set(BP, savedBP)
	v.X.Set(PC, savedPC)
	return FaultNone
}

func vHLT(v *VM) Fault {
	v.X.Set(PC, 0)
	v.State = StateHalted
	return FaultNone
}

func vNOP(v *VM) Fault {
	return FaultNone
}
