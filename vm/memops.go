package vm

// memFunc is the signature for LOAD/SAVE group semantic functions. Unlike
// plain IMM/ARITH instructions, a memory access can fail (out-of-range
// address), so these report a Fault instead of always succeeding -- bounds
// checking this Go reimplementation adds on top of the original's raw
// pointer arithmetic.
type memFunc func(v *VM, rd, ra, imm Word) Fault

// LOAD group: effective address EA = X[ra] + sxt12(imm).

func loadLB(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	b, ok := v.Memory.ReadUint8(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(int64(int8(b))))
	return FaultNone
}

func loadLH(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	h, ok := v.Memory.ReadUint16(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(int64(int16(h))))
	return FaultNone
}

func loadLW(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	w, ok := v.Memory.ReadUint32(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(int64(int32(w))))
	return FaultNone
}

func loadLBU(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	b, ok := v.Memory.ReadUint8(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(b))
	return FaultNone
}

func loadLHU(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	h, ok := v.Memory.ReadUint16(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(h))
	return FaultNone
}

func loadLWU(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	w, ok := v.Memory.ReadUint32(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, uint64(w))
	return FaultNone
}

func loadLD(v *VM, rd, ra, imm Word) Fault {
	ea := v.X.Get(ra) + sxt12(imm)
	d, ok := v.Memory.ReadUint64(ea)
	if !ok {
		return FaultMemoryRange
	}
	v.X.Set(rd, d)
	return FaultNone
}

// SAVE group. NOTE: this preserves the original's unconventional semantics
// bit-for-bit: the value written is X[ra]+sxt12(imm) truncated to k bytes,
// and the address written to is X[rd] -- not the more conventional "store
// X[ra] to [X[rd]+sxt12(imm)]". This is preserved deliberately; see
// DESIGN.md Open Question 1.

func saveSB(v *VM, rd, ra, imm Word) Fault {
	val := byte(v.X.Get(ra) + sxt12(imm))
	if !v.Memory.WriteUint8(v.X.Get(rd), val) {
		return FaultMemoryRange
	}
	return FaultNone
}

func saveSH(v *VM, rd, ra, imm Word) Fault {
	val := uint16(v.X.Get(ra) + sxt12(imm))
	if !v.Memory.WriteUint16(v.X.Get(rd), val) {
		return FaultMemoryRange
	}
	return FaultNone
}

func saveSW(v *VM, rd, ra, imm Word) Fault {
	val := uint32(v.X.Get(ra) + sxt12(imm))
	if !v.Memory.WriteUint32(v.X.Get(rd), val) {
		return FaultMemoryRange
	}
	return FaultNone
}

func saveSD(v *VM, rd, ra, imm Word) Fault {
	val := v.X.Get(ra) + sxt12(imm)
	if !v.Memory.WriteUint64(v.X.Get(rd), val) {
		return FaultMemoryRange
	}
	return FaultNone
}
