package vm

import "testing"

func TestArithAddSub(t *testing.T) {
	v := NewVM(1024)
	v.X.Set(X08, 10)
	v.X.Set(X09, 3)
	arithADD(v, X10, X08, X09)
	if got := v.X.Get(X10); got != 13 {
		t.Errorf("ADD: got %d, want 13", got)
	}
	arithSUB(v, X10, X08, X09)
	if got := v.X.Get(X10); got != 7 {
		t.Errorf("SUB: got %d, want 7", got)
	}
}

func TestArithSignedCompare(t *testing.T) {
	v := NewVM(1024)
	v.X.Set(X08, ^uint64(4)) // -5 in two's complement
	v.X.Set(X09, 3)

	arithSLT(v, X10, X08, X09)
	if got := v.X.Get(X10); got != 1 {
		t.Errorf("SLT(-5,3): got %d, want 1 (signed less-than)", got)
	}

	arithSLTU(v, X10, X08, X09)
	if got := v.X.Get(X10); got != 0 {
		t.Errorf("SLTU(-5,3): got %d, want 0 (unsigned: -5 as u64 is huge)", got)
	}
}

func TestMulhVariants(t *testing.T) {
	// -1 * -1 == 1, high bits of the signed 128-bit product are all zero.
	if got := mulh(-1, -1); got != 0 {
		t.Errorf("mulh(-1,-1) = %#x, want 0", got)
	}
	// Unsigned: MaxUint64 * 2 overflows into the high word.
	if got := mulhu(^uint64(0), 2); got != 1 {
		t.Errorf("mulhu(max,2) = %#x, want 1", got)
	}
}

func TestDivRemByZero(t *testing.T) {
	if got := divSigned(10, 0); got != -1 {
		t.Errorf("divSigned(10,0) = %d, want -1", got)
	}
	if got := remSigned(10, 0); got != 10 {
		t.Errorf("remSigned(10,0) = %d, want 10", got)
	}
	if got := divUnsigned(10, 0); got != ^uint64(0) {
		t.Errorf("divUnsigned(10,0) = %d, want max uint64", got)
	}
	if got := remUnsigned(10, 0); got != 10 {
		t.Errorf("remUnsigned(10,0) = %d, want 10", got)
	}
}

func TestDivMinInt64OverflowCase(t *testing.T) {
	if got := divSigned(minInt64, -1); got != minInt64 {
		t.Errorf("divSigned(MinInt64,-1) = %d, want MinInt64 (RISC-V defined overflow result)", got)
	}
	if got := remSigned(minInt64, -1); got != 0 {
		t.Errorf("remSigned(MinInt64,-1) = %d, want 0", got)
	}
}

func TestShiftMaskedToSixBits(t *testing.T) {
	v := NewVM(1024)
	v.X.Set(X08, 1)
	v.X.Set(X09, 64) // masks to 0, so SLL is a no-op
	arithSLL(v, X10, X08, X09)
	if got := v.X.Get(X10); got != 1 {
		t.Errorf("SLL by 64 (masked to 0): got %d, want 1", got)
	}
}
