package vm

import "testing"

func TestZeroRegisterReadsZero(t *testing.T) {
	var r Registers
	r[ZR] = 0xDEADBEEF // bypass Set to simulate a stray direct write
	if got := r.Get(ZR); got != 0 {
		t.Errorf("Get(ZR) = %d, want 0", got)
	}
}

func TestZeroRegisterWriteDiscarded(t *testing.T) {
	var r Registers
	r.Set(ZR, 42)
	if got := r.Get(ZR); got != 0 {
		t.Errorf("Get(ZR) after Set(ZR,42) = %d, want 0 (write must be discarded)", got)
	}
	if r[ZR] != 0 {
		t.Errorf("underlying storage for ZR = %d, want 0", r[ZR])
	}
}

func TestOrdinaryRegisterRoundTrip(t *testing.T) {
	var r Registers
	r.Set(X08, 123)
	if got := r.Get(X08); got != 123 {
		t.Errorf("Get(X08) = %d, want 123", got)
	}
}
