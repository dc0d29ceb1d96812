package vm

import "testing"

func TestDecodeR3(t *testing.T) {
	// rd=3, ra=4, rb=5, op2=ArithAdd packed per ShapeR3's bit layout.
	w := Word(3<<7 | 4<<12 | 5<<17 | ArithAdd<<22)
	got := DecodeR3(w)
	want := ShapeR3{Rd: 3, Ra: 4, Rb: 5, Op2: ArithAdd}
	if got != want {
		t.Errorf("DecodeR3(%#x) = %+v, want %+v", w, got, want)
	}
}

func TestDecodeR2I1(t *testing.T) {
	w := Word(7<<7 | 8<<12 | ImmAddi<<17 | 0x2AB<<20)
	got := DecodeR2I1(w)
	want := ShapeR2I1{Rd: 7, Ra: 8, Op2: ImmAddi, Imm: 0x2AB}
	if got != want {
		t.Errorf("DecodeR2I1(%#x) = %+v, want %+v", w, got, want)
	}
}

func TestSxt12(t *testing.T) {
	tests := []struct {
		name string
		in   Word
		want uint64
	}{
		{"zero", 0x000, 0},
		{"max positive", 0x7FF, 0x7FF},
		{"min negative", 0x800, ^uint64(0x7FF)},
		{"all ones", 0xFFF, ^uint64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sxt12(tt.in); got != tt.want {
				t.Errorf("sxt12(%#x) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestSxt20(t *testing.T) {
	tests := []struct {
		name string
		in   Word
		want uint64
	}{
		{"zero", 0x00000, 0},
		{"max positive", 0x7FFFF, 0x7FFFF},
		{"min negative", 0x80000, ^uint64(0x7FFFF)},
		{"all ones", 0xFFFFF, ^uint64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sxt20(tt.in); got != tt.want {
				t.Errorf("sxt20(%#x) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestShiftAmount(t *testing.T) {
	tests := []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{63, 63},
		{64, 0},
		{65, 1},
		{1<<6 + 7, 7},
	}
	for _, tt := range tests {
		if got := shiftAmount(tt.in); got != tt.want {
			t.Errorf("shiftAmount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrimaryOpcode(t *testing.T) {
	if got := PrimaryOpcode(0xFFFFFF80 | OpMOV); got != OpMOV {
		t.Errorf("PrimaryOpcode masked high bits, got %#x want %#x", got, OpMOV)
	}
}
