package base64codec

import (
	"bytes"
	"testing"
)

func TestEncodedLen(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {1, 4}, {2, 4}, {3, 4}, {4, 8}, {6, 8},
	}
	for _, tt := range tests {
		if got := EncodedLen(tt.in); got != tt.want {
			t.Errorf("EncodedLen(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	inputs := [][]byte{
		[]byte(""),
		[]byte("f"),
		[]byte("fo"),
		[]byte("foo"),
		[]byte("foob"),
		[]byte("fooba"),
		[]byte("foobar"),
		{0x00, 0xFF, 0x10, 0x80, 0x7F},
	}
	for _, in := range inputs {
		enc := Encode(in)
		out, err := DecodeString(enc)
		if err != nil {
			t.Fatalf("DecodeString(%q) error: %v", enc, err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip %q -> %q -> %q, want %q", in, enc, out, in)
		}
	}
}

func TestEncodeKnownVectors(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"f", "Zg=="},
		{"fo", "Zm8="},
		{"foo", "Zm9v"},
		{"foobar", "Zm9vYmFy"},
	}
	for _, tt := range tests {
		if got := string(Encode([]byte(tt.in))); got != tt.want {
			t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeBadLengthReturnsUnexpectedEOF(t *testing.T) {
	_, err := DecodeString([]byte("Zg="))
	if err != ErrUnexpectedEOF {
		t.Errorf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeInvalidCharReturnsUnexpectedToken(t *testing.T) {
	_, err := DecodeString([]byte("Zg!="))
	if err != ErrUnexpectedToken {
		t.Errorf("err = %v, want ErrUnexpectedToken", err)
	}
}

func TestDecodeMisplacedPaddingReturnsUnexpectedToken(t *testing.T) {
	_, err := DecodeString([]byte("Z=8="))
	if err != ErrUnexpectedToken {
		t.Errorf("err = %v, want ErrUnexpectedToken", err)
	}
}
