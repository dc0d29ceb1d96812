package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	code := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	rodata := []byte{9, 9, 9}

	img, err := Decode(Encode(code, rodata))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if string(img.Code) != string(code) {
		t.Errorf("Code = %v, want %v", img.Code, code)
	}
	if string(img.ROData) != string(rodata) {
		t.Errorf("ROData = %v, want %v", img.ROData, rodata)
	}
}

func TestDecodeHeaderlessImage(t *testing.T) {
	raw := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	img, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if string(img.Code) != string(raw) {
		t.Errorf("Code = %v, want %v", img.Code, raw)
	}
	if len(img.ROData) != 0 {
		t.Errorf("ROData should be empty for a headerless image, got %v", img.ROData)
	}
}

func TestDecodeTruncatedImageFails(t *testing.T) {
	full := Encode([]byte{1, 2, 3, 4}, []byte{5, 6})
	_, err := Decode(full[:len(full)-1])
	if err == nil {
		t.Error("expected error decoding a truncated image")
	}
}

func TestLoadProgramIntoVM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rvvm")

	img := Encode([]byte{0, 0, 0, 0}, []byte{7})
	if err := os.WriteFile(path, img, 0644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}

	machine := vm.NewVM(1024)
	if err := LoadProgramIntoVM(machine, path); err != nil {
		t.Fatalf("LoadProgramIntoVM returned error: %v", err)
	}
	if machine.State != vm.StateReady {
		t.Errorf("State = %v, want Ready", machine.State)
	}
	if got := machine.X.Get(vm.PC); got != vm.CodeBase {
		t.Errorf("PC = %#x, want CodeBase", got)
	}
}
