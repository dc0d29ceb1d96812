package debugger

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

// Minimal test-only encoders, mirroring vm's own asm_helpers_test.go, so
// these tests can build literal instruction streams without an assembler.
const (
	opV  vm.Word = 0x08
	opR1 vm.Word = 0x10
)

func encR2I1(op, rd, ra, op2, imm vm.Word) vm.Word {
	return op | rd<<7 | ra<<12 | op2<<17 | (imm&0xFFF)<<20
}

func encV(op2 vm.Word) vm.Word { return opV | op2<<7 }

func addi(rd, ra, imm vm.Word) vm.Word { return encR2I1(vm.OpImm, rd, ra, vm.ImmAddi, imm) }
func hltWord() vm.Word                 { return encV(vm.VHlt) }

func assemble(words ...vm.Word) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestNewDebugger(t *testing.T) {
	machine := vm.NewVM(1024)
	d := NewDebugger(machine)

	if d.VM != machine {
		t.Error("VM not set correctly")
	}
	if d.Breakpoints == nil {
		t.Error("Breakpoints not initialized")
	}
	if d.Watchpoints == nil {
		t.Error("Watchpoints not initialized")
	}
}

func TestLoadSymbolsAndResolveAddress(t *testing.T) {
	machine := vm.NewVM(1024)
	d := NewDebugger(machine)

	d.LoadSymbols(map[string]uint64{"main": 0x1000, "loop": 0x2000})

	addr, err := d.ResolveAddress("main")
	if err != nil || addr != 0x1000 {
		t.Fatalf("ResolveAddress(main) = %d, %v; want 0x1000, nil", addr, err)
	}

	addr, err = d.ResolveAddress("0x3000")
	if err != nil || addr != 0x3000 {
		t.Fatalf("ResolveAddress(0x3000) = %d, %v; want 0x3000, nil", addr, err)
	}

	addr, err = d.ResolveAddress("42")
	if err != nil || addr != 42 {
		t.Fatalf("ResolveAddress(42) = %d, %v; want 42, nil", addr, err)
	}

	if _, err := d.ResolveAddress("nosuchlabel"); err == nil {
		t.Fatal("expected error resolving unknown label")
	}
}

func TestExecuteCommandAndRunUntilHalt(t *testing.T) {
	machine := vm.NewVM(1024)
	machine.Load(assemble(addi(vm.X08, vm.ZR, 5), hltWord()), nil)
	d := NewDebugger(machine)

	if err := d.ExecuteCommand("run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	reason := d.RunUntilStop()
	if reason != "halted" {
		t.Fatalf("RunUntilStop() = %q, want %q", reason, "halted")
	}
	if got := machine.X.Get(vm.X08); got != 5 {
		t.Errorf("X08 = %d, want 5", got)
	}
}

func TestBreakpointStopsExecution(t *testing.T) {
	machine := vm.NewVM(1024)
	machine.Load(assemble(addi(vm.X08, vm.ZR, 1), addi(vm.X08, vm.X08, 1), hltWord()), nil)
	d := NewDebugger(machine)

	bpAddr := uint64(vm.CodeBase + 4) // second instruction
	if err := d.ExecuteCommand("break " + hexAddr(bpAddr)); err != nil {
		t.Fatalf("break: %v", err)
	}
	if err := d.ExecuteCommand("run"); err != nil {
		t.Fatalf("run: %v", err)
	}

	reason := d.RunUntilStop()
	if !strings.HasPrefix(reason, "breakpoint") {
		t.Fatalf("RunUntilStop() = %q, want breakpoint hit", reason)
	}
	if pc := machine.X.Get(vm.PC); pc != bpAddr {
		t.Errorf("PC = 0x%X, want 0x%X", pc, bpAddr)
	}
	if got := machine.X.Get(vm.X08); got != 1 {
		t.Errorf("X08 = %d, want 1 (stopped before second addi ran)", got)
	}
}

func TestSingleStep(t *testing.T) {
	machine := vm.NewVM(1024)
	machine.Load(assemble(addi(vm.X08, vm.ZR, 7), hltWord()), nil)
	d := NewDebugger(machine)

	if err := d.ExecuteCommand("step"); err != nil {
		t.Fatalf("step: %v", err)
	}
	reason := d.RunUntilStop()
	if reason != "single step" {
		t.Fatalf("RunUntilStop() = %q, want %q", reason, "single step")
	}
	if got := machine.X.Get(vm.X08); got != 7 {
		t.Errorf("X08 = %d after one step, want 7", got)
	}
	if machine.State == vm.StateHalted {
		t.Error("VM should not be halted after a single step")
	}
}

func TestCmdPrintRegisterAndInfo(t *testing.T) {
	machine := vm.NewVM(1024)
	machine.X.Set(vm.X08, 99)
	d := NewDebugger(machine)

	if err := d.ExecuteCommand("print X08"); err != nil {
		t.Fatalf("print: %v", err)
	}
	if out := d.GetOutput(); !strings.Contains(out, "99") {
		t.Errorf("print output %q does not mention value 99", out)
	}

	if err := d.ExecuteCommand("info registers"); err != nil {
		t.Fatalf("info registers: %v", err)
	}
	if out := d.GetOutput(); !strings.Contains(out, "X08") {
		t.Errorf("info registers output missing X08: %q", out)
	}
}

func hexAddr(addr uint64) string {
	const hexDigits = "0123456789ABCDEF"
	if addr == 0 {
		return "0x0"
	}
	var buf [16]byte
	i := len(buf)
	for addr > 0 {
		i--
		buf[i] = hexDigits[addr&0xF]
		addr >>= 4
	}
	return "0x" + string(buf[i:])
}
