package vm

import (
	"strings"
	"testing"
)

func TestExecutionTraceRecordsRegisterChanges(t *testing.T) {
	v := NewVM(1024)
	v.Load(assemble(addi(X08, ZR, 5), addi(X09, X08, 2), hlt()), nil)

	var sb strings.Builder
	tracer := NewExecutionTrace(&sb)
	tracer.Start()

	for v.State != StateHalted && v.State != StateFaulted {
		pc := v.X.Get(PC)
		tracer.RecordInstruction(v, pc, 0, "ADDI\tX08, ZR, 5")
		if fault := v.Step(); fault != FaultNone {
			t.Fatalf("Step returned fault %v", fault)
		}
	}
	if err := tracer.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "X08=0x0000000000000005") {
		t.Errorf("trace output missing X08 change: %q", out)
	}
	if len(tracer.entries) == 0 {
		t.Fatal("expected at least one recorded entry")
	}
}

func TestExecutionTraceFilterRegisters(t *testing.T) {
	v := NewVM(1024)
	v.Load(assemble(addi(X08, ZR, 1), addi(X09, ZR, 2), hlt()), nil)

	var sb strings.Builder
	tracer := NewExecutionTrace(&sb)
	tracer.SetFilterRegisters([]string{"X08"})
	tracer.Start()

	for v.State != StateHalted && v.State != StateFaulted {
		pc := v.X.Get(PC)
		tracer.RecordInstruction(v, pc, 0, "ADDI")
		if fault := v.Step(); fault != FaultNone {
			t.Fatalf("Step returned fault %v", fault)
		}
	}

	for _, entry := range tracer.entries {
		if _, ok := entry.RegisterChanges["X09"]; ok {
			t.Errorf("filtered trace recorded X09 change: %+v", entry)
		}
	}
}

func TestRunStatsCountsInstructions(t *testing.T) {
	s := NewRunStats()
	s.Start()
	s.Record("ADDI", 1)
	s.Record("ADDI", 2)
	s.Record("HLT", 3)
	s.Stop()

	if s.TotalInstructions != 3 {
		t.Errorf("TotalInstructions = %d, want 3", s.TotalInstructions)
	}
	if s.TotalCycles != 3 {
		t.Errorf("TotalCycles = %d, want 3", s.TotalCycles)
	}
	if s.InstructionCounts["ADDI"] != 2 {
		t.Errorf("InstructionCounts[ADDI] = %d, want 2", s.InstructionCounts["ADDI"])
	}
}
