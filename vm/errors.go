package vm

import "fmt"

// Fault is the status code returned by Step. Zero means the step completed
// normally; non-zero values are recoverable faults.
type Fault uint8

const (
	FaultNone        Fault = 0
	FaultPCOutOfCode Fault = 1 // PC lies outside the code region
	FaultInvalidCode Fault = 2 // primary opcode is no group and neither V nor R1 shaped
	FaultMemoryRange Fault = 3 // load/store/stack access outside an owned region, a bounds check the original left unchecked
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "ok"
	case FaultPCOutOfCode:
		return "pc out of program"
	case FaultInvalidCode:
		return "invalid code"
	case FaultMemoryRange:
		return "memory access out of range"
	default:
		return fmt.Sprintf("fault(%d)", uint8(f))
	}
}

// Error implements the error interface so callers who want idiomatic Go
// errors instead of a raw status code can wrap a Fault directly.
func (f Fault) Error() string {
	return f.String()
}

// faultDiagnostic formats a register-dump-plus-shape diagnostic for an
// unrecognized encoding, stored on VM.LastDiagnostic by the dispatcher. It
// never alters VM state itself; callers decide whether to print it.
func faultDiagnostic(shape string, word Word, pc uint64, regs *Registers) string {
	return fmt.Sprintf("fault: unrecognized %s encoding 0x%08X at pc=0x%X\nregisters: %v",
		shape, word, pc, *regs)
}
