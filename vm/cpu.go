package vm

// VM owns the register file, the three memory regions, and its own
// lifecycle state. It is strictly single-threaded: one VM instance must
// not be driven from more than one goroutine at a time.
type VM struct {
	X      Registers
	Memory *Memory
	State  State

	// LastFault records the status of the most recent Step, so a debugger
	// can distinguish a clean halt from a fault after the fact. A clean halt
	// leaves PC == 0; a fault leaves PC at the failing instruction (PC out of
	// code) or just past it (invalid code, memory access out of range).
	LastFault Fault

	// LastDiagnostic holds the register-dump-plus-shape message emitted by
	// the most recent error handler (a padded dispatch slot, or a top-level
	// undecodable opcode); empty when the last step hit neither.
	LastDiagnostic string

	// Cycles counts completed steps, for statistics collection.
	Cycles uint64
}

// NewVM allocates a VM with a data region of dataSize bytes (DefaultDataSize
// if dataSize <= 0) and seeds the halt frame, matching the C++ original's
// VM() constructor calling init_stack() unconditionally.
func NewVM(dataSize int) *VM {
	m := NewMemory(dataSize)
	v := &VM{Memory: m, State: StateUnloaded}
	v.seedHaltFrame()
	return v
}

// seedHaltFrame writes the zeroed saved-BP/saved-PC pair at the top of the
// data region and points BP/SP at it, so that a bare top-level RET halts
// the VM. Grounded on VM::init_stack in original_source/vm/vm.cpp.
func (v *VM) seedHaltFrame() {
	top := DataBase + uint64(len(v.Memory.Data)) - 16
	v.X.Set(BP, top)
	v.X.Set(SP, top)
	v.X.Set(ZR, 0)
	v.Memory.WriteUint64(top, 0)   // saved BP
	v.Memory.WriteUint64(top+8, 0) // saved PC
}

// Load installs code and (optional) read-only data, resets the register
// file, and re-seeds the halt frame, advancing the VM to StateReady. The
// entry point is always the first word of the code region.
func (v *VM) Load(code, rodata []byte) {
	v.Memory.Code = code
	v.Memory.ROData = rodata
	v.X = Registers{}
	v.seedHaltFrame()
	v.X.Set(PC, CodeBase)
	v.Cycles = 0
	v.LastFault = FaultNone
	v.LastDiagnostic = ""
	v.State = StateReady
}
