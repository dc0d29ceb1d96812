package vm

// Step fetches, decodes, and executes exactly one instruction, advancing
// PC past it before the instruction body runs (so a self-referential
// branch/jump computes its target relative to the already-advanced PC).
//
// PC == 0 is treated as a clean halt rather than attempted as a fetch:
// CodeBase is never 0, and PC reaches 0 through HLT, through dispatch into
// a padded table slot, or by unwinding through the pre-wired halt frame's
// zeroed saved-PC slot (see seedHaltFrame), each a graceful exit, not a
// fault.
func (v *VM) Step() Fault {
	pc := v.X.Get(PC)
	if pc == 0 {
		v.State = StateHalted
		v.LastFault = FaultNone
		return FaultNone
	}

	w, ok := v.Memory.FetchWord(pc)
	if !ok {
		v.State = StateFaulted
		v.LastFault = FaultPCOutOfCode
		return FaultPCOutOfCode
	}
	v.X.Set(PC, pc+4)

	fault := execute(v, pc, w)
	v.Cycles++
	v.LastFault = fault

	if fault != FaultNone {
		v.State = StateFaulted
		return fault
	}
	if v.State != StateHalted {
		v.State = StateRunning
	}
	return FaultNone
}

// Run steps the VM until it halts, faults, or maxCycles completed steps
// have run (maxCycles == 0 means unlimited). The returned Fault is the one
// that ended the run; running out of cycles is not itself a fault.
func (v *VM) Run(maxCycles uint64) Fault {
	v.State = StateRunning
	for {
		if maxCycles > 0 && v.Cycles >= maxCycles {
			return FaultNone
		}
		fault := v.Step()
		if v.State == StateHalted || v.State == StateFaulted {
			return fault
		}
	}
}
