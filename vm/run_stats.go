package vm

import "time"

// RunStats accumulates counters over a run: total instructions/cycles, a
// per-mnemonic breakdown, and elapsed wall time. It omits branch-taken,
// hot-path, and function-call tracking, since those need a symbol table
// and a notion of "branch" that a mnemonic count alone doesn't carry.
type RunStats struct {
	TotalInstructions uint64
	TotalCycles       uint64
	ExecutionTime     time.Duration
	InstructionCounts map[string]uint64

	startTime time.Time
}

// NewRunStats returns a stats collector ready for Start.
func NewRunStats() *RunStats {
	return &RunStats{InstructionCounts: make(map[string]uint64)}
}

// Start resets all counters and begins timing from now.
func (s *RunStats) Start() {
	s.TotalInstructions = 0
	s.TotalCycles = 0
	s.InstructionCounts = make(map[string]uint64)
	s.startTime = time.Now()
}

// Record tallies one executed instruction identified by mnemonic.
func (s *RunStats) Record(mnemonic string, cycles uint64) {
	s.TotalInstructions++
	s.TotalCycles = cycles
	s.InstructionCounts[mnemonic]++
}

// Stop finalizes ExecutionTime; call once the run has ended.
func (s *RunStats) Stop() {
	s.ExecutionTime = time.Since(s.startTime)
}

// InstructionsPerSecond is 0 if Stop hasn't run or no time has elapsed.
func (s *RunStats) InstructionsPerSecond() float64 {
	secs := s.ExecutionTime.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.TotalInstructions) / secs
}
