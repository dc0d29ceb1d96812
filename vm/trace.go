package vm

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TraceEntry is a single recorded step: the instruction executed and which
// registers it changed.
type TraceEntry struct {
	Sequence        uint64
	Address         uint64
	Word            Word
	Disassembly     string
	RegisterChanges map[string]uint64
	Duration        time.Duration
}

// ExecutionTrace records one TraceEntry per step for later dumping.
type ExecutionTrace struct {
	Writer        io.Writer
	FilterRegs    map[string]bool
	IncludeTiming bool
	MaxEntries    int

	entries      []TraceEntry
	startTime    time.Time
	lastSnapshot [NumRegisters]uint64
	haveSnapshot bool
}

// NewExecutionTrace returns a trace ready to record against w.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Writer:        w,
		FilterRegs:    make(map[string]bool),
		IncludeTiming: true,
		MaxEntries:    100000,
		entries:       make([]TraceEntry, 0, 1024),
	}
}

// SetFilterRegisters restricts recorded changes to the named registers
// (by their RegisterNames spelling); an empty set records every change.
func (t *ExecutionTrace) SetFilterRegisters(names []string) {
	t.FilterRegs = make(map[string]bool, len(names))
	for _, n := range names {
		t.FilterRegs[n] = true
	}
}

// Start resets the trace and begins timing from now.
func (t *ExecutionTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
	t.haveSnapshot = false
}

// RecordInstruction appends an entry for the instruction word at addr,
// diffing the register file against the previous recorded step.
func (t *ExecutionTrace) RecordInstruction(v *VM, addr uint64, w Word, disassembly string) {
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}

	entry := TraceEntry{
		Sequence:        v.Cycles,
		Address:         addr,
		Word:            w,
		Disassembly:     disassembly,
		RegisterChanges: make(map[string]uint64),
	}
	if t.IncludeTiming {
		entry.Duration = time.Since(t.startTime)
	}

	for id := Word(0); id < NumRegisters; id++ {
		name := RegisterNames[id]
		if len(t.FilterRegs) > 0 && !t.FilterRegs[name] {
			continue
		}
		value := v.X.Get(id)
		if !t.haveSnapshot || t.lastSnapshot[id] != value {
			entry.RegisterChanges[name] = value
		}
	}
	t.lastSnapshot = v.X
	t.haveSnapshot = true

	t.entries = append(t.entries, entry)
}

// Flush writes every recorded entry to the trace's writer, one per line.
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *ExecutionTrace) writeEntry(entry TraceEntry) error {
	line := fmt.Sprintf("[%06d] 0x%08X: %-30s", entry.Sequence, entry.Address, entry.Disassembly)
	if len(entry.RegisterChanges) > 0 {
		changes := make([]string, 0, len(entry.RegisterChanges))
		for _, id := range RegisterNames {
			if value, ok := entry.RegisterChanges[id]; ok {
				changes = append(changes, fmt.Sprintf("%s=0x%016X", id, value))
			}
		}
		line += " | " + strings.Join(changes, " ")
	} else {
		line += " | (no changes)"
	}
	if t.IncludeTiming {
		line += fmt.Sprintf(" | %v", entry.Duration)
	}
	line += "\n"
	_, err := t.Writer.Write([]byte(line))
	return err
}
