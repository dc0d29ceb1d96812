// Package debugger implements an interactive, gdb-style command interpreter
// over a vm.VM: breakpoints, watchpoints, single-stepping, and inspection of
// registers, memory, and the call stack.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/rv64-regvm/disasm"
	"github.com/lookbusy1344/rv64-regvm/vm"
)

// StepMode represents different stepping modes
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over CALL instructions
	StepOut                    // Step out of current frame
)

// Debugger represents the debugger state and functionality
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager

	Running           bool
	StepMode          StepMode
	StepOverReturnPC  uint64 // PC to stop at after stepping over a CALL
	StepOutTargetBP   uint64 // BP that marks the caller's frame for "finish"

	// Symbol table (label -> address), empty until installed with LoadSymbols
	Symbols map[string]uint64

	// Address -> source line text, for the "list" command and TUI source view
	SourceMap map[uint64]string

	LastCommand string

	Output strings.Builder
}

// NewDebugger creates a new debugger instance wrapping machine.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		StepMode:    StepNone,
		Symbols:     make(map[string]uint64),
		SourceMap:   make(map[uint64]string),
	}
}

// LoadSymbols installs the symbol table used to resolve labels in addresses.
func (d *Debugger) LoadSymbols(symbols map[string]uint64) {
	d.Symbols = symbols
}

// LoadSourceMap installs the address-to-source-line mapping used by "list".
func (d *Debugger) LoadSourceMap(sourceMap map[uint64]string) {
	d.SourceMap = sourceMap
}

// ResolveAddress resolves a label to an address, or parses a numeric address.
func (d *Debugger) ResolveAddress(addrStr string) (uint64, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	base := 10
	s := addrStr
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}

	addr, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// resolveRegister maps a register mnemonic ("x10", "sp", "ra", ...) to its index.
func resolveRegister(name string) (vm.Word, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range vm.RegisterNames {
		if n == name {
			return vm.Word(i), true
		}
	}
	if strings.HasPrefix(name, "X") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n < vm.NumRegisters {
			return vm.Word(n), true
		}
	}
	return 0, false
}

// ExecuteCommand processes and executes a single debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "disas", "disassemble":
		return d.cmdDisassemble(args)

	case "set":
		return d.cmdSet(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdRun(args []string) error {
	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.VM.State == vm.StateHalted || d.VM.State == vm.StateFaulted {
		return fmt.Errorf("program is not running")
	}
	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over a CALL: if the instruction at PC is a CALL, run until
// control returns to the instruction after it; otherwise behaves like step.
func (d *Debugger) cmdNext(args []string) error {
	w, ok := d.VM.Memory.FetchWord(d.VM.X.Get(vm.PC))
	if !ok {
		d.StepMode = StepSingle
		d.Running = true
		return nil
	}

	if isCall(w) {
		d.StepOverReturnPC = d.VM.X.Get(vm.PC) + 4
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
	return nil
}

func isCall(w vm.Word) bool {
	op := vm.PrimaryOpcode(w)
	if op&0x10 == 0 {
		return false
	}
	return vm.DecodeR1(w).Op2 == vm.R1Call
}

// cmdFinish steps out of the current frame: runs until BP holds the caller's
// BP (the saved-BP slot at [BP]), i.e. until the current frame has returned.
// If that slot is unreadable it behaves like step.
func (d *Debugger) cmdFinish(args []string) error {
	savedBP, ok := d.VM.Memory.ReadUint64(d.VM.X.Get(vm.BP))
	if !ok {
		d.StepMode = StepSingle
		d.Running = true
		return nil
	}
	d.StepOutTargetBP = savedBP
	d.StepMode = StepOut
	d.Running = true
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at 0x%016X (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%016X\n", bp.ID, address)
	}
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%016X\n", bp.ID, address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register|[address]>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// ParseWatchExpression resolves a watch expression ("[addr]", a register
// name, or a label/literal address) for callers outside the command loop,
// such as the HTTP API.
func (d *Debugger) ParseWatchExpression(expr string) (isRegister bool, register vm.Word, address uint64, err error) {
	return d.parseWatchExpression(expr)
}

func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register vm.Word, address uint64, err error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, rerr := d.ResolveAddress(addrStr)
		if rerr != nil {
			return false, 0, 0, rerr
		}
		return false, 0, addr, nil
	}

	if reg, ok := resolveRegister(expr); ok {
		return true, reg, 0, nil
	}

	addr, rerr := d.ResolveAddress(expr)
	if rerr != nil {
		return false, 0, 0, fmt.Errorf("invalid watch expression: %s", expr)
	}
	return false, 0, addr, nil
}

// cmdPrint evaluates a register name, label, or numeric literal.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <register|label|number>")
	}
	expr := strings.Join(args, " ")

	if reg, ok := resolveRegister(expr); ok {
		v := d.VM.X.Get(reg)
		d.Printf("%s = 0x%016X (%d)\n", vm.RegisterNames[reg], v, int64(v))
		return nil
	}

	addr, err := d.ResolveAddress(expr)
	if err != nil {
		return err
	}
	d.Printf("$ = 0x%016X (%d)\n", addr, addr)
	return nil
}

// cmdExamine examines memory at an address: x[/nu] <address>, u in {b,h,w,g}.
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/nu] <address>\n  n: count, u: unit size (b/h/w/g)")
	}

	count := 1
	unit := byte('g')
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		spec := args[0][1:]
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		addrArg = args[1]

		i := 0
		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(spec[:i]); err == nil {
				count = n
			}
			spec = spec[i:]
		}
		if len(spec) > 0 {
			unit = spec[0]
		}
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("0x%016X:", address)
	for i := 0; i < count; i++ {
		var value uint64
		var ok bool
		switch unit {
		case 'b':
			var b byte
			b, ok = d.VM.Memory.ReadUint8(address)
			value = uint64(b)
			address++
		case 'h':
			var h uint16
			h, ok = d.VM.Memory.ReadUint16(address)
			value = uint64(h)
			address += 2
		case 'w':
			var w uint32
			w, ok = d.VM.Memory.ReadUint32(address)
			value = uint64(w)
			address += 4
		default:
			value, ok = d.VM.Memory.ReadUint64(address)
			address += 8
		}
		if !ok {
			return fmt.Errorf("memory access out of range")
		}
		d.Printf(" 0x%X", value)
	}
	d.Println()
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|stack>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for i := 0; i < vm.NumRegisters; i++ {
		v := d.VM.X.Get(vm.Word(i))
		d.Printf("  %-4s = 0x%016X (%d)\n", vm.RegisterNames[i], v, int64(v))
	}
	d.Printf("  state = %s, last fault = %s, cycles = %d\n", d.VM.State, d.VM.LastFault, d.VM.Cycles)
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		d.Printf("  %d: 0x%016X %s%s%s (hit %d times)\n",
			bp.ID, bp.Address, status, temp, condition, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}
	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s %s (hit %d times, last value: 0x%016X)\n",
			wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

// showStack walks up from SP, 8 64-bit words, the way the frame layout
// documented in vm/cpu.go lays saved-BP/saved-PC pairs.
func (d *Debugger) showStack() error {
	sp := d.VM.X.Get(vm.SP)
	d.Printf("Stack (SP = 0x%016X, BP = 0x%016X):\n", sp, d.VM.X.Get(vm.BP))
	for i := 0; i < 8; i++ {
		addr := sp + uint64(i*8)
		value, ok := d.VM.Memory.ReadUint64(addr)
		if !ok {
			break
		}
		d.Printf("  0x%016X: 0x%016X (%d)\n", addr, value, int64(value))
	}
	return nil
}

// cmdBacktrace walks saved-BP/saved-PC frames from the current BP upward.
func (d *Debugger) cmdBacktrace(args []string) error {
	d.Println("Call stack:")
	pc := d.VM.X.Get(vm.PC)
	bp := d.VM.X.Get(vm.BP)

	for depth := 0; depth < 64; depth++ {
		d.Printf("  #%d  PC=0x%016X BP=0x%016X\n", depth, pc, bp)

		savedBP, ok1 := d.VM.Memory.ReadUint64(bp)
		savedPC, ok2 := d.VM.Memory.ReadUint64(bp + 8)
		if !ok1 || !ok2 {
			break
		}
		if savedBP == 0 && savedPC == 0 {
			break
		}
		pc, bp = savedPC, savedBP
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	pc := d.VM.X.Get(vm.PC)

	if source, exists := d.SourceMap[pc]; exists {
		d.Printf("=> 0x%016X: %s\n", pc, source)
	} else {
		d.Printf("=> 0x%016X: <no source>\n", pc)
	}

	for offset := uint64(4); offset <= 16; offset += 4 {
		addr := pc + offset
		if source, exists := d.SourceMap[addr]; exists {
			d.Printf("   0x%016X: %s\n", addr, source)
		}
	}
	return nil
}

func (d *Debugger) cmdDisassemble(args []string) error {
	pc := d.VM.X.Get(vm.PC)
	count := 8
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			count = n
		}
	}

	for i := 0; i < count; i++ {
		addr := pc + uint64(i*4)
		w, ok := d.VM.Memory.FetchWord(addr)
		if !ok {
			break
		}
		marker := "  "
		if addr == pc {
			marker = "=>"
		}
		d.Printf("%s 0x%016X: %s\n", marker, addr, disasm.Instruction(addr, w))
	}
	return nil
}

func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	target := args[0]
	valueStr := args[2]

	value, err := d.ResolveAddress(valueStr)
	if err != nil {
		return err
	}

	if strings.HasPrefix(target, "*") {
		addr, err := d.ResolveAddress(target[1:])
		if err != nil {
			return err
		}
		if !d.VM.Memory.WriteUint64(addr, value) {
			return fmt.Errorf("memory access out of range: 0x%016X", addr)
		}
		d.Printf("Memory 0x%016X set to 0x%016X\n", addr, value)
		return nil
	}

	reg, ok := resolveRegister(target)
	if !ok {
		return fmt.Errorf("invalid target: %s", target)
	}
	d.VM.X.Set(reg, value)
	d.Printf("Register %s set to 0x%016X\n", vm.RegisterNames[reg], value)
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println("rv64-regvm debugger commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Mark the VM running")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over CALL instructions")
	d.Println("  finish (fin)      - Run until the current frame returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch a register or [address] for changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Print a register or resolved address")
	d.Println("  x[/nu] <addr>     - Examine memory (u: b/h/w/g)")
	d.Println("  info (i) <what>   - Show information")
	d.Println("  backtrace (bt)    - Show call stack")
	d.Println("  list (l)          - List source around PC")
	d.Println("  disas             - Disassemble around PC")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify register/memory")
	d.Println()
	d.Println("  help (h, ?)       - Show this help")
	return nil
}

// ShouldBreak checks whether execution should pause at the current PC,
// returning a human-readable reason when it should.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.X.Get(vm.PC)

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if pc == d.StepOverReturnPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		if d.VM.X.Get(vm.BP) == d.StepOutTargetBP {
			d.StepMode = StepNone
			return true, "frame returned"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// RunUntilStop drives the VM forward after a command (run/continue/step/
// next/finish) has set d.Running: it steps until a fault, a halt, or
// ShouldBreak reports a stopping reason, then clears Running. Returns "" if
// no run was pending.
func (d *Debugger) RunUntilStop() string {
	if !d.Running {
		return ""
	}
	defer func() { d.Running = false }()

	for {
		fault := d.VM.Step()
		if fault != vm.FaultNone {
			return fmt.Sprintf("fault: %s", fault)
		}
		if d.VM.State == vm.StateHalted {
			return "halted"
		}
		if should, reason := d.ShouldBreak(); should {
			return reason
		}
	}
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
