// Command rv64-regvm loads and runs programs for the register-based VM: a
// flat binary executor, a line-oriented debugger, a tview/tcell TUI, and an
// HTTP+WebSocket monitoring API, selected by flag.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lookbusy1344/rv64-regvm/api"
	"github.com/lookbusy1344/rv64-regvm/config"
	"github.com/lookbusy1344/rv64-regvm/debugger"
	"github.com/lookbusy1344/rv64-regvm/disasm"
	"github.com/lookbusy1344/rv64-regvm/loader"
	"github.com/lookbusy1344/rv64-regvm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in line-oriented debugger mode")
		tuiMode     = flag.Bool("tui", false, "Start in the tview/tcell TUI debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum cycles before a run is aborted (0 = unlimited)")
		dataSize    = flag.Int("data-size", 0, "Data/stack region size in bytes (0 = config default)")
		entryPoint  = flag.String("entry", "", "Override the starting PC (hex with 0x prefix or decimal; default CodeBase)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		enableTrace = flag.Bool("trace", false, "Enable execution trace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: trace.log)")
		enableStats = flag.Bool("stats", false, "Print instruction-count statistics after running")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv64-regvm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	imagePath := flag.Arg(0)
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", imagePath)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	size := *dataSize
	if size <= 0 {
		size = cfg.Execution.DataSize
	}
	machine := vm.NewVM(size)

	if *verboseMode {
		fmt.Printf("Loading program image: %s\n", imagePath)
	}
	if err := loader.LoadProgramIntoVM(machine, imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *entryPoint != "" {
		entry, err := parseAddress(*entryPoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -entry %q: %v\n", *entryPoint, err)
			os.Exit(1)
		}
		machine.X.Set(vm.PC, entry)
	}

	traceFilePath := *traceFile
	if traceFilePath == "" {
		traceFilePath = cfg.Trace.OutputFile
	}

	switch {
	case *tuiMode:
		runTUI(machine)
	case *debugMode:
		runDebugger(machine)
	default:
		runHeadless(machine, *maxCycles, *verboseMode, *enableTrace || cfg.Execution.EnableTrace, traceFilePath, *enableStats || cfg.Execution.EnableStats, cfg.Trace.FilterRegs, cfg.Trace.MaxEntries)
	}
}

// parseAddress accepts a 0x-prefixed hex string or a plain decimal one.
func parseAddress(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		var addr uint64
		if _, err := fmt.Sscanf(s[2:], "%x", &addr); err != nil {
			return 0, err
		}
		return addr, nil
	}
	var addr uint64
	if _, err := fmt.Sscanf(s, "%d", &addr); err != nil {
		return 0, err
	}
	return addr, nil
}

// runHeadless runs the loaded program to completion without a debugger
// front end, printing the final fault/state and register file. When
// tracing or statistics are requested it steps the VM manually instead of
// calling Run, since both need a hook after every instruction.
func runHeadless(machine *vm.VM, maxCycles uint64, verbose, trace bool, traceFile string, stats bool, traceFilterRegs string, traceMaxEntries int) {
	if !trace && !stats {
		fault := machine.Run(maxCycles)
		if verbose || fault != vm.FaultNone {
			fmt.Printf("state=%s fault=%s cycles=%d\n", machine.State, machine.LastFault, machine.Cycles)
		}
		if fault != vm.FaultNone {
			if machine.LastDiagnostic != "" {
				fmt.Fprintln(os.Stderr, machine.LastDiagnostic)
			}
			os.Exit(1)
		}
		return
	}

	var tracer *vm.ExecutionTrace
	if trace {
		path := traceFile
		if path == "" {
			path = "trace.log"
		}
		f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		tracer = vm.NewExecutionTrace(f)
		if traceMaxEntries > 0 {
			tracer.MaxEntries = traceMaxEntries
		}
		if traceFilterRegs != "" {
			tracer.SetFilterRegisters(strings.Split(traceFilterRegs, ","))
		}
		tracer.Start()
	}

	var runStats *vm.RunStats
	if stats {
		runStats = vm.NewRunStats()
		runStats.Start()
	}

	machine.State = vm.StateRunning
	var fault vm.Fault
	for {
		if maxCycles > 0 && machine.Cycles >= maxCycles {
			break
		}
		pc := machine.X.Get(vm.PC)
		var word vm.Word
		if pc != 0 {
			word, _ = machine.Memory.FetchWord(pc)
		}
		fault = machine.Step()
		if tracer != nil || runStats != nil {
			text := disasm.Instruction(pc, word)
			if tracer != nil && pc != 0 {
				tracer.RecordInstruction(machine, pc, word, text)
			}
			if runStats != nil && pc != 0 {
				runStats.Record(mnemonicOf(text), machine.Cycles)
			}
		}
		if machine.State == vm.StateHalted || machine.State == vm.StateFaulted {
			break
		}
	}

	if tracer != nil {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing trace: %v\n", err)
		}
	}
	if runStats != nil {
		runStats.Stop()
		printStats(runStats)
	}

	if verbose || fault != vm.FaultNone {
		fmt.Printf("state=%s fault=%s cycles=%d\n", machine.State, machine.LastFault, machine.Cycles)
	}
	if fault != vm.FaultNone {
		if machine.LastDiagnostic != "" {
			fmt.Fprintln(os.Stderr, machine.LastDiagnostic)
		}
		os.Exit(1)
	}
}

// mnemonicOf returns the text before the first tab in a disasm.Instruction
// line, e.g. "ADDI\tX08, ZR, 5" -> "ADDI".
func mnemonicOf(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}

func printStats(s *vm.RunStats) {
	fmt.Printf("--- statistics ---\n")
	fmt.Printf("instructions: %d\n", s.TotalInstructions)
	fmt.Printf("cycles: %d\n", s.TotalCycles)
	fmt.Printf("elapsed: %v\n", s.ExecutionTime)
	fmt.Printf("instructions/sec: %.0f\n", s.InstructionsPerSecond())
	mnemonics := make([]string, 0, len(s.InstructionCounts))
	for m := range s.InstructionCounts {
		mnemonics = append(mnemonics, m)
	}
	sort.Strings(mnemonics)
	for _, m := range mnemonics {
		fmt.Printf("  %-8s %d\n", m, s.InstructionCounts[m])
	}
}

// runDebugger drives the line-oriented REPL debugger over stdin/stdout.
func runDebugger(machine *vm.VM) {
	d := debugger.NewDebugger(machine)
	fmt.Println("rv64-regvm debugger. Type 'help' for a list of commands.")

	reader := newLineReader(os.Stdin)
	for {
		fmt.Print("(rv64db) ")
		line, ok := reader()
		if !ok {
			return
		}
		if line == "" {
			continue
		}
		if err := d.ExecuteCommand(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if out := d.GetOutput(); out != "" {
			fmt.Print(out)
		}
		if reason := d.RunUntilStop(); reason != "" {
			fmt.Printf("stopped: %s\n", reason)
		}
		if line == "quit" || line == "q" {
			return
		}
	}
}

// runTUI drives the full-screen tview/tcell debugger.
func runTUI(machine *vm.VM) {
	d := debugger.NewDebugger(machine)
	t := debugger.NewTUI(d)
	if err := t.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

// runAPIServer starts the HTTP+WebSocket monitoring server and blocks until
// it's asked to shut down (Ctrl+C, SIGTERM, or its parent process dying).
func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

// newLineReader returns a closure yielding successive trimmed lines from r,
// with ok == false once the stream is exhausted.
func newLineReader(r io.Reader) func() (string, bool) {
	scanner := bufio.NewScanner(r)
	return func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}
}

func printHelp() {
	fmt.Println(`rv64-regvm - a register-based virtual machine

Usage:
  rv64-regvm [flags] <program-image>

Flags:`)
	flag.PrintDefaults()
	fmt.Println(`
Examples:
  rv64-regvm program.bin              run to completion
  rv64-regvm -trace -stats program.bin  run with an execution trace and a stats summary
  rv64-regvm -debug program.bin       line-oriented debugger
  rv64-regvm -tui program.bin         full-screen TUI debugger
  rv64-regvm -api-server -port 9000   HTTP+WebSocket monitoring API

The desktop register/memory inspector lives in its own binary (cmd: gui),
since a fyne event loop owns the process the way the CLI's flag dispatch
does not.`)
}
