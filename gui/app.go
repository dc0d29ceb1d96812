// Command rv64-gui is a minimal fyne desktop inspector for the VM: register
// file, a hex dump of the data region, and step/continue/reset controls.
package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/lookbusy1344/rv64-regvm/debugger"
	"github.com/lookbusy1344/rv64-regvm/disasm"
	"github.com/lookbusy1344/rv64-regvm/vm"
)

// App wires a vm.VM and its Debugger to a fyne window.
type App struct {
	win fyne.Window

	machine  *vm.VM
	debugger *debugger.Debugger

	registers *widget.Label
	disasmBox *widget.Label
	memoryBox *widget.Label
	output    *widget.Label

	watchAddr uint64
}

// NewApp builds the window chrome and wires it to machine.
func NewApp(win fyne.Window, machine *vm.VM) *App {
	a := &App{
		win:       win,
		machine:   machine,
		debugger:  debugger.NewDebugger(machine),
		registers: widget.NewLabel(""),
		disasmBox: widget.NewLabel(""),
		memoryBox: widget.NewLabel(""),
		output:    widget.NewLabel(""),
		watchAddr: vm.DataBase,
	}
	a.registers.TextStyle = fyne.TextStyle{Monospace: true}
	a.disasmBox.TextStyle = fyne.TextStyle{Monospace: true}
	a.memoryBox.TextStyle = fyne.TextStyle{Monospace: true}

	stepBtn := widget.NewButton("Step", a.onStep)
	continueBtn := widget.NewButton("Run to halt", a.onContinue)
	resetBtn := widget.NewButton("Reset", a.onReset)

	controls := container.NewHBox(stepBtn, continueBtn, resetBtn)

	top := container.NewVBox(
		widget.NewLabelWithStyle("Registers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.registers,
	)

	middle := container.NewHSplit(
		container.NewVBox(widget.NewLabelWithStyle("Disassembly", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), a.disasmBox),
		container.NewVBox(widget.NewLabelWithStyle("Data memory", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), a.memoryBox),
	)

	layout := container.NewBorder(
		container.NewVBox(top, controls),
		container.NewVBox(widget.NewLabelWithStyle("Output", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), a.output),
		nil, nil,
		middle,
	)

	win.SetContent(layout)
	win.Resize(fyne.NewSize(900, 600))

	a.refresh()
	return a
}

func (a *App) onStep() {
	fault := a.machine.Step()
	if fault != vm.FaultNone {
		a.output.SetText(fmt.Sprintf("fault: %s", fault))
	} else {
		a.output.SetText("")
	}
	a.refresh()
}

func (a *App) onContinue() {
	fault := a.machine.Run(0)
	if fault != vm.FaultNone {
		a.output.SetText(fmt.Sprintf("fault: %s", fault))
	} else {
		a.output.SetText("halted")
	}
	a.refresh()
}

func (a *App) onReset() {
	dataSize := len(a.machine.Memory.Data)
	*a.machine = *vm.NewVM(dataSize)
	a.output.SetText("")
	a.refresh()
}

func (a *App) refresh() {
	a.registers.SetText(a.renderRegisters())
	a.disasmBox.SetText(a.renderDisassembly())
	a.memoryBox.SetText(a.renderMemory())
}

func (a *App) renderRegisters() string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			reg := vm.Word(row*4 + col)
			fmt.Fprintf(&b, "%-4s=%016X  ", vm.RegisterNames[reg], a.machine.X.Get(reg))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nstate=%s fault=%s cycles=%d", a.machine.State, a.machine.LastFault, a.machine.Cycles)
	return b.String()
}

func (a *App) renderDisassembly() string {
	var b strings.Builder
	pc := a.machine.X.Get(vm.PC)
	for i := 0; i < 20; i++ {
		addr := pc + uint64(i*4)
		w, ok := a.machine.Memory.FetchWord(addr)
		if !ok {
			break
		}
		marker := "  "
		if addr == pc {
			marker = "=>"
		}
		fmt.Fprintf(&b, "%s %016X: %s\n", marker, addr, disasm.Instruction(addr, w))
	}
	return b.String()
}

func (a *App) renderMemory() string {
	var b strings.Builder
	for row := 0; row < 16; row++ {
		addr := a.watchAddr + uint64(row*16)
		fmt.Fprintf(&b, "%016X: ", addr)
		for col := 0; col < 16; col++ {
			v, ok := a.machine.Memory.ReadUint8(addr + uint64(col))
			if !ok {
				b.WriteString("?? ")
				continue
			}
			fmt.Fprintf(&b, "%02X ", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
