package main

import (
	"flag"
	"log"

	"fyne.io/fyne/v2/app"

	"github.com/lookbusy1344/rv64-regvm/config"
	"github.com/lookbusy1344/rv64-regvm/loader"
	"github.com/lookbusy1344/rv64-regvm/vm"
)

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	machine := vm.NewVM(cfg.Execution.DataSize)

	if flag.NArg() > 0 {
		path := flag.Arg(0)
		if err := loader.LoadProgramIntoVM(machine, path); err != nil {
			log.Fatalf("failed to load program %s: %v", path, err)
		}
	}

	a := app.New()
	win := a.NewWindow("rv64-regvm inspector")
	NewApp(win, machine)
	win.ShowAndRun()
}
