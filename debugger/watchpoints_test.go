package debugger

import (
	"testing"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}
	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}
	if wp.Type != WatchWrite {
		t.Errorf("Wrong watchpoint type: got %d, want %d", wp.Type, WatchWrite)
	}
	if wp.Expression != "X08" {
		t.Errorf("Expression = %s, want X08", wp.Expression)
	}
	if !wp.IsRegister {
		t.Error("Should be register watchpoint")
	}
	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}
	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_AddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)
	wp2 := wm.AddWatchpoint(WatchRead, "[0x200000]", vm.DataBase, false, 0)

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}
	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}
	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("Watchpoint not deleted")
	}
	if err := wm.DeleteWatchpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_EnableDisable(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)

	if err := wm.DisableWatchpoint(wp.ID); err != nil {
		t.Fatalf("DisableWatchpoint failed: %v", err)
	}
	if wp.Enabled {
		t.Error("Watchpoint not disabled")
	}

	if err := wm.EnableWatchpoint(wp.ID); err != nil {
		t.Fatalf("EnableWatchpoint failed: %v", err)
	}
	if !wp.Enabled {
		t.Error("Watchpoint not enabled")
	}
}

func TestWatchpointManager_CheckWatchpoints_Register(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM(1024)

	wp := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)

	machine.X.Set(vm.X08, 100)
	if err := wm.InitializeWatchpoint(wp.ID, machine); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}
	if wp.LastValue != 100 {
		t.Errorf("LastValue = %d, want 100", wp.LastValue)
	}

	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	machine.X.Set(vm.X08, 200)
	triggered, changed = wm.CheckWatchpoints(machine)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}
	if wp.LastValue != 200 {
		t.Errorf("LastValue not updated: got %d, want 200", wp.LastValue)
	}
}

func TestWatchpointManager_CheckWatchpoints_Memory(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM(1024)

	addr := uint64(vm.DataBase)

	wp := wm.AddWatchpoint(WatchWrite, "[0x200000]", addr, false, 0)

	machine.Memory.WriteUint64(addr, 0x12345678)
	if err := wm.InitializeWatchpoint(wp.ID, machine); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	machine.Memory.WriteUint64(addr, 0xABCDEF00)
	triggered, changed = wm.CheckWatchpoints(machine)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
}

func TestWatchpointManager_Disabled(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM(1024)

	wp := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)
	wm.InitializeWatchpoint(wp.ID, machine)
	wm.DisableWatchpoint(wp.ID)

	machine.X.Set(vm.X08, 100)

	triggered, _ := wm.CheckWatchpoints(machine)
	if triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManager_GetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)
	wm.AddWatchpoint(WatchRead, "X09", 0, true, vm.X09)
	wm.AddWatchpoint(WatchReadWrite, "[0x1000]", 0x1000, false, 0)

	all := wm.GetAllWatchpoints()
	if len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)
	wm.AddWatchpoint(WatchRead, "X09", 0, true, vm.X09)

	wm.Clear()
	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}

func TestWatchpoint_Types(t *testing.T) {
	wm := NewWatchpointManager()

	wpWrite := wm.AddWatchpoint(WatchWrite, "X08", 0, true, vm.X08)
	wpRead := wm.AddWatchpoint(WatchRead, "X09", 0, true, vm.X09)
	wpAccess := wm.AddWatchpoint(WatchReadWrite, "X10", 0, true, vm.X10)

	if wpWrite.Type != WatchWrite {
		t.Error("Wrong type for write watchpoint")
	}
	if wpRead.Type != WatchRead {
		t.Error("Wrong type for read watchpoint")
	}
	if wpAccess.Type != WatchReadWrite {
		t.Error("Wrong type for access watchpoint")
	}
}
