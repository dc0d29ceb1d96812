package api

import (
	"time"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

// SessionCreateRequest represents a request to create a new session
type SessionCreateRequest struct {
	DataSize int `json:"dataSize,omitempty"` // Data/stack region size in bytes (default: vm.DefaultDataSize)
}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Fault     string `json:"fault"`
	PC        uint64 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
}

// LoadProgramRequest carries a base64-encoded program image, in the format
// loader.Encode/loader.Decode understand.
type LoadProgramRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// LoadProgramResponse represents the response from loading a program
type LoadProgramResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RegistersResponse represents the current register state
type RegistersResponse struct {
	Registers map[string]uint64 `json:"registers"`
	PC        uint64            `json:"pc"`
	Cycles    uint64            `json:"cycles"`
	State     string            `json:"state"`
	Fault     string            `json:"fault"`
}

// ToRegisterResponse converts a live VM into an API response.
func ToRegisterResponse(machine *vm.VM) *RegistersResponse {
	regs := make(map[string]uint64, vm.NumRegisters)
	for i := 0; i < vm.NumRegisters; i++ {
		regs[vm.RegisterNames[i]] = machine.X.Get(vm.Word(i))
	}
	return &RegistersResponse{
		Registers: regs,
		PC:        machine.X.Get(vm.PC),
		Cycles:    machine.Cycles,
		State:     machine.State.String(),
		Fault:     machine.LastFault.String(),
	}
}

// MemoryRequest represents a request for memory data
type MemoryRequest struct {
	Address uint64 `json:"address"`
	Length  uint64 `json:"length"`
}

// MemoryResponse represents memory data
type MemoryResponse struct {
	Address uint64 `json:"address"`
	Data    []byte `json:"data"`
}

// DisassemblyResponse represents disassembled instructions
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo represents a disassembled instruction
type InstructionInfo struct {
	Address     uint64 `json:"address"`
	MachineCode uint32 `json:"machineCode"`
	Disassembly string `json:"disassembly"`
	Symbol      string `json:"symbol,omitempty"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address   uint64 `json:"address"`
	Temporary bool   `json:"temporary,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []uint64 `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint
type WatchpointRequest struct {
	Expression string `json:"expression"`
}

// WatchpointResponse describes a created watchpoint
type WatchpointResponse struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
}

// WatchpointsResponse represents a list of watchpoints
type WatchpointsResponse struct {
	Watchpoints []WatchpointResponse `json:"watchpoints"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}
