package api

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/lookbusy1344/rv64-regvm/debugger"
	"github.com/lookbusy1344/rv64-regvm/disasm"
	"github.com/lookbusy1344/rv64-regvm/loader"
	"github.com/lookbusy1344/rv64-regvm/vm"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": s.sessions.ListSessions(),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: session.ID,
		State:     session.Machine.State.String(),
		Fault:     session.Machine.LastFault.String(),
		PC:        session.Machine.X.Get(vm.PC),
		Cycles:    session.Machine.Cycles,
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load. The body carries
// a base64-encoded program image in the loader.Encode wire format.
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeJSON(w, http.StatusOK, LoadProgramResponse{Success: false, Error: "invalid base64 image"})
		return
	}

	image, err := loader.Decode(raw)
	if err != nil {
		writeJSON(w, http.StatusOK, LoadProgramResponse{Success: false, Error: err.Error()})
		return
	}

	session.Machine.Load(image.Code, image.ROData)

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, LoadProgramResponse{Success: true})
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	session.Machine.Run(0)

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Machine))
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	session.Machine.Step()

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Machine))
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	dataSize := len(session.Machine.Memory.Data)
	*session.Machine = *vm.NewVM(dataSize)
	session.Debugger = debugger.NewDebugger(session.Machine)

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Machine))
}

// handleGetMemory handles GET /api/v1/session/{id}/memory?address=0x...&length=64
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	addr, length, err := parseMemoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, ok := session.Machine.Memory.ReadBytes(addr, int(length))
	if !ok {
		writeError(w, http.StatusBadRequest, "memory range out of bounds")
		return
	}

	writeJSON(w, http.StatusOK, MemoryResponse{Address: addr, Data: data})
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly?address=0x...&count=16
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	addr := session.Machine.X.Get(vm.PC)
	if a := r.URL.Query().Get("address"); a != "" {
		parsed, perr := parseHexOrDec(a)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid address")
			return
		}
		addr = parsed
	}

	count := 16
	if c := r.URL.Query().Get("count"); c != "" {
		if n, perr := parseHexOrDec(c); perr == nil {
			count = int(n)
		}
	}

	instructions := make([]InstructionInfo, 0, count)
	for i := 0; i < count; i++ {
		a := addr + uint64(i*4)
		word, ok := session.Machine.Memory.FetchWord(a)
		if !ok {
			break
		}
		instructions = append(instructions, InstructionInfo{
			Address:     a,
			MachineCode: uint32(word),
			Disassembly: disasm.Instruction(a, word),
		})
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: instructions})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		bp := session.Debugger.Breakpoints.AddBreakpoint(req.Address, req.Temporary, req.Condition)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": bp.ID, "address": bp.Address})
	case http.MethodDelete:
		addr, err := parseHexOrDec(r.URL.Query().Get("address"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid address")
			return
		}
		if err := session.Debugger.Breakpoints.DeleteBreakpointAt(addr); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	addrs := make([]uint64, 0)
	for _, bp := range session.Debugger.Breakpoints.GetAllBreakpoints() {
		addrs = append(addrs, bp.Address)
	}
	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: addrs})
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	isRegister, register, address, err := session.Debugger.ParseWatchExpression(req.Expression)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wp := session.Debugger.Watchpoints.AddWatchpoint(debugger.WatchWrite, req.Expression, address, isRegister, register)
	if err := session.Debugger.Watchpoints.InitializeWatchpoint(wp.ID, session.Machine); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, WatchpointResponse{ID: wp.ID, Expression: wp.Expression})
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := session.Debugger.Watchpoints.DeleteWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := make([]WatchpointResponse, 0)
	for _, wp := range session.Debugger.Watchpoints.GetAllWatchpoints() {
		resp = append(resp, WatchpointResponse{ID: wp.ID, Expression: wp.Expression})
	}
	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: resp})
}

// broadcastStateChange publishes the session's current execution state to
// subscribed WebSocket clients.
func (s *Server) broadcastStateChange(sessionID string, session *Session) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{
		"status": session.Machine.State.String(),
		"fault":  session.Machine.LastFault.String(),
		"pc":     session.Machine.X.Get(vm.PC),
		"cycles": session.Machine.Cycles,
	})
}

func parseMemoryQuery(r *http.Request) (address uint64, length uint64, err error) {
	addrStr := r.URL.Query().Get("address")
	if addrStr == "" {
		return 0, 0, fmt.Errorf("address parameter required")
	}
	address, err = parseHexOrDec(addrStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address: %w", err)
	}

	length = 64
	if l := r.URL.Query().Get("length"); l != "" {
		length, err = parseHexOrDec(l)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid length: %w", err)
		}
	}

	return address, length, nil
}

// parseHexOrDec parses a string as hex (0x-prefixed) or decimal.
func parseHexOrDec(s string) (uint64, error) {
	var v uint64
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		_, err := fmt.Sscanf(s, "0x%x", &v)
		return v, err
	}
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}
