// Package viewer exposes one state manager over HTTP so that a browser
// renderer can page through rows, edit tasks and undo or redo changes.
package viewer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Agions/gantt-chart-component/internal/export"
	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/state"
	"github.com/Agions/gantt-chart-component/internal/window"
)

// Server serializes HTTP access to a state.Manager, which is not safe for
// concurrent use on its own.
type Server struct {
	mu      sync.Mutex
	name    string
	m       *state.Manager
	version uint64
}

// New wraps m. The server subscribes to m to track a change version that
// clients can poll cheaply.
func New(name string, m *state.Manager) *Server {
	s := &Server{name: name, m: m}
	m.Subscribe(func(state.GanttState) { s.version++ })
	return s
}

type stateResponse struct {
	Version   uint64           `json:"version"`
	State     state.GanttState `json:"state"`
	UndoDepth int              `json:"undo_depth"`
	RedoDepth int              `json:"redo_depth"`
}

type visibleResponse struct {
	Version uint64             `json:"version"`
	Window  window.Window      `json:"window"`
	Tasks   []state.CachedTask `json:"tasks"`
}

type scrollRequest struct {
	Offset float64 `json:"offset"`
}

type okResponse struct {
	OK      bool   `json:"ok"`
	Version uint64 `json:"version"`
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleGetState)
	mux.HandleFunc("GET /version", s.handleGetVersion)
	mux.HandleFunc("GET /visible", s.handleGetVisible)
	mux.HandleFunc("GET /analysis", s.handleGetAnalysis)
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /tasks", s.handlePutTasks)
	mux.HandleFunc("PUT /dependencies", s.handlePutDependencies)
	mux.HandleFunc("PATCH /view", s.handlePatchView)
	mux.HandleFunc("POST /scroll", s.handleScroll)
	mux.HandleFunc("POST /undo", s.handleUndo)
	mux.HandleFunc("POST /redo", s.handleRedo)
	mux.HandleFunc("POST /schedule", s.handleSchedule)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := stateResponse{
		Version:   s.version,
		State:     s.m.State().Clone(),
		UndoDepth: s.m.UndoDepth(),
		RedoDepth: s.m.RedoDepth(),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.version
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]uint64{"version": v})
}

func (s *Server) handleGetVisible(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := visibleResponse{
		Version: s.version,
		Window:  s.m.State().Window,
		Tasks:   s.m.VisibleTasks(),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	g := export.ToGraph(s.name, s.m.Analysis())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	ct, ok := s.m.TaskCache(id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, fmt.Sprintf("task %q not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ct)
}

func (s *Server) handlePutTasks(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task
	if !decode(w, r, &tasks) {
		return
	}
	s.mutate(w, func() bool { return s.m.UpdateTasks(tasks) })
}

func (s *Server) handlePutDependencies(w http.ResponseWriter, r *http.Request) {
	var deps []model.Dependency
	if !decode(w, r, &deps) {
		return
	}
	s.mutate(w, func() bool { return s.m.UpdateDependencies(deps) })
}

func (s *Server) handlePatchView(w http.ResponseWriter, r *http.Request) {
	var patch state.ViewSettingsPatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Mode != nil && !patch.Mode.Valid() {
		http.Error(w, fmt.Sprintf("unknown view mode %q", *patch.Mode), http.StatusBadRequest)
		return
	}
	s.mutate(w, func() bool { return s.m.UpdateViewSettings(patch) })
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, func() bool { return s.m.UpdateScrollPosition(req.Offset) })
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, s.m.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, s.m.Redo)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	changes := s.m.AutoSchedule()
	v := s.version
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"version": v, "changes": changes})
}

// mutate runs fn under the lock. A false result means there was nothing to
// apply (empty history, destroyed manager) and maps to 409.
func (s *Server) mutate(w http.ResponseWriter, fn func() bool) {
	s.mu.Lock()
	ok := fn()
	v := s.version
	s.mu.Unlock()

	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, okResponse{OK: ok, Version: v})
}

// Start serves h on addr in the background and returns the base URL
// (e.g. "http://127.0.0.1:7777") and the server for shutdown.
func Start(addr string, h http.Handler) (string, *http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	return "http://" + ln.Addr().String(), srv, nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
