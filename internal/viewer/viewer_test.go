package viewer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/state"
)

func newTestServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tasks := make([]model.Task, n)
	var deps []model.Dependency
	for i := range tasks {
		s := model.AddDays(start, i*2)
		tasks[i] = model.Task{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Task %d", i), Start: s, End: model.AddDays(s, 1)}
		if i > 0 {
			deps = append(deps, model.Dependency{FromID: tasks[i-1].ID, ToID: tasks[i].ID})
		}
	}
	m := state.New(state.GanttState{Tasks: tasks, Dependencies: deps}, state.Config{ViewportCount: 5, BufferSize: 1})
	srv := httptest.NewServer(New("demo", m).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
	}
	return resp.StatusCode
}

func TestGetState(t *testing.T) {
	srv := newTestServer(t, 3)

	var resp stateResponse
	if code := do(t, http.MethodGet, srv.URL+"/state", "", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(resp.State.Tasks) != 3 || resp.State.View.Mode != state.ModeDay {
		t.Errorf("unexpected state %+v", resp.State)
	}
	if resp.UndoDepth != 0 || resp.Version != 0 {
		t.Errorf("expected fresh state, got undo=%d version=%d", resp.UndoDepth, resp.Version)
	}
}

func TestScrollAndVisible(t *testing.T) {
	srv := newTestServer(t, 100)

	var ok okResponse
	if code := do(t, http.MethodPost, srv.URL+"/scroll", `{"offset": 400}`, &ok); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if ok.Version != 1 {
		t.Errorf("expected version 1 after scroll, got %d", ok.Version)
	}

	var vis visibleResponse
	do(t, http.MethodGet, srv.URL+"/visible", "", &vis)
	if vis.Window.StartIndex != 9 || vis.Window.EndIndex != 16 {
		t.Errorf("expected window [9,16), got %+v", vis.Window)
	}
	if len(vis.Tasks) != 7 || vis.Tasks[0].Task.ID != "t9" {
		t.Errorf("unexpected visible tasks: %d", len(vis.Tasks))
	}
}

func TestUndoRedo(t *testing.T) {
	srv := newTestServer(t, 3)

	if code := do(t, http.MethodPost, srv.URL+"/undo", "", nil); code != http.StatusConflict {
		t.Errorf("expected 409 on empty history, got %d", code)
	}
	if code := do(t, http.MethodPatch, srv.URL+"/view", `{"mode": "month"}`, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := do(t, http.MethodPost, srv.URL+"/undo", "", nil); code != http.StatusOK {
		t.Fatalf("expected 200 on undo, got %d", code)
	}

	var resp stateResponse
	do(t, http.MethodGet, srv.URL+"/state", "", &resp)
	if resp.State.View.Mode != state.ModeDay || resp.RedoDepth != 1 {
		t.Errorf("expected undo back to day with one redo, got %s/%d", resp.State.View.Mode, resp.RedoDepth)
	}

	do(t, http.MethodPost, srv.URL+"/redo", "", nil)
	do(t, http.MethodGet, srv.URL+"/state", "", &resp)
	if resp.State.View.Mode != state.ModeMonth {
		t.Errorf("expected redo to month, got %s", resp.State.View.Mode)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t, 3)

	if code := do(t, http.MethodPatch, srv.URL+"/view", `{"mode": "decade"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown mode, got %d", code)
	}
	if code := do(t, http.MethodPut, srv.URL+"/tasks", `{oops`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", code)
	}
	if code := do(t, http.MethodGet, srv.URL+"/tasks/nope", "", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", code)
	}
	if code := do(t, http.MethodDelete, srv.URL+"/state", "", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", code)
	}
}

func TestPutTasksAndAnalysis(t *testing.T) {
	srv := newTestServer(t, 3)

	body := `[
	  {"id": "x", "name": "X", "start": "2024-06-01T00:00:00Z", "end": "2024-06-05T00:00:00Z"},
	  {"id": "y", "name": "Y", "start": "2024-06-01T00:00:00Z", "end": "2024-06-02T00:00:00Z", "predecessors": ["x"]}
	]`
	if code := do(t, http.MethodPut, srv.URL+"/tasks", body, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var ct state.CachedTask
	do(t, http.MethodGet, srv.URL+"/tasks/y", "", &ct)
	if ct.Level != 1 || len(ct.Predecessors) != 1 {
		t.Errorf("unexpected cached task %+v", ct)
	}

	var graph struct {
		Metadata struct {
			ProjectEnd string `json:"project_end"`
		} `json:"metadata"`
		CriticalPaths [][]string `json:"critical_paths"`
	}
	do(t, http.MethodGet, srv.URL+"/analysis", "", &graph)
	if graph.Metadata.ProjectEnd != "2024-06-07" {
		t.Errorf("expected project end 2024-06-07, got %q", graph.Metadata.ProjectEnd)
	}
	if len(graph.CriticalPaths) != 1 {
		t.Errorf("expected one critical path, got %v", graph.CriticalPaths)
	}
}

func TestSchedule(t *testing.T) {
	srv := newTestServer(t, 3)

	var resp struct {
		Changes []struct {
			ID string `json:"id"`
		} `json:"changes"`
	}
	do(t, http.MethodPost, srv.URL+"/schedule", "", &resp)
	// t1 starts 06-03 and t0 ends 06-02, so the chain is already tight.
	if len(resp.Changes) != 0 {
		t.Errorf("expected no changes, got %+v", resp.Changes)
	}
}
