package state

import (
	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/window"
)

// ViewMode is the time scale of the chart.
type ViewMode string

const (
	ModeDay     ViewMode = "day"
	ModeWeek    ViewMode = "week"
	ModeMonth   ViewMode = "month"
	ModeQuarter ViewMode = "quarter"
	ModeYear    ViewMode = "year"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	switch m {
	case ModeDay, ModeWeek, ModeMonth, ModeQuarter, ModeYear:
		return true
	}
	return false
}

// DaysPerUnit returns how many days one column of the chart covers.
func (m ViewMode) DaysPerUnit() float64 {
	switch m {
	case ModeWeek:
		return 7
	case ModeMonth:
		return 30
	case ModeQuarter:
		return 91
	case ModeYear:
		return 365
	}
	return 1
}

// Next returns the following mode, wrapping from year back to day.
func (m ViewMode) Next() ViewMode {
	modes := []ViewMode{ModeDay, ModeWeek, ModeMonth, ModeQuarter, ModeYear}
	for i, v := range modes {
		if v == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return ModeDay
}

// ViewSettings is the renderer-facing view configuration.
type ViewSettings struct {
	Mode         ViewMode `json:"mode"`
	ScrollOffset float64  `json:"scroll_offset"`
}

// ViewSettingsPatch carries a partial view update. Nil fields are left unchanged.
type ViewSettingsPatch struct {
	Mode         *ViewMode `json:"mode,omitempty"`
	ScrollOffset *float64  `json:"scroll_offset,omitempty"`
}

// Batch groups several slice replacements into one undoable mutation.
// Nil fields are left unchanged; a non-nil empty slice clears the slice.
type Batch struct {
	Tasks        []model.Task       `json:"tasks,omitempty"`
	Dependencies []model.Dependency `json:"dependencies,omitempty"`
	View         *ViewSettingsPatch `json:"view,omitempty"`
}

// GanttState is the single source of truth held by a Manager.
type GanttState struct {
	Tasks        []model.Task       `json:"tasks"`
	Dependencies []model.Dependency `json:"dependencies"`
	View         ViewSettings       `json:"view"`
	Window       window.Window      `json:"window"`
}

// Clone returns a deep copy of s.
func (s GanttState) Clone() GanttState {
	s.Tasks = model.CloneTasks(s.Tasks)
	s.Dependencies = model.CloneDependencies(s.Dependencies)
	return s
}

// CachedTask is a task enriched with its row index, graph neighbours and
// level (0 for tasks without predecessors, else 1 + the deepest predecessor).
type CachedTask struct {
	Task         model.Task `json:"task"`
	Index        int        `json:"index"`
	Level        int        `json:"level"`
	Predecessors []string   `json:"predecessors"`
	Successors   []string   `json:"successors"`
}

// Listener receives the new state after every mutation. The state's slices
// are shared with the Manager and must not be modified.
type Listener func(GanttState)
