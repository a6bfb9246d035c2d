package model

import "time"

// TaskType classifies a task bar.
type TaskType string

const (
	TaskTypeTask      TaskType = "task"
	TaskTypeMilestone TaskType = "milestone"
	TaskTypeProject   TaskType = "project"
)

// DependencyType is the relation an edge expresses between two tasks.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// Valid reports whether d is one of the four modeled relations.
func (d DependencyType) Valid() bool {
	switch d {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Task is a single bar on the chart. Start and End are calendar days; End is
// the last day the task occupies.
type Task struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Progress     float64   `json:"progress"`
	Type         TaskType  `json:"type,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	Predecessors []string  `json:"predecessors,omitempty"` // implicit finish_to_start edges
	Draggable    bool      `json:"draggable"`
	Resizable    bool      `json:"resizable"`
	Readonly     bool      `json:"readonly"`
}

// IsMilestone reports whether the task is a zero-length marker.
func (t Task) IsMilestone() bool {
	return t.Type == TaskTypeMilestone
}

// Duration returns the task length in days. Milestones are always zero long.
// The second result is false when the dates are missing or End precedes
// Start; the duration is 0 in that case.
func (t Task) Duration() (int, bool) {
	if t.Start.IsZero() || t.End.IsZero() {
		return 0, false
	}
	if t.IsMilestone() {
		return 0, true
	}
	d := DaysBetween(t.Start, t.End)
	if d < 0 {
		return 0, false
	}
	return d, true
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.Predecessors != nil {
		t.Predecessors = append([]string(nil), t.Predecessors...)
	}
	return t
}

// Dependency is a directed edge FromID -> ToID with an optional signed lag in days.
type Dependency struct {
	FromID string         `json:"from_id"`
	ToID   string         `json:"to_id"`
	Type   DependencyType `json:"type"`
	Lag    int            `json:"lag,omitempty"`
}

// DependencyKey identifies an edge regardless of its type or lag.
type DependencyKey struct {
	From string
	To   string
}

// Key returns the (from, to) identity of the edge.
func (d Dependency) Key() DependencyKey {
	return DependencyKey{From: d.FromID, To: d.ToID}
}

// Kind returns the dependency type, treating an unset type as finish_to_start.
func (d Dependency) Kind() DependencyType {
	if d.Type == "" {
		return FinishToStart
	}
	return d.Type
}

// CloneTasks deep-copies a task slice. A nil input stays nil.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// CloneDependencies copies a dependency slice. A nil input stays nil.
func CloneDependencies(deps []Dependency) []Dependency {
	if deps == nil {
		return nil
	}
	out := make([]Dependency, len(deps))
	copy(out, deps)
	return out
}
