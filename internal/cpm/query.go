package cpm

import (
	"time"

	"github.com/Agions/gantt-chart-component/internal/model"
)

// Node returns the schedule of one task.
func (r *Result) Node(id string) (*TaskNode, bool) {
	n, ok := r.Nodes[id]
	return n, ok
}

// IsCritical reports whether id is a zero-float task. Unknown ids are not critical.
func (r *Result) IsCritical(id string) bool {
	n, ok := r.Nodes[id]
	return ok && n.IsCritical
}

// Float returns the slack of id in days.
func (r *Result) Float(id string) (int, bool) {
	n, ok := r.Nodes[id]
	if !ok {
		return 0, false
	}
	return n.Float, true
}

// EarlyStartDate returns the calendar day id can start at the earliest.
func (r *Result) EarlyStartDate(id string) (time.Time, bool) {
	return r.date(id, func(n *TaskNode) int { return n.EarlyStart })
}

// EarlyFinishDate returns the calendar day id can finish at the earliest.
func (r *Result) EarlyFinishDate(id string) (time.Time, bool) {
	return r.date(id, func(n *TaskNode) int { return n.EarlyFinish })
}

// LateStartDate returns the last calendar day id can start without delaying the project.
func (r *Result) LateStartDate(id string) (time.Time, bool) {
	return r.date(id, func(n *TaskNode) int { return n.LateStart })
}

// LateFinishDate returns the last calendar day id can finish without delaying the project.
func (r *Result) LateFinishDate(id string) (time.Time, bool) {
	return r.date(id, func(n *TaskNode) int { return n.LateFinish })
}

// ProjectEndDate returns Anchor plus ProjectDuration.
func (r *Result) ProjectEndDate() time.Time {
	if r.Anchor.IsZero() {
		return time.Time{}
	}
	return model.AddDays(r.Anchor, r.ProjectDuration)
}

func (r *Result) date(id string, offset func(*TaskNode) int) (time.Time, bool) {
	n, ok := r.Nodes[id]
	if !ok || r.Anchor.IsZero() {
		return time.Time{}, false
	}
	return model.AddDays(r.Anchor, offset(n)), true
}
