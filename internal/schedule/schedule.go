// Package schedule reflows task dates along finish_to_start dependencies.
package schedule

import (
	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/graph"
	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/model"
)

// Change records one task whose dates were moved.
type Change struct {
	ID       string `json:"id"`
	OldStart string `json:"old_start"`
	NewStart string `json:"new_start"`
}

// Reschedule returns copies of tasks where every task with predecessors
// starts the day after its latest predecessor ends (plus lag), keeping its
// duration. Roots and readonly tasks keep their dates. Only finish_to_start
// edges, explicit or from Task.Predecessors, drive dates; other dependency
// types are ignored here.
func Reschedule(tasks []model.Task, deps []model.Dependency, logger *log.Logger) []model.Task {
	out, _ := Plan(tasks, deps, logger)
	return out
}

// Plan is Reschedule that also reports which tasks moved, in visit order.
func Plan(tasks []model.Task, deps []model.Dependency, logger *log.Logger) ([]model.Task, []Change) {
	logger = logging.OrDiscard(logger)

	var fsDeps []model.Dependency
	for _, d := range deps {
		if d.Kind() == model.FinishToStart {
			fsDeps = append(fsDeps, d)
		}
	}
	g := graph.Build(tasks, fsDeps, logger)

	out := model.CloneTasks(tasks)
	index := make(map[string]int, len(out))
	for i, t := range out {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}

	tr := g.Walk(nil)
	broken := tr.BrokenSet()
	for _, k := range tr.Broken {
		logger.Warn("dependency cycle detected, ignoring edge", "from", k.From, "to", k.To)
	}

	var changes []Change
	for _, id := range tr.Order {
		t := &out[index[id]]
		if t.Readonly || t.Start.IsZero() {
			continue
		}

		// Offsets are relative to the task's current start.
		var shift int
		found := false
		for _, p := range g.Predecessors(id) {
			if broken[model.DependencyKey{From: p, To: id}] {
				continue
			}
			pred := out[index[p]]
			if pred.End.IsZero() {
				continue
			}
			e, _ := g.Edge(p, id)
			candidate := model.DaysBetween(t.Start, pred.End) + 1 + e.Lag
			if !found || candidate > shift {
				shift, found = candidate, true
			}
		}
		if !found || shift == 0 {
			continue
		}

		dur, ok := t.Duration()
		if !ok {
			logger.Warn("invalid task dates, rescheduling with zero duration", "id", id)
		}
		newStart := model.AddDays(t.Start, shift)
		changes = append(changes, Change{
			ID:       id,
			OldStart: model.FormatDate(t.Start),
			NewStart: model.FormatDate(newStart),
		})
		t.Start = newStart
		t.End = model.AddDays(newStart, dur)
	}

	return out, changes
}
