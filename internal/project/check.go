package project

import (
	"fmt"
	"strings"

	"github.com/Agions/gantt-chart-component/internal/graph"
	"github.com/Agions/gantt-chart-component/internal/model"
)

// Check reports problems the schema cannot express: duplicate ids, end
// dates before start dates, unknown dependency types, dangling or
// self-referencing edges, and dependency cycles. None of these stop the
// engine; they are advisory.
func Check(p *Project) []Issue {
	var issues []Issue

	seen := make(map[string]int, len(p.Tasks))
	for i, t := range p.Tasks {
		path := fmt.Sprintf("tasks/%d", i)
		if j, dup := seen[t.ID]; dup {
			issues = append(issues, Issue{path, fmt.Sprintf("duplicate id %q (first used by tasks/%d)", t.ID, j)})
			continue
		}
		seen[t.ID] = i
		if _, ok := t.Duration(); !ok {
			issues = append(issues, Issue{path, fmt.Sprintf("end %s is before start %s",
				model.FormatDate(t.End), model.FormatDate(t.Start))})
		}
	}

	for i, d := range p.Dependencies {
		if d.Type != "" && !d.Type.Valid() {
			issues = append(issues, Issue{fmt.Sprintf("dependencies/%d", i), fmt.Sprintf("unknown type %q", d.Type)})
		}
	}

	g := graph.Build(p.Tasks, p.Dependencies, nil)
	for _, d := range g.Dangling {
		msg := fmt.Sprintf("%s -> %s references an unknown task", d.FromID, d.ToID)
		if d.FromID == d.ToID {
			msg = fmt.Sprintf("%s depends on itself", d.FromID)
		}
		issues = append(issues, Issue{"dependencies", msg})
	}
	if cycle := g.DetectCycle(); cycle != nil {
		issues = append(issues, Issue{"dependencies", "cycle " + strings.Join(cycle, " -> ")})
	}
	return issues
}
