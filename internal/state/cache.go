package state

import (
	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/graph"
	"github.com/Agions/gantt-chart-component/internal/model"
)

// cache holds the lookups derived from one GanttState. It is rebuilt
// wholesale after every structural mutation.
type cache struct {
	tasks map[string]*CachedTask
	deps  map[model.DependencyKey]model.Dependency
}

func buildCache(s GanttState, logger *log.Logger) *cache {
	g := graph.Build(s.Tasks, s.Dependencies, logger)
	c := &cache{
		tasks: make(map[string]*CachedTask, g.TaskCount()),
		deps:  make(map[model.DependencyKey]model.Dependency, len(g.Edges)),
	}

	for i, t := range s.Tasks {
		if _, dup := c.tasks[t.ID]; dup {
			continue
		}
		c.tasks[t.ID] = &CachedTask{
			Task:         t,
			Index:        i,
			Predecessors: g.Predecessors(t.ID),
			Successors:   g.Successors(t.ID),
		}
	}
	for k, e := range g.Edges {
		c.deps[k] = model.Dependency{FromID: e.From, ToID: e.To, Type: e.Type, Lag: e.Lag}
	}

	// Levels use the same traversal as the analyzer, so cycle-closing
	// edges are ignored here as well.
	tr := g.Walk(nil)
	broken := tr.BrokenSet()
	for _, id := range tr.Order {
		ct := c.tasks[id]
		for _, p := range ct.Predecessors {
			if broken[model.DependencyKey{From: p, To: id}] {
				continue
			}
			if lvl := c.tasks[p].Level + 1; lvl > ct.Level {
				ct.Level = lvl
			}
		}
	}
	return c
}

func (c *cache) task(id string) (CachedTask, bool) {
	if c == nil {
		return CachedTask{}, false
	}
	ct, ok := c.tasks[id]
	if !ok {
		return CachedTask{}, false
	}
	return *ct, true
}

func (c *cache) dependency(from, to string) (model.Dependency, bool) {
	if c == nil {
		return model.Dependency{}, false
	}
	d, ok := c.deps[model.DependencyKey{From: from, To: to}]
	return d, ok
}
