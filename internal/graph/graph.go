package graph

import (
	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/model"
)

// Edge is a resolved dependency between two tasks of the graph.
type Edge struct {
	From string
	To   string
	Type model.DependencyType
	Lag  int
}

// TaskGraph is the adjacency view of a task list. Unlike the tasks it was
// built from it may contain cycles; use Walk to get a cycle-safe order.
type TaskGraph struct {
	IDs    []string // task ids in input order
	Tasks  map[string]*model.Task
	Adj    map[string][]string // task -> tasks that depend on it
	RevAdj map[string][]string // task -> tasks it depends on
	Edges  map[model.DependencyKey]Edge
	Roots  []string // tasks with no predecessors
	Leaves []string // tasks with no successors

	// Dangling lists dependencies that referenced an unknown task or looped
	// onto their own task. They are not part of the graph.
	Dangling []model.Dependency
}

// Build constructs a TaskGraph from tasks, explicit dependencies, and the
// implicit finish_to_start edges in each task's Predecessors list. Duplicate
// task ids keep the first occurrence; duplicate edges keep the first edge.
// Problems are logged, never returned.
func Build(tasks []model.Task, deps []model.Dependency, logger *log.Logger) *TaskGraph {
	logger = logging.OrDiscard(logger)

	g := &TaskGraph{
		IDs:    make([]string, 0, len(tasks)),
		Tasks:  make(map[string]*model.Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
		Edges:  make(map[model.DependencyKey]Edge),
	}

	for i := range tasks {
		t := &tasks[i]
		if _, dup := g.Tasks[t.ID]; dup {
			logger.Warn("duplicate task id ignored", "id", t.ID)
			continue
		}
		g.Tasks[t.ID] = t
		g.IDs = append(g.IDs, t.ID)
	}

	addEdge := func(dep model.Dependency) {
		_, fromOK := g.Tasks[dep.FromID]
		_, toOK := g.Tasks[dep.ToID]
		if !fromOK || !toOK || dep.FromID == dep.ToID {
			logger.Warn("dropping dangling dependency", "from", dep.FromID, "to", dep.ToID)
			g.Dangling = append(g.Dangling, dep)
			return
		}
		key := dep.Key()
		if _, ok := g.Edges[key]; ok {
			return
		}
		g.Edges[key] = Edge{From: dep.FromID, To: dep.ToID, Type: dep.Kind(), Lag: dep.Lag}
		g.Adj[dep.FromID] = append(g.Adj[dep.FromID], dep.ToID)
		g.RevAdj[dep.ToID] = append(g.RevAdj[dep.ToID], dep.FromID)
	}

	for _, dep := range deps {
		addEdge(dep)
	}
	for _, id := range g.IDs {
		for _, pred := range g.Tasks[id].Predecessors {
			addEdge(model.Dependency{FromID: pred, ToID: id, Type: model.FinishToStart})
		}
	}

	for _, id := range g.IDs {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	return g
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.IDs)
}

// Predecessors returns the ids id depends on.
func (g *TaskGraph) Predecessors(id string) []string {
	return g.RevAdj[id]
}

// Successors returns the ids that depend on id.
func (g *TaskGraph) Successors(id string) []string {
	return g.Adj[id]
}

// Edge returns the edge from -> to, if present.
func (g *TaskGraph) Edge(from, to string) (Edge, bool) {
	e, ok := g.Edges[model.DependencyKey{From: from, To: to}]
	return e, ok
}

// DetectCycle returns one cycle path (first node repeated at the end) if the
// graph has one, or nil. Uses DFS with coloring: white (unvisited), gray (in
// progress), black (done).
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.IDs))
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			switch color[next] {
			case gray:
				cycle := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return append(cycle, cycle[0])
			case white:
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.IDs {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
