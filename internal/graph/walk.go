package graph

import "github.com/Agions/gantt-chart-component/internal/model"

// Traversal is the outcome of Walk.
type Traversal struct {
	// Order lists every node after all of its non-broken prerequisites.
	Order []string
	// Broken lists the edges (prerequisite -> node) that closed a cycle and
	// were ignored to produce Order.
	Broken []model.DependencyKey
}

// IsBroken reports whether the edge from -> to was ignored as cycle-closing.
func (t *Traversal) IsBroken(from, to string) bool {
	for _, k := range t.Broken {
		if k.From == from && k.To == to {
			return true
		}
	}
	return false
}

// BrokenSet returns Broken as a set for repeated lookups.
func (t *Traversal) BrokenSet() map[model.DependencyKey]bool {
	set := make(map[model.DependencyKey]bool, len(t.Broken))
	for _, k := range t.Broken {
		set[k] = true
	}
	return set
}

// Walk performs a depth-first topological traversal of ids. prereqs returns
// the nodes that must be visited before a node; visit, if non-nil, is called
// once per node after all of its prerequisites. A prerequisite that is still
// on the DFS stack closes a cycle: that edge is recorded in Broken and
// skipped, so Walk always terminates and visits every node exactly once.
func Walk(ids []string, prereqs func(id string) []string, visit func(id string)) *Traversal {
	const (
		unseen = iota
		visiting
		done
	)

	tr := &Traversal{Order: make([]string, 0, len(ids))}
	mark := make(map[string]int, len(ids))

	var dfs func(id string)
	dfs = func(id string) {
		mark[id] = visiting
		for _, p := range prereqs(id) {
			switch mark[p] {
			case visiting:
				tr.Broken = append(tr.Broken, model.DependencyKey{From: p, To: id})
			case unseen:
				dfs(p)
			}
		}
		mark[id] = done
		tr.Order = append(tr.Order, id)
		if visit != nil {
			visit(id)
		}
	}

	for _, id := range ids {
		if mark[id] == unseen {
			dfs(id)
		}
	}
	return tr
}

// Walk runs the shared traversal over the graph's predecessor lists.
func (g *TaskGraph) Walk(visit func(id string)) *Traversal {
	return Walk(g.IDs, g.Predecessors, visit)
}
