package cpm

import "github.com/charmbracelet/log"

// criticalPaths enumerates every maximal simple path through the critical
// subgraph, from a critical task with no critical predecessor to one with no
// critical successor. The count can grow exponentially with tied branches,
// so maxPaths (when > 0) stops the search early.
func criticalPaths(result *Result, ids []string, maxPaths int, logger *log.Logger) [][]string {
	critical := func(id string) bool {
		n, ok := result.Nodes[id]
		return ok && n.IsCritical
	}
	next := func(id string) []string {
		var out []string
		for _, s := range result.Nodes[id].Successors {
			if critical(s) {
				out = append(out, s)
			}
		}
		return out
	}

	var paths [][]string
	onPath := make(map[string]bool)
	truncated := false

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		if maxPaths > 0 && len(paths) >= maxPaths {
			truncated = true
			return
		}
		path = append(path, id)
		succ := next(id)
		if len(succ) == 0 {
			paths = append(paths, append([]string(nil), path...))
			return
		}
		onPath[id] = true
		for _, s := range succ {
			if !onPath[s] {
				dfs(s, path)
			}
		}
		onPath[id] = false
	}

	for _, id := range ids {
		if !critical(id) {
			continue
		}
		isSource := true
		for _, p := range result.Nodes[id].Predecessors {
			if critical(p) {
				isSource = false
				break
			}
		}
		if isSource {
			dfs(id, nil)
		}
	}

	if truncated {
		logger.Warn("critical path enumeration truncated", "limit", maxPaths)
	}
	return paths
}
