package cpm

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/graph"
	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/model"
)

// Analyze performs critical path method analysis over tasks and deps.
// It never mutates its inputs and never fails: dangling edges are dropped,
// malformed dates count as zero duration, and edges that close a cycle are
// ignored. Each problem is logged at warn level.
func Analyze(tasks []model.Task, deps []model.Dependency, opts Options) *Result {
	logger := logging.OrDiscard(opts.Logger)
	g := graph.Build(tasks, deps, logger)

	result := &Result{
		Nodes: make(map[string]*TaskNode, g.TaskCount()),
	}
	if !opts.Anchor.IsZero() {
		result.Anchor = model.Day(opts.Anchor)
	} else if start, ok := model.EarliestStart(tasks); ok {
		result.Anchor = start
	}

	for _, id := range g.IDs {
		t := g.Tasks[id]
		dur, ok := t.Duration()
		if !ok {
			logger.Warn("invalid task dates, treating duration as 0",
				"id", id, "start", model.FormatDate(t.Start), "end", model.FormatDate(t.End))
		}
		result.Nodes[id] = &TaskNode{Task: t.Clone(), Duration: dur}
	}

	tr := g.Walk(nil)
	result.Order = tr.Order
	result.Cycles = tr.Broken
	broken := tr.BrokenSet()
	for _, k := range tr.Broken {
		logger.Warn("dependency cycle detected, ignoring edge", "from", k.From, "to", k.To)
	}

	for _, id := range g.IDs {
		n := result.Nodes[id]
		for _, p := range g.Predecessors(id) {
			if !broken[model.DependencyKey{From: p, To: id}] {
				n.Predecessors = append(n.Predecessors, p)
			}
		}
		for _, s := range g.Successors(id) {
			if !broken[model.DependencyKey{From: id, To: s}] {
				n.Successors = append(n.Successors, s)
			}
		}
	}

	forwardPass(result, g)

	// Project duration is the latest early finish among sinks.
	for _, id := range g.IDs {
		n := result.Nodes[id]
		if len(n.Successors) == 0 && n.EarlyFinish > result.ProjectDuration {
			result.ProjectDuration = n.EarlyFinish
		}
		result.LatestFinish = max(result.LatestFinish, n.EarlyFinish)
	}

	backwardPass(result, g, logger)

	for _, id := range g.IDs {
		n := result.Nodes[id]
		n.Float = n.LateStart - n.EarlyStart
		n.IsCritical = n.Float == 0
		if n.IsCritical {
			result.CriticalTaskIDs = append(result.CriticalTaskIDs, id)
		}
	}

	result.CriticalPaths = criticalPaths(result, g.IDs, opts.MaxPaths, logger)
	result.Waves = computeWaves(result)

	return result
}

// forwardPass computes ES and EF in topological order. Roots start at their
// own date; every other task starts as soon as its incoming edges allow.
func forwardPass(result *Result, g *graph.TaskGraph) {
	for _, id := range result.Order {
		n := result.Nodes[id]
		if len(n.Predecessors) == 0 {
			if !n.Task.Start.IsZero() && !result.Anchor.IsZero() {
				n.EarlyStart = model.DaysBetween(result.Anchor, n.Task.Start)
			}
		} else {
			first := true
			for _, p := range n.Predecessors {
				e, _ := g.Edge(p, id)
				es := earliestStartVia(e, result.Nodes[p], n)
				if first || es > n.EarlyStart {
					n.EarlyStart = es
					first = false
				}
			}
		}
		n.EarlyFinish = n.EarlyStart + n.Duration
	}
}

// backwardPass computes LS and LF. Sinks finish at the project end; every
// other node is relaxed once all of its successors are resolved. A pass that
// resolves nothing new ends the loop.
func backwardPass(result *Result, g *graph.TaskGraph, logger *log.Logger) {
	resolved := make(map[string]bool, len(result.Nodes))
	for _, id := range g.IDs {
		n := result.Nodes[id]
		if len(n.Successors) == 0 {
			n.LateFinish = result.ProjectDuration
			n.LateStart = n.LateFinish - n.Duration
			resolved[id] = true
		}
	}

	for {
		progress, pending := false, false
		for i := len(result.Order) - 1; i >= 0; i-- {
			id := result.Order[i]
			if resolved[id] {
				continue
			}
			n := result.Nodes[id]
			ready := true
			for _, s := range n.Successors {
				if !resolved[s] {
					ready = false
					break
				}
			}
			if !ready {
				pending = true
				continue
			}
			for j, s := range n.Successors {
				e, _ := g.Edge(id, s)
				lf := latestFinishVia(e, n, result.Nodes[s])
				if j == 0 || lf < n.LateFinish {
					n.LateFinish = lf
				}
			}
			n.LateStart = n.LateFinish - n.Duration
			resolved[id] = true
			progress = true
		}
		if !pending {
			return
		}
		if !progress {
			break
		}
	}

	for _, id := range g.IDs {
		if resolved[id] {
			continue
		}
		logger.Warn("backward pass could not resolve task, pinning to project end", "id", id)
		n := result.Nodes[id]
		n.LateFinish = result.ProjectDuration
		n.LateStart = n.LateFinish - n.Duration
	}
}

// earliestStartVia returns the earliest start succ may take given edge e from pred.
func earliestStartVia(e graph.Edge, pred, succ *TaskNode) int {
	switch e.Type {
	case model.StartToStart:
		return pred.EarlyStart + e.Lag
	case model.FinishToFinish:
		return pred.EarlyFinish + e.Lag - succ.Duration
	case model.StartToFinish:
		return pred.EarlyStart + e.Lag - succ.Duration
	default:
		// The successor starts the day after the predecessor's last day.
		return pred.EarlyFinish + 1 + e.Lag
	}
}

// latestFinishVia mirrors earliestStartVia for the backward pass.
func latestFinishVia(e graph.Edge, pred, succ *TaskNode) int {
	switch e.Type {
	case model.StartToStart:
		return succ.LateStart - e.Lag + pred.Duration
	case model.FinishToFinish:
		return succ.LateFinish - e.Lag
	case model.StartToFinish:
		return succ.LateFinish - e.Lag + pred.Duration
	default:
		return succ.LateStart - 1 - e.Lag
	}
}

// computeWaves groups tasks by their earliest start, critical tasks first.
func computeWaves(result *Result) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.Order {
		es := result.Nodes[id].EarlyStart
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]
		sort.SliceStable(ids, func(a, b int) bool {
			return result.Nodes[ids[a]].IsCritical && !result.Nodes[ids[b]].IsCritical
		})

		hasCritical := false
		for _, id := range ids {
			result.Nodes[id].Wave = i
			hasCritical = hasCritical || result.Nodes[id].IsCritical
		}
		waves[i] = Wave{Index: i, EarlyStart: es, TaskIDs: ids, IsCritical: hasCritical}
	}
	return waves
}
