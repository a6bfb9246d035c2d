package cpm

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/model"
)

// Options controls an analysis run.
type Options struct {
	// Anchor is day 0 of the schedule. Zero means the earliest task start.
	Anchor time.Time
	// MaxPaths caps critical path enumeration; 0 means unlimited.
	MaxPaths int
	Logger   *log.Logger
}

// Result holds the complete critical path analysis.
type Result struct {
	Anchor          time.Time
	Nodes           map[string]*TaskNode
	Order           []string   // topological order actually used
	CriticalTaskIDs []string   // in task input order
	CriticalPaths   [][]string // every maximal chain of critical tasks
	ProjectDuration int        // days from Anchor to the latest sink finish
	// LatestFinish is the latest early finish of any task. It exceeds
	// ProjectDuration when a start-linked predecessor outlasts every sink.
	LatestFinish int
	Waves           []Wave     // tasks grouped by early start

	// Cycles lists the dependency edges ignored to break cycles.
	Cycles []model.DependencyKey
}

// TaskNode holds the scheduling info for a single task. Offsets are days
// from the result's Anchor.
type TaskNode struct {
	Task         model.Task
	Duration     int
	EarlyStart   int
	EarlyFinish  int
	LateStart    int
	LateFinish   int
	Float        int
	IsCritical   bool
	Predecessors []string
	Successors   []string
	Wave         int
}

// Wave represents a group of tasks that share an early start.
type Wave struct {
	Index      int
	EarlyStart int
	TaskIDs    []string
	IsCritical bool // true if wave contains critical path tasks
}
