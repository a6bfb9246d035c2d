// Package state owns the canonical Gantt state: tasks, dependencies and view
// settings, plus the caches, virtual window and undo history derived from
// them. A Manager is not safe for concurrent use; callers serialize access.
package state

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/cpm"
	"github.com/Agions/gantt-chart-component/internal/history"
	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/schedule"
	"github.com/Agions/gantt-chart-component/internal/window"
)

type subscription struct {
	id int
	fn Listener
}

// Manager is the single owner of a GanttState.
type Manager struct {
	cfg    Config
	logger *log.Logger

	state   GanttState
	cache   *cache
	history *history.Stack[GanttState]

	subs     []subscription
	nextSub  int
	failures int

	analysis  *cpm.Result
	destroyed bool
}

// New returns a Manager seeded with initial. Duplicate task ids and
// duplicate dependency edges are dropped, keeping the first occurrence.
func New(initial GanttState, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		cfg:     cfg,
		logger:  cfg.Logger,
		history: history.New(cfg.HistoryLimit, GanttState.Clone),
	}

	m.state = GanttState{
		Tasks:        m.normalizeTasks(initial.Tasks),
		Dependencies: m.normalizeDependencies(initial.Dependencies),
		View:         initial.View,
	}
	if !m.state.View.Mode.Valid() {
		m.state.View.Mode = cfg.DefaultMode
	}
	if m.state.View.ScrollOffset < 0 || math.IsNaN(m.state.View.ScrollOffset) {
		m.state.View.ScrollOffset = 0
	}
	m.rebuild()
	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// State returns the current state. Its slices are shared with the Manager
// and must not be modified; use Clone for a private copy.
func (m *Manager) State() GanttState { return m.state }

// UpdateTasks replaces the task list as one undoable mutation.
func (m *Manager) UpdateTasks(tasks []model.Task) bool {
	return m.BatchUpdate(Batch{Tasks: emptyIfNil(tasks)})
}

// UpdateDependencies replaces the dependency set as one undoable mutation.
func (m *Manager) UpdateDependencies(deps []model.Dependency) bool {
	return m.BatchUpdate(Batch{Dependencies: emptyIfNil(deps)})
}

// UpdateViewSettings merges patch into the view settings as one undoable mutation.
func (m *Manager) UpdateViewSettings(patch ViewSettingsPatch) bool {
	return m.BatchUpdate(Batch{View: &patch})
}

// BatchUpdate applies every non-nil field of b as a single undoable
// mutation with a single notification. A batch that only scrolls is
// applied like UpdateScrollPosition, and one that changes nothing reports
// false without touching history.
func (m *Manager) BatchUpdate(b Batch) bool {
	if m.destroyed {
		return false
	}
	if b.Tasks == nil && b.Dependencies == nil && b.View == nil {
		return false
	}
	if b.View != nil && b.View.Mode != nil && !b.View.Mode.Valid() {
		m.logger.Warn("ignoring unknown view mode", "mode", *b.View.Mode)
		patch := *b.View
		patch.Mode = nil
		b.View = &patch
	}
	// Scroll-only or no-op view patches are not undoable.
	if b.Tasks == nil && b.Dependencies == nil &&
		(b.View.Mode == nil || *b.View.Mode == m.state.View.Mode) {
		if b.View.ScrollOffset != nil {
			return m.UpdateScrollPosition(*b.View.ScrollOffset)
		}
		return false
	}

	m.record()
	next := m.state
	structural := false
	if b.Tasks != nil {
		next.Tasks = m.normalizeTasks(b.Tasks)
		structural = true
	}
	if b.Dependencies != nil {
		next.Dependencies = m.normalizeDependencies(b.Dependencies)
		structural = true
	}

	var changes []schedule.Change
	if structural && m.cfg.AutoSchedule {
		next.Tasks, changes = schedule.Plan(next.Tasks, next.Dependencies, m.logger)
	}

	modeChanged := false
	if b.View != nil {
		if b.View.Mode != nil && *b.View.Mode != next.View.Mode {
			next.View.Mode = *b.View.Mode
			modeChanged = true
		}
		if b.View.ScrollOffset != nil {
			next.View.ScrollOffset = sanitizeOffset(*b.View.ScrollOffset)
		}
	}

	m.replace(next, structural)
	if len(changes) > 0 {
		m.cfg.OnAutoSchedule(changes)
	}
	if modeChanged {
		m.cfg.OnViewChange(next.View.Mode)
	}
	m.notify()
	return true
}

// UpdateScrollPosition moves the viewport without touching history. It
// reports false for NaN or infinite offsets; negative offsets clamp to 0.
func (m *Manager) UpdateScrollPosition(offset float64) bool {
	if m.destroyed {
		return false
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		m.logger.Warn("ignoring invalid scroll offset", "offset", offset)
		return false
	}
	m.state.View.ScrollOffset = sanitizeOffset(offset)
	m.state.Window = m.computeWindow(m.state)
	m.notify()
	return true
}

// AutoSchedule reflows task dates along finish_to_start dependencies as
// one undoable mutation. It returns the moved tasks; nothing is recorded
// when no task moves.
func (m *Manager) AutoSchedule() []schedule.Change {
	if m.destroyed {
		return nil
	}
	tasks, changes := schedule.Plan(m.state.Tasks, m.state.Dependencies, m.logger)
	if len(changes) == 0 {
		return nil
	}
	m.record()
	next := m.state
	next.Tasks = tasks
	m.replace(next, true)
	m.cfg.OnAutoSchedule(changes)
	m.notify()
	return changes
}

// Undo restores the state before the last undoable mutation.
func (m *Manager) Undo() bool {
	if m.destroyed {
		return false
	}
	prev, ok := m.history.Undo(m.state)
	if !ok {
		return false
	}
	m.restore(prev)
	return true
}

// Redo reapplies the last undone mutation.
func (m *Manager) Redo() bool {
	if m.destroyed {
		return false
	}
	next, ok := m.history.Redo(m.state)
	if !ok {
		return false
	}
	m.restore(next)
	return true
}

// UndoDepth returns how many Undo calls would currently succeed.
func (m *Manager) UndoDepth() int { return m.history.UndoDepth() }

// RedoDepth returns how many Redo calls would currently succeed.
func (m *Manager) RedoDepth() int { return m.history.RedoDepth() }

// VisibleTasks returns the cached tasks in the current window.
func (m *Manager) VisibleTasks() []CachedTask {
	if m.destroyed {
		return nil
	}
	w := m.state.Window
	out := make([]CachedTask, 0, w.Len())
	for i := w.StartIndex; i < w.EndIndex; i++ {
		ct, ok := m.cache.task(m.state.Tasks[i].ID)
		if !ok {
			continue
		}
		out = append(out, ct)
	}
	return out
}

// TaskCache returns the cached lookup for id.
func (m *Manager) TaskCache(id string) (CachedTask, bool) {
	return m.cache.task(id)
}

// DependencyCache returns the resolved edge from -> to, including implicit
// edges from task predecessor lists.
func (m *Manager) DependencyCache(from, to string) (model.Dependency, bool) {
	return m.cache.dependency(from, to)
}

// Analysis returns the critical path analysis of the current state. The
// result is computed on first use and reused until the next structural
// mutation; callers must not modify it.
func (m *Manager) Analysis() *cpm.Result {
	if m.analysis == nil {
		m.analysis = cpm.Analyze(m.state.Tasks, m.state.Dependencies, cpm.Options{
			MaxPaths: m.cfg.MaxCriticalPaths,
			Logger:   m.logger,
		})
	}
	return m.analysis
}

// Subscribe registers fn to be called after every mutation and returns a
// function that removes it. Calling the returned function twice is harmless.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	if m.destroyed || fn == nil {
		return func() {}
	}
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberFailures returns how many listener calls panicked.
func (m *Manager) SubscriberFailures() int { return m.failures }

// Destroy releases caches, history and listeners. Every later mutation is a
// no-op that reports false.
func (m *Manager) Destroy() {
	m.destroyed = true
	m.subs = nil
	m.cache = nil
	m.analysis = nil
	m.history.Clear()
	m.state = GanttState{View: m.state.View}
}

// Destroyed reports whether Destroy was called.
func (m *Manager) Destroyed() bool { return m.destroyed }

func (m *Manager) record() {
	m.history.Record(m.state)
	m.cfg.OnHistoryChange(m.history.UndoDepth(), m.history.RedoDepth())
}

func (m *Manager) restore(s GanttState) {
	prevMode := m.state.View.Mode
	m.replace(s, true)
	m.cfg.OnHistoryChange(m.history.UndoDepth(), m.history.RedoDepth())
	if s.View.Mode != prevMode {
		m.cfg.OnViewChange(s.View.Mode)
	}
	m.notify()
}

// replace installs next and refreshes everything derived from it.
func (m *Manager) replace(next GanttState, structural bool) {
	m.state = next
	if structural {
		m.rebuild()
		return
	}
	m.state.Window = m.computeWindow(m.state)
}

func (m *Manager) rebuild() {
	m.cache = buildCache(m.state, m.logger)
	m.analysis = nil
	m.state.Window = m.computeWindow(m.state)
	m.logger.Debug("state rebuilt", "tasks", len(m.state.Tasks), "dependencies", len(m.state.Dependencies))
}

func (m *Manager) computeWindow(s GanttState) window.Window {
	return window.Compute(len(s.Tasks), m.cfg.ItemHeight, s.View.ScrollOffset, m.cfg.ViewportCount, m.cfg.BufferSize)
}

func (m *Manager) notify() {
	snapshot := m.state
	for _, s := range append([]subscription(nil), m.subs...) {
		m.call(s, snapshot)
	}
}

func (m *Manager) call(s subscription, st GanttState) {
	defer func() {
		if r := recover(); r != nil {
			m.failures++
			m.logger.Error("subscriber panicked", "subscriber", s.id, "err", fmt.Sprint(r))
		}
	}()
	s.fn(st)
}

func (m *Manager) normalizeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			m.logger.Warn("duplicate task id dropped", "id", t.ID)
			continue
		}
		seen[t.ID] = true
		if _, ok := t.Duration(); !ok {
			m.logger.Warn("invalid task dates", "id", t.ID,
				"start", model.FormatDate(t.Start), "end", model.FormatDate(t.End))
		}
		out = append(out, t.Clone())
	}
	return out
}

func (m *Manager) normalizeDependencies(deps []model.Dependency) []model.Dependency {
	out := make([]model.Dependency, 0, len(deps))
	seen := make(map[model.DependencyKey]bool, len(deps))
	for _, d := range deps {
		if seen[d.Key()] {
			m.logger.Warn("duplicate dependency dropped", "from", d.FromID, "to", d.ToID)
			continue
		}
		seen[d.Key()] = true
		out = append(out, d)
	}
	return out
}

func sanitizeOffset(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
