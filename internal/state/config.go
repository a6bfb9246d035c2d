package state

import (
	"github.com/charmbracelet/log"

	"github.com/Agions/gantt-chart-component/internal/history"
	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/schedule"
)

// Engine defaults.
const (
	DefaultHistoryLimit  = history.DefaultLimit
	DefaultItemHeight    = 40
	DefaultViewportCount = 50
	DefaultBufferSize    = 20
	DefaultMode          = ModeDay
)

// Config configures a Manager. Zero values take the defaults above and nil
// callbacks are replaced with no-ops.
type Config struct {
	HistoryLimit  int
	ItemHeight    float64
	ViewportCount int
	BufferSize    int // rows rendered beyond each viewport edge; negative means none
	DefaultMode   ViewMode

	// AutoSchedule reflows task dates on every task or dependency update.
	AutoSchedule bool
	// MaxCriticalPaths bounds critical path enumeration in Analysis; 0 is unlimited.
	MaxCriticalPaths int

	Logger *log.Logger

	OnViewChange    func(ViewMode)
	OnAutoSchedule  func([]schedule.Change)
	OnHistoryChange func(undoDepth, redoDepth int)
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.ItemHeight <= 0 {
		c.ItemHeight = DefaultItemHeight
	}
	if c.ViewportCount <= 0 {
		c.ViewportCount = DefaultViewportCount
	}
	if c.BufferSize < 0 {
		c.BufferSize = 0
	} else if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if !c.DefaultMode.Valid() {
		c.DefaultMode = DefaultMode
	}
	if c.MaxCriticalPaths < 0 {
		c.MaxCriticalPaths = 0
	}
	c.Logger = logging.OrDiscard(c.Logger)
	if c.OnViewChange == nil {
		c.OnViewChange = func(ViewMode) {}
	}
	if c.OnAutoSchedule == nil {
		c.OnAutoSchedule = func([]schedule.Change) {}
	}
	if c.OnHistoryChange == nil {
		c.OnHistoryChange = func(int, int) {}
	}
	return c
}
