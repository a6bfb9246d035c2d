package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Agions/gantt-chart-component/internal/state"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // config key, e.g. "view.item_height"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the accepted logging.format values.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidViewModes returns the accepted view.default_mode values.
func ValidViewModes() []string {
	return []string{
		string(state.ModeDay), string(state.ModeWeek), string(state.ModeMonth),
		string(state.ModeQuarter), string(state.ModeYear),
	}
}

// Validate checks c and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Engine.HistoryLimit < 1 {
		errs = append(errs, ValidationError{"engine.history_limit", c.Engine.HistoryLimit, "must be at least 1"})
	}
	if c.View.ItemHeight <= 0 {
		errs = append(errs, ValidationError{"view.item_height", c.View.ItemHeight, "must be positive"})
	}
	if c.View.ViewportCount < 1 {
		errs = append(errs, ValidationError{"view.viewport_count", c.View.ViewportCount, "must be at least 1"})
	}
	if c.View.BufferSize < 0 {
		errs = append(errs, ValidationError{"view.buffer_size", c.View.BufferSize, "must not be negative"})
	}
	if !slices.Contains(ValidViewModes(), c.View.DefaultMode) {
		errs = append(errs, ValidationError{"view.default_mode", c.View.DefaultMode,
			"must be one of " + strings.Join(ValidViewModes(), ", ")})
	}
	if c.Analysis.MaxCriticalPaths < 0 {
		errs = append(errs, ValidationError{"analysis.max_critical_paths", c.Analysis.MaxCriticalPaths, "must not be negative"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{"logging.level", c.Logging.Level,
			"must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}
	if !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errs = append(errs, ValidationError{"logging.format", c.Logging.Format,
			"must be one of " + strings.Join(ValidLogFormats(), ", ")})
	}
	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{"server.addr", c.Server.Addr, "must not be empty"})
	}
	return errs
}
