// Package logging builds the leveled loggers shared by the scheduling engine
// and the command line.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Options holds logger configuration.
type Options struct {
	Level           string // debug, info, warn, error
	Prefix          string
	JSON            bool
	ReportTimestamp bool
}

// DefaultOptions returns warn-level text output prefixed with "gantt".
func DefaultOptions() Options {
	return Options{
		Level:  "warn",
		Prefix: "gantt",
	}
}

// New creates a logger writing to w. Unknown levels fall back to warn.
func New(w io.Writer, opts Options) *log.Logger {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.WarnLevel
	}
	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
