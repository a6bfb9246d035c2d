package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	crit := color.New(color.Bold, color.FgRed)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------+")
	bars.Fprintln(w, "   |  ======                |")
	crit.Fprintln(w, "   |        ==========      |")
	bars.Fprintln(w, "   |     =====        ===   |")
	brand.Fprintln(w, "   |      G  A  N  T  T     |")
	frame.Fprintln(w, "   +------------------------+")
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskID returns taskID in its palette color. The same id always gets the
// same color.
func TaskID(taskID string) string {
	return taskColors[taskColorIndex(taskID)](taskID)
}

// CriticalMarker returns a lightning mark for critical tasks and a blank
// of the same width otherwise.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Float colors a float value: red at zero, yellow within a week, green beyond.
func Float(days int) string {
	s := fmt.Sprintf("%dd", days)
	switch {
	case days <= 0:
		return BoldRed(s)
	case days <= 7:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// BarCells draws an uncolored timeline bar of length width where the task
// occupies [offset, offset+length] days at scale days per cell. Critical
// tasks fill with '#', others with '='; milestones (length 0) render as a
// diamond.
func BarCells(offset, length, width int, scale float64, critical bool) string {
	if width <= 0 {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}
	start := int(float64(offset) / scale)
	end := int(float64(offset+length) / scale)
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	fill := '='
	if critical {
		fill = '#'
	}
	for i := max(start, 0); i <= end && i < width; i++ {
		cells[i] = fill
	}
	if length == 0 && start >= 0 && start < width {
		cells[start] = '◆'
	}
	return string(cells)
}

// Bar is BarCells in red for critical tasks and cyan otherwise.
func Bar(offset, length, width int, scale float64, critical bool) string {
	bar := BarCells(offset, length, width, scale, critical)
	if critical {
		return Red(bar)
	}
	return Cyan(bar)
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
