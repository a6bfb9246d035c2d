// Package tui renders an interactive terminal chart on top of a state
// manager.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/state"
	"github.com/Agions/gantt-chart-component/internal/ui"
)

const (
	nameWidth = 24
	// rows used by the title, header, status line and footer
	chromeRows   = 6
	defaultWidth = 100
	defaultRows  = 20
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	headerStyle   = lipgloss.NewStyle().Faint(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Run opens the chart in the alternate screen until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, name string, m *state.Manager) error {
	program := tea.NewProgram(New(name, m), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the bubbletea model for the chart.
type Model struct {
	name   string
	m      *state.Manager
	cursor int
	top    int
	width  int
	height int
	status string
	help   help.Model
}

// New returns a model positioned on the first task.
func New(name string, m *state.Manager) *Model {
	return &Model{name: name, m: m, width: defaultWidth, height: defaultRows + chromeRows, help: help.New()}
}

func (t *Model) Init() tea.Cmd { return nil }

func (t *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.help.Width = msg.Width
		t.follow()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return t, tea.Quit
		case key.Matches(msg, keys.Up):
			t.move(-1)
		case key.Matches(msg, keys.Down):
			t.move(1)
		case key.Matches(msg, keys.PageUp):
			t.move(-t.rows())
		case key.Matches(msg, keys.PageDown):
			t.move(t.rows())
		case key.Matches(msg, keys.Top):
			t.move(-t.cursor)
		case key.Matches(msg, keys.Bottom):
			t.move(t.count())
		case key.Matches(msg, keys.Undo):
			if t.m.Undo() {
				t.status = "undone"
			} else {
				t.status = "nothing to undo"
			}
			t.clamp()
		case key.Matches(msg, keys.Redo):
			if t.m.Redo() {
				t.status = "redone"
			} else {
				t.status = "nothing to redo"
			}
			t.clamp()
		case key.Matches(msg, keys.Schedule):
			changes := t.m.AutoSchedule()
			t.status = fmt.Sprintf("auto-schedule moved %d task(s)", len(changes))
		case key.Matches(msg, keys.Mode):
			next := t.m.State().View.Mode.Next()
			t.m.UpdateViewSettings(state.ViewSettingsPatch{Mode: &next})
			t.status = "view: " + string(next)
		case key.Matches(msg, keys.Help):
			t.help.ShowAll = !t.help.ShowAll
		}
	}
	return t, nil
}

func (t *Model) View() string {
	var b strings.Builder
	st := t.m.State()
	res := t.m.Analysis()

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d tasks  %dd  mode %s", t.name, len(st.Tasks), res.ProjectDuration, st.View.Mode)))
	b.WriteString("\n")
	if t.help.ShowAll {
		b.WriteString("\n")
		b.WriteString(t.help.View(keys))
		b.WriteString("\n")
		return b.String()
	}
	barWidth := max(t.width-nameWidth-8, 10)
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %5s  %s", nameWidth, "TASK", "FLOAT", res.Anchor.Format("2006-01-02"))))
	b.WriteString("\n")

	scale := st.View.Mode.DaysPerUnit()
	rows := t.rows()
	for _, ct := range t.m.VisibleTasks() {
		if ct.Index < t.top || ct.Index >= t.top+rows {
			continue
		}
		b.WriteString(t.row(ct, barWidth, scale))
		b.WriteString("\n")
	}

	if t.status != "" {
		b.WriteString(statusStyle.Render(t.status))
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("undo %d  redo %d  ", t.m.UndoDepth(), t.m.RedoDepth())))
	b.WriteString(t.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

func (t *Model) row(ct state.CachedTask, width int, scale float64) string {
	res := t.m.Analysis()
	critical := res.IsCritical(ct.Task.ID)
	float := "-"
	if f, ok := res.Float(ct.Task.ID); ok {
		float = ui.Float(f)
	}
	label := ct.Task.Name
	if label == "" {
		label = ct.Task.ID
	}
	label = strings.Repeat(" ", min(ct.Level, 4)*2) + label
	offset := 0
	if !ct.Task.Start.IsZero() && !res.Anchor.IsZero() {
		offset = model.DaysBetween(res.Anchor, ct.Task.Start)
	}
	dur, _ := ct.Task.Duration()
	bar := ui.BarCells(offset, dur, width, scale, critical)
	if critical {
		bar = criticalStyle.Render(bar)
	} else {
		bar = barStyle.Render(bar)
	}
	text := fmt.Sprintf("%-*s %5s", nameWidth, ui.Truncate(label, nameWidth), float)
	if ct.Index == t.cursor {
		text = selectedStyle.Render(text)
	}
	return text + "  " + bar
}

// rows is how many task lines fit on screen, capped by the manager's
// viewport so every drawn row is inside the computed window.
func (t *Model) rows() int {
	r := max(t.height-chromeRows, 1)
	return min(r, t.m.Config().ViewportCount)
}

func (t *Model) count() int { return len(t.m.State().Tasks) }

func (t *Model) move(delta int) {
	t.cursor += delta
	t.clamp()
}

func (t *Model) clamp() {
	t.cursor = min(t.cursor, t.count()-1)
	t.cursor = max(t.cursor, 0)
	t.follow()
}

// follow scrolls so the cursor stays on screen.
func (t *Model) follow() {
	rows := t.rows()
	if t.cursor < t.top {
		t.top = t.cursor
	}
	if t.cursor >= t.top+rows {
		t.top = t.cursor - rows + 1
	}
	t.top = max(t.top, 0)
	t.m.UpdateScrollPosition(float64(t.top) * t.m.Config().ItemHeight)
}
