package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Agions/gantt-chart-component/internal/cpm"
	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/ui"
)

// chartWidth is the number of cells used for timeline bars.
const chartWidth = 40

// Reporter renders a critical path analysis for the terminal or as JSON.
type Reporter struct {
	Name   string
	Result *cpm.Result
}

// New creates a new Reporter.
func New(name string, result *cpm.Result) *Reporter {
	return &Reporter{Name: name, Result: result}
}

// PrintSchedule writes the per-wave schedule table with timeline bars.
func (r *Reporter) PrintSchedule(w io.Writer) {
	res := r.Result
	fmt.Fprintf(w, "%s: %d tasks, %s days, ends %s",
		ui.BoldCyan("📅 "+r.Name),
		len(res.Nodes),
		ui.Bold(fmt.Sprint(res.ProjectDuration)),
		ui.Bold(model.FormatDate(res.ProjectEndDate())))
	if len(res.Cycles) > 0 {
		fmt.Fprintf(w, " %s", ui.Red(fmt.Sprintf("(%d cyclic edges ignored)", len(res.Cycles))))
	}
	fmt.Fprint(w, "\n\n")

	span := max(res.ProjectDuration, res.LatestFinish)
	scale := 1.0
	if span > chartWidth {
		scale = float64(span) / float64(chartWidth-1)
	}

	for _, wave := range res.Waves {
		start := ""
		if !res.Anchor.IsZero() {
			start = model.FormatDate(model.AddDays(res.Anchor, wave.EarlyStart))
		}
		label := "parallel"
		if wave.IsCritical {
			label = ui.BoldYellow("critical")
		}
		fmt.Fprintf(w, "  🌊 %s %d  %s  (%s)\n", ui.BoldWhite("WAVE"), wave.Index+1, ui.Dim(start), label)
		for _, id := range wave.TaskIDs {
			r.printTask(w, res.Nodes[id], scale)
		}
		fmt.Fprintln(w)
	}
}

func (r *Reporter) printTask(w io.Writer, n *cpm.TaskNode, scale float64) {
	es, _ := r.Result.EarlyStartDate(n.Task.ID)
	ef, _ := r.Result.EarlyFinishDate(n.Task.ID)
	fmt.Fprintf(w, "    %s %-10s %-30s %s → %s  float %-5s |%s|\n",
		ui.CriticalMarker(n.IsCritical),
		ui.TaskID(n.Task.ID),
		ui.Truncate(n.Task.Name, 30),
		model.FormatDate(es),
		model.FormatDate(ef),
		ui.Float(n.Float),
		ui.Bar(n.EarlyStart, n.Duration, chartWidth, scale, n.IsCritical))
}

// PrintCriticalPaths writes every critical path, one per line.
func (r *Reporter) PrintCriticalPaths(w io.Writer) {
	paths := r.Result.CriticalPaths
	if len(paths) == 0 {
		fmt.Fprintln(w, ui.Dim("No critical path."))
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldCyan(fmt.Sprintf("Critical paths (%d)", len(paths))))
	for i, p := range paths {
		fmt.Fprintf(w, "  %d. %s\n", i+1, ui.BoldYellow("⚡ "+strings.Join(p, " → ")))
	}
	for _, k := range r.Result.Cycles {
		fmt.Fprintf(w, "  %s %s → %s\n", ui.Red("ignored cyclic edge"), k.From, k.To)
	}
}

type taskReport struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	EarlyStart  string `json:"early_start"`
	EarlyFinish string `json:"early_finish"`
	LateStart   string `json:"late_start"`
	LateFinish  string `json:"late_finish"`
	Float       int    `json:"float"`
	IsCritical  bool   `json:"is_critical"`
	Wave        int    `json:"wave"`
}

type edgeReport struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type report struct {
	Name            string       `json:"name"`
	Anchor          string       `json:"anchor"`
	ProjectDuration int          `json:"project_duration"`
	ProjectEnd      string       `json:"project_end"`
	CriticalTaskIDs []string     `json:"critical_task_ids"`
	CriticalPaths   [][]string   `json:"critical_paths"`
	IgnoredEdges    []edgeReport `json:"ignored_edges,omitempty"`
	Tasks           []taskReport `json:"tasks"`
}

// JSON returns the analysis in machine-readable form. Tasks are listed in
// topological order.
func (r *Reporter) JSON() ([]byte, error) {
	res := r.Result
	o := report{
		Name:            r.Name,
		Anchor:          model.FormatDate(res.Anchor),
		ProjectDuration: res.ProjectDuration,
		ProjectEnd:      model.FormatDate(res.ProjectEndDate()),
		CriticalTaskIDs: nonNil(res.CriticalTaskIDs),
		CriticalPaths:   res.CriticalPaths,
		Tasks:           make([]taskReport, 0, len(res.Order)),
	}
	if o.CriticalPaths == nil {
		o.CriticalPaths = [][]string{}
	}
	for _, k := range res.Cycles {
		o.IgnoredEdges = append(o.IgnoredEdges, edgeReport{From: k.From, To: k.To})
	}

	for _, id := range res.Order {
		n := res.Nodes[id]
		es, _ := res.EarlyStartDate(id)
		ef, _ := res.EarlyFinishDate(id)
		ls, _ := res.LateStartDate(id)
		lf, _ := res.LateFinishDate(id)
		o.Tasks = append(o.Tasks, taskReport{
			ID:          id,
			Name:        n.Task.Name,
			Duration:    n.Duration,
			EarlyStart:  model.FormatDate(es),
			EarlyFinish: model.FormatDate(ef),
			LateStart:   model.FormatDate(ls),
			LateFinish:  model.FormatDate(lf),
			Float:       n.Float,
			IsCritical:  n.IsCritical,
			Wave:        n.Wave,
		})
	}
	return json.MarshalIndent(o, "", "  ")
}

// Summary returns a short multi-line summary of the analysis.
func (r *Reporter) Summary() string {
	var b strings.Builder
	res := r.Result

	fmt.Fprintf(&b, "\n%s\n", ui.BoldCyan("📅 Schedule Summary"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("═══════════════════"))
	fmt.Fprintf(&b, "Project:   %s\n", ui.Bold(r.Name))
	fmt.Fprintf(&b, "Start:     %s\n", model.FormatDate(res.Anchor))
	fmt.Fprintf(&b, "End:       %s\n", ui.Bold(model.FormatDate(res.ProjectEndDate())))
	fmt.Fprintf(&b, "Duration:  %d days\n", res.ProjectDuration)
	fmt.Fprintf(&b, "Tasks:     %s, %d total\n",
		ui.BoldYellow(fmt.Sprintf("%d critical", len(res.CriticalTaskIDs))), len(res.Nodes))
	fmt.Fprintf(&b, "Waves:     %d\n", len(res.Waves))
	if len(res.Cycles) > 0 {
		fmt.Fprintf(&b, "Cycles:    %s\n", ui.Red(fmt.Sprintf("%d edges ignored", len(res.Cycles))))
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
