// Package export renders an analysed schedule as a Graphviz DOT digraph or
// as the normalised node/edge graph consumed by browser renderers.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Agions/gantt-chart-component/internal/cpm"
	"github.com/Agions/gantt-chart-component/internal/model"
)

type GraphNode struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"type,omitempty"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Progress    float64 `json:"progress"`
	Duration    int     `json:"duration"`
	Float       int     `json:"float"`
	IsCritical  bool    `json:"is_critical"`
	WaveIndex   int     `json:"wave_index"`
	EarlyStart  int     `json:"early_start"`
	EarlyFinish int     `json:"early_finish"`
}

type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Critical bool   `json:"critical,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"` // closed a cycle
}

type GraphMetadata struct {
	Name            string `json:"name"`
	Anchor          string `json:"anchor"`
	ProjectEnd      string `json:"project_end"`
	ProjectDuration int    `json:"project_duration"`
	TotalTasks      int    `json:"total_tasks"`
	TotalWaves      int    `json:"total_waves"`
}

type Graph struct {
	Nodes         []GraphNode   `json:"nodes"`
	Edges         []GraphEdge   `json:"edges"`
	CriticalPaths [][]string    `json:"critical_paths"`
	Metadata      GraphMetadata `json:"metadata"`
}

// ToGraph converts an analysis into the normalised Graph. Nodes and edges
// follow the analysis' topological order.
func ToGraph(name string, res *cpm.Result) *Graph {
	g := &Graph{
		Nodes:         make([]GraphNode, 0, len(res.Order)),
		Edges:         []GraphEdge{},
		CriticalPaths: res.CriticalPaths,
		Metadata: GraphMetadata{
			Name:            name,
			Anchor:          model.FormatDate(res.Anchor),
			ProjectEnd:      model.FormatDate(res.ProjectEndDate()),
			ProjectDuration: res.ProjectDuration,
			TotalTasks:      len(res.Nodes),
			TotalWaves:      len(res.Waves),
		},
	}
	if g.CriticalPaths == nil {
		g.CriticalPaths = [][]string{}
	}

	for _, id := range res.Order {
		n := res.Nodes[id]
		g.Nodes = append(g.Nodes, GraphNode{
			ID:          id,
			Title:       n.Task.Name,
			Type:        string(n.Task.Type),
			Start:       model.FormatDate(n.Task.Start),
			End:         model.FormatDate(n.Task.End),
			Progress:    n.Task.Progress,
			Duration:    n.Duration,
			Float:       n.Float,
			IsCritical:  n.IsCritical,
			WaveIndex:   n.Wave,
			EarlyStart:  n.EarlyStart,
			EarlyFinish: n.EarlyFinish,
		})
		for _, s := range n.Successors {
			g.Edges = append(g.Edges, GraphEdge{
				From:     id,
				To:       s,
				Critical: n.IsCritical && res.IsCritical(s),
			})
		}
	}
	for _, k := range res.Cycles {
		g.Edges = append(g.Edges, GraphEdge{From: k.From, To: k.To, Ignored: true})
	}
	return g
}

// WriteDOT writes the analysis as a left-to-right Graphviz digraph with
// critical tasks and edges in red and ignored cyclic edges dashed.
func WriteDOT(w io.Writer, name string, res *cpm.Result) error {
	g := ToGraph(name, res)
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range g.Nodes {
		label := fmt.Sprintf("%s\\n%s\\n%s..%s", n.ID, escape(n.Title), n.Start, n.End)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if n.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		if n.Type == string(model.TaskTypeMilestone) {
			attrs += ", shape=diamond"
		}
		fmt.Fprintf(&b, "  %q [%s];\n", n.ID, attrs)
	}

	b.WriteString("\n")
	for _, e := range g.Edges {
		style := ""
		switch {
		case e.Ignored:
			style = ` [style=dashed, color=gray]`
		case e.Critical:
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(&b, "  %q -> %q%s;\n", e.From, e.To, style)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
