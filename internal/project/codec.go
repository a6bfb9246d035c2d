package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/Agions/gantt-chart-component/internal/model"
)

// toJSON converts a YAML or TOML document to JSON so that every format goes
// through the same schema and decoder.
func toJSON(data []byte, format Format) ([]byte, error) {
	var doc any
	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("parse project: invalid JSON")
		}
		return data, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse project: %w", err)
		}
	case FormatTOML:
		m := map[string]any{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("parse project: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(normalize(doc))
}

// normalize rewrites decoded values that JSON cannot carry faithfully.
// TOML dates become calendar-day strings; YAML maps with non-string keys
// get stringified keys.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case time.Time:
		return x.Format(model.DateLayout)
	}
	return v
}

func first(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() {
		return def
	}
	return r.Bool()
}

func decode(js []byte) (*Project, error) {
	root := gjson.ParseBytes(js)
	p := &Project{
		Name:     root.Get("name").String(),
		ViewMode: root.Get("view_mode").String(),
	}
	if a := root.Get("anchor"); a.Exists() {
		t, err := model.ParseDate(a.String())
		if err != nil {
			return nil, fmt.Errorf("anchor: %w", err)
		}
		p.Anchor = t
	}

	var err error
	root.Get("tasks").ForEach(func(key, r gjson.Result) bool {
		var t model.Task
		t, err = decodeTask(r)
		if err != nil {
			err = fmt.Errorf("tasks/%d: %w", key.Int(), err)
			return false
		}
		p.Tasks = append(p.Tasks, t)
		return true
	})
	if err != nil {
		return nil, err
	}

	root.Get("dependencies").ForEach(func(_, r gjson.Result) bool {
		p.Dependencies = append(p.Dependencies, model.Dependency{
			FromID: first(r, "from_id", "fromId").String(),
			ToID:   first(r, "to_id", "toId").String(),
			Type:   model.DependencyType(r.Get("type").String()),
			Lag:    int(r.Get("lag").Int()),
		})
		return true
	})
	return p, nil
}

func decodeTask(r gjson.Result) (model.Task, error) {
	t := model.Task{
		ID:        r.Get("id").String(),
		Name:      r.Get("name").String(),
		Progress:  r.Get("progress").Float(),
		Type:      model.TaskType(r.Get("type").String()),
		ParentID:  first(r, "parent_id", "parentId").String(),
		Draggable: boolOr(r.Get("draggable"), true),
		Resizable: boolOr(r.Get("resizable"), true),
		Readonly:  r.Get("readonly").Bool(),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var err error
	if t.Start, err = model.ParseDate(r.Get("start").String()); err != nil {
		return t, fmt.Errorf("start: %w", err)
	}
	if t.End, err = model.ParseDate(r.Get("end").String()); err != nil {
		return t, fmt.Errorf("end: %w", err)
	}
	for _, pred := range first(r, "predecessors", "dependsOn").Array() {
		t.Predecessors = append(t.Predecessors, pred.String())
	}
	return t, nil
}

type taskDoc struct {
	ID           string   `json:"id" yaml:"id" toml:"id"`
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Start        string   `json:"start" yaml:"start" toml:"start"`
	End          string   `json:"end" yaml:"end" toml:"end"`
	Progress     float64  `json:"progress,omitempty" yaml:"progress,omitempty" toml:"progress,omitempty"`
	Type         string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	ParentID     string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty"`
	Predecessors []string `json:"predecessors,omitempty" yaml:"predecessors,omitempty" toml:"predecessors,omitempty"`
	Draggable    *bool    `json:"draggable,omitempty" yaml:"draggable,omitempty" toml:"draggable,omitempty"`
	Resizable    *bool    `json:"resizable,omitempty" yaml:"resizable,omitempty" toml:"resizable,omitempty"`
	Readonly     bool     `json:"readonly,omitempty" yaml:"readonly,omitempty" toml:"readonly,omitempty"`
}

type dependencyDoc struct {
	FromID string `json:"from_id" yaml:"from_id" toml:"from_id"`
	ToID   string `json:"to_id" yaml:"to_id" toml:"to_id"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Lag    int    `json:"lag,omitempty" yaml:"lag,omitempty" toml:"lag,omitempty"`
}

type projectDoc struct {
	Name         string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Anchor       string          `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty"`
	ViewMode     string          `json:"view_mode,omitempty" yaml:"view_mode,omitempty" toml:"view_mode,omitempty"`
	Tasks        []taskDoc       `json:"tasks" yaml:"tasks" toml:"tasks"`
	Dependencies []dependencyDoc `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
}

func falseOnly(b bool) *bool {
	if b {
		return nil
	}
	return &b
}

func toDoc(p *Project) projectDoc {
	doc := projectDoc{
		Name:     p.Name,
		Anchor:   model.FormatDate(p.Anchor),
		ViewMode: p.ViewMode,
		Tasks:    make([]taskDoc, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		doc.Tasks = append(doc.Tasks, taskDoc{
			ID:           t.ID,
			Name:         t.Name,
			Start:        model.FormatDate(t.Start),
			End:          model.FormatDate(t.End),
			Progress:     t.Progress,
			Type:         string(t.Type),
			ParentID:     t.ParentID,
			Predecessors: t.Predecessors,
			Draggable:    falseOnly(t.Draggable),
			Resizable:    falseOnly(t.Resizable),
			Readonly:     t.Readonly,
		})
	}
	for _, d := range p.Dependencies {
		doc.Dependencies = append(doc.Dependencies, dependencyDoc{
			FromID: d.FromID,
			ToID:   d.ToID,
			Type:   string(d.Type),
			Lag:    d.Lag,
		})
	}
	return doc
}

// Encode renders p in the given format.
func Encode(p *Project, format Format) ([]byte, error) {
	doc := toDoc(p)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode project: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode project: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode project: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode project: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}
