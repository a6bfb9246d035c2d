// Package project reads and writes project files: a task list, a
// dependency list and optional view settings, as JSON, YAML or TOML.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Agions/gantt-chart-component/internal/model"
)

// Format is a project file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported project file extension %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

// Project is a decoded project file.
type Project struct {
	Name         string
	Anchor       time.Time // zero when the file has none
	ViewMode     string
	Tasks        []model.Task
	Dependencies []model.Dependency
}

// Load reads, validates and decodes the project file at path.
func Load(path string) (*Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse validates data against the project schema and decodes it.
func Parse(data []byte, format Format) (*Project, error) {
	js, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	if err := validate(js); err != nil {
		return nil, err
	}
	return decode(js)
}

// Save writes p to path in the format given by its extension.
func Save(path string, p *Project) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(p, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
