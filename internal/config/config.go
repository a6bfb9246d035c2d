// Package config loads engine and command line settings with viper from
// defaults, an optional config file and GANTT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/state"
)

// EnvPrefix is the prefix of environment overrides, e.g. GANTT_ENGINE_HISTORY_LIMIT.
const EnvPrefix = "GANTT"

// Config is the complete file/env configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	View     ViewConfig     `mapstructure:"view"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

// EngineConfig controls the state manager.
type EngineConfig struct {
	HistoryLimit int  `mapstructure:"history_limit"`
	AutoSchedule bool `mapstructure:"auto_schedule"`
}

// ViewConfig controls the virtual window.
type ViewConfig struct {
	ItemHeight    float64 `mapstructure:"item_height"`
	ViewportCount int     `mapstructure:"viewport_count"`
	BufferSize    int     `mapstructure:"buffer_size"`
	DefaultMode   string  `mapstructure:"default_mode"`
}

// AnalysisConfig controls critical path analysis.
type AnalysisConfig struct {
	MaxCriticalPaths int `mapstructure:"max_critical_paths"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	Timestamps bool   `mapstructure:"timestamps"`
}

// ServerConfig controls the viewer HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			HistoryLimit: state.DefaultHistoryLimit,
		},
		View: ViewConfig{
			ItemHeight:    state.DefaultItemHeight,
			ViewportCount: state.DefaultViewportCount,
			BufferSize:    state.DefaultBufferSize,
			DefaultMode:   string(state.DefaultMode),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7777",
		},
	}
}

// SetDefaults registers every default on v so that keys exist even without
// a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("engine.history_limit", d.Engine.HistoryLimit)
	v.SetDefault("engine.auto_schedule", d.Engine.AutoSchedule)

	v.SetDefault("view.item_height", d.View.ItemHeight)
	v.SetDefault("view.viewport_count", d.View.ViewportCount)
	v.SetDefault("view.buffer_size", d.View.BufferSize)
	v.SetDefault("view.default_mode", d.View.DefaultMode)

	v.SetDefault("analysis.max_critical_paths", d.Analysis.MaxCriticalPaths)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.timestamps", d.Logging.Timestamps)

	v.SetDefault("server.addr", d.Server.Addr)
}

// NewViper returns a viper instance with defaults and environment binding.
// cfgFile, when set, is read and must exist; otherwise gantt.{yaml,toml,json}
// is searched in ConfigDir() and the working directory and may be absent.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("gantt")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ConfigDir returns the per-user config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gantt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gantt"
	}
	return filepath.Join(home, ".config", "gantt")
}

// StateConfig converts c into the engine configuration.
func (c *Config) StateConfig(logger *log.Logger) state.Config {
	buffer := c.View.BufferSize
	if buffer == 0 {
		// state.Config reads 0 as unset.
		buffer = -1
	}
	return state.Config{
		HistoryLimit:     c.Engine.HistoryLimit,
		AutoSchedule:     c.Engine.AutoSchedule,
		ItemHeight:       c.View.ItemHeight,
		ViewportCount:    c.View.ViewportCount,
		BufferSize:       buffer,
		DefaultMode:      state.ViewMode(c.View.DefaultMode),
		MaxCriticalPaths: c.Analysis.MaxCriticalPaths,
		Logger:           logger,
	}
}

// LoggingOptions converts c into logger options.
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.Logging.Level
	opts.JSON = c.Logging.Format == "json"
	opts.ReportTimestamp = c.Logging.Timestamps
	return opts
}
