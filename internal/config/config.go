// Package config loads the rfscope server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-rfscope/dsp/signal"
	"github.com/cwbudde/algo-rfscope/dsp/window"
	"github.com/cwbudde/algo-rfscope/internal/explain"
	"github.com/cwbudde/algo-rfscope/internal/scope"
)

// MaxFrameSize bounds frame and one-off request sizes.
const MaxFrameSize = scope.MaxFrameSize

// Config is the complete server configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Scope struct {
		FrameSize int           `yaml:"frame_size"`
		Interval  time.Duration `yaml:"interval"`
		// Seed makes every frame's noise reproducible when non-nil.
		Seed   *uint64       `yaml:"seed"`
		Params signal.Params `yaml:"params"`
	} `yaml:"scope"`

	Spectrum struct {
		Window string `yaml:"window"`
	} `yaml:"spectrum"`

	Explain struct {
		APIKeyEnv    string        `yaml:"api_key_env"`
		ExplainModel string        `yaml:"explain_model"`
		AnalyzeModel string        `yaml:"analyze_model"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"explain"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	c.Server.Addr = "127.0.0.1:8080"
	c.Server.ShutdownTimeout = 5 * time.Second
	c.Scope.FrameSize = scope.DefaultFrameSize
	c.Scope.Interval = scope.DefaultInterval
	c.Scope.Params = signal.DefaultParams()
	c.Spectrum.Window = "hann"
	c.Explain.APIKeyEnv = "API_KEY"
	c.Explain.ExplainModel = explain.DefaultExplainModel
	c.Explain.AnalyzeModel = explain.DefaultAnalyzeModel
	c.Explain.Timeout = 30 * time.Second
	c.Log.Level = "info"
	return &c
}

// Load reads filename and overlays it on Default. Keys missing from the file
// keep their default values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse overlays YAML data on Default and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be > 0: %v", c.Server.ShutdownTimeout))
	}
	if c.Scope.FrameSize <= 0 || c.Scope.FrameSize > MaxFrameSize {
		errs = append(errs, fmt.Errorf("scope.frame_size must be in [1,%d]: %d", MaxFrameSize, c.Scope.FrameSize))
	}
	if c.Scope.Interval <= 0 {
		errs = append(errs, fmt.Errorf("scope.interval must be > 0: %v", c.Scope.Interval))
	}
	if err := c.Scope.Params.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scope.params: %w", err))
	}
	if _, err := window.ParseType(c.Spectrum.Window); err != nil {
		errs = append(errs, fmt.Errorf("spectrum.window: %w", err))
	}
	if c.Explain.Timeout < 0 {
		errs = append(errs, fmt.Errorf("explain.timeout must be >= 0: %v", c.Explain.Timeout))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// APIKey returns the explanation API key from the configured environment
// variable, or "" when unset.
func (c *Config) APIKey() string {
	if c.Explain.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Explain.APIKeyEnv)
}

// WindowType returns the parsed spectrum window.
func (c *Config) WindowType() window.Type {
	t, err := window.ParseType(c.Spectrum.Window)
	if err != nil {
		return window.TypeHann
	}
	return t
}
