// Package config implements Pal configuration loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pal-lang/pal/pkg/evaluator"
)

// ProjectFile is the config file name looked up in the project directory.
const ProjectFile = ".pal.yaml"

// Config holds the interpreter settings. Zero budget values mean unlimited.
type Config struct {
	Verbose       bool   `yaml:"verbose"`
	MaxDepth      int    `yaml:"max_depth"`
	MaxIterations int64  `yaml:"max_iterations"`
	TimeMs        int64  `yaml:"time_ms"`
	LogLevel      string `yaml:"log_level"`
	HistoryFile   string `yaml:"history_file"`

	// Path is the file the config was read from, empty for the defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxDepth:    evaluator.DefaultMaxDepth,
		LogLevel:    "error",
		HistoryFile: "~/.pal_history",
	}
}

// Load resolves the configuration. Precedence: explicit path → project
// (.pal.yaml in projectDir) → user (~/.pal/config.yaml) → defaults.
// An explicit path must exist; the discovered files are optional.
func Load(projectDir, explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}

	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".pal", "config.yaml"))
	}
	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile reads one YAML config file on top of the defaults. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.TimeMs < 0 {
		return fmt.Errorf("time_ms must not be negative, got %d", c.TimeMs)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Budget converts the limits into evaluator form.
func (c *Config) Budget() evaluator.Budget {
	return evaluator.Budget{
		MaxDepth:      c.MaxDepth,
		MaxIterations: c.MaxIterations,
		TimeMs:        c.TimeMs,
	}
}

// Level returns the configured log level, falling back to error.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelError
	}
	return lvl
}

// ParseLevel parses debug, info, warn or error (any case). Empty means error.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelError, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
