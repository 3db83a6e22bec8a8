package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pal-lang/pal/pkg/config"
	"github.com/pal-lang/pal/pkg/evaluator"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// isolate points HOME at an empty directory so no real user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.False(t, cfg.Verbose)
	assert.Equal(t, evaluator.DefaultMaxDepth, cfg.MaxDepth)
	assert.Zero(t, cfg.MaxIterations)
	assert.Zero(t, cfg.TimeMs)
	assert.Equal(t, slog.LevelError, cfg.Level())
	assert.Empty(t, cfg.Path)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	isolate(t)
	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "verbose: true\nmax_iterations: 50\nlog_level: debug\n")

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, int64(50), cfg.MaxIterations)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	// Unset keys keep their defaults.
	assert.Equal(t, evaluator.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, filepath.Join(dir, config.ProjectFile), cfg.Path)
}

func TestProjectBeatsUser(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".pal", "config.yaml"), "time_ms: 100\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "time_ms: 5\n")

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.TimeMs)
}

func TestLoadUserFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".pal", "config.yaml"), "time_ms: 100\n")

	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.TimeMs)
}

func TestExplicitPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "time_ms: 5\n")
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, explicit, "max_depth: 42\n")

	cfg, err := config.Load(dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MaxDepth)
	assert.Zero(t, cfg.TimeMs)
}

func TestExplicitPathMustExist(t *testing.T) {
	isolate(t)
	_, err := config.Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEmptyFileIsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	writeFile(t, path, "")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, evaluator.DefaultMaxDepth, cfg.MaxDepth)
}

func TestInvalidFiles(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "verbos: true\n",
		"wrong type":      "max_depth: deep\n",
		"negative depth":  "max_depth: -1\n",
		"negative budget": "max_iterations: -5\n",
		"negative time":   "time_ms: -1\n",
		"bad log level":   "log_level: loud\n",
		"malformed":       "verbose: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			writeFile(t, path, content)
			_, err := config.LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestProjectParseErrorIsReported(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "nope: 1\n")
	_, err := config.Load(dir, "")
	assert.Error(t, err)
}

func TestBudget(t *testing.T) {
	cfg := &config.Config{MaxDepth: 10, MaxIterations: 20, TimeMs: 30}
	assert.Equal(t, evaluator.Budget{MaxDepth: 10, MaxIterations: 20, TimeMs: 30}, cfg.Budget())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelError,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := config.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := config.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)
	assert.Equal(t, filepath.Join(home, ".pal_history"), config.ExpandHome("~/.pal_history"))
	assert.Equal(t, "/abs/path", config.ExpandHome("/abs/path"))
	assert.Equal(t, "rel", config.ExpandHome("rel"))
}
