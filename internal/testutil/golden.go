// Package testutil provides shared test helpers for Pal Go tests.
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the shared scenarios.
const ScenariosDir = "testdata/scenarios"

// Exit kinds a scenario may expect.
const (
	ExitOK      = "ok"
	ExitStatic  = "static"
	ExitRuntime = "runtime"
)

// Scenario is one program and the output it must produce.
type Scenario struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Stdout string `yaml:"stdout"`
	// Exit is one of ok, static or runtime. Empty means ok.
	Exit string `yaml:"exit,omitempty"`
	// MaxIterations and TimeMs set a run budget when non-zero.
	MaxIterations int64 `yaml:"max_iterations,omitempty"`
	TimeMs        int64 `yaml:"time_ms,omitempty"`

	Tags []string `yaml:"tags,omitempty"`
}

// ExpectedExit returns the exit kind, defaulting to ok.
func (s *Scenario) ExpectedExit() string {
	if s.Exit == "" {
		return ExitOK
	}
	return s.Exit
}

// LoadScenarios decodes every scenario document in a YAML file. A file may
// hold several documents separated by "---".
func LoadScenarios(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []*Scenario
	for {
		var s Scenario
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%s: scenario %d has no name", path, len(out)+1)
		}
		switch s.ExpectedExit() {
		case ExitOK, ExitStatic, ExitRuntime:
		default:
			return nil, fmt.Errorf("%s: scenario %q: unknown exit kind %q", path, s.Name, s.Exit)
		}
		out = append(out, &s)
	}
	return out, nil
}

// ListScenarios returns all scenario files under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ScenarioName joins a file's base name and a scenario name into a subtest name.
func ScenarioName(file string, s *Scenario) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return base + "/" + s.Name
}
