package testsuite

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"embed"

	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedSuites embed.FS

// Load loads a test suite by name, searching first in the external directory
// (if provided), then in the embedded test suites.
func Load(name string, externalDir string) (*TestSuite, error) {
	// Try external directory first.
	if externalDir != "" {
		dir := filepath.Join(externalDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(dir), name)
		}
	}

	// Fall back to embedded test suites.
	// Use path.Join (not filepath.Join) because embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedSuites, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("test suite %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// List returns the names of all available test suites.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	// List embedded suites.
	entries, err := fs.ReadDir(embeddedSuites, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	// List external suites.
	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadFromFS(fsys fs.FS, name string) (*TestSuite, error) {
	data, err := fs.ReadFile(fsys, "suite.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read suite.yaml for suite %q: %w", name, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse suite.yaml for suite %q: %w", name, err)
	}

	if err := Validate(&suite); err != nil {
		return nil, fmt.Errorf("invalid test suite %q: %w", name, err)
	}

	// Tests inherit the suite agent id unless they set their own.
	for _, t := range suite.Tests {
		if t.AgentID == "" {
			t.AgentID = suite.AgentID
		}
	}

	return &suite, nil
}

// Validate checks structural invariants of a suite: every test is named,
// names are unique within the suite (they are the correlation key for
// reporting), and criterion ids are unique within each test. Loaded and
// generated suites go through the same checks.
func Validate(suite *TestSuite) error {
	if len(suite.Tests) == 0 {
		return fmt.Errorf("suite has no tests")
	}

	testNames := make(map[string]bool)
	for i, t := range suite.Tests {
		if t.Name == "" {
			return fmt.Errorf("test %d has no name", i)
		}
		if testNames[t.Name] {
			return fmt.Errorf("duplicate test name %q", t.Name)
		}
		testNames[t.Name] = true

		criteriaIDs := make(map[string]bool)
		for j, c := range t.EvaluationCriteria {
			if c.ID == "" {
				return fmt.Errorf("test %q: criterion %d has no id", t.Name, j)
			}
			if criteriaIDs[c.ID] {
				return fmt.Errorf("test %q: duplicate criterion id %q", t.Name, c.ID)
			}
			criteriaIDs[c.ID] = true
		}
	}

	return nil
}
