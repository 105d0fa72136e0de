package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

const manifestName = "resultset.json"

// ListRuns returns the run directories under outputDir, newest first going
// by the timestamp embedded in the run id.
func ListRuns(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, e.Name(), manifestName)); err == nil {
			runs = append(runs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

// LoadRun reads a run directory back into a RunRecord, including the
// individual test results referenced by the manifest. Missing result files
// are skipped so a partially copied run directory still loads.
func LoadRun(runDir string) (*RunRecord, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read run manifest: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse run manifest: %w", err)
	}
	record.OutputDir = runDir

	for _, file := range record.Files {
		// Manifests may carry absolute paths from another machine; resolve
		// against the run directory by basename.
		path := filepath.Join(runDir, filepath.Base(file))
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var result testsuite.TestResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to parse result file %s: %w", path, err)
		}
		record.Results = append(record.Results, &result)
	}

	return &record, nil
}
