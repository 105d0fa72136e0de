package mcp

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveRunPath maps a user-supplied run id onto a directory inside the
// output directory, rejecting anything that could escape it.
func resolveRunPath(outputDir, runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run_id is required")
	}
	if strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("path separators are not allowed")
	}
	if runID == "." || runID == ".." {
		return "", fmt.Errorf("path traversal is not allowed")
	}

	baseAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	target := filepath.Join(baseAbs, runID)

	// The separator and dot checks above should make escaping impossible;
	// verify anyway before touching the filesystem.
	rel, err := filepath.Rel(baseAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal is not allowed")
	}
	return target, nil
}
