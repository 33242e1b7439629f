// Package output writes the pipeline's JSON artifacts.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rkty13/match-gennotes/internal/match"
	"github.com/rkty13/match-gennotes/internal/openhumans"
)

// WriteMatches writes one individual's enriched matches as an indented JSON
// array. An individual with no matches still gets a file, with an empty
// array.
func WriteMatches(path string, matches []*match.Match) error {
	if matches == nil {
		matches = []*match.Match{}
	}
	return writeJSON(path, matches)
}

// WriteMetadata writes the run-level individuals metadata artifact.
func WriteMetadata(path string, results []openhumans.Result) error {
	if results == nil {
		results = []openhumans.Result{}
	}
	return writeJSON(path, results)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
