package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileNotFoundError is returned when a scenario references a file that
// doesn't exist.
type FileNotFoundError struct {
	Field string
	Path  string
}

// Error implements the error interface.
func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s references %q which does not exist", e.Field, e.Path)
}

func requireFile(path, field string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &FileNotFoundError{Field: field, Path: path}
	}
	return nil
}

// Discover returns the scenario files (*.yaml, *.yml) in dir, sorted. A path
// naming a single file is returned as is.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// SuiteResult pairs a scenario file with its outcome. Err is set when the
// scenario could not be loaded or run at all.
type SuiteResult struct {
	Path     string
	Scenario *Scenario
	Result   *Result
	Err      error
}

// Passed reports whether the scenario loaded, ran and passed.
func (r SuiteResult) Passed() bool {
	return r.Err == nil && r.Result != nil && r.Result.Pass
}

// RunAll loads and runs every scenario under path.
func RunAll(path string) ([]SuiteResult, error) {
	files, err := Discover(path)
	if err != nil {
		return nil, err
	}
	results := make([]SuiteResult, 0, len(files))
	for _, f := range files {
		sr := SuiteResult{Path: f}
		sr.Scenario, sr.Err = LoadScenario(f)
		if sr.Err == nil {
			sr.Result, sr.Err = Run(sr.Scenario)
		}
		results = append(results, sr)
	}
	return results, nil
}
