package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SuiteOptions configures RunSuite.
type SuiteOptions struct {
	// Filter is a glob matched against scenario file stems. Empty runs all.
	Filter string

	// Update rewrites golden files instead of comparing against them.
	Update bool
}

// Outcome is the result of one scenario file.
type Outcome struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Pass          bool     `json:"pass"`
	GoldenUpdated bool     `json:"golden_updated,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a scenario directory run.
type SuiteResult struct {
	Scenarios []Outcome `json:"scenarios"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Total     int       `json:"total"`
}

// FindScenarios lists the .yaml and .yml files directly inside dir, sorted
// by name. Subdirectories (golden files, models) are not scanned.
func FindScenarios(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// RunSuite runs every scenario in dir.
// Scenario failures are reported in the result; the error is reserved for
// an unreadable directory or a cancelled context.
func (h *Harness) RunSuite(ctx context.Context, dir string, opts SuiteOptions) (*SuiteResult, error) {
	files, err := FindScenarios(dir, opts.Filter)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{
		Scenarios: make([]Outcome, 0, len(files)),
		Total:     len(files),
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := h.RunFile(ctx, path, opts.Update)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, outcome)
	}
	return result, nil
}

// RunFile loads and runs one scenario file, including its golden check.
func (h *Harness) RunFile(ctx context.Context, path string, update bool) Outcome {
	outcome := Outcome{Name: filepath.Base(path), Path: path}
	fail := func(format string, args ...any) Outcome {
		outcome.Pass = false
		outcome.Errors = append(outcome.Errors, fmt.Sprintf(format, args...))
		return outcome
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	outcome.Name = scenario.Name

	result, err := h.Run(ctx, scenario)
	if err != nil {
		return fail("execution failed: %v", err)
	}
	outcome.Pass = result.Pass
	outcome.Errors = append(outcome.Errors, result.Errors...)

	if !scenario.Golden || result.Atlas == nil {
		return outcome
	}

	goldenPath := GoldenPath(path)
	if update {
		if err := UpdateGolden(goldenPath, result); err != nil {
			return fail("failed to update golden file: %v", err)
		}
		outcome.GoldenUpdated = true
		return outcome
	}

	match, err := CompareGolden(goldenPath, result)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fail("golden file missing: %s (run with --update to create)", goldenPath)
	case err != nil:
		return fail("golden comparison failed: %v", err)
	case !match:
		return fail("atlas does not match golden file (run with --update to regenerate)")
	}
	return outcome
}
