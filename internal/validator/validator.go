// Package validator checks test-driven-development evidence for a task.
package validator

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aetherlight/readygate/internal/engine"
)

// defaultTestGlobs match test files across the ecosystems the engine gates.
var defaultTestGlobs = []string{
	"**/*_test.go",
	"**/*.test.{ts,tsx,js,jsx}",
	"**/*.spec.{ts,tsx,js,jsx}",
	"**/test_*.py",
	"**/*_test.py",
	"**/*_test.rs",
}

// FileValidator implements engine.TestValidator by globbing for test files
// under the task's working directory. When the context names no directory it
// falls back to the caller-supplied evidence flag.
type FileValidator struct {
	globs []string
}

// New creates a validator with the default test globs.
func New() *FileValidator {
	return &FileValidator{globs: defaultTestGlobs}
}

// NewWithGlobs creates a validator with custom globs.
func NewWithGlobs(globs []string) *FileValidator {
	if len(globs) == 0 {
		globs = defaultTestGlobs
	}
	return &FileValidator{globs: globs}
}

// Validate reports whether test files exist for the task context.
func (v *FileValidator) Validate(_ context.Context, wctx *engine.Context) (*engine.ValidationReport, error) {
	report := &engine.ValidationReport{TaskID: wctx.TaskID}

	if wctx.WorkingDir == "" {
		// No directory to inspect; trust the caller's evidence.
		report.Valid = wctx.TestFilesExist
		if report.Valid {
			report.Warnings = append(report.Warnings, "test evidence taken from context, not verified on disk")
		} else {
			report.Errors = append(report.Errors, "no test files reported for this task")
		}
		return report, nil
	}

	if _, err := os.Stat(wctx.WorkingDir); err != nil {
		return nil, fmt.Errorf("working directory unavailable: %w", err)
	}

	fsys := os.DirFS(wctx.WorkingDir)
	for _, glob := range v.globs {
		matches, err := doublestar.Glob(fsys, glob)
		if err != nil {
			return nil, fmt.Errorf("test glob %q failed: %w", glob, err)
		}
		if len(matches) > 0 {
			report.Valid = true
			return report, nil
		}
	}

	report.Errors = append(report.Errors,
		fmt.Sprintf("no test files found under %s", wctx.WorkingDir))
	return report, nil
}
