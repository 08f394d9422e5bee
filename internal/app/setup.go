// Package app orchestrates a shears run: hooks, component removal,
// dependency pruning, and the run record. This file handles the
// .shears directory layout.
package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// ShearsDir is the per-project state directory.
const ShearsDir = ".shears"

// layoutSubdirs are created under the .shears directory.
var layoutSubdirs = []string{
	"runs",
	"logs",
}

// NeedsInit returns true if the project has no .shears directory yet.
func NeedsInit(projectDir string) bool {
	_, err := os.Stat(filepath.Join(projectDir, ShearsDir))
	return os.IsNotExist(err)
}

// EnsureLayout creates the .shears directory structure. It is safe to
// call on every run.
func EnsureLayout(projectDir string) error {
	shearsDir := filepath.Join(projectDir, ShearsDir)

	if err := os.MkdirAll(shearsDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", ShearsDir, err)
	}

	for _, subdir := range layoutSubdirs {
		path := filepath.Join(shearsDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", subdir, err)
		}
	}

	return nil
}
