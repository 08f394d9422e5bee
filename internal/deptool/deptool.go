// Package deptool provides the dependency tooling plugin system for
// shears. Scanners detect declared-but-unused packages (like deptry)
// and managers remove them from the project manifest (like uv).
package deptool

import (
	"context"
	"io"
	"time"
)

// Options configures how a tool is invoked.
type Options struct {
	// WorkDir is the project directory the tool runs in.
	WorkDir string
	// LogWriter receives the tool's combined output as it streams.
	// Output is always captured in the result regardless.
	LogWriter io.Writer
	// Env holds extra environment entries appended to the inherited
	// environment.
	Env []string
}

// ScanResult is the outcome of one unused-dependency scan.
type ScanResult struct {
	// Unused are the unused dependency names, in report order.
	Unused []string `json:"unused"`
	// Output is the tool's combined stdout and stderr.
	Output string `json:"output"`
	// ExitCode is the scan process exit code. Scanners commonly exit
	// non-zero when they find violations, so this alone does not mean
	// the scan failed.
	ExitCode int `json:"exit_code"`
	// Duration is how long the scan ran.
	Duration time.Duration `json:"duration"`
}

// Suspect reports whether the scan looks like a tool failure rather
// than a clean bill: a non-zero exit with no findings to show for it.
func (r ScanResult) Suspect() bool {
	return r.ExitCode != 0 && len(r.Unused) == 0
}

// RemoveResult is the outcome of removing one dependency.
type RemoveResult struct {
	// Name is the dependency the removal targeted.
	Name string `json:"name"`
	// Removed reports whether the dependency left the manifest.
	Removed bool `json:"removed"`
	// Fallback is the extra flag that made the removal succeed, such
	// as "--optional deploy", when the plain attempt was refused.
	Fallback string `json:"fallback,omitempty"`
	// Output is the combined output of the last attempt.
	Output string `json:"output"`
	// ExitCode is the exit code of the last attempt.
	ExitCode int `json:"exit_code"`
	// Duration covers all attempts for this dependency.
	Duration time.Duration `json:"duration"`
	// Error describes the failure when Removed is false.
	Error string `json:"error,omitempty"`
}

// Scanner detects declared-but-unused dependencies in a project.
type Scanner interface {
	// Name returns the unique identifier for this scanner (e.g., "deptry").
	Name() string
	// Description returns a human-readable description of the scanner.
	Description() string
	// IsAvailable checks if the scanner can run on this system.
	IsAvailable() bool
	// Scan runs the scanner and parses its findings. A non-zero exit
	// with parseable findings is a successful scan; an error is
	// returned only when the tool could not run at all.
	Scan(ctx context.Context, opts Options) (ScanResult, error)
}

// Manager removes dependencies from the project manifest.
type Manager interface {
	// Name returns the unique identifier for this manager (e.g., "uv").
	Name() string
	// Description returns a human-readable description of the manager.
	Description() string
	// IsAvailable checks if the manager can run on this system.
	IsAvailable() bool
	// Remove removes one dependency. Refusals are reported in the
	// result; an error is returned only when the tool could not run.
	Remove(ctx context.Context, name string, opts Options) (RemoveResult, error)
}
