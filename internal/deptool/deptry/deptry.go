// Package deptry provides the deptry scanner plugin for shears.
// Deptry inspects a Python project and reports declared-but-unused
// dependencies as DEP002 violations. It is preferably run through uv
// so it sees the project's own environment.
package deptry

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/errors"
)

// unusedCode is the deptry violation code for an unused dependency.
const unusedCode = "DEP002"

func init() {
	deptool.DefaultRegistry.RegisterScanner(New())
}

// Scanner implements the deptool.Scanner interface for deptry.
type Scanner struct{}

// New creates a new deptry scanner.
func New() *Scanner {
	return &Scanner{}
}

// Name returns the unique identifier for this scanner.
func (s *Scanner) Name() string {
	return "deptry"
}

// Description returns a human-readable description of the scanner.
func (s *Scanner) Description() string {
	return "finds declared-but-unused Python dependencies (DEP002)"
}

// IsAvailable checks if deptry can run, either through uv or directly.
func (s *Scanner) IsAvailable() bool {
	binary, _ := command()
	return binary != ""
}

// Scan runs deptry against the project and parses its findings. Deptry
// exits non-zero whenever it finds violations, so the exit code is
// recorded rather than treated as a failure.
func (s *Scanner) Scan(ctx context.Context, opts deptool.Options) (deptool.ScanResult, error) {
	binary, args := command()
	if binary == "" {
		return deptool.ScanResult{}, errors.ToolNotAvailable(s.Name(), "uv")
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	// Deptry writes findings to stderr and progress to stdout; both
	// streams are folded together so parsing sees every line.
	var combined bytes.Buffer
	var sink io.Writer = &combined
	if opts.LogWriter != nil {
		sink = io.MultiWriter(&combined, opts.LogWriter)
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), opts.Env...)
	}

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if ctx.Err() != nil {
		return deptool.ScanResult{}, ctx.Err()
	}

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			// The process never ran; nothing to parse.
			return deptool.ScanResult{}, errors.ScanFailed(s.Name(), exitCode, combined.String()).WithCause(err)
		}
	}

	return deptool.ScanResult{
		Unused:   ParseUnused(combined.String()),
		Output:   combined.String(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// ParseUnused extracts unused dependency names from deptry output.
// A violation line looks like:
//
//	pyproject.toml: DEP002 'flower' defined as a dependency but not used
//
// The name sits between the first pair of single quotes. Duplicate
// names are reported once, in first-seen order.
func ParseUnused(output string) []string {
	var unused []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, unusedCode) {
			continue
		}
		parts := strings.Split(line, "'")
		if len(parts) < 2 {
			continue
		}
		name := parts[1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		unused = append(unused, name)
	}

	return unused
}

// command picks how to invoke deptry: through uv when uv is on the
// path, directly when only deptry itself is installed.
func command() (string, []string) {
	if _, err := exec.LookPath("uv"); err == nil {
		return "uv", []string{"run", "deptry", "."}
	}
	if _, err := exec.LookPath("deptry"); err == nil {
		return "deptry", []string{"."}
	}
	return "", nil
}
