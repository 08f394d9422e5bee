// Package uv provides the uv manager plugin for shears. Uv edits the
// project's pyproject.toml and lockfile when asked to remove a
// dependency, and its refusals carry a hint naming the flag that would
// make the removal legal (optional extra, dependency group, or dev).
package uv

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"time"

	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/errors"
)

// Refusal hints in uv's output. The exact phrasing is "try calling
// `uv remove --optional <group>`", with the dependency name sometimes
// spliced in between.
var (
	optionalHintRE = regexp.MustCompile("`uv remove[^`]*--optional ([^`\\s]+)`")
	groupHintRE    = regexp.MustCompile("`uv remove[^`]*--group ([^`\\s]+)`")
	devHintRE      = regexp.MustCompile("`uv remove[^`]*--dev`")
)

func init() {
	deptool.DefaultRegistry.RegisterManager(New())
}

// Manager implements the deptool.Manager interface for uv.
type Manager struct{}

// New creates a new uv manager.
func New() *Manager {
	return &Manager{}
}

// Name returns the unique identifier for this manager.
func (m *Manager) Name() string {
	return "uv"
}

// Description returns a human-readable description of the manager.
func (m *Manager) Description() string {
	return "removes dependencies from pyproject.toml via the uv CLI"
}

// IsAvailable checks if the uv CLI is installed.
func (m *Manager) IsAvailable() bool {
	_, err := exec.LookPath("uv")
	return err == nil
}

// Remove removes one dependency from the project manifest. When the
// plain removal is refused and the refusal names a section flag, the
// removal is retried once with that flag.
func (m *Manager) Remove(ctx context.Context, name string, opts deptool.Options) (deptool.RemoveResult, error) {
	if !m.IsAvailable() {
		return deptool.RemoveResult{}, errors.ToolNotAvailable(m.Name(), "uv")
	}

	start := time.Now()

	output, exitCode, err := m.run(ctx, opts, "remove", name)
	if err != nil {
		if ctx.Err() != nil {
			return deptool.RemoveResult{}, err
		}
		return deptool.RemoveResult{}, errors.RemoveDependencyFailed(m.Name(), name, exitCode, output).WithCause(err)
	}
	if exitCode == 0 {
		return deptool.RemoveResult{
			Name:     name,
			Removed:  true,
			Output:   output,
			ExitCode: exitCode,
			Duration: time.Since(start),
		}, nil
	}

	flags, label := parseHint(output)
	if flags == nil {
		return deptool.RemoveResult{
			Name:     name,
			Removed:  false,
			Output:   output,
			ExitCode: exitCode,
			Duration: time.Since(start),
			Error:    fmt.Sprintf("uv remove exited with code %d and no usable hint", exitCode),
		}, nil
	}

	retryArgs := append([]string{"remove", name}, flags...)
	retryOutput, retryCode, err := m.run(ctx, opts, retryArgs...)
	if err != nil {
		if ctx.Err() != nil {
			return deptool.RemoveResult{}, err
		}
		return deptool.RemoveResult{}, errors.RemoveDependencyFailed(m.Name(), name, retryCode, retryOutput).WithCause(err)
	}

	result := deptool.RemoveResult{
		Name:     name,
		Output:   retryOutput,
		ExitCode: retryCode,
		Duration: time.Since(start),
	}
	if retryCode == 0 {
		result.Removed = true
		result.Fallback = label
	} else {
		result.Error = fmt.Sprintf("uv remove %s exited with code %d", label, retryCode)
	}
	return result, nil
}

// run invokes uv with the given arguments and returns its combined
// output and exit code. An error means the process could not run.
func (m *Manager) run(ctx context.Context, opts deptool.Options, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "uv", args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

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

	err := cmd.Run()
	if ctx.Err() != nil {
		return combined.String(), -1, ctx.Err()
	}

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			// The process never ran.
			return combined.String(), exitCode, err
		}
	}

	return combined.String(), exitCode, nil
}

// parseHint extracts the retry flag named by a refusal, if any.
// Returns the extra arguments and a display label.
func parseHint(output string) ([]string, string) {
	if m := optionalHintRE.FindStringSubmatch(output); len(m) > 1 {
		return []string{"--optional", m[1]}, "--optional " + m[1]
	}
	if m := groupHintRE.FindStringSubmatch(output); len(m) > 1 {
		return []string{"--group", m[1]}, "--group " + m[1]
	}
	if devHintRE.MatchString(output) {
		return []string{"--dev"}, "--dev"
	}
	return nil, ""
}
