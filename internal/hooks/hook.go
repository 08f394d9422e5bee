// Package hooks runs the shell commands configured around a run.
// Pre-run hooks gate the run; a failing pre-run hook aborts it before
// anything is deleted. Post-run hooks are best effort and only warn.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/wexinc/shears/internal/config"
)

// Phase indicates when a hook runs relative to the removal work.
type Phase string

const (
	// PhasePreRun indicates the hook runs before anything is deleted.
	PhasePreRun Phase = "pre_run"
	// PhasePostRun indicates the hook runs after the run finishes.
	PhasePostRun Phase = "post_run"
)

// String names the phase the way config.yaml spells it.
func (p Phase) String() string {
	return string(p)
}

// Env carries the run state a hook command can read. Every field is
// exported to the command as a SHEARS_* environment variable.
type Env struct {
	// RunID identifies the current run.
	RunID string
	// ProjectDir is the project root the run operates on. Hooks run
	// with this as their working directory.
	ProjectDir string
	// DryRun reports whether deletions are suppressed.
	DryRun bool
	// DirsRemoved is the number of component directories deleted so far.
	DirsRemoved int
	// FilesRemoved is the number of files deleted so far.
	FilesRemoved int
	// DepsRemoved is the number of dependencies removed so far.
	DepsRemoved int
	// Warnings is the number of warnings accumulated so far.
	Warnings int
}

// vars returns the environment variables derived from the run state.
func (e Env) vars() []string {
	return []string{
		"SHEARS_RUN_ID=" + e.RunID,
		"SHEARS_PROJECT_DIR=" + e.ProjectDir,
		"SHEARS_DRY_RUN=" + strconv.FormatBool(e.DryRun),
		"SHEARS_DIRS_REMOVED=" + strconv.Itoa(e.DirsRemoved),
		"SHEARS_FILES_REMOVED=" + strconv.Itoa(e.FilesRemoved),
		"SHEARS_DEPS_REMOVED=" + strconv.Itoa(e.DepsRemoved),
		"SHEARS_WARNINGS=" + strconv.Itoa(e.Warnings),
	}
}

// Result represents the outcome of one hook execution.
type Result struct {
	// Name identifies the hook in logs and the report.
	Name string
	// Phase is when the hook ran.
	Phase Phase
	// Command is the shell command that was executed.
	Command string
	// Success indicates whether the command exited zero.
	Success bool
	// Output is the combined stdout and stderr, trimmed.
	Output string
	// Error contains the failure message if the hook failed.
	Error string
	// ExitCode is the command's exit code.
	ExitCode int
	// TimedOut indicates the hook was killed by its timeout.
	TimedOut bool
	// Duration is how long the command ran.
	Duration time.Duration
}

// Hook is one configured shell command with a name and a phase.
type Hook struct {
	name  string
	phase Phase
	def   config.HookDefinition
}

// NewHook creates a hook for the given definition. The definition's
// name wins over the positional fallback when it is set.
func NewHook(fallbackName string, phase Phase, def config.HookDefinition) Hook {
	name := def.Name
	if name == "" {
		name = fallbackName
	}
	return Hook{name: name, phase: phase, def: def}
}

// Name identifies the hook in logs and reports.
func (h Hook) Name() string {
	return h.name
}

// Phase reports when the hook runs.
func (h Hook) Phase() Phase {
	return h.phase
}

// Command returns the shell command the hook runs.
func (h Hook) Command() string {
	return h.def.Command
}

// Execute runs the hook command through sh in the project directory.
// The run state is injected as SHEARS_* environment variables. Command
// failures are reported in the result, not as an error; the error
// return is reserved for hooks that cannot run at all.
func (h Hook) Execute(ctx context.Context, env Env) (*Result, error) {
	if strings.TrimSpace(h.def.Command) == "" {
		return nil, fmt.Errorf("hook %s has no command", h.name)
	}

	result := &Result{
		Name:    h.name,
		Phase:   h.phase,
		Command: h.def.Command,
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", h.def.Command)
	cmd.Dir = env.ProjectDir
	cmd.Env = append(os.Environ(), env.vars()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)

	result.Output = strings.TrimSpace(stdout.String())
	if stderr.Len() > 0 {
		stderrStr := strings.TrimSpace(stderr.String())
		if result.Output != "" {
			result.Output = result.Output + "\n" + stderrStr
		} else {
			result.Output = stderrStr
		}
	}

	if err == nil {
		result.Success = true
		return result, nil
	}

	result.Error = err.Error()
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
	}
	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
	}

	return result, nil
}
