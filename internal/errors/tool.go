// Package errors provides error types for shears.
// This file contains dependency tool, removal path, and hook errors.
// None of these are fatal: they surface as report warnings.
package errors

import (
	"fmt"
	"strings"
)

// Dependency tool error constructors.

// ToolNotAvailable creates an error for a scanner or manager whose binary
// is not installed.
func ToolNotAvailable(toolName, binary string) *ShearsError {
	return &ShearsError{
		Kind:    ErrDepTool,
		Message: fmt.Sprintf("dependency tool %q is not available on this system", toolName),
		Details: map[string]string{
			"tool":   toolName,
			"binary": binary,
		},
		Suggestion: fmt.Sprintf(`Install the %s CLI:
  • uv: https://docs.astral.sh/uv/getting-started/installation/
  • deptry: uv add --dev deptry (or pip install deptry)

Verify with: %s --version
Or skip dependency pruning entirely: shears run --skip-deps`, toolName, binary),
	}
}

// ToolNotFound creates an error for a requested tool that is not registered.
func ToolNotFound(toolName string, available []string) *ShearsError {
	list := "none"
	if len(available) > 0 {
		list = strings.Join(available, ", ")
	}
	return &ShearsError{
		Kind:    ErrDepTool,
		Message: fmt.Sprintf("dependency tool %q not found", toolName),
		Details: map[string]string{
			"requested": toolName,
			"available": list,
		},
		Suggestion: fmt.Sprintf("Use one of the registered tools: %s\nList them with: shears tools", list),
	}
}

// ScanFailed creates an error for a dependency scan that could not run.
func ScanFailed(scannerName string, exitCode int, output string) *ShearsError {
	err := &ShearsError{
		Kind:    ErrDepTool,
		Message: fmt.Sprintf("%s scan failed", scannerName),
		Details: map[string]string{
			"scanner":   scannerName,
			"exit_code": fmt.Sprintf("%d", exitCode),
		},
		Suggestion: `The unused-dependency scan did not produce usable results.
The removal run itself is unaffected; prune dependencies manually or
re-run once the scanner works:
  uv run deptry .`,
	}
	if output = truncateOutput(output); output != "" {
		err.Details["output"] = output
	}
	return err
}

// RemoveDependencyFailed creates an error for a dependency removal that the
// manager rejected.
func RemoveDependencyFailed(managerName, dep string, exitCode int, output string) *ShearsError {
	err := &ShearsError{
		Kind:    ErrDepTool,
		Message: fmt.Sprintf("failed to remove dependency %q", dep),
		Details: map[string]string{
			"manager":    managerName,
			"dependency": dep,
			"exit_code":  fmt.Sprintf("%d", exitCode),
		},
		Suggestion: fmt.Sprintf(`Remove it manually and inspect the manager's output:
  %s remove %s

Remaining dependencies are still processed.`, managerName, dep),
	}
	if output = truncateOutput(output); output != "" {
		err.Details["output"] = output
	}
	return err
}

// Removal path error constructors.

// PathEscapesRoot creates an error for an entry that resolves outside the
// components directory.
func PathEscapesRoot(entry, root string) *ShearsError {
	return &ShearsError{
		Kind:    ErrPath,
		Message: fmt.Sprintf("entry %q resolves outside %s", entry, root),
		Details: map[string]string{
			"entry": entry,
			"root":  root,
		},
		Suggestion: `Entries must be plain names relative to the components directory.
Remove absolute paths, drive letters, and ".." segments from the manifest.`,
	}
}

// PathNotDeletable creates an error for a deletion the filesystem refused.
func PathNotDeletable(path string, cause error) *ShearsError {
	return &ShearsError{
		Kind:    ErrPermission,
		Message: fmt.Sprintf("could not delete %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `Check ownership and permissions on the path:
  ls -la ` + path,
	}
}

// Hook error constructors.

// HookFailed creates an error for a hook command that exited non-zero.
func HookFailed(name, command string, exitCode int, output string) *ShearsError {
	err := &ShearsError{
		Kind:    ErrHook,
		Message: fmt.Sprintf("%s hook failed", name),
		Details: map[string]string{
			"hook":      name,
			"command":   command,
			"exit_code": fmt.Sprintf("%d", exitCode),
		},
		Suggestion: `Run the hook command by hand to debug it, or remove it from
.shears/config.yaml under hooks:`,
	}
	if output = truncateOutput(output); output != "" {
		err.Details["output"] = output
	}
	return err
}

// HookTimeout creates an error for a hook that exceeded its timeout.
func HookTimeout(name string, timeout string) *ShearsError {
	return &ShearsError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s hook timed out after %s", name, timeout),
		Details: map[string]string{
			"hook":    name,
			"timeout": timeout,
		},
		Suggestion: `Increase the hook timeout in .shears/config.yaml:
  hooks:
    timeout: 5m`,
	}
}

// truncateOutput keeps captured command output short enough for a report line.
func truncateOutput(out string) string {
	out = strings.TrimSpace(out)
	if len(out) > 500 {
		out = out[:500] + "..."
	}
	return out
}
