package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestToolNotAvailable(t *testing.T) {
	err := ToolNotAvailable("uv", "uv")

	if !errors.Is(err, ErrDepTool) {
		t.Error("ToolNotAvailable should return ErrDepTool")
	}
	if err.Details["tool"] != "uv" {
		t.Error("Should include tool name in details")
	}
	if !strings.Contains(err.Suggestion, "--skip-deps") {
		t.Error("Suggestion should mention the skip flag")
	}
}

func TestToolNotFound(t *testing.T) {
	err := ToolNotFound("poetry", []string{"uv"})

	if !errors.Is(err, ErrDepTool) {
		t.Error("ToolNotFound should return ErrDepTool")
	}
	if err.Details["requested"] != "poetry" {
		t.Error("Should include requested tool")
	}
	if err.Details["available"] != "uv" {
		t.Error("Should include available tools")
	}
}

func TestToolNotFound_NoneAvailable(t *testing.T) {
	err := ToolNotFound("poetry", nil)

	if err.Details["available"] != "none" {
		t.Errorf("available = %q, want %q", err.Details["available"], "none")
	}
}

func TestScanFailed(t *testing.T) {
	err := ScanFailed("deptry", 2, "error: pyproject.toml not found")

	if !errors.Is(err, ErrDepTool) {
		t.Error("ScanFailed should return ErrDepTool")
	}
	if err.Details["exit_code"] != "2" {
		t.Error("Should include exit code")
	}
	if err.Details["output"] != "error: pyproject.toml not found" {
		t.Error("Should include captured output")
	}
}

func TestScanFailed_TruncatesOutput(t *testing.T) {
	long := strings.Repeat("x", 600)
	err := ScanFailed("deptry", 1, long)

	if len(err.Details["output"]) != 503 {
		t.Errorf("output length = %d, want 503 (500 + ellipsis)", len(err.Details["output"]))
	}
	if !strings.HasSuffix(err.Details["output"], "...") {
		t.Error("Truncated output should end with ellipsis")
	}
}

func TestRemoveDependencyFailed(t *testing.T) {
	err := RemoveDependencyFailed("uv", "requests", 1, "not found in project")

	if !errors.Is(err, ErrDepTool) {
		t.Error("RemoveDependencyFailed should return ErrDepTool")
	}
	if !strings.Contains(err.Message, "requests") {
		t.Error("Message should name the dependency")
	}
	if !strings.Contains(err.Suggestion, "uv remove requests") {
		t.Error("Suggestion should show the manual command")
	}
}

func TestPathEscapesRoot(t *testing.T) {
	err := PathEscapesRoot("../../etc", "/project/components")

	if !errors.Is(err, ErrPath) {
		t.Error("PathEscapesRoot should return ErrPath")
	}
	if err.Details["entry"] != "../../etc" {
		t.Error("Should include offending entry")
	}
	if !strings.Contains(err.Suggestion, "..") {
		t.Error("Suggestion should mention traversal segments")
	}
}

func TestPathNotDeletable(t *testing.T) {
	cause := errors.New("permission denied")
	err := PathNotDeletable("/project/components/foo", cause)

	if !errors.Is(err, ErrPermission) {
		t.Error("PathNotDeletable should return ErrPermission")
	}
	if !errors.Is(err.Cause, cause) {
		t.Error("Should wrap the cause")
	}
}

func TestHookFailed(t *testing.T) {
	err := HookFailed("pre_run", "git diff --quiet", 1, "")

	if !errors.Is(err, ErrHook) {
		t.Error("HookFailed should return ErrHook")
	}
	if err.Details["command"] != "git diff --quiet" {
		t.Error("Should include the hook command")
	}
	if _, ok := err.Details["output"]; ok {
		t.Error("Empty output should not be included in details")
	}
}

func TestHookTimeout(t *testing.T) {
	err := HookTimeout("post_run", "1m0s")

	if !errors.Is(err, ErrTimeout) {
		t.Error("HookTimeout should return ErrTimeout")
	}
	if !strings.Contains(err.Message, "1m0s") {
		t.Error("Message should include the timeout")
	}
}
