package hooks

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/errors"
)

func managerConfig(pre, post []config.HookDefinition) config.HooksConfig {
	return config.HooksConfig{
		PreRun:  pre,
		PostRun: post,
		Timeout: time.Minute,
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(managerConfig(
		[]config.HookDefinition{{Name: "git-check", Command: "git status"}},
		[]config.HookDefinition{{Command: "make fmt"}, {Command: "make lint"}},
	))

	if !m.HasPreRunHooks() {
		t.Error("Expected pre-run hooks")
	}
	if !m.HasPostRunHooks() {
		t.Error("Expected post-run hooks")
	}
	if len(m.PreRunHooks()) != 1 {
		t.Errorf("Expected 1 pre-run hook, got %d", len(m.PreRunHooks()))
	}
	if len(m.PostRunHooks()) != 2 {
		t.Errorf("Expected 2 post-run hooks, got %d", len(m.PostRunHooks()))
	}
	if got := m.PreRunHooks()[0].Name(); got != "git-check" {
		t.Errorf("Expected hook name git-check, got %q", got)
	}
	if got := m.PostRunHooks()[1].Name(); got != "post_run[1]" {
		t.Errorf("Expected hook name post_run[1], got %q", got)
	}
}

func TestNewManager_Empty(t *testing.T) {
	m := NewManager(config.HooksConfig{Timeout: time.Minute})

	if m.HasPreRunHooks() || m.HasPostRunHooks() {
		t.Error("Expected no hooks")
	}
	results, err := m.RunPreRun(context.Background(), Env{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("RunPreRun failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestManager_RunPreRun(t *testing.T) {
	m := NewManager(managerConfig(
		[]config.HookDefinition{
			{Command: "echo first"},
			{Command: "echo second"},
		},
		nil,
	))

	results, err := m.RunPreRun(context.Background(), Env{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("RunPreRun failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Output != "first" || results[1].Output != "second" {
		t.Errorf("Expected hooks to run in order, got %+v", results)
	}
}

func TestManager_RunPreRun_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(managerConfig(
		[]config.HookDefinition{
			{Name: "gate", Command: "exit 1"},
			{Command: "touch ran-anyway"},
		},
		nil,
	))

	results, err := m.RunPreRun(context.Background(), Env{ProjectDir: dir})
	if err == nil {
		t.Fatal("Expected an error from the failing hook")
	}
	if !stderrors.Is(err, errors.ErrHook) {
		t.Errorf("Expected a hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), "gate hook failed") {
		t.Errorf("Expected the hook name in the error, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
	if _, statErr := os.Stat(filepath.Join(dir, "ran-anyway")); statErr == nil {
		t.Error("Expected the second hook to be skipped")
	}
}

func TestManager_RunPreRun_Timeout(t *testing.T) {
	m := NewManager(config.HooksConfig{
		PreRun:  []config.HookDefinition{{Name: "slow", Command: "sleep 5"}},
		Timeout: 100 * time.Millisecond,
	})

	_, err := m.RunPreRun(context.Background(), Env{ProjectDir: t.TempDir()})
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
	if !stderrors.Is(err, errors.ErrTimeout) {
		t.Errorf("Expected a timeout error, got %v", err)
	}
	if !strings.Contains(err.Error(), "slow hook timed out") {
		t.Errorf("Expected the hook name in the error, got %v", err)
	}
}

func TestManager_RunPreRun_Cancelled(t *testing.T) {
	m := NewManager(managerConfig(
		[]config.HookDefinition{{Command: "echo never"}},
		nil,
	))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := m.RunPreRun(ctx, Env{ProjectDir: t.TempDir()})
	if err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}
	if !stderrors.Is(err, errors.ErrTimeout) {
		t.Errorf("Expected a cancellation error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestManager_RunPostRun_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(managerConfig(
		nil,
		[]config.HookDefinition{
			{Name: "notify", Command: "exit 1"},
			{Command: "touch still-ran"},
		},
	))

	results := m.RunPostRun(context.Background(), Env{ProjectDir: dir})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Success {
		t.Error("Expected the first hook to fail")
	}
	if !results[1].Success {
		t.Errorf("Expected the second hook to succeed, got %+v", results[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "still-ran")); err != nil {
		t.Error("Expected the second hook to run despite the first failing")
	}
}

func TestManager_Logger(t *testing.T) {
	var logged []*Result
	m := NewManager(managerConfig(
		[]config.HookDefinition{{Command: "echo one"}},
		[]config.HookDefinition{{Command: "echo two"}},
	))
	m.Logger = func(result *Result) {
		logged = append(logged, result)
	}

	env := Env{ProjectDir: t.TempDir()}
	if _, err := m.RunPreRun(context.Background(), env); err != nil {
		t.Fatalf("RunPreRun failed: %v", err)
	}
	m.RunPostRun(context.Background(), env)

	if len(logged) != 2 {
		t.Fatalf("Expected 2 logged results, got %d", len(logged))
	}
	if logged[0].Phase != PhasePreRun || logged[1].Phase != PhasePostRun {
		t.Errorf("Expected one result per phase, got %+v", logged)
	}
}
