package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/errors"
	"github.com/wexinc/shears/internal/manifest"
	"github.com/wexinc/shears/internal/report"
)

// fakeScanner is a controllable Scanner for runner tests.
type fakeScanner struct {
	name      string
	available bool
	result    deptool.ScanResult
	err       error
	calls     int
}

func (s *fakeScanner) Name() string        { return s.name }
func (s *fakeScanner) Description() string { return "fake scanner" }
func (s *fakeScanner) IsAvailable() bool   { return s.available }

func (s *fakeScanner) Scan(ctx context.Context, opts deptool.Options) (deptool.ScanResult, error) {
	s.calls++
	return s.result, s.err
}

// fakeManager is a controllable Manager for runner tests.
type fakeManager struct {
	name      string
	available bool
	removeFn  func(dir, dep string) deptool.RemoveResult
	removed   []string
}

func (m *fakeManager) Name() string        { return m.name }
func (m *fakeManager) Description() string { return "fake manager" }
func (m *fakeManager) IsAvailable() bool   { return m.available }

func (m *fakeManager) Remove(ctx context.Context, name string, opts deptool.Options) (deptool.RemoveResult, error) {
	m.removed = append(m.removed, name)
	if m.removeFn != nil {
		return m.removeFn(opts.WorkDir, name), nil
	}
	return deptool.RemoveResult{Name: name, Removed: true}, nil
}

var (
	_ deptool.Scanner = (*fakeScanner)(nil)
	_ deptool.Manager = (*fakeManager)(nil)
)

// writeProject creates a project tree with the given component files.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// writePyproject writes a minimal pyproject.toml declaring the deps.
func writePyproject(t *testing.T, dir string, deps ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("[project]\nname = \"demo\"\nversion = \"0.1.0\"\ndependencies = [\n")
	for _, dep := range deps {
		fmt.Fprintf(&b, "    %q,\n", dep)
	}
	b.WriteString("]\n")
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}

// testConfig returns a config pointing at the fake tools, with run
// records disabled so tests stay quiet.
func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Deps.Scanner = "fakescan"
	cfg.Deps.Manager = "fakemgr"
	cfg.Output.SaveRuns = false
	return cfg
}

func toolRegistry(s deptool.Scanner, m deptool.Manager) *deptool.Registry {
	reg := deptool.NewRegistry()
	if s != nil {
		reg.RegisterScanner(s)
	}
	if m != nil {
		reg.RegisterManager(m)
	}
	return reg
}

func newTestRunner(cfg *config.Config, man *manifest.Manifest, dir string, reg *deptool.Registry) *Runner {
	r := NewRunner(cfg, man, dir)
	r.SetRegistry(reg)
	return r
}

func TestRunner_Run(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chains/chain.py":  "chain",
		"chains/base.py":   "base",
		"agents/agent.py":  "agent",
		"memory/legacy.py": "legacy",
		"memory/keep.py":   "keep",
	})
	writePyproject(t, dir, "fastapi>=0.100", "orjson")

	man := &manifest.Manifest{
		Path: filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{
			{Kind: manifest.EntryDirectory, Name: "chains"},
			{Kind: manifest.EntryFiles, Name: "memory", Files: []string{"legacy.py"}},
		},
	}

	scanner := &fakeScanner{
		name:      "fakescan",
		available: true,
		result:    deptool.ScanResult{Unused: []string{"orjson"}, ExitCode: 1},
	}
	manager := &fakeManager{
		name:      "fakemgr",
		available: true,
		removeFn: func(projectDir, dep string) deptool.RemoveResult {
			// Mimic uv rewriting the manifest without the dep.
			writePyproject(t, projectDir, "fastapi>=0.100")
			return deptool.RemoveResult{Name: dep, Removed: true}
		},
	}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, manager))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exists(t, filepath.Join(dir, "chains")) {
		t.Error("Expected chains to be deleted")
	}
	if !exists(t, filepath.Join(dir, "agents", "agent.py")) {
		t.Error("Expected agents to survive")
	}
	if exists(t, filepath.Join(dir, "memory", "legacy.py")) {
		t.Error("Expected memory/legacy.py to be deleted")
	}
	if !exists(t, filepath.Join(dir, "memory", "keep.py")) {
		t.Error("Expected memory/keep.py to survive")
	}

	if rep.DirsRemoved() != 1 {
		t.Errorf("Expected 1 directory removed, got %d", rep.DirsRemoved())
	}
	if rep.FilesRemoved() != 1 {
		t.Errorf("Expected 1 file removed, got %d", rep.FilesRemoved())
	}
	if rep.DepsRemoved() != 1 {
		t.Errorf("Expected 1 dependency removed, got %d", rep.DepsRemoved())
	}
	if len(manager.removed) != 1 || manager.removed[0] != "orjson" {
		t.Errorf("Expected the manager to remove orjson, got %v", manager.removed)
	}
	if rep.Status() != report.StatusCompleted {
		t.Errorf("Expected a clean run, got status %q with warnings %v", rep.Status(), rep.Warnings)
	}
}

func TestRunner_Run_SavesRecord(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Deps.Skip = true
	cfg.Output.SaveRuns = true

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	runner := newTestRunner(cfg, man, dir, toolRegistry(nil, nil))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	store := report.NewStore(dir, 0)
	runs, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0] != rep.RunID {
		t.Errorf("Expected the run record %q to be saved, got %v", rep.RunID, runs)
	}
}

func TestRunner_Run_DryRun(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chains/chain.py": "chain",
	})
	writePyproject(t, dir, "orjson")

	man := &manifest.Manifest{
		Path:    filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{{Kind: manifest.EntryDirectory, Name: "chains"}},
	}
	scanner := &fakeScanner{
		name:      "fakescan",
		available: true,
		result:    deptool.ScanResult{Unused: []string{"orjson"}, ExitCode: 1},
	}
	manager := &fakeManager{name: "fakemgr", available: true}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, manager))
	runner.SetOptions(&Options{DryRun: true})

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exists(t, filepath.Join(dir, "chains", "chain.py")) {
		t.Error("Expected a dry run to delete nothing")
	}
	if scanner.calls != 1 {
		t.Errorf("Expected the scan to run, got %d calls", scanner.calls)
	}
	if len(manager.removed) != 0 {
		t.Errorf("Expected no dependency removals in a dry run, got %v", manager.removed)
	}
	if rep.DirsPending() != 1 {
		t.Errorf("Expected 1 pending directory, got %d", rep.DirsPending())
	}
	if rep.Status() != report.StatusDryRun {
		t.Errorf("Expected dry run status, got %q", rep.Status())
	}
}

func TestRunner_Run_SkipDeps(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Deps.Skip = true

	scanner := &fakeScanner{name: "fakescan", available: true}
	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}

	runner := newTestRunner(cfg, man, dir, toolRegistry(scanner, nil))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if scanner.calls != 0 {
		t.Errorf("Expected no scan, got %d calls", scanner.calls)
	}
	if rep.Scanner != "" {
		t.Errorf("Expected no scanner in the report, got %q", rep.Scanner)
	}
}

func TestRunner_Run_MissingPathWarns(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"agents/agent.py": "agent",
	})
	writePyproject(t, dir)

	man := &manifest.Manifest{
		Path: filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{
			{Kind: manifest.EntryDirectory, Name: "ghost"},
			{Kind: manifest.EntryDirectory, Name: "agents"},
		},
	}
	scanner := &fakeScanner{name: "fakescan", available: true}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, nil))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected missing paths to warn, not fail: %v", err)
	}

	if exists(t, filepath.Join(dir, "agents")) {
		t.Error("Expected agents to be deleted after the missing entry")
	}
	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "directory not found: ghost") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a not-found warning, got %v", rep.Warnings)
	}
	if rep.Status() != report.StatusCompletedWithWarnings {
		t.Errorf("Expected completed_with_warnings, got %q", rep.Status())
	}
}

func TestRunner_Run_EmptyManifest(t *testing.T) {
	dir := t.TempDir()
	writePyproject(t, dir, "fastapi>=0.100")

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	scanner := &fakeScanner{name: "fakescan", available: true}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, nil))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(rep.Removals) != 0 {
		t.Errorf("Expected no removals, got %d", len(rep.Removals))
	}
	if scanner.calls != 1 {
		t.Errorf("Expected the scan to still run, got %d calls", scanner.calls)
	}
	if rep.Status() != report.StatusCompleted {
		t.Errorf("Expected a clean run, got %q with warnings %v", rep.Status(), rep.Warnings)
	}
}

func TestRunner_Run_PreHookFailureAborts(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chains/chain.py": "chain",
	})
	cfg := testConfig()
	cfg.Hooks.PreRun = []config.HookDefinition{{Name: "gate", Command: "exit 1"}}

	man := &manifest.Manifest{
		Path:    filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{{Kind: manifest.EntryDirectory, Name: "chains"}},
	}
	scanner := &fakeScanner{name: "fakescan", available: true}

	runner := newTestRunner(cfg, man, dir, toolRegistry(scanner, nil))
	_, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Expected a pre-run hook failure to abort the run")
	}
	if !stderrors.Is(err, errors.ErrHook) {
		t.Errorf("Expected a hook error, got %v", err)
	}

	if !exists(t, filepath.Join(dir, "chains", "chain.py")) {
		t.Error("Expected nothing to be deleted after a pre-run hook failure")
	}
	if scanner.calls != 0 {
		t.Errorf("Expected no scan after a pre-run hook failure, got %d calls", scanner.calls)
	}
}

func TestRunner_Run_PostHookFailureWarns(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Deps.Skip = true
	cfg.Hooks.PostRun = []config.HookDefinition{{Name: "notify", Command: "exit 1"}}

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	runner := newTestRunner(cfg, man, dir, toolRegistry(nil, nil))

	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected a post-run hook failure to warn, not fail: %v", err)
	}

	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "post-run hook notify failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a post-run hook warning, got %v", rep.Warnings)
	}
}

func TestRunner_Run_ScannerUnavailable(t *testing.T) {
	dir := t.TempDir()
	writePyproject(t, dir)

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	scanner := &fakeScanner{name: "fakescan", available: false}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, nil))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected an unavailable scanner to warn, not fail: %v", err)
	}

	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "dependency scan skipped") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a scan-skipped warning, got %v", rep.Warnings)
	}
	if scanner.calls != 0 {
		t.Errorf("Expected no scan calls, got %d", scanner.calls)
	}
}

func TestRunner_Run_NoPyprojectWarns(t *testing.T) {
	dir := t.TempDir()

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	scanner := &fakeScanner{name: "fakescan", available: true}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, nil))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "no pyproject.toml") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a missing pyproject warning, got %v", rep.Warnings)
	}
}

func TestRunner_Run_VerifyFlagsLingeringDep(t *testing.T) {
	dir := t.TempDir()
	writePyproject(t, dir, "orjson")

	man := &manifest.Manifest{Path: filepath.Join(dir, "component_config.yml")}
	scanner := &fakeScanner{
		name:      "fakescan",
		available: true,
		result:    deptool.ScanResult{Unused: []string{"orjson"}, ExitCode: 1},
	}
	// Claims success but leaves pyproject.toml untouched.
	manager := &fakeManager{name: "fakemgr", available: true}

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, manager))
	rep, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "orjson is still listed in pyproject.toml") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a verification warning, got %v", rep.Warnings)
	}
}

func TestRunner_Run_Events(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chains/chain.py": "chain",
	})
	writePyproject(t, dir)

	man := &manifest.Manifest{
		Path:    filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{{Kind: manifest.EntryDirectory, Name: "chains"}},
	}
	scanner := &fakeScanner{name: "fakescan", available: true}

	var events []EventType
	runner := newTestRunner(testConfig(), man, dir, toolRegistry(scanner, nil))
	runner.SetOptions(&Options{
		OnEvent: func(e Event) {
			events = append(events, e.Type)
		},
	})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("Expected events to be emitted")
	}
	if events[0] != EventRunStarted {
		t.Errorf("Expected the first event to be run_started, got %q", events[0])
	}
	if events[len(events)-1] != EventRunCompleted {
		t.Errorf("Expected the last event to be run_completed, got %q", events[len(events)-1])
	}

	seen := map[EventType]bool{}
	for _, e := range events {
		seen[e] = true
	}
	for _, want := range []EventType{EventRemovalStarted, EventPathProcessed, EventScanStarted, EventScanCompleted} {
		if !seen[want] {
			t.Errorf("Expected a %q event, got %v", want, events)
		}
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chains/chain.py": "chain",
	})

	man := &manifest.Manifest{
		Path:    filepath.Join(dir, "component_config.yml"),
		Entries: []manifest.Entry{{Kind: manifest.EntryDirectory, Name: "chains"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(testConfig(), man, dir, toolRegistry(nil, nil))
	_, err := runner.Run(ctx)
	if err == nil {
		t.Fatal("Expected an error for a cancelled run")
	}
	if !stderrors.Is(err, errors.ErrTimeout) {
		t.Errorf("Expected a cancellation error, got %v", err)
	}

	if !exists(t, filepath.Join(dir, "chains", "chain.py")) {
		t.Error("Expected nothing to be deleted after cancellation")
	}
}
