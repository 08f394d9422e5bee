package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/errors"
	"github.com/wexinc/shears/internal/hooks"
	"github.com/wexinc/shears/internal/logging"
	"github.com/wexinc/shears/internal/manifest"
	"github.com/wexinc/shears/internal/pyproject"
	"github.com/wexinc/shears/internal/remover"
	"github.com/wexinc/shears/internal/report"
)

// EventType identifies the type of run event.
type EventType string

const (
	EventRunStarted     EventType = "run_started"
	EventHooksStarted   EventType = "hooks_started"
	EventHooksCompleted EventType = "hooks_completed"
	EventRemovalStarted EventType = "removal_started"
	EventPathProcessed  EventType = "path_processed"
	EventScanStarted    EventType = "scan_started"
	EventScanCompleted  EventType = "scan_completed"
	EventDepProcessed   EventType = "dep_processed"
	EventWarning        EventType = "warning"
	EventRunCompleted   EventType = "run_completed"
)

// Event represents a run event for observers (progress output, logging).
type Event struct {
	Type      EventType
	Message   string
	Err       error
	Timestamp time.Time
}

// EventHandler is a callback for run events.
type EventHandler func(event Event)

// Options configures run execution.
type Options struct {
	// DryRun records what would be deleted without touching anything.
	DryRun bool
	// LogWriter receives real-time tool output (optional).
	LogWriter io.Writer
	// OnEvent is called for each run event (optional).
	OnEvent EventHandler
}

// Runner wires the full flow: pre-run hooks → component removal →
// dependency scan → dependency removal → verification → run record →
// post-run hooks. Only pre-flight failures return an error; everything
// downstream is accumulated into the report as warnings.
type Runner struct {
	cfg      *config.Config
	man      *manifest.Manifest
	registry *deptool.Registry
	hookMgr  *hooks.Manager

	projectDir string
	opts       *Options
}

// NewRunner creates a Runner for a loaded manifest. The manifest is
// loaded by the caller so parse failures surface before any
// confirmation prompt.
func NewRunner(cfg *config.Config, man *manifest.Manifest, projectDir string) *Runner {
	return &Runner{
		cfg:        cfg,
		man:        man,
		registry:   deptool.DefaultRegistry,
		hookMgr:    hooks.NewManager(cfg.Hooks),
		projectDir: projectDir,
		opts:       &Options{},
	}
}

// SetOptions sets the run options.
func (r *Runner) SetOptions(opts *Options) {
	if opts != nil {
		r.opts = opts
	}
}

// SetRegistry replaces the tool registry. Used by tests to stub out
// the external tools.
func (r *Runner) SetRegistry(reg *deptool.Registry) {
	r.registry = reg
}

// emit hands an event to the configured handler, if any.
func (r *Runner) emit(eventType EventType, message string, err error) {
	if r.opts.OnEvent != nil {
		r.opts.OnEvent(Event{
			Type:      eventType,
			Message:   message,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

// warn records a warning on the report and mirrors it to observers.
func (r *Runner) warn(rep *report.Report, message string) {
	rep.AddWarning(message)
	r.emit(EventWarning, message, nil)
	logging.Warn(message)
}

// Run executes the full flow and returns the report. The error is
// non-nil only for pre-flight failures (cancelled run, failing pre-run
// hook); every later problem lands in the report as a warning.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	rep := report.New(r.projectDir)
	rep.DryRun = r.opts.DryRun
	rep.ManifestPath = r.man.Path

	r.emit(EventRunStarted, fmt.Sprintf("run %s started", rep.RunID), nil)
	logging.Info("run started",
		"run_id", rep.RunID,
		"project", r.projectDir,
		"entries", len(r.man.Entries),
		"dry_run", r.opts.DryRun)

	if err := EnsureLayout(r.projectDir); err != nil {
		// The layout only backs the run record; removal can proceed.
		r.warn(rep, fmt.Sprintf("failed to prepare %s directory: %v", ShearsDir, err))
	}

	if err := r.runPreHooks(ctx, rep); err != nil {
		return rep, err
	}

	r.checkPyproject(rep)

	if err := r.removeComponents(ctx, rep); err != nil {
		return rep, err
	}

	if r.cfg.Deps.Skip {
		logging.Info("dependency pruning skipped by configuration")
	} else if err := r.pruneDependencies(ctx, rep); err != nil {
		return rep, err
	}

	rep.Finish()
	r.runPostHooks(ctx, rep)
	r.saveRecord(rep)

	r.emit(EventRunCompleted, fmt.Sprintf("run %s finished: %s", rep.RunID, rep.Status()), nil)
	logging.Info("run finished",
		"run_id", rep.RunID,
		"status", string(rep.Status()),
		"dirs_removed", rep.DirsRemoved(),
		"files_removed", rep.FilesRemoved(),
		"deps_removed", rep.DepsRemoved(),
		"warnings", len(rep.Warnings))

	return rep, nil
}

// runPreHooks executes the pre-run hooks. A failing hook aborts the
// run before anything is deleted.
func (r *Runner) runPreHooks(ctx context.Context, rep *report.Report) error {
	if !r.hookMgr.HasPreRunHooks() {
		return nil
	}

	r.emit(EventHooksStarted, "running pre-run hooks", nil)
	_, err := r.hookMgr.RunPreRun(ctx, r.hookEnv(rep))
	if err != nil {
		r.emit(EventHooksCompleted, "pre-run hooks failed", err)
		return err
	}
	r.emit(EventHooksCompleted, "pre-run hooks passed", nil)
	return nil
}

// checkPyproject records what the project manifest declares before
// anything is removed. A missing or broken pyproject only matters when
// the dependency phase is going to run.
func (r *Runner) checkPyproject(rep *report.Report) {
	py, err := pyproject.Load(r.projectDir)
	if err != nil {
		if r.cfg.Deps.Skip {
			return
		}
		if os.IsNotExist(err) {
			r.warn(rep, fmt.Sprintf("no %s in %s; dependency pruning will have nothing to edit", pyproject.FileName, r.projectDir))
		} else {
			r.warn(rep, err.Error())
		}
		return
	}

	logging.Info("project manifest loaded",
		"name", py.Name,
		"declared_deps", py.Count())
}

// removeComponents applies every manifest entry in document order.
func (r *Runner) removeComponents(ctx context.Context, rep *report.Report) error {
	componentsDir := r.cfg.ComponentsPath(r.projectDir)
	rem := remover.New(componentsDir, r.opts.DryRun)

	r.emit(EventRemovalStarted, fmt.Sprintf("removing %d entries under %s", len(r.man.Entries), componentsDir), nil)

	for _, entry := range r.man.Entries {
		if ctx.Err() != nil {
			return errors.ContextCancelled("component removal")
		}

		removals := rem.Apply(entry)
		for _, removal := range removals {
			rep.AddRemoval(removal)
			r.emit(EventPathProcessed, describeRemoval(removal), nil)
			logging.Debug("path processed",
				"path", removal.Path,
				"kind", string(removal.Kind),
				"outcome", string(removal.Outcome))
			if removal.Outcome == remover.OutcomeNotFound || removal.Outcome == remover.OutcomeFailed {
				r.emit(EventWarning, removal.Reason, nil)
				logging.Warn(removal.Reason)
			}
		}
	}

	return nil
}

// pruneDependencies scans for unused dependencies and removes each one.
// Tool failures are warnings; the run keeps whatever it achieved.
func (r *Runner) pruneDependencies(ctx context.Context, rep *report.Report) error {
	if ctx.Err() != nil {
		return errors.ContextCancelled("dependency scan")
	}

	scanner, err := r.registry.SelectScanner(r.cfg.Deps.Scanner)
	if err != nil {
		r.warn(rep, fmt.Sprintf("dependency scan skipped: %v", err))
		return nil
	}

	r.emit(EventScanStarted, fmt.Sprintf("scanning for unused dependencies with %s", scanner.Name()), nil)
	scan, err := scanner.Scan(ctx, deptool.Options{
		WorkDir:   r.projectDir,
		LogWriter: r.opts.LogWriter,
	})
	if err != nil {
		if ctx.Err() != nil {
			return errors.ContextCancelled("dependency scan")
		}
		r.warn(rep, fmt.Sprintf("dependency scan failed: %v", err))
		return nil
	}

	rep.SetScan(scanner.Name(), scan)
	r.emit(EventScanCompleted, fmt.Sprintf("%s found %d unused dependencies", scanner.Name(), len(scan.Unused)), nil)
	logging.Info("scan finished",
		"scanner", scanner.Name(),
		"unused", len(scan.Unused),
		"exit_code", scan.ExitCode)

	if len(scan.Unused) == 0 || r.opts.DryRun {
		return nil
	}

	manager, err := r.registry.SelectManager(r.cfg.Deps.Manager)
	if err != nil {
		r.warn(rep, fmt.Sprintf("dependency removal skipped: %v", err))
		return nil
	}
	rep.Manager = manager.Name()

	for _, dep := range scan.Unused {
		if ctx.Err() != nil {
			return errors.ContextCancelled("dependency removal")
		}

		result, err := manager.Remove(ctx, dep, deptool.Options{
			WorkDir:   r.projectDir,
			LogWriter: r.opts.LogWriter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return errors.ContextCancelled("dependency removal")
			}
			result = deptool.RemoveResult{Name: dep, Error: err.Error()}
		}

		rep.AddDepRemoval(result)
		r.emit(EventDepProcessed, describeDepRemoval(result), nil)
		logging.Info("dependency processed",
			"dep", dep,
			"removed", result.Removed,
			"fallback", result.Fallback)
	}

	r.verifyRemovals(rep)
	return nil
}

// verifyRemovals re-reads pyproject.toml and flags dependencies that
// are still declared after a reported removal.
func (r *Runner) verifyRemovals(rep *report.Report) {
	py, err := pyproject.Load(r.projectDir)
	if err != nil {
		r.warn(rep, fmt.Sprintf("could not verify removals against %s: %v", pyproject.FileName, err))
		return
	}

	for _, result := range rep.DepRemovals {
		if result.Removed && py.Has(result.Name) {
			r.warn(rep, fmt.Sprintf("dependency %s is still listed in %s after removal", result.Name, pyproject.FileName))
		}
	}
}

// runPostHooks executes the post-run hooks with the final tallies.
// Failures become warnings so they still show in the summary.
func (r *Runner) runPostHooks(ctx context.Context, rep *report.Report) {
	if !r.hookMgr.HasPostRunHooks() {
		return
	}

	r.emit(EventHooksStarted, "running post-run hooks", nil)
	results := r.hookMgr.RunPostRun(ctx, r.hookEnv(rep))
	for _, result := range results {
		if !result.Success {
			r.warn(rep, fmt.Sprintf("post-run hook %s failed: %s", result.Name, result.Error))
		}
	}
	r.emit(EventHooksCompleted, "post-run hooks finished", nil)
}

// saveRecord persists the run record when configured to.
func (r *Runner) saveRecord(rep *report.Report) {
	if !r.cfg.Output.SaveRuns {
		return
	}

	store := report.NewStore(r.projectDir, r.cfg.Output.MaxRuns)
	path, err := store.Save(rep)
	if err != nil {
		r.warn(rep, fmt.Sprintf("failed to save run record: %v", err))
		return
	}
	logging.Debug("run record saved", "path", path)
}

// hookEnv builds the environment passed to hook commands.
func (r *Runner) hookEnv(rep *report.Report) hooks.Env {
	return hooks.Env{
		RunID:        rep.RunID,
		ProjectDir:   r.projectDir,
		DryRun:       rep.DryRun,
		DirsRemoved:  rep.DirsRemoved(),
		FilesRemoved: rep.FilesRemoved(),
		DepsRemoved:  rep.DepsRemoved(),
		Warnings:     len(rep.Warnings),
	}
}

// describeRemoval builds a short progress line for a filesystem action.
func describeRemoval(removal remover.Removal) string {
	switch removal.Outcome {
	case remover.OutcomeRemoved:
		return fmt.Sprintf("removed %s %s", removal.Kind, removal.Path)
	case remover.OutcomeWouldRemove:
		return fmt.Sprintf("would remove %s %s", removal.Kind, removal.Path)
	default:
		return removal.Reason
	}
}

// describeDepRemoval builds a short progress line for a dependency action.
func describeDepRemoval(result deptool.RemoveResult) string {
	switch {
	case result.Removed && result.Fallback != "":
		return fmt.Sprintf("removed dependency %s (%s)", result.Name, result.Fallback)
	case result.Removed:
		return fmt.Sprintf("removed dependency %s", result.Name)
	default:
		return fmt.Sprintf("failed to remove dependency %s", result.Name)
	}
}
