// Package report accumulates everything a run did and renders the
// summary for people and machines. A report is the only state shared
// across the phases of a run; each phase appends to it and the command
// renders it once at the end.
package report

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wexinc/shears/internal/deptool"
	"github.com/wexinc/shears/internal/remover"
)

// RunIDPrefix is the prefix for run IDs.
const RunIDPrefix = "shears"

// RunIDLength is the number of random hex characters in a run ID.
const RunIDLength = 8

// GenerateRunID creates a unique run ID.
// Format: shears-YYYYMMDD-HHMMSS-XXXXXXXX.
func GenerateRunID() string {
	now := time.Now()
	datePart := now.Format("20060102-150405")

	randomBytes := make([]byte, RunIDLength/2)
	if _, err := rand.Read(randomBytes); err != nil {
		// Fallback to a timestamp suffix if crypto/rand fails.
		return fmt.Sprintf("%s-%s-%d", RunIDPrefix, datePart, now.UnixNano()%100000000)
	}

	return fmt.Sprintf("%s-%s-%s", RunIDPrefix, datePart, hex.EncodeToString(randomBytes))
}

// Status summarizes how a run ended.
type Status string

const (
	// StatusCompleted means every action succeeded.
	StatusCompleted Status = "completed"
	// StatusCompletedWithWarnings means the run finished but some
	// paths were missing or some actions failed.
	StatusCompletedWithWarnings Status = "completed_with_warnings"
	// StatusDryRun means nothing was deleted.
	StatusDryRun Status = "dry_run"
)

// Report records one run of the tool.
type Report struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`
	// ProjectDir is the project the run operated on.
	ProjectDir string `json:"project_dir"`
	// ManifestPath is the component manifest that drove the run.
	ManifestPath string `json:"manifest_path"`
	// DryRun reports whether deletions were suppressed.
	DryRun bool `json:"dry_run"`
	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the run finished.
	EndTime time.Time `json:"end_time"`
	// Removals are the filesystem actions, in manifest order.
	Removals []remover.Removal `json:"removals"`
	// Scanner is the scanner that ran, if any.
	Scanner string `json:"scanner,omitempty"`
	// Scan is the scan outcome, if a scan ran.
	Scan *deptool.ScanResult `json:"scan,omitempty"`
	// Manager is the manager that ran, if any.
	Manager string `json:"manager,omitempty"`
	// DepRemovals are the dependency removal outcomes.
	DepRemovals []deptool.RemoveResult `json:"dep_removals,omitempty"`
	// Warnings are the non-fatal problems, in occurrence order.
	Warnings []string `json:"warnings"`
}

// New creates a report for a fresh run.
func New(projectDir string) *Report {
	return &Report{
		RunID:      GenerateRunID(),
		ProjectDir: projectDir,
		StartTime:  time.Now(),
		Removals:   []remover.Removal{},
		Warnings:   []string{},
	}
}

// AddRemoval records one filesystem action. Missing and failed paths
// also register as warnings.
func (r *Report) AddRemoval(rem remover.Removal) {
	r.Removals = append(r.Removals, rem)
	if rem.Outcome == remover.OutcomeNotFound || rem.Outcome == remover.OutcomeFailed {
		r.AddWarning(rem.Reason)
	}
}

// AddRemovals records a batch of filesystem actions.
func (r *Report) AddRemovals(rems []remover.Removal) {
	for _, rem := range rems {
		r.AddRemoval(rem)
	}
}

// SetScan records the scan outcome. A non-zero exit with nothing found
// registers as a warning since it usually means the tool itself broke.
func (r *Report) SetScan(scanner string, result deptool.ScanResult) {
	r.Scanner = scanner
	r.Scan = &result
	if result.Suspect() {
		r.AddWarning(fmt.Sprintf("%s exited with code %d and reported nothing", scanner, result.ExitCode))
	}
}

// AddDepRemoval records one dependency removal outcome. Refusals
// register as warnings.
func (r *Report) AddDepRemoval(res deptool.RemoveResult) {
	r.DepRemovals = append(r.DepRemovals, res)
	if !res.Removed {
		r.AddWarning(fmt.Sprintf("failed to remove dependency %s: %s", res.Name, res.Error))
	}
}

// AddWarning records a non-fatal problem.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.EndTime = time.Now()
}

// Duration is how long the run took so far, or in total once finished.
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// CountRemovals counts filesystem actions matching kind and outcome.
func (r *Report) CountRemovals(kind remover.Kind, outcome remover.Outcome) int {
	n := 0
	for _, rem := range r.Removals {
		if rem.Kind == kind && rem.Outcome == outcome {
			n++
		}
	}
	return n
}

// DirsRemoved is the number of deleted component directories.
func (r *Report) DirsRemoved() int {
	return r.CountRemovals(remover.KindDirectory, remover.OutcomeRemoved)
}

// FilesRemoved is the number of deleted files.
func (r *Report) FilesRemoved() int {
	return r.CountRemovals(remover.KindFile, remover.OutcomeRemoved)
}

// DirsPending is the number of directories a dry run would delete.
func (r *Report) DirsPending() int {
	return r.CountRemovals(remover.KindDirectory, remover.OutcomeWouldRemove)
}

// FilesPending is the number of files a dry run would delete.
func (r *Report) FilesPending() int {
	return r.CountRemovals(remover.KindFile, remover.OutcomeWouldRemove)
}

// DepsRemoved is the number of dependencies removed from the manifest.
func (r *Report) DepsRemoved() int {
	n := 0
	for _, res := range r.DepRemovals {
		if res.Removed {
			n++
		}
	}
	return n
}

// HasWarnings reports whether anything went sideways.
func (r *Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Status summarizes how the run ended.
func (r *Report) Status() Status {
	if r.DryRun {
		return StatusDryRun
	}
	if r.HasWarnings() {
		return StatusCompletedWithWarnings
	}
	return StatusCompleted
}
