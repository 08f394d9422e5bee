// Package remover deletes component directories and files under a fixed
// root. Every path is resolved against the root and rejected if it
// escapes, so a manifest cannot reach outside the components tree.
// Missing paths are recorded, not raised; the caller decides what a
// warning means.
package remover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wexinc/shears/internal/errors"
	"github.com/wexinc/shears/internal/manifest"
)

// Kind says what a removal targeted.
type Kind string

const (
	// KindDirectory is a whole component directory.
	KindDirectory Kind = "directory"
	// KindFile is a single file within a component directory.
	KindFile Kind = "file"
)

// Outcome is the result of one removal attempt.
type Outcome string

const (
	// OutcomeRemoved means the path was deleted.
	OutcomeRemoved Outcome = "removed"
	// OutcomeWouldRemove means dry-run mode left the path in place.
	OutcomeWouldRemove Outcome = "would_remove"
	// OutcomeNotFound means the path was absent.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means the path could not be deleted.
	OutcomeFailed Outcome = "failed"
)

// Removal records one attempt against one path.
type Removal struct {
	// Kind is what the attempt targeted.
	Kind Kind `json:"kind"`
	// Path is relative to the removal root.
	Path string `json:"path"`
	// Outcome is what happened.
	Outcome Outcome `json:"outcome"`
	// Reason is self-contained warning text for not_found and failed.
	Reason string `json:"reason,omitempty"`
}

// Remover deletes paths under a single root directory.
type Remover struct {
	root   string
	dryRun bool
}

// New creates a Remover rooted at the given directory. The root should
// be absolute; callers resolve it from the project directory first.
func New(root string, dryRun bool) *Remover {
	return &Remover{root: filepath.Clean(root), dryRun: dryRun}
}

// Root returns the removal root.
func (r *Remover) Root() string {
	return r.root
}

// DryRun reports whether deletions are suppressed.
func (r *Remover) DryRun() bool {
	return r.dryRun
}

// Apply processes one manifest entry and returns a record per path.
func (r *Remover) Apply(entry manifest.Entry) []Removal {
	if entry.Kind == manifest.EntryFiles {
		removals := make([]Removal, 0, len(entry.Files))
		for _, f := range entry.Files {
			removals = append(removals, r.RemoveFile(entry.Name, f))
		}
		return removals
	}
	return []Removal{r.RemoveDir(entry.Name)}
}

// RemoveDir recursively deletes the named component directory.
func (r *Remover) RemoveDir(name string) Removal {
	rel, abs, err := r.resolve(name)
	if err != nil {
		return Removal{Kind: KindDirectory, Path: rel, Outcome: OutcomeFailed, Reason: err.Error()}
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Removal{
			Kind:    KindDirectory,
			Path:    rel,
			Outcome: OutcomeNotFound,
			Reason:  fmt.Sprintf("directory not found: %s", rel),
		}
	}
	if err != nil {
		return Removal{Kind: KindDirectory, Path: rel, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if !info.IsDir() {
		return Removal{
			Kind:    KindDirectory,
			Path:    rel,
			Outcome: OutcomeFailed,
			Reason:  fmt.Sprintf("not a directory: %s", rel),
		}
	}

	if r.dryRun {
		return Removal{Kind: KindDirectory, Path: rel, Outcome: OutcomeWouldRemove}
	}

	if err := os.RemoveAll(abs); err != nil {
		return Removal{
			Kind:    KindDirectory,
			Path:    rel,
			Outcome: OutcomeFailed,
			Reason:  errors.PathNotDeletable(abs, err).Error(),
		}
	}
	return Removal{Kind: KindDirectory, Path: rel, Outcome: OutcomeRemoved}
}

// RemoveFile deletes one file within the named component directory. The
// directory itself is kept.
func (r *Remover) RemoveFile(dir, name string) Removal {
	rel, abs, err := r.resolve(dir, name)
	if err != nil {
		return Removal{Kind: KindFile, Path: rel, Outcome: OutcomeFailed, Reason: err.Error()}
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Removal{
			Kind:    KindFile,
			Path:    rel,
			Outcome: OutcomeNotFound,
			Reason:  fmt.Sprintf("file not found: %s", rel),
		}
	}
	if err != nil {
		return Removal{Kind: KindFile, Path: rel, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if info.IsDir() {
		return Removal{
			Kind:    KindFile,
			Path:    rel,
			Outcome: OutcomeFailed,
			Reason:  fmt.Sprintf("not a file: %s", rel),
		}
	}

	if r.dryRun {
		return Removal{Kind: KindFile, Path: rel, Outcome: OutcomeWouldRemove}
	}

	if err := os.Remove(abs); err != nil {
		return Removal{
			Kind:    KindFile,
			Path:    rel,
			Outcome: OutcomeFailed,
			Reason:  errors.PathNotDeletable(abs, err).Error(),
		}
	}
	return Removal{Kind: KindFile, Path: rel, Outcome: OutcomeRemoved}
}

// resolve joins parts under the root and rejects paths that land on or
// outside it. Returns the cleaned relative path and the absolute path.
func (r *Remover) resolve(parts ...string) (string, string, error) {
	rel := filepath.Join(parts...)
	if rel == "" || rel == "." || rel == ".." || filepath.IsAbs(rel) ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel, "", errors.PathEscapesRoot(rel, r.root)
	}
	return rel, filepath.Join(r.root, rel), nil
}
