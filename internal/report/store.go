package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultRunsDir is the directory run records are stored in, relative
// to the project directory.
const DefaultRunsDir = ".shears/runs"

// Store persists run records as JSON files under the project directory.
type Store struct {
	// RunsDir is the directory where run files are stored.
	RunsDir string
	// MaxRuns caps how many run files are kept. Zero keeps everything.
	MaxRuns int
}

// NewStore creates a store for the given project directory.
func NewStore(projectDir string, maxRuns int) *Store {
	return &Store{
		RunsDir: filepath.Join(projectDir, DefaultRunsDir),
		MaxRuns: maxRuns,
	}
}

// runPath returns the path to the record for the given run ID.
func (s *Store) runPath(runID string) string {
	return filepath.Join(s.RunsDir, runID+".json")
}

// Save persists the report and prunes old records. Returns the path
// the record was written to.
func (s *Store) Save(r *Report) (string, error) {
	if err := os.MkdirAll(s.RunsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run record: %w", err)
	}

	path := s.runPath(r.RunID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run record: %w", err)
	}

	if err := s.prune(); err != nil {
		return path, fmt.Errorf("failed to prune old runs: %w", err)
	}

	return path, nil
}

// Load reads a run record by ID.
func (s *Store) Load(runID string) (*Report, error) {
	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run record: %w", err)
	}

	return &r, nil
}

// List returns all stored run IDs, newest first. Run IDs embed their
// timestamp, so reverse name order is reverse chronological order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.RunsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		runs = append(runs, entry.Name()[:len(entry.Name())-5])
	}

	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

// Delete removes a run record. Deleting a missing record is not an error.
func (s *Store) Delete(runID string) error {
	if err := os.Remove(s.runPath(runID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// prune deletes the oldest records beyond MaxRuns.
func (s *Store) prune() error {
	if s.MaxRuns <= 0 {
		return nil
	}

	runs, err := s.List()
	if err != nil {
		return err
	}
	if len(runs) <= s.MaxRuns {
		return nil
	}

	for _, runID := range runs[s.MaxRuns:] {
		if err := s.Delete(runID); err != nil {
			return err
		}
	}
	return nil
}
