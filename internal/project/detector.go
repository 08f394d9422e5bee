// Package project resolves and inspects the directory a run operates on.
// Shears deletes files, so the target directory is validated up front
// and suspicious targets (home, filesystem root) are flagged before
// anything is touched.
package project

import (
	"os"
	"path/filepath"

	"github.com/wexinc/shears/internal/errors"
)

// Info describes a resolved project directory.
type Info struct {
	// Path is the absolute project directory.
	Path string `json:"path"`
	// Name is the project name (the directory name).
	Name string `json:"name"`
	// IsGitRepo reports a .git directory at the root.
	IsGitRepo bool `json:"is_git_repo"`
	// IsPython reports that Python project markers were found.
	IsPython bool `json:"is_python"`
	// HasShears reports a .shears directory, meaning init has run.
	HasShears bool `json:"has_shears"`
	// Markers lists the markers found (pyproject.toml, .git, ...).
	Markers []string `json:"markers,omitempty"`
}

// Marker is a file or directory whose presence identifies a project.
type Marker struct {
	// Name of the file or directory to look for.
	Name string
	// IsDir requires the marker to be a directory.
	IsDir bool
	// Python flags the marker as evidence of a Python project.
	Python bool
}

// DefaultMarkers are the markers checked during detection. Shears works
// on Python projects, so those markers dominate; .git and .shears are
// tracked for the report and the config lookup.
var DefaultMarkers = []Marker{
	{Name: ".git", IsDir: true},
	{Name: ".shears", IsDir: true},
	{Name: "pyproject.toml", Python: true},
	{Name: "setup.py", Python: true},
	{Name: "setup.cfg", Python: true},
	{Name: "requirements.txt", Python: true},
	{Name: "Pipfile", Python: true},
	{Name: "poetry.lock", Python: true},
	{Name: "uv.lock", Python: true},
}

// Resolve validates a project directory and returns its absolute path.
// An empty dir means the current working directory.
func Resolve(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.ProjectNotFound(dir, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", errors.ProjectNotFound(dir, err)
	}
	if !info.IsDir() {
		return "", errors.ProjectNotFound(dir, os.ErrNotExist)
	}

	return absPath, nil
}

// Detector inspects project directories.
type Detector struct {
	// Markers to check, DefaultMarkers unless overridden.
	Markers []Marker
}

// NewDetector creates a Detector with the default markers.
func NewDetector() *Detector {
	return &Detector{
		Markers: DefaultMarkers,
	}
}

// Detect inspects a directory and reports what kind of project it
// holds. The directory must already be resolved; it is inspected even
// when no markers match, since shears can still prune plain trees.
func (d *Detector) Detect(dir string) (*Info, error) {
	absPath, err := Resolve(dir)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:    absPath,
		Name:    filepath.Base(absPath),
		Markers: []string{},
	}

	for _, marker := range d.Markers {
		if !checkMarker(absPath, marker) {
			continue
		}
		info.Markers = append(info.Markers, marker.Name)
		switch {
		case marker.Name == ".git":
			info.IsGitRepo = true
		case marker.Name == ".shears":
			info.HasShears = true
		case marker.Python:
			info.IsPython = true
		}
	}

	return info, nil
}

// checkMarker checks whether a marker exists in the directory.
func checkMarker(dir string, marker Marker) bool {
	info, err := os.Stat(filepath.Join(dir, marker.Name))
	if err != nil {
		return false
	}
	return info.IsDir() == marker.IsDir
}

// IsHomeDirectory reports whether dir is the user's home directory.
func IsHomeDirectory(dir string) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absHome, err := filepath.Abs(home)
	if err != nil {
		return false
	}
	return absDir == absHome
}

// IsRootDirectory returns true if the directory is the filesystem root.
func IsRootDirectory(dir string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return absDir == "/" || absDir == filepath.VolumeName(absDir)+"\\"
}

// IsRiskyTarget reports whether running against this directory should
// be refused outright. Deleting out of home or the filesystem root is
// never what the operator meant.
func IsRiskyTarget(dir string) bool {
	return IsHomeDirectory(dir) || IsRootDirectory(dir)
}
