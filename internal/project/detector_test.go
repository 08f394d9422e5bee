package project

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wexinc/shears/internal/errors"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	resolved, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !filepath.IsAbs(resolved) {
		t.Errorf("Expected an absolute path, got %q", resolved)
	}
}

func TestResolve_Empty(t *testing.T) {
	resolved, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if resolved != cwd {
		t.Errorf("Expected the working directory %q, got %q", cwd, resolved)
	}
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
	if !stderrors.Is(err, errors.ErrConfig) {
		t.Errorf("Expected a config error, got %v", err)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(file)
	if err == nil {
		t.Fatal("Expected an error for a plain file")
	}
}

func TestDetect_PythonProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\nname = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	info, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !info.IsPython {
		t.Error("Expected a Python project")
	}
	if !info.IsGitRepo {
		t.Error("Expected a git repository")
	}
	if info.HasShears {
		t.Error("Expected no .shears directory")
	}
	if info.Name != filepath.Base(dir) {
		t.Errorf("Expected name %q, got %q", filepath.Base(dir), info.Name)
	}
	if len(info.Markers) != 2 {
		t.Errorf("Expected 2 markers, got %v", info.Markers)
	}
}

func TestDetect_BareDirectory(t *testing.T) {
	info, err := NewDetector().Detect(t.TempDir())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if info.IsPython || info.IsGitRepo || info.HasShears {
		t.Errorf("Expected no markers in an empty directory, got %+v", info)
	}
	if len(info.Markers) != 0 {
		t.Errorf("Expected no markers, got %v", info.Markers)
	}
}

func TestDetect_ShearsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".shears"), 0755); err != nil {
		t.Fatal(err)
	}

	info, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !info.HasShears {
		t.Error("Expected HasShears to be set")
	}
}

func TestDetect_DirMarkerMustBeDir(t *testing.T) {
	dir := t.TempDir()
	// A plain file named .git is not a git repository.
	if err := os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: elsewhere"), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.IsGitRepo {
		t.Error("Expected a plain .git file not to count as a repository")
	}
}

func TestIsRootDirectory(t *testing.T) {
	if !IsRootDirectory("/") {
		t.Error("Expected / to be the root directory")
	}
	if IsRootDirectory(t.TempDir()) {
		t.Error("Expected a temp dir not to be the root directory")
	}
}

func TestIsRiskyTarget(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if !IsRiskyTarget(home) {
		t.Error("Expected the home directory to be risky")
	}
	if !IsRiskyTarget("/") {
		t.Error("Expected the root directory to be risky")
	}
	if IsRiskyTarget(t.TempDir()) {
		t.Error("Expected a temp dir not to be risky")
	}
}
