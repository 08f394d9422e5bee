package deptry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wexinc/shears/internal/deptool"
)

// stubTool installs a fake executable at the front of PATH.
func stubTool(t *testing.T, name, script string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestScanner_Name(t *testing.T) {
	s := New()
	if got := s.Name(); got != "deptry" {
		t.Errorf("Scanner.Name() = %q, want %q", got, "deptry")
	}
}

func TestScanner_Description(t *testing.T) {
	s := New()
	if got := s.Description(); got == "" {
		t.Error("Scanner.Description() should not be empty")
	}
}

func TestParseUnused(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name: "single violation",
			output: "Scanning 120 files...\n" +
				"pyproject.toml: DEP002 'flower' defined as a dependency but not used in the codebase\n" +
				"Found 1 dependency issue.\n",
			want: []string{"flower"},
		},
		{
			name: "multiple violations",
			output: "pyproject.toml: DEP002 'celery' defined as a dependency but not used in the codebase\n" +
				"pyproject.toml: DEP002 'flower' defined as a dependency but not used in the codebase\n" +
				"pyproject.toml: DEP002 'langchain-weaviate' defined as a dependency but not used in the codebase\n",
			want: []string{"celery", "flower", "langchain-weaviate"},
		},
		{
			name: "other codes ignored",
			output: "pyproject.toml: DEP001 'missingmod' imported but missing from the dependency definitions\n" +
				"pyproject.toml: DEP002 'flower' defined as a dependency but not used in the codebase\n" +
				"pyproject.toml: DEP003 'transitive' imported but it is a transitive dependency\n",
			want: []string{"flower"},
		},
		{
			name: "duplicates collapsed",
			output: "src/a.py: DEP002 'flower' defined as a dependency but not used in the codebase\n" +
				"src/b.py: DEP002 'flower' defined as a dependency but not used in the codebase\n",
			want: []string{"flower"},
		},
		{
			name:   "violation line without quotes skipped",
			output: "pyproject.toml: DEP002 malformed line\n",
			want:   nil,
		},
		{
			name:   "clean output",
			output: "Success! No dependency issues found.\n",
			want:   nil,
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnused(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseUnused() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseUnused()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	stubTool(t, "uv", `#!/bin/sh
echo "Scanning project..."
echo "pyproject.toml: DEP002 'flower' defined as a dependency but not used in the codebase"
echo "pyproject.toml: DEP002 'celery' defined as a dependency but not used in the codebase"
exit 1
`)

	s := New()
	if !s.IsAvailable() {
		t.Fatal("scanner should see the stubbed uv")
	}

	result, err := s.Scan(context.Background(), deptool.Options{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}
	if len(result.Unused) != 2 || result.Unused[0] != "flower" || result.Unused[1] != "celery" {
		t.Errorf("unused = %v, want [flower celery]", result.Unused)
	}
	if !strings.Contains(result.Output, "Scanning project") {
		t.Errorf("output should carry the tool's text, got %q", result.Output)
	}
}

func TestScanner_Scan_CleanProject(t *testing.T) {
	stubTool(t, "uv", `#!/bin/sh
echo 'Success! No dependency issues found.'
exit 0
`)

	result, err := New().Scan(context.Background(), deptool.Options{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
	if len(result.Unused) != 0 {
		t.Errorf("unused = %v, want none", result.Unused)
	}
	if result.Suspect() {
		t.Error("clean scan should not look suspect")
	}
}

func TestScanner_Scan_StreamsToLogWriter(t *testing.T) {
	stubTool(t, "uv", `#!/bin/sh
echo 'streamed line'
exit 0
`)

	var log strings.Builder
	result, err := New().Scan(context.Background(), deptool.Options{LogWriter: &log})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !strings.Contains(log.String(), "streamed line") {
		t.Errorf("log writer should receive output, got %q", log.String())
	}
	if !strings.Contains(result.Output, "streamed line") {
		t.Errorf("result should also capture output, got %q", result.Output)
	}
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	stubTool(t, "uv", "#!/bin/sh\nexit 0\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Scan(ctx, deptool.Options{})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// TestScannerImplementsInterface verifies the deptool.Scanner contract.
func TestScannerImplementsInterface(t *testing.T) {
	var _ deptool.Scanner = (*Scanner)(nil)
}
