package pyproject

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wexinc/shears/internal/errors"
)

const samplePyproject = `[project]
name = "langflow-base"
version = "0.1.0"
dependencies = [
    "fastapi>=0.111.0",
    "Flask_SQLAlchemy",
    "uvicorn[standard]>=0.30.0",
    "orjson==3.10.0; sys_platform != 'win32'",
]

[project.optional-dependencies]
deploy = ["celery[redis]>=5.3.6", "flower>=2.0.1"]
local = ["llama-cpp-python~=0.2.0"]
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(samplePyproject), "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if m.Name != "langflow-base" {
		t.Errorf("name = %q, want %q", m.Name, "langflow-base")
	}
	if m.Version != "0.1.0" {
		t.Errorf("version = %q, want %q", m.Version, "0.1.0")
	}

	wantDeps := []string{"fastapi", "flask-sqlalchemy", "uvicorn", "orjson"}
	if len(m.Dependencies) != len(wantDeps) {
		t.Fatalf("dependencies = %v, want %v", m.Dependencies, wantDeps)
	}
	for i, want := range wantDeps {
		if m.Dependencies[i] != want {
			t.Errorf("dependency %d = %q, want %q", i, m.Dependencies[i], want)
		}
	}

	deploy := m.OptionalGroups["deploy"]
	if len(deploy) != 2 || deploy[0] != "celery" || deploy[1] != "flower" {
		t.Errorf("deploy group = %v, want [celery flower]", deploy)
	}
	local := m.OptionalGroups["local"]
	if len(local) != 1 || local[0] != "llama-cpp-python" {
		t.Errorf("local group = %v, want [llama-cpp-python]", local)
	}
}

func TestParse_PoetryFallback(t *testing.T) {
	data := []byte(`[tool.poetry]
name = "legacy-project"
version = "2.0.0"

[tool.poetry.dependencies]
python = "^3.10"
requests = "^2.28"
PyYAML = "*"
`)

	m, err := Parse(data, "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if m.Name != "legacy-project" {
		t.Errorf("name = %q, want %q", m.Name, "legacy-project")
	}
	if m.Version != "2.0.0" {
		t.Errorf("version = %q, want %q", m.Version, "2.0.0")
	}
	// The python interpreter constraint is not a dependency.
	want := []string{"pyyaml", "requests"}
	if len(m.Dependencies) != len(want) {
		t.Fatalf("dependencies = %v, want %v", m.Dependencies, want)
	}
	for i, name := range want {
		if m.Dependencies[i] != name {
			t.Errorf("dependency %d = %q, want %q", i, m.Dependencies[i], name)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("[project\nbroken"), "pyproject.toml")
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if !stderrors.Is(err, errors.ErrDepTool) {
		t.Errorf("expected ErrDepTool, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse([]byte(""), "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(m.Dependencies) != 0 || m.Count() != 0 {
		t.Errorf("empty document should declare nothing, got %v", m.Dependencies)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(samplePyproject), 0o644); err != nil {
		t.Fatalf("failed to write pyproject: %v", err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q, want %q", m.Path, filepath.Join(dir, FileName))
	}
	if len(m.Dependencies) != 4 {
		t.Errorf("expected 4 dependencies, got %d", len(m.Dependencies))
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing pyproject.toml")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestHas(t *testing.T) {
	m, err := Parse([]byte(samplePyproject), "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"fastapi", true},
		{"Flask-SQLAlchemy", true},
		{"flask_sqlalchemy", true},
		{"celery", true},
		{"flower", true},
		{"django", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Has(tt.name); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGroupsFor(t *testing.T) {
	m, err := Parse([]byte(samplePyproject), "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if groups := m.GroupsFor("flower"); len(groups) != 1 || groups[0] != "deploy" {
		t.Errorf("GroupsFor(flower) = %v, want [deploy]", groups)
	}
	if groups := m.GroupsFor("fastapi"); len(groups) != 0 {
		t.Errorf("GroupsFor(fastapi) = %v, want none", groups)
	}
}

func TestCount(t *testing.T) {
	m, err := Parse([]byte(samplePyproject), "pyproject.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := m.Count(); got != 7 {
		t.Errorf("Count() = %d, want 7", got)
	}
}

func TestDependencyName(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"requests", "requests"},
		{"requests>=2.28", "requests"},
		{"requests[security]>=2.28.0,<3", "requests"},
		{"uvicorn[standard]", "uvicorn"},
		{"Flask_SQLAlchemy", "flask-sqlalchemy"},
		{"orjson==3.10.0; sys_platform != 'win32'", "orjson"},
		{"  spacy  ", "spacy"},
		{"mylib @ https://example.com/mylib.whl", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DependencyName(tt.spec); got != tt.want {
			t.Errorf("DependencyName(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Django", "django"},
		{"zope.interface", "zope-interface"},
		{"python_dateutil", "python-dateutil"},
		{"a--b__c..d", "a-b-c-d"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.name); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
