// Package pyproject reads the dependency declarations of a Python
// project's pyproject.toml. It understands PEP 621 [project] tables and
// falls back to [tool.poetry] for older layouts. Names are normalized
// the way package indexes do it, so names reported by scan tools can be
// matched against declarations regardless of case and separator style.
package pyproject

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wexinc/shears/internal/errors"
)

// FileName is the dependency manifest file this package reads.
const FileName = "pyproject.toml"

// depNameRE matches the package name at the start of a requirement
// string, before any extras, version constraints, or markers.
var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// separatorRE collapses the separator runs that normalization folds.
var separatorRE = regexp.MustCompile(`[-_.]+`)

// Manifest holds the declared dependencies of one project.
type Manifest struct {
	// Path is where the manifest was read from.
	Path string
	// Name is the project name, if declared.
	Name string
	// Version is the project version, if declared.
	Version string
	// Dependencies are the required dependencies, normalized, in
	// declaration order.
	Dependencies []string
	// OptionalGroups maps optional group names to their normalized
	// dependencies.
	OptionalGroups map[string][]string
}

// Load reads the pyproject.toml inside dir. A missing file surfaces as
// the underlying not-exist error so callers can skip quietly.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse parses pyproject.toml bytes. The path is used in errors only.
func Parse(data []byte, path string) (*Manifest, error) {
	var doc struct {
		Project struct {
			Name                 string              `toml:"name"`
			Version              string              `toml:"version"`
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name         string         `toml:"name"`
				Version      string         `toml:"version"`
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrDepTool, fmt.Sprintf("failed to parse %s", path))
	}

	m := &Manifest{
		Path:    path,
		Name:    doc.Project.Name,
		Version: doc.Project.Version,
	}
	if m.Name == "" {
		m.Name = doc.Tool.Poetry.Name
	}
	if m.Version == "" {
		m.Version = doc.Tool.Poetry.Version
	}

	for _, spec := range doc.Project.Dependencies {
		if name := DependencyName(spec); name != "" {
			m.Dependencies = append(m.Dependencies, name)
		}
	}

	// Poetry declares dependencies as a map keyed by name. The python
	// interpreter constraint lives there too and is not a package.
	if len(m.Dependencies) == 0 && len(doc.Tool.Poetry.Dependencies) > 0 {
		for name := range doc.Tool.Poetry.Dependencies {
			if strings.EqualFold(name, "python") {
				continue
			}
			m.Dependencies = append(m.Dependencies, Normalize(name))
		}
		sort.Strings(m.Dependencies)
	}

	if len(doc.Project.OptionalDependencies) > 0 {
		m.OptionalGroups = make(map[string][]string, len(doc.Project.OptionalDependencies))
		for group, specs := range doc.Project.OptionalDependencies {
			names := make([]string, 0, len(specs))
			for _, spec := range specs {
				if name := DependencyName(spec); name != "" {
					names = append(names, name)
				}
			}
			m.OptionalGroups[group] = names
		}
	}

	return m, nil
}

// Has reports whether name is declared, required or optional.
func (m *Manifest) Has(name string) bool {
	target := Normalize(name)
	for _, dep := range m.Dependencies {
		if dep == target {
			return true
		}
	}
	for _, names := range m.OptionalGroups {
		for _, dep := range names {
			if dep == target {
				return true
			}
		}
	}
	return false
}

// GroupsFor returns the optional groups declaring name, sorted.
func (m *Manifest) GroupsFor(name string) []string {
	target := Normalize(name)
	var groups []string
	for group, names := range m.OptionalGroups {
		for _, dep := range names {
			if dep == target {
				groups = append(groups, group)
				break
			}
		}
	}
	sort.Strings(groups)
	return groups
}

// Count returns the number of declared dependencies, optional included.
func (m *Manifest) Count() int {
	n := len(m.Dependencies)
	for _, names := range m.OptionalGroups {
		n += len(names)
	}
	return n
}

// DependencyName extracts the normalized package name from a
// requirement string like "requests[security]>=2.28; sys_platform !=
// 'win32'". Returns "" for strings that do not start with a name, such
// as URL requirements.
func DependencyName(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.Contains(spec, "://") {
		return ""
	}
	match := depNameRE.FindStringSubmatch(spec)
	if len(match) < 2 {
		return ""
	}
	return Normalize(match[1])
}

// Normalize lowercases a package name and folds runs of hyphens,
// underscores, and dots into single hyphens, matching how indexes
// compare names.
func Normalize(name string) string {
	return separatorRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
