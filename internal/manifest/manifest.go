// Package manifest parses the component manifest (component_config.yml).
// The manifest is a mapping with a single components_to_remove key holding
// an ordered list of entries. An entry is either a bare component name,
// meaning the whole directory goes, or a single-key mapping from a
// directory name to a files list, meaning only those files go.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wexinc/shears/internal/errors"
)

// EntryKind discriminates the two entry forms.
type EntryKind string

const (
	// EntryDirectory removes the whole component directory.
	EntryDirectory EntryKind = "directory"
	// EntryFiles removes only the listed files, keeping the directory.
	EntryFiles EntryKind = "files"
)

// Entry is one item of the components_to_remove list.
type Entry struct {
	// Kind is the entry form.
	Kind EntryKind
	// Name is the component directory name.
	Name string
	// Files are the file names to delete within Name (EntryFiles only).
	Files []string
}

// String renders the entry for logs.
func (e Entry) String() string {
	if e.Kind == EntryFiles {
		return fmt.Sprintf("%s (%d files)", e.Name, len(e.Files))
	}
	return e.Name
}

// Manifest is a parsed component manifest.
type Manifest struct {
	// Path is where the manifest was read from.
	Path string
	// Entries are the removal instructions in document order.
	Entries []Entry
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ManifestNotFound([]string{path})
		}
		return nil, errors.ManifestParseError(path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest bytes. The path is used in error messages only.
func Parse(data []byte, path string) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.ManifestParseError(path, err)
	}

	// yaml wraps the document in a DocumentNode; an empty file has no content.
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.ManifestMissingKey(path)
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.ManifestParseError(path, fmt.Errorf("document root must be a mapping"))
	}

	// Find the components_to_remove key.
	var list *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "components_to_remove" {
			list = doc.Content[i+1]
			break
		}
	}
	if list == nil {
		return nil, errors.ManifestMissingKey(path)
	}

	m := &Manifest{Path: path, Entries: []Entry{}}

	// An explicit null ("components_to_remove:") reads as an empty list.
	if list.Kind == 0 || list.Tag == "!!null" {
		return m, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, errors.ManifestParseError(path, fmt.Errorf("components_to_remove must be a list"))
	}

	for i, node := range list.Content {
		entry, err := parseEntry(node)
		if err != nil {
			return nil, errors.ManifestBadEntry(path, i, err.Error())
		}
		m.Entries = append(m.Entries, entry)
	}

	return m, nil
}

// parseEntry decodes one list item into its tagged form.
func parseEntry(node *yaml.Node) (Entry, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return Entry{}, fmt.Errorf("entry must be a string or a single-key mapping")
		}
		if name == "" {
			return Entry{}, fmt.Errorf("component name must not be empty")
		}
		return Entry{Kind: EntryDirectory, Name: name}, nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return Entry{}, fmt.Errorf("mapping must have exactly one key, got %d", len(node.Content)/2)
		}

		var name string
		if err := node.Content[0].Decode(&name); err != nil {
			return Entry{}, fmt.Errorf("directory name must be a string")
		}
		if name == "" {
			return Entry{}, fmt.Errorf("directory name must not be empty")
		}

		// The value must be a mapping carrying a files list. A pointer
		// distinguishes a missing key from an empty list.
		var spec struct {
			Files *[]string `yaml:"files"`
		}
		if err := node.Content[1].Decode(&spec); err != nil {
			return Entry{}, fmt.Errorf("%q must map to a files list", name)
		}
		if spec.Files == nil {
			return Entry{}, fmt.Errorf("%q is missing its files list", name)
		}
		for _, f := range *spec.Files {
			if f == "" {
				return Entry{}, fmt.Errorf("%q has an empty file name", name)
			}
		}
		return Entry{Kind: EntryFiles, Name: name, Files: *spec.Files}, nil

	default:
		return Entry{}, fmt.Errorf("entry must be a string or a single-key mapping")
	}
}
