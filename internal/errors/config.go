// Package errors provides error types for shears.
// This file contains configuration and component manifest errors.
package errors

import (
	"fmt"
	"strings"
)

// Constructors for config and manifest errors.

// ConfigParseError creates an error for tool config parsing failures.
func ConfigParseError(configPath string, parseErr error) *ShearsError {
	return &ShearsError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("failed to parse configuration: %s", configPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check your config.yaml for syntax errors:
  1. Ensure proper YAML indentation (use spaces, not tabs)
  2. Check for missing colons or quotes
  3. Validate with: yamllint .shears/config.yaml`,
	}
}

// ConfigValidationError creates an error for a config value that fails
// validation.
func ConfigValidationError(field, message string, validOptions []string) *ShearsError {
	suggestion := fmt.Sprintf("Fix the %q field in .shears/config.yaml", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &ShearsError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}

// Component manifest error constructors. All of these are fatal: the run
// aborts before touching the filesystem.

// ManifestNotFound creates an error for a missing component manifest.
func ManifestNotFound(searched []string) *ShearsError {
	return &ShearsError{
		Kind:    ErrManifest,
		Message: "component manifest not found",
		Details: map[string]string{
			"searched": strings.Join(searched, ", "),
		},
		Suggestion: `Create a component manifest:

  Option 1: Scaffold one
    shears init

  Option 2: Point at an existing file
    shears run --manifest path/to/component_config.yml

The manifest lists the components to remove:
  components_to_remove:
    - some_component
    - other_component:
        files:
          - helper.py`,
		DocLink: "https://github.com/wexinc/shears#manifest",
	}
}

// ManifestParseError creates an error for YAML parsing failures.
func ManifestParseError(path string, parseErr error) *ShearsError {
	return &ShearsError{
		Kind:    ErrManifest,
		Message: fmt.Sprintf("failed to parse component manifest: %s", path),
		Cause:   parseErr,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `Check the manifest for YAML syntax errors:
  1. Ensure proper indentation (spaces, not tabs)
  2. List items need a '- ' prefix
  3. Validate with: yamllint ` + path,
	}
}

// ManifestMissingKey creates an error for a manifest without the
// components_to_remove key.
func ManifestMissingKey(path string) *ShearsError {
	return &ShearsError{
		Kind:    ErrManifest,
		Message: fmt.Sprintf("manifest %s has no components_to_remove key", path),
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `The manifest must be a mapping with a components_to_remove list:

  components_to_remove:
    - component_a
    - component_b:
        files:
          - unused.py`,
	}
}

// ManifestBadEntry creates an error for an entry that is neither a bare
// name nor a single-key files mapping.
func ManifestBadEntry(path string, index int, reason string) *ShearsError {
	return &ShearsError{
		Kind:    ErrManifest,
		Message: fmt.Sprintf("invalid entry %d in %s: %s", index, path, reason),
		Details: map[string]string{
			"path":  path,
			"entry": fmt.Sprintf("%d", index),
		},
		Suggestion: `Each entry must be either a bare component name:

    - component_a

or a single-key mapping listing files to delete:

    - component_b:
        files:
          - unused.py
          - legacy.py`,
	}
}

// ProjectNotFound creates an error when the target directory is missing
// or does not look like a project root.
func ProjectNotFound(projectDir string, cause error) *ShearsError {
	return &ShearsError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("project directory not usable: %s", projectDir),
		Cause:   cause,
		Details: map[string]string{
			"directory": projectDir,
		},
		Suggestion: `Run shears from the project root, or pass the directory explicitly:
  shears run /path/to/project`,
	}
}
