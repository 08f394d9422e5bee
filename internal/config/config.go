// Package config provides configuration data structures for shears.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete shears configuration loaded from .shears/config.yaml.
type Config struct {
	Manifest   ManifestConfig   `yaml:"manifest"   json:"manifest"`
	Components ComponentsConfig `yaml:"components" json:"components"`
	Deps       DepsConfig       `yaml:"deps"       json:"deps"`
	Hooks      HooksConfig      `yaml:"hooks"      json:"hooks"`
	Output     OutputConfig     `yaml:"output"     json:"output"`
	Logging    LoggingConfig    `yaml:"logging"    json:"logging"`
}

// ManifestConfig locates the component manifest.
type ManifestConfig struct {
	// Path is the manifest location relative to the project root.
	// Empty means search the default locations in order.
	Path string `yaml:"path" json:"path"`
}

// ComponentsConfig configures how entries resolve to paths.
type ComponentsConfig struct {
	// Dir is the directory entries resolve against, relative to the
	// project root (default: "."). The Langflow tree this tool grew up
	// on used "src/backend/base/langflow/components".
	Dir string `yaml:"dir" json:"dir"`
}

// DepsConfig configures the dependency pruning phase.
type DepsConfig struct {
	// Scanner is the unused-dependency scanner to run (default: "deptry").
	Scanner string `yaml:"scanner" json:"scanner"`
	// Manager is the dependency manager used for removals (default: "uv").
	Manager string `yaml:"manager" json:"manager"`
	// Skip disables the scan and removal phase entirely.
	Skip bool `yaml:"skip" json:"skip"`
}

// OutputFormat defines how the summary report is rendered.
type OutputFormat string

const (
	// OutputFormatText renders a human-readable summary.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON renders a machine-readable summary on stdout.
	OutputFormatJSON OutputFormat = "json"
)

// OutputConfig configures report rendering and persistence.
type OutputConfig struct {
	// Format selects the summary format: text or json (default: text).
	Format OutputFormat `yaml:"format" json:"format"`
	// SaveRuns persists each run's report under .shears/runs (default: true).
	SaveRuns bool `yaml:"save_runs" json:"save_runs"`
	// MaxRuns is the number of persisted run records to keep (default: 20).
	MaxRuns int `yaml:"max_runs" json:"max_runs"`
}

// HookDefinition defines a single hook command.
type HookDefinition struct {
	// Name identifies the hook in logs and the report (optional).
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Command is the shell command to run.
	Command string `yaml:"command" json:"command"`
}

// HooksConfig configures pre/post run hooks.
type HooksConfig struct {
	// PreRun hooks run before any deletion. A failing pre-run hook
	// aborts the run with nothing touched.
	PreRun []HookDefinition `yaml:"pre_run" json:"pre_run"`
	// PostRun hooks run after the summary report. Failures are warnings.
	PostRun []HookDefinition `yaml:"post_run" json:"post_run"`
	// Timeout bounds each hook's execution (default: 1m).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is the log verbosity: debug, info, warn, error (default: info).
	Level string `yaml:"level" json:"level"`
	// Dir overrides the log directory (default: .shears/logs under the project).
	Dir string `yaml:"dir" json:"dir"`
	// JSON switches logs to JSON format.
	JSON bool `yaml:"json" json:"json"`
	// MaxFiles is the number of log files to keep (default: 10).
	MaxFiles int `yaml:"max_files" json:"max_files"`
	// MaxAge is how long log files are kept (default: 168h).
	MaxAge time.Duration `yaml:"max_age" json:"max_age"`
}

// Default values.
const (
	DefaultComponentsDir = "."
	DefaultScanner       = "deptry"
	DefaultManager       = "uv"
	DefaultHookTimeout   = time.Minute
	DefaultMaxRuns       = 20
	DefaultLogLevel      = "info"
	DefaultLogMaxFiles   = 10
	DefaultLogMaxAge     = 7 * 24 * time.Hour
)

// DefaultManifestLocations are searched in order when manifest.path is unset.
var DefaultManifestLocations = []string{
	"component_config.yml",
	filepath.Join("scripts", "component_config.yml"),
}

// NewConfig returns a Config filled with the defaults.
func NewConfig() *Config {
	return &Config{
		Manifest: ManifestConfig{
			Path: "",
		},
		Components: ComponentsConfig{
			Dir: DefaultComponentsDir,
		},
		Deps: DepsConfig{
			Scanner: DefaultScanner,
			Manager: DefaultManager,
			Skip:    false,
		},
		Hooks: HooksConfig{
			PreRun:  []HookDefinition{},
			PostRun: []HookDefinition{},
			Timeout: DefaultHookTimeout,
		},
		Output: OutputConfig{
			Format:   OutputFormatText,
			SaveRuns: true,
			MaxRuns:  DefaultMaxRuns,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Dir:      "",
			JSON:     false,
			MaxFiles: DefaultLogMaxFiles,
			MaxAge:   DefaultLogMaxAge,
		},
	}
}

// ApplyDefaults fills fields the loaded file left unset.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.Components.Dir == "" {
		c.Components.Dir = defaults.Components.Dir
	}

	if c.Deps.Scanner == "" {
		c.Deps.Scanner = defaults.Deps.Scanner
	}
	if c.Deps.Manager == "" {
		c.Deps.Manager = defaults.Deps.Manager
	}

	if c.Hooks.Timeout == 0 {
		c.Hooks.Timeout = defaults.Hooks.Timeout
	}
	if c.Hooks.PreRun == nil {
		c.Hooks.PreRun = []HookDefinition{}
	}
	if c.Hooks.PostRun == nil {
		c.Hooks.PostRun = []HookDefinition{}
	}

	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Output.MaxRuns == 0 {
		c.Output.MaxRuns = defaults.Output.MaxRuns
	}
	// Note: SaveRuns defaults to true but we can't detect if it was explicitly
	// set to false vs never set. The loader handles this by using the default
	// config as base.

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = defaults.Logging.MaxAge
	}
}

// ValidationError names a config field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates every failed field, so one pass reports
// them all.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration and reports every bad field.
func (c *Config) Validate() error {
	var errs ValidationErrors

	// Components dir must stay inside the project root
	if c.Components.Dir != "" {
		if filepath.IsAbs(c.Components.Dir) {
			errs = append(errs, &ValidationError{
				Field:   "components.dir",
				Message: "must be relative to the project root",
			})
		} else if escapesRoot(c.Components.Dir) {
			errs = append(errs, &ValidationError{
				Field:   "components.dir",
				Message: "must not escape the project root",
			})
		}
	}

	if c.Manifest.Path != "" && filepath.IsAbs(c.Manifest.Path) {
		errs = append(errs, &ValidationError{
			Field:   "manifest.path",
			Message: "must be relative to the project root",
		})
	}

	// Validate output format
	if c.Output.Format != "" {
		switch c.Output.Format {
		case OutputFormatText, OutputFormatJSON:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "output.format",
				Message: "must be 'text' or 'json'",
			})
		}
	}
	if c.Output.MaxRuns < 0 {
		errs = append(errs, &ValidationError{
			Field:   "output.max_runs",
			Message: "must be non-negative",
		})
	}

	// Validate log level
	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case "debug", "info", "warn", "error":
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "logging.level",
				Message: "must be 'debug', 'info', 'warn', or 'error'",
			})
		}
	}

	if c.Hooks.Timeout < 0 {
		errs = append(errs, &ValidationError{
			Field:   "hooks.timeout",
			Message: "must be non-negative",
		})
	}

	// Validate hooks
	for i, hook := range c.Hooks.PreRun {
		if err := validateHook(hook, "hooks.pre_run", i); err != nil {
			errs = append(errs, err)
		}
	}
	for i, hook := range c.Hooks.PostRun {
		if err := validateHook(hook, "hooks.post_run", i); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHook(hook HookDefinition, prefix string, index int) *ValidationError {
	field := fmt.Sprintf("%s[%d]", prefix, index)

	if strings.TrimSpace(hook.Command) == "" {
		return &ValidationError{
			Field:   field + ".command",
			Message: "must not be empty",
		}
	}

	return nil
}

// escapesRoot reports whether a cleaned relative path climbs out of its root.
func escapesRoot(rel string) bool {
	clean := filepath.Clean(rel)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
