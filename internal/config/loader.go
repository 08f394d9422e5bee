// Package config provides configuration loading and management for shears.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is where the config file lives relative to the
	// project root.
	DefaultConfigPath = ".shears/config.yaml"

	// EnvPrefix namespaces the environment variable overrides.
	EnvPrefix = "SHEARS"
)

// Loader reads configuration from a YAML file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// LoadConfig reads the file at path, layers environment overrides and
// defaults on top, and validates the result. An empty path means
// DefaultConfigPath relative to the working directory.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, loadErr(path, "config file not found", err)
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, loadErr(path, "failed to read config file", err)
	}

	cfg := NewConfig()
	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, loadErr(path, "failed to parse config file", err)
	}

	l.applyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, loadErr(path, "configuration validation failed", err)
	}
	return cfg, nil
}

// LoadConfigFromDir loads .shears/config.yaml under dir.
func (l *Loader) LoadConfigFromDir(dir string) (*Config, error) {
	return l.LoadConfig(filepath.Join(dir, DefaultConfigPath))
}

// envOverrides maps SHEARS_* variable suffixes to the fields they set.
// Each entry touches a distinct field, so application order does not
// matter.
var envOverrides = map[string]func(*Config, string){
	"MANIFEST_PATH":  func(c *Config, v string) { c.Manifest.Path = v },
	"COMPONENTS_DIR": func(c *Config, v string) { c.Components.Dir = v },
	"DEPS_SCANNER":   func(c *Config, v string) { c.Deps.Scanner = v },
	"DEPS_MANAGER":   func(c *Config, v string) { c.Deps.Manager = v },
	"DEPS_SKIP":      func(c *Config, v string) { c.Deps.Skip = parseBool(v) },
	"HOOKS_TIMEOUT": func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Hooks.Timeout = d
		}
	},
	"OUTPUT_FORMAT":    func(c *Config, v string) { c.Output.Format = OutputFormat(v) },
	"OUTPUT_SAVE_RUNS": func(c *Config, v string) { c.Output.SaveRuns = parseBool(v) },
	"LOGGING_LEVEL":    func(c *Config, v string) { c.Logging.Level = v },
	"LOGGING_DIR":      func(c *Config, v string) { c.Logging.Dir = v },
	"LOGGING_JSON":     func(c *Config, v string) { c.Logging.JSON = parseBool(v) },
}

// applyEnvOverrides applies environment variables to cfg so they win
// over file values.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	for suffix, apply := range envOverrides {
		if v := os.Getenv(EnvPrefix + "_" + suffix); v != "" {
			apply(cfg, v)
		}
	}
}

// parseBool reports whether s spells an affirmative value. "true", "1",
// and "yes" count, case-insensitively; everything else is false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// viperDecodeHook wires duration parsing and custom string types into
// viper's unmarshal step.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToOutputFormatHookFunc(),
	)
}

// stringToOutputFormatHookFunc decodes plain strings into OutputFormat.
func stringToOutputFormatHookFunc() mapstructure.DecodeHookFunc {
	formatType := reflect.TypeOf(OutputFormat(""))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != formatType {
			return data, nil
		}
		return OutputFormat(data.(string)), nil
	}
}

// LoadError describes a configuration load failure.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func loadErr(path, message string, err error) *LoadError {
	return &LoadError{Path: path, Message: message, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load creates a Loader and loads the file at path. An empty path means
// DefaultConfigPath.
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}

// LoadFromDir loads configuration from .shears/config.yaml under dir.
func LoadFromDir(dir string) (*Config, error) {
	return NewLoader().LoadConfigFromDir(dir)
}

// ComponentsPath returns the directory manifest entries resolve
// against, joined to the project dir.
func (c *Config) ComponentsPath(projectDir string) string {
	dir := c.Components.Dir
	if dir == "" {
		dir = DefaultComponentsDir
	}
	return filepath.Join(projectDir, dir)
}

// ResolveManifestPath returns the manifest path to use for a project.
// If the config names a path it is returned as-is (joined to the project dir);
// otherwise the default locations are searched in order. The returned bool
// reports whether a manifest file was found.
func (c *Config) ResolveManifestPath(projectDir string) (string, bool) {
	if c.Manifest.Path != "" {
		p := filepath.Join(projectDir, c.Manifest.Path)
		_, err := os.Stat(p)
		return p, err == nil
	}
	for _, loc := range DefaultManifestLocations {
		p := filepath.Join(projectDir, loc)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return filepath.Join(projectDir, DefaultManifestLocations[0]), false
}
