// Package config holds the releng configuration file and its defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/log"
	"github.com/felixgeelhaar/releng/internal/remap"
)

// DefaultPath is read when --config is not given; a missing file is fine
const DefaultPath = "releng.yaml"

// Digest backends
const (
	BackendScript   = "script"
	BackendRegistry = "registry"
)

// Output formats
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config is the releng configuration
type Config struct {
	Scripts ScriptsConfig `yaml:"scripts,omitempty"`
	Remap   RemapConfig   `yaml:"remap,omitempty"`
	Digest  DigestConfig  `yaml:"digest,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ScriptsConfig locates the lookup scripts
type ScriptsConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	Interpreter string `yaml:"interpreter,omitempty"`
	IIB         string `yaml:"iib,omitempty"`
	Bundle      string `yaml:"bundle,omitempty"`
	Component   string `yaml:"component,omitempty"`
	Digest      string `yaml:"digest,omitempty"`
}

// RemapConfig tunes registry remapping
type RemapConfig struct {
	Enabled        bool              `yaml:"enabled"`
	Compare        string            `yaml:"compare,omitempty"`   // "lexical" or "semver"
	Threshold      string            `yaml:"threshold,omitempty"` // first remapped version
	TargetRegistry string            `yaml:"target_registry,omitempty"`
	Components     map[string]string `yaml:"components,omitempty"` // extra image name -> canonical name
}

// DigestConfig selects how tags are pinned
type DigestConfig struct {
	Backend  string `yaml:"backend,omitempty"` // "script" or "registry"
	Insecure bool   `yaml:"insecure,omitempty"`
}

// OutputConfig selects the report format
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

// LoggingConfig configures operational logs
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Scripts: ScriptsConfig{
			Dir:         "scripts",
			Interpreter: "bash",
			IIB:         "iib.sh",
			Bundle:      "bundle.sh",
			Component:   "component.sh",
			Digest:      "convert_to_sha.sh",
		},
		Remap: RemapConfig{
			Enabled:        true,
			Compare:        string(remap.CompareLexical),
			Threshold:      remap.DefaultThreshold,
			TargetRegistry: remap.DefaultTargetRegistry,
		},
		Digest: DigestConfig{
			Backend: BackendScript,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. When optional is set a missing file
// yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewInvalidConfigError(fmt.Sprintf("failed to read %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewInvalidConfigError(fmt.Sprintf("failed to parse %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component understands
func (c *Config) Validate() error {
	if _, err := remap.ParseCompareMode(c.Remap.Compare); err != nil {
		return errors.NewInvalidConfigError("remap.compare", err)
	}

	switch c.Digest.Backend {
	case BackendScript, BackendRegistry:
	default:
		return errors.NewInvalidConfigError(
			fmt.Sprintf("digest.backend %q is not one of: %s, %s", c.Digest.Backend, BackendScript, BackendRegistry), nil)
	}

	switch c.Output.Format {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
	default:
		return errors.NewInvalidConfigError(
			fmt.Sprintf("output.format %q is not one of: text, table, json, yaml", c.Output.Format), nil)
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewInvalidConfigError("logging.level", err)
	}
	if _, err := log.ParseFormat(c.Logging.Format); err != nil {
		return errors.NewInvalidConfigError("logging.format", err)
	}

	if c.Scripts.IIB == "" || c.Scripts.Bundle == "" || c.Scripts.Component == "" || c.Scripts.Digest == "" {
		return errors.NewInvalidConfigError("scripts: iib, bundle, component and digest must not be empty", nil)
	}

	return nil
}

// LogConfig builds the logger configuration. Debug level also records
// source locations.
func (c *Config) LogConfig() (log.Config, error) {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.Config{}, errors.NewInvalidConfigError("logging.level", err)
	}
	format, err := log.ParseFormat(c.Logging.Format)
	if err != nil {
		return log.Config{}, errors.NewInvalidConfigError("logging.format", err)
	}

	lc := log.DefaultConfig()
	if level == log.LevelDebug {
		lc = log.DebugConfig()
	}
	lc.Level = level
	lc.Format = format
	return lc, nil
}
