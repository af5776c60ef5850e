// Package config loads wordcount settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Input modes for the count command.
const (
	// ModeLines reads a file as a sequence of lines.
	ModeLines = "lines"
	// ModeText reads a file as a single text.
	ModeText = "text"
)

// DirName is the per-user settings directory under the home directory.
const DirName = ".wordcount"

// Config contains all wordcount settings.
type Config struct {
	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Count contains defaults for the count command.
	Count CountConfig `json:"count" yaml:"count"`

	// History controls recording of counting runs.
	History HistoryConfig `json:"history" yaml:"history"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace".
	// "debug" also appends one event per run to ~/.wordcount/runs.jsonl.
	// "trace" additionally logs rendered reports.
	Level string `json:"level" yaml:"level"`
}

// CountConfig holds count command defaults.
type CountConfig struct {
	// Mode is ModeLines or ModeText. Both give the same counts; the mode only
	// changes how input is handed to the counter.
	Mode string `json:"mode" yaml:"mode"`

	// Top limits report output to the N most frequent words. 0 means all.
	Top int `json:"top" yaml:"top"`
}

// HistoryConfig configures the SQLite run history.
type HistoryConfig struct {
	// Enabled records every count run, not only those run with --save.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the database file. Supports ${VAR} expansion.
	// Empty means ~/.wordcount/history.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Count: CountConfig{
			Mode: ModeLines,
			Top:  0,
		},
		History: HistoryConfig{
			Enabled: false,
		},
	}
}

// Dir returns ~/.wordcount.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// Path returns the location of the config file, ~/.wordcount/config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration in order: defaults -> ~/.wordcount/config.yaml -> environment.
func Load() (*Config, error) {
	config := Default()

	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile reads configuration from a specific YAML file.
// Fields the file omits keep their defaults. Values are kept as written;
// ${VAR} in history.path is expanded by HistoryPath.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to ~/.wordcount/config.yaml.
func Save(cfg *Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return SaveToFile(cfg, configPath)
}

// SaveToFile writes the configuration to path with owner-only permissions.
func SaveToFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HistoryPath returns the configured database path with ${VAR} expanded,
// or ~/.wordcount/history.db.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return expandEnvVars(c.History.Path), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := ValidateMode(c.Count.Mode); err != nil {
		return err
	}

	if c.Count.Top < 0 {
		return fmt.Errorf("top must be non-negative, got %d", c.Count.Top)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ValidateMode rejects anything but ModeLines and ModeText.
func ValidateMode(mode string) error {
	if mode != ModeLines && mode != ModeText {
		return fmt.Errorf("invalid mode: %s (valid: %s, %s)", mode, ModeLines, ModeText)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("WORDCOUNT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("WORDCOUNT_MODE"); v != "" {
		config.Count.Mode = v
	}

	if v := os.Getenv("WORDCOUNT_TOP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Count.Top = n
		}
	}

	if v := os.Getenv("WORDCOUNT_HISTORY"); v != "" {
		config.History.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("WORDCOUNT_HISTORY_PATH"); v != "" {
		config.History.Path = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
