// Package config loads the YAML run configuration of the annotator.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration.
type Config struct {
	Base       string        `yaml:"base" json:"base"`
	Database   string        `yaml:"database" json:"database"`
	Output     string        `yaml:"output" json:"output"`
	UnsetValue string        `yaml:"unset_value" json:"unset_value"`
	CheckFiles bool          `yaml:"check_files" json:"check_files"`
	Ledger     LedgerConfig  `yaml:"ledger" json:"ledger"`
	Logging    LoggingConfig `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig `yaml:"metrics" json:"metrics"`
}

// LedgerConfig configures the SQLite run ledger. An empty DSN disables it.
type LedgerConfig struct {
	DSN   string `yaml:"dsn" json:"dsn"`
	Debug bool   `yaml:"debug" json:"debug"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig configures the Prometheus textfile written after a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UnsetValue: "NA",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes and applies defaults. It does not validate, so
// command-line overrides can be applied first.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.UnsetValue == "" {
		cfg.UnsetValue = def.UnsetValue
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

// Validate checks the configuration needed for an annotation run.
func (c *Config) Validate() error {
	if c.Base == "" {
		return fmt.Errorf("base is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if strings.ContainsAny(c.UnsetValue, "\t\n;") {
		return fmt.Errorf("unset_value must not contain tabs, newlines or ';'")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
