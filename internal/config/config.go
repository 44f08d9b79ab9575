package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents an optional filter profile
type Config struct {
	Filters    FilterConfig     `yaml:"filters"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Processing ProcessingConfig `yaml:"processing"`
}

// FilterConfig mirrors the filter flags; empty values leave a filter disabled
type FilterConfig struct {
	Regex           string `yaml:"regex"`
	From            string `yaml:"from"`
	To              string `yaml:"to"`
	HTTP            string `yaml:"http"`
	DurationBetween string `yaml:"duration_between"`
	IP              string `yaml:"ip"`
	Subnet          string `yaml:"subnet"`
}

// OutputConfig selects the view and how it is rendered
type OutputConfig struct {
	Mode   string `yaml:"mode"`   // list, top, summary
	Format string `yaml:"format"` // text, json
	Color  string `yaml:"color"`  // auto, always, never
}

// LoggingConfig defines diagnostic logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProcessingConfig defines input reading settings
type ProcessingConfig struct {
	MaxLineBytes int `yaml:"max_line_bytes"`
}

// Default returns the configuration used when no profile is given
func Default() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

// LoadConfig reads a YAML profile. An empty path returns the defaults without touching disk.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks enumerated settings; filter values are validated when filters are built
func (c *Config) Validate() error {
	switch c.Output.Mode {
	case "list", "top", "summary":
	default:
		return fmt.Errorf("output.mode must be one of list, top, summary (got %q)", c.Output.Mode)
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be one of text, json (got %q)", c.Output.Format)
	}

	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be one of auto, always, never (got %q)", c.Output.Color)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}

	if c.Processing.MaxLineBytes < 0 {
		return fmt.Errorf("processing.max_line_bytes must not be negative")
	}

	return nil
}

func setDefaults(config *Config) {
	if config.Output.Mode == "" {
		config.Output.Mode = "list"
	}
	if config.Output.Format == "" {
		config.Output.Format = "text"
	}
	if config.Output.Color == "" {
		config.Output.Color = "auto"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "warn"
	}
	if config.Processing.MaxLineBytes == 0 {
		config.Processing.MaxLineBytes = 1024 * 1024
	}
}
