package config

import (
	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Compare     CompareConfig     `yaml:"compare"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// CompareConfig holds comparison settings
type CompareConfig struct {
	Method   models.ComparisonMethod `yaml:"method"`
	Relative bool                    `yaml:"relative"` // Print RelativeKeys instead of absolute paths
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers int    `yaml:"max_workers"`
	BufferSize int    `yaml:"buffer_size"`
	ReadLimit  string `yaml:"read_limit"` // e.g. "10M" per second, empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on a terminal
	Quiet    bool   `yaml:"quiet"`    // Suppress the summary
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = no logging)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			Method:   models.CompareBinary,
			Relative: false,
		},
		Performance: PerformanceConfig{
			MaxWorkers: 5,
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: false,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Compare.Method {
	case models.CompareBinary, models.CompareHash:
	default:
		return &models.ValidationError{
			Field:   "compare.method",
			Message: "must be 'binary' or 'hash'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := ratelimit.ParseRate(c.Performance.ReadLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.read_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
