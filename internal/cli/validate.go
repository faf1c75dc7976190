package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/treediff/internal/platform"
	"github.com/sdejongh/treediff/pkg/config"
	"github.com/sdejongh/treediff/pkg/logging"
	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/ratelimit"
)

// validateRoots checks both roots are usable paths and returns them
// normalized. Existence is checked later, when the roots are opened.
func validateRoots(root1, root2 string) (string, string, error) {
	for _, root := range []string{root1, root2} {
		if err := platform.ValidatePath(root); err != nil {
			return "", "", err
		}
	}

	abs1, err := platform.NormalizePath(root1)
	if err != nil {
		return "", "", err
	}
	abs2, err := platform.NormalizePath(root2)
	if err != nil {
		return "", "", err
	}

	return abs1, abs2, nil
}

// validateCompareFlags validates the compare command flags
func validateCompareFlags(flags *CompareFlags) error {
	// Validate comparison method
	validComparisons := map[string]bool{
		"":       true,
		"binary": true,
		"hash":   true,
	}
	if !validComparisons[flags.Comparison] {
		return fmt.Errorf("invalid comparison method: %s (valid: binary, hash)", flags.Comparison)
	}

	validOutputs := map[string]bool{"": true, "human": true, "json": true}
	if !validOutputs[flags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", flags.Output)
	}

	validDiffFormats := map[string]bool{"human": true, "json": true}
	if !validDiffFormats[flags.DiffFormat] {
		return fmt.Errorf("invalid differences report format: %s (valid: human, json)", flags.DiffFormat)
	}

	if flags.Parallel < 0 {
		return fmt.Errorf("invalid parallel workers: %d (must be positive)", flags.Parallel)
	}

	if _, err := ratelimit.ParseRate(flags.ReadLimit); err != nil {
		return fmt.Errorf("invalid read limit: %w", err)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, flags *CompareFlags, cfg *config.Config) {
	// Comparison method
	if flags.Comparison != "" {
		cfg.Compare.Method = models.ComparisonMethod(flags.Comparison)
	}

	if cmd.Flags().Changed("relative") {
		cfg.Compare.Relative = flags.Relative
	}

	// Parallel workers (default: 5)
	if flags.Parallel > 0 {
		cfg.Performance.MaxWorkers = flags.Parallel
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = 5
	}

	if flags.ReadLimit != "" {
		cfg.Performance.ReadLimit = flags.ReadLimit
	}

	// Exclude patterns
	if len(flags.Exclude) > 0 {
		cfg.Exclude = flags.Exclude
	}

	// Output format
	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}

	if cmd.Flags().Changed("progress") {
		cfg.Output.Progress = flags.Progress
	}

	// Logging
	if flags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = flags.LogFile
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// createOperation creates a comparison operation from configuration
func createOperation(cfg *config.Config, root1, root2 string) (*models.Operation, error) {
	operation := &models.Operation{
		ID:               uuid.New().String(),
		Root1:            root1,
		Root2:            root2,
		ComparisonMethod: cfg.Compare.Method,
		ExcludePatterns:  cfg.Exclude,
		Relative:         cfg.Compare.Relative,
		MaxWorkers:       cfg.Performance.MaxWorkers,
		BufferSize:       cfg.Performance.BufferSize,
		CreatedAt:        time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	// If logging is off or has nowhere to go, return null logger
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return logging.NewNullLogger(), nil
	}

	// Parse log format
	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSizeMB:  10,
		MaxBackups: 5,
	})
}
