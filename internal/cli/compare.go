package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treediff/pkg/compare"
	"github.com/sdejongh/treediff/pkg/diff"
	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/output"
	"github.com/sdejongh/treediff/pkg/ratelimit"
	"github.com/sdejongh/treediff/pkg/storage"
)

// CompareFlags holds compare command flags
type CompareFlags struct {
	Relative   bool
	Comparison string
	Parallel   int
	ReadLimit  string
	Exclude    []string
	Output     string
	Progress   bool
	DiffReport string
	DiffFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	flags := &CompareFlags{}

	cmd := &cobra.Command{
		Use:   "compare ROOT1 ROOT2",
		Short: "List files removed, modified and added between two directories",
		Long: `Compare the regular files under ROOT1 and ROOT2 and print three lists:
files only under ROOT1 (Removed), files under both whose bytes differ
(Modified) and files only under ROOT2 (Added). Identical files are not listed.

Removed and Modified paths are printed under ROOT1, Added paths under ROOT2.
Symbolic links and special files are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, flags, args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&flags.Relative, "relative", "r", false, "print paths relative to their root")
	cmd.Flags().StringVar(&flags.Comparison, "comparison", "", "comparison method: binary, hash (default from config: binary)")
	cmd.Flags().IntVarP(&flags.Parallel, "parallel", "p", 0, "number of files compared in parallel (default: 5)")
	cmd.Flags().StringVar(&flags.ReadLimit, "read-limit", "", "limit total read throughput, e.g. 512K, 10M (default: unlimited)")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&flags.Progress, "progress", false, "show a progress bar on stderr when it is a terminal")
	cmd.Flags().StringVar(&flags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&flags.DiffFormat, "diff-format", "human", "differences report format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runCompare(cmd *cobra.Command, flags *CompareFlags, root1, root2 string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	root1, root2, err := validateRoots(root1, root2)
	if err != nil {
		return err
	}
	if err := validateCompareFlags(flags); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyFlagsToConfig(cmd, flags, cfg)

	operation, err := createOperation(cfg, root1, root2)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter, err := output.New(cfg.Output.Format, cmd.OutOrStdout(), output.Options{
		Relative: operation.Relative,
		Summary:  globalFlags.Verbose && !cfg.Output.Quiet,
	})
	if err != nil {
		return err
	}

	// Both roots share one read budget
	readLimit, _ := ratelimit.ParseRate(cfg.Performance.ReadLimit)
	storageOpts := []storage.Option{
		storage.WithExclude(operation.ExcludePatterns...),
		storage.WithReadLimit(ratelimit.NewLimiter(readLimit)),
	}

	// Create storage backends
	left, err := storage.NewLocal(operation.Root1, storageOpts...)
	if err != nil {
		return failed(formatter, fmt.Errorf("failed to open first root: %w", err))
	}
	defer left.Close()

	right, err := storage.NewLocal(operation.Root2, storageOpts...)
	if err != nil {
		return failed(formatter, fmt.Errorf("failed to open second root: %w", err))
	}
	defer right.Close()

	comparator, err := compare.New(string(operation.ComparisonMethod), operation.BufferSize)
	if err != nil {
		return err
	}

	progress := output.NewProgress(cmd.ErrOrStderr(), cfg.Output.Progress && !cfg.Output.Quiet)

	engine := diff.NewEngine(left, right, comparator, diff.Options{
		OperationID: operation.ID,
		MaxWorkers:  operation.MaxWorkers,
		Logger:      logger,
		Progress:    progress,
	})

	report, err := engine.Run(ctx)
	if err != nil {
		return failedWithStatus(formatter, fmt.Errorf("comparison failed: %w", err), report.Status)
	}

	if err := formatter.Complete(report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Write differences report if requested
	if flags.DiffReport != "" {
		if err := output.WriteDifferencesReport(report, flags.DiffReport, flags.DiffFormat, operation.Relative); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	return nil
}

// failed reports err through the formatter when it writes machine-readable
// output, and marks err as a failed comparison
func failed(formatter output.Formatter, err error) error {
	return failedWithStatus(formatter, err, models.StatusFailed)
}

// failedWithStatus is failed for a run that ended with status, which also
// picks the exit code
func failedWithStatus(formatter output.Formatter, err error, status models.Status) error {
	if formatter.Name() == "json" {
		formatter.Error(err, status)
	}
	return &ExitError{Code: status.ExitCode(), Err: err}
}
