package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/treediff/pkg/models"
)

var sectionTitles = map[models.ListKind]string{
	models.ListRemoved:  "Removed Files:",
	models.ListModified: "Modified Files:",
	models.ListAdded:    "Added Files:",
}

// HumanFormatter writes the three difference lists as plain text
type HumanFormatter struct {
	writer io.Writer
	opts   Options
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(w io.Writer, opts Options) *HumanFormatter {
	if w == nil {
		w = io.Discard
	}
	return &HumanFormatter{writer: w, opts: opts}
}

// Complete writes each section title, its paths one per line and a blank line
func (f *HumanFormatter) Complete(report *models.Report) error {
	c := report.Classification
	if c == nil {
		return fmt.Errorf("report has no classification")
	}

	for _, kind := range models.ListKinds {
		paths, err := renderList(c, kind, f.opts.Relative)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f.writer, sectionTitles[kind]); err != nil {
			return err
		}
		for _, p := range paths {
			if _, err := fmt.Fprintln(f.writer, p); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(f.writer); err != nil {
			return err
		}
	}

	if f.opts.Summary {
		f.writeSummary(report)
	}
	return nil
}

func (f *HumanFormatter) writeSummary(report *models.Report) {
	s := report.Stats
	fmt.Fprintf(f.writer, "Comparison completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Scanned:\n")
	fmt.Fprintf(f.writer, "    Root 1:         %d files\n", s.Root1Files)
	fmt.Fprintf(f.writer, "    Root 2:         %d files\n", s.Root2Files)
	fmt.Fprintf(f.writer, "    Unique paths:   %d files\n", s.UniqueKeys)
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "  Differences:\n")
	fmt.Fprintf(f.writer, "    Removed:        %d\n", s.Removed)
	fmt.Fprintf(f.writer, "    Modified:       %d\n", s.Modified)
	fmt.Fprintf(f.writer, "    Added:          %d\n", s.Added)
	fmt.Fprintf(f.writer, "    Unchanged:      %d\n", s.Unchanged)
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "  Content:\n")
	fmt.Fprintf(f.writer, "    Files compared: %d\n", s.FilesCompared)
	fmt.Fprintf(f.writer, "    Data:           %s\n", formatBytes(s.BytesCompared))

	if report.Duration.Seconds() > 0 && s.BytesCompared > 0 {
		avgSpeed := float64(s.BytesCompared) / report.Duration.Seconds()
		fmt.Fprintf(f.writer, "    Average speed:  %s/s\n", formatBytes(int64(avgSpeed)))
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Status: %s\n", report.Status)
}

// Error reports an error; the status is carried by the exit code
func (f *HumanFormatter) Error(err error, status models.Status) error {
	_, werr := fmt.Fprintf(f.writer, "Error: %v\n", err)
	return werr
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
