package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/treediff/pkg/models"
)

// WriteDifferencesReport writes the differences report to a file
// Format can be "human" or "json"
func WriteDifferencesReport(report *models.Report, filepath string, format string, relative bool) error {
	if report.Classification == nil || !report.Classification.HasDifferences() {
		// No differences - don't create empty file
		return nil
	}

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	if err := writeDifferences(report, file, format, relative); err != nil {
		return err
	}
	return file.Close()
}

func writeDifferences(report *models.Report, w io.Writer, format string, relative bool) error {
	switch format {
	case "json":
		return writeDifferencesJSON(report, w, relative)
	default: // "human"
		return writeDifferencesHuman(report, w, relative)
	}
}

var reportLabels = map[models.ListKind]string{
	models.ListRemoved:  "Only in Root 1",
	models.ListModified: "Content Differences",
	models.ListAdded:    "Only in Root 2",
}

// writeDifferencesHuman writes differences in human-readable format
func writeDifferencesHuman(report *models.Report, w io.Writer, relative bool) error {
	c := report.Classification

	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Root 1: %s\n", report.Root1)
	fmt.Fprintf(w, "Root 2: %s\n", report.Root2)
	fmt.Fprintf(w, "Method: %s\n\n", report.Method)

	total := len(c.Removed) + len(c.Modified) + len(c.Added)
	fmt.Fprintf(w, "Total Differences: %d\n\n", total)

	for _, kind := range models.ListKinds {
		paths, err := renderList(c, kind, relative)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d files)", reportLabels[kind], len(paths))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(report *models.Report, w io.Writer, relative bool) error {
	data, err := buildJSONReport(report, relative)
	if err != nil {
		return err
	}

	output := struct {
		Generated  string   `json:"generated"`
		Root1      string   `json:"root1"`
		Root2      string   `json:"root2"`
		Method     string   `json:"method"`
		TotalCount int      `json:"total_count"`
		Removed    []string `json:"removed"`
		Modified   []string `json:"modified"`
		Added      []string `json:"added"`
	}{
		Generated:  time.Now().Format(time.RFC3339),
		Root1:      data.Root1,
		Root2:      data.Root2,
		Method:     data.Method,
		TotalCount: len(data.Removed) + len(data.Modified) + len(data.Added),
		Removed:    data.Removed,
		Modified:   data.Modified,
		Added:      data.Added,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
