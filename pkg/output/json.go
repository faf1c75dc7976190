package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/treediff/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
	opts   Options
}

// JSONReportData represents the final report
type JSONReportData struct {
	OperationID string        `json:"operation_id"`
	Root1       string        `json:"root1"`
	Root2       string        `json:"root2"`
	Method      string        `json:"method"`
	Relative    bool          `json:"relative"`
	Removed     []string      `json:"removed"`
	Modified    []string      `json:"modified"`
	Added       []string      `json:"added"`
	Stats       JSONStatsData `json:"stats"`
	Status      string        `json:"status"`
	Duration    string        `json:"duration"`
	DurationMs  int64         `json:"duration_ms"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	Root1Files    int   `json:"root1_files"`
	Root2Files    int   `json:"root2_files"`
	UniqueKeys    int   `json:"unique_keys"`
	Removed       int   `json:"removed"`
	Modified      int   `json:"modified"`
	Added         int   `json:"added"`
	Unchanged     int   `json:"unchanged"`
	FilesCompared int   `json:"files_compared"`
	BytesCompared int64 `json:"bytes_compared"`
}

// JSONErrorData represents an aborted run
type JSONErrorData struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer, opts Options) *JSONFormatter {
	if w == nil {
		w = io.Discard
	}
	return &JSONFormatter{writer: w, opts: opts}
}

// Complete encodes the report as a single indented JSON document
func (f *JSONFormatter) Complete(report *models.Report) error {
	data, err := buildJSONReport(report, f.opts.Relative)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func buildJSONReport(report *models.Report, relative bool) (*JSONReportData, error) {
	data := &JSONReportData{
		OperationID: report.OperationID,
		Root1:       report.Root1,
		Root2:       report.Root2,
		Method:      string(report.Method),
		Relative:    relative,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Root1Files:    report.Stats.Root1Files,
			Root2Files:    report.Stats.Root2Files,
			UniqueKeys:    report.Stats.UniqueKeys,
			Removed:       report.Stats.Removed,
			Modified:      report.Stats.Modified,
			Added:         report.Stats.Added,
			Unchanged:     report.Stats.Unchanged,
			FilesCompared: report.Stats.FilesCompared,
			BytesCompared: report.Stats.BytesCompared,
		},
		Removed:  []string{},
		Modified: []string{},
		Added:    []string{},
	}

	if c := report.Classification; c != nil {
		lists := map[models.ListKind]*[]string{
			models.ListRemoved:  &data.Removed,
			models.ListModified: &data.Modified,
			models.ListAdded:    &data.Added,
		}
		for kind, dst := range lists {
			paths, err := renderList(c, kind, relative)
			if err != nil {
				return nil, err
			}
			*dst = paths
		}
	}
	return data, nil
}

// Error writes the error and the status of the aborted run as a JSON object
func (f *JSONFormatter) Error(err error, status models.Status) error {
	if status == "" {
		status = models.StatusFailed
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONErrorData{
		Status: string(status),
		Error:  err.Error(),
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
