package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/relpath"
)

// Options control how a formatter renders paths
type Options struct {
	// Relative renders RelativeKeys instead of absolute paths
	Relative bool
	// Summary appends statistics after the three lists (human format only)
	Summary bool
}

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Complete renders the final report
	Complete(report *models.Report) error

	// Error reports an error that aborted the comparison with status
	Error(err error, status models.Status) error

	// Name returns the formatter name
	Name() string
}

// UnknownFormatError is returned by New for an unsupported format name
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format: %s (valid: human, json)", e.Format)
}

// New returns the formatter registered under name, writing to w
func New(name string, w io.Writer, opts Options) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(w, opts), nil
	case "json":
		return NewJSONFormatter(w, opts), nil
	default:
		return nil, &UnknownFormatError{Format: name}
	}
}

// renderList returns the paths of kind as they should be displayed
func renderList(c *models.Classification, kind models.ListKind, relative bool) ([]string, error) {
	root := c.RootOf(kind)
	list := c.List(kind)

	out := make([]string, len(list))
	for i, path := range list {
		shown, err := relpath.Display(root, path, relative)
		if err != nil {
			return nil, fmt.Errorf("%s list: %w", kind, err)
		}
		out[i] = shown
	}
	return out, nil
}
