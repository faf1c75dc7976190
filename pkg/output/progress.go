package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"
)

// ProgressUpdate represents a progress notification during the content pass
type ProgressUpdate struct {
	Type       string // "compare_start", "file_progress", "compare_complete"
	FilePath   string
	BytesRead  int64
	TotalBytes int64
}

// Progress receives updates while file pairs are being compared.
// Implementations must be safe for concurrent use.
type Progress interface {
	// Start announces how many file pairs will be compared
	Start(totalFiles int)

	// Update reports a change for one file pair
	Update(update ProgressUpdate)

	// Finish stops the display
	Finish()
}

// BarTemplate renders "Comparing: 3 / 10 [===>    ] 30% 1s current/file"
var BarTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}: {{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{etime . }}{{string . "suffix"}}`

// BarProgress draws a cheggaaa/pb bar counting compared file pairs
type BarProgress struct {
	writer io.Writer
	bar    *pb.ProgressBar
}

// NewBarProgress creates a bar writing to w
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{writer: w}
}

// Start creates and starts the bar
func (p *BarProgress) Start(totalFiles int) {
	bar := BarTemplate.New(totalFiles)
	bar.SetWriter(p.writer)
	bar.SetWidth(100)
	bar.Set("prefix", "Comparing")
	bar.Start()
	p.bar = bar
}

// Update advances the bar when a pair completes and shows the file being read
func (p *BarProgress) Update(update ProgressUpdate) {
	if p.bar == nil {
		return
	}
	switch update.Type {
	case "compare_start", "file_progress":
		p.bar.Set("suffix", " "+filepath.Base(update.FilePath))
	case "compare_complete":
		p.bar.Increment()
	}
}

// Finish renders the final state of the bar
func (p *BarProgress) Finish() {
	if p.bar == nil {
		return
	}
	p.bar.Set("suffix", "")
	p.bar.Finish()
}

// NullProgress discards all updates
type NullProgress struct{}

func (NullProgress) Start(totalFiles int)         {}
func (NullProgress) Update(update ProgressUpdate) {}
func (NullProgress) Finish()                      {}

// NewProgress returns a bar on w when enabled and w is a terminal,
// otherwise a NullProgress
func NewProgress(w io.Writer, enabled bool) Progress {
	if !enabled || !IsTerminal(w) {
		return NullProgress{}
	}
	return NewBarProgress(w)
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
