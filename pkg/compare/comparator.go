package compare

import (
	"context"
	"sync"
	"time"

	"github.com/sdejongh/treediff/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are byte-identical
	Same Result = "same"
	// Different indicates files differ in length or content
	Different Result = "different"
)

// Comparison holds the result of comparing two files.
// A comparison that could not be carried out is reported as an error
// instead, never as Same or Different.
type Comparison struct {
	LeftPath      string
	RightPath     string
	Result        Result
	Reason        string
	BytesCompared int64
}

// ProgressFunc receives the number of bytes processed so far for path
type ProgressFunc func(path string, current, total int64)

// Comparator defines the interface for file content comparison.
// Implementations must be safe for concurrent use.
type Comparator interface {
	// Compare compares leftPath on left with rightPath on right
	Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}

const (
	minBufferSize = 4096

	progressReportInterval = 50 * time.Millisecond
	progressReportBytes    = 64 * 1024
)

func newBufferPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// progressThrottle limits callbacks to one per 64KB or 50ms
type progressThrottle struct {
	report       ProgressFunc
	path         string
	total        int64
	lastReported int64
	lastTime     time.Time
}

func (p *progressThrottle) update(current int64) {
	if p.report == nil {
		return
	}
	if current-p.lastReported >= progressReportBytes || time.Since(p.lastTime) >= progressReportInterval {
		p.report(p.path, current, p.total)
		p.lastReported = current
		p.lastTime = time.Now()
	}
}

func (p *progressThrottle) finish(current int64) {
	if p.report != nil && current > p.lastReported {
		p.report(p.path, current, p.total)
	}
}

// New returns the comparator for a method name
func New(method string, bufferSize int) (Comparator, error) {
	switch method {
	case "binary":
		return NewBinaryComparator(bufferSize), nil
	case "hash":
		return NewHashComparator(bufferSize), nil
	default:
		return nil, &UnknownMethodError{Method: method}
	}
}

// UnknownMethodError is returned by New for an unsupported method name
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return "unsupported comparison method: " + e.Method + " (use: binary, hash)"
}
