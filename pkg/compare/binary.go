package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sdejongh/treediff/pkg/storage"
)

// BinaryComparator compares files byte-by-byte.
// Two files are the same iff they have equal length and every byte matches;
// the scan stops at the first mismatching byte.
type BinaryComparator struct {
	bufferSize     int
	bufferPool     *sync.Pool
	progressReport ProgressFunc
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: newBufferPool(bufferSize),
	}
}

// SetProgressCallback sets the progress reporting callback
func (c *BinaryComparator) SetProgressCallback(callback ProgressFunc) {
	c.progressReport = callback
}

// Compare compares two files byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return nil, err
	}

	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return nil, err
	}

	// Quick check: if sizes differ, files are different
	if leftInfo.Size != rightInfo.Size {
		return &Comparison{
			LeftPath:  leftPath,
			RightPath: rightPath,
			Result:    Different,
			Reason:    fmt.Sprintf("size mismatch: left=%d, right=%d", leftInfo.Size, rightInfo.Size),
		}, nil
	}

	leftReader, err := left.Read(ctx, leftPath)
	if err != nil {
		return nil, err
	}
	defer leftReader.Close()

	rightReader, err := right.Read(ctx, rightPath)
	if err != nil {
		return nil, err
	}
	defer rightReader.Close()

	leftBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(leftBufPtr)
	leftBuf := *leftBufPtr

	rightBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(rightBufPtr)
	rightBuf := *rightBufPtr

	progress := progressThrottle{report: c.progressReport, path: leftPath, total: leftInfo.Size, lastTime: time.Now()}
	var compared int64

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// ReadFull so short reads on one side don't look like a mismatch
		leftN, leftErr := io.ReadFull(leftReader, leftBuf)
		if leftErr != nil && !isEOF(leftErr) {
			return nil, &storage.IOError{Op: "read", Path: leftPath, Err: leftErr}
		}
		rightN, rightErr := io.ReadFull(rightReader, rightBuf)
		if rightErr != nil && !isEOF(rightErr) {
			return nil, &storage.IOError{Op: "read", Path: rightPath, Err: rightErr}
		}

		if !bytes.Equal(leftBuf[:leftN], rightBuf[:rightN]) {
			offset := compared + int64(firstMismatch(leftBuf[:leftN], rightBuf[:rightN]))
			return &Comparison{
				LeftPath:      leftPath,
				RightPath:     rightPath,
				Result:        Different,
				Reason:        fmt.Sprintf("binary content differs at byte offset %d", offset),
				BytesCompared: offset,
			}, nil
		}

		compared += int64(leftN)
		progress.update(compared)

		// Equal chunks mean both sides hit EOF together
		if isEOF(leftErr) || isEOF(rightErr) {
			break
		}
	}

	progress.finish(compared)

	return &Comparison{
		LeftPath:      leftPath,
		RightPath:     rightPath,
		Result:        Same,
		Reason:        fmt.Sprintf("binary content matches (%d bytes)", compared),
		BytesCompared: compared,
	}, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

// firstMismatch returns the index of the first differing byte, or the
// length of the shorter slice when one is a prefix of the other
func firstMismatch(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
