package compare

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/sdejongh/treediff/pkg/storage"
)

// HashComparator compares files by BLAKE3 digest after a size check.
// Both digests are computed in parallel.
type HashComparator struct {
	bufferSize     int
	bufferPool     *sync.Pool
	progressReport ProgressFunc
}

// NewHashComparator creates a new hash-based comparator
func NewHashComparator(bufferSize int) *HashComparator {
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &HashComparator{
		bufferSize: bufferSize,
		bufferPool: newBufferPool(bufferSize),
	}
}

// SetProgressCallback sets a callback for progress reporting during hashing.
// Only the left file reports progress.
func (c *HashComparator) SetProgressCallback(callback ProgressFunc) {
	c.progressReport = callback
}

// Compare compares two files using BLAKE3 digests
func (c *HashComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return nil, err
	}

	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return nil, err
	}

	if leftInfo.Size != rightInfo.Size {
		return &Comparison{
			LeftPath:  leftPath,
			RightPath: rightPath,
			Result:    Different,
			Reason:    "file sizes differ",
		}, nil
	}

	var leftHash, rightHash string
	var leftErr, rightErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftHash, leftErr = c.computeHash(ctx, left, leftPath, leftInfo.Size, c.progressReport)
	}()
	go func() {
		defer wg.Done()
		rightHash, rightErr = c.computeHash(ctx, right, rightPath, rightInfo.Size, nil)
	}()
	wg.Wait()

	if err := errors.Join(leftErr, rightErr); err != nil {
		return nil, err
	}

	if leftHash != rightHash {
		return &Comparison{
			LeftPath:      leftPath,
			RightPath:     rightPath,
			Result:        Different,
			Reason:        "file hashes differ",
			BytesCompared: leftInfo.Size,
		}, nil
	}

	return &Comparison{
		LeftPath:      leftPath,
		RightPath:     rightPath,
		Result:        Same,
		Reason:        "file hashes match",
		BytesCompared: leftInfo.Size,
	}, nil
}

// computeHash streams a file through BLAKE3
func (c *HashComparator) computeHash(ctx context.Context, backend storage.Backend, path string, size int64, report ProgressFunc) (string, error) {
	reader, err := backend.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	hasher := blake3.New()

	bufPtr := c.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer c.bufferPool.Put(bufPtr)

	progress := progressThrottle{report: report, path: path, total: size, lastTime: time.Now()}
	var totalRead int64

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			totalRead += int64(n)
			progress.update(totalRead)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &storage.IOError{Op: "read", Path: path, Err: err}
		}
	}

	progress.finish(totalRead)

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Name returns the comparator name
func (c *HashComparator) Name() string {
	return "hash"
}
