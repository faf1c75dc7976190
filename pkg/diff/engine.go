// Package diff classifies the files of two directory trees into removed,
// modified and added sets.
package diff

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/treediff/pkg/compare"
	"github.com/sdejongh/treediff/pkg/logging"
	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/output"
	"github.com/sdejongh/treediff/pkg/relpath"
	"github.com/sdejongh/treediff/pkg/storage"
)

const defaultMaxWorkers = 5

// Options configure an Engine
type Options struct {
	// OperationID is copied into the report
	OperationID string
	// MaxWorkers bounds the number of pairs compared at once
	MaxWorkers int
	Logger     logging.Logger
	Progress   output.Progress
}

// Engine compares the trees behind two backends
type Engine struct {
	left       storage.Backend
	right      storage.Backend
	comparator compare.Comparator
	opts       Options
}

// NewEngine creates a new comparison engine
func NewEngine(left, right storage.Backend, comparator compare.Comparator, opts Options) *Engine {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = defaultMaxWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if opts.Progress == nil {
		opts.Progress = output.NullProgress{}
	}
	return &Engine{left: left, right: right, comparator: comparator, opts: opts}
}

// pair is one RelativeKey present in both trees
type pair struct {
	key       string
	leftPath  string
	rightPath string
}

// Run enumerates both trees, classifies every RelativeKey and returns the
// report. Any enumeration or comparison error aborts the run; the returned
// report then carries a failed or cancelled status and no classification.
func (e *Engine) Run(ctx context.Context) (*models.Report, error) {
	startTime := time.Now()
	report := &models.Report{
		OperationID: e.opts.OperationID,
		Root1:       e.left.Root(),
		Root2:       e.right.Root(),
		Method:      models.ComparisonMethod(e.comparator.Name()),
		StartTime:   startTime,
		Status:      models.StatusSuccess,
	}
	logger := e.opts.Logger.WithFields(logging.Fields{"operation_id": e.opts.OperationID})

	logger.Info(ctx, "Starting comparison", logging.Fields{
		"root1":       report.Root1,
		"root2":       report.Root2,
		"method":      report.Method,
		"max_workers": e.opts.MaxWorkers,
	})

	classification, err := e.classify(ctx, report, logger)
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(startTime)

	if err != nil {
		report.Status = models.StatusFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.Status = models.StatusCancelled
		}
		logger.Error(ctx, "Comparison aborted", err, logging.Fields{"status": report.Status})
		return report, err
	}

	report.Classification = classification
	report.Stats.Removed = len(classification.Removed)
	report.Stats.Modified = len(classification.Modified)
	report.Stats.Added = len(classification.Added)
	report.Stats.Unchanged = classification.Unchanged

	logger.Info(ctx, "Comparison completed", logging.Fields{
		"removed":     report.Stats.Removed,
		"modified":    report.Stats.Modified,
		"added":       report.Stats.Added,
		"unchanged":   report.Stats.Unchanged,
		"duration_ms": report.Duration.Milliseconds(),
	})
	return report, nil
}

func (e *Engine) classify(ctx context.Context, report *models.Report, logger logging.Logger) (*models.Classification, error) {
	leftFiles, rightFiles, err := e.enumerate(ctx)
	if err != nil {
		return nil, err
	}
	report.Stats.Root1Files = leftFiles.Len()
	report.Stats.Root2Files = rightFiles.Len()
	logger.Info(ctx, "Enumeration completed", logging.Fields{
		"root1_files": leftFiles.Len(),
		"root2_files": rightFiles.Len(),
	})

	leftKeys, err := keyIndex(e.left.Root(), leftFiles)
	if err != nil {
		return nil, err
	}
	rightKeys, err := keyIndex(e.right.Root(), rightFiles)
	if err != nil {
		return nil, err
	}

	c := &models.Classification{Root1: e.left.Root(), Root2: e.right.Root()}
	var removedKeys, addedKeys []string
	var pairs []pair

	for key, leftPath := range leftKeys {
		rightPath, ok := rightKeys[key]
		if !ok {
			removedKeys = append(removedKeys, key)
			continue
		}
		pairs = append(pairs, pair{key: key, leftPath: leftPath, rightPath: rightPath})
	}
	for key := range rightKeys {
		if _, ok := leftKeys[key]; !ok {
			addedKeys = append(addedKeys, key)
		}
	}
	report.Stats.UniqueKeys = len(leftKeys) + len(addedKeys)

	sort.Strings(removedKeys)
	sort.Strings(addedKeys)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	for _, key := range removedKeys {
		c.Removed = append(c.Removed, leftKeys[key])
	}
	for _, key := range addedKeys {
		c.Added = append(c.Added, rightKeys[key])
	}

	results, err := e.comparePairs(ctx, pairs, report, logger)
	if err != nil {
		return nil, err
	}
	for i, result := range results {
		if result.Result == compare.Different {
			c.Modified = append(c.Modified, pairs[i].leftPath)
		} else {
			c.Unchanged++
		}
	}

	return c, nil
}

// enumerate lists both trees concurrently
func (e *Engine) enumerate(ctx context.Context) (models.FileSet, models.FileSet, error) {
	var leftFiles, rightFiles models.FileSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := e.left.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to enumerate %s: %w", e.left.Root(), err)
		}
		leftFiles = files
		return nil
	})
	g.Go(func() error {
		files, err := e.right.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to enumerate %s: %w", e.right.Root(), err)
		}
		rightFiles = files
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return leftFiles, rightFiles, nil
}

// keyIndex maps each RelativeKey to its path. A duplicate key keeps its
// first path.
func keyIndex(root string, files models.FileSet) (map[string]string, error) {
	index := make(map[string]string, len(files))
	for _, p := range files {
		key, err := relpath.Relativize(root, p)
		if err != nil {
			return nil, fmt.Errorf("enumeration of %s returned a foreign path: %w", root, err)
		}
		if _, ok := index[key]; !ok {
			index[key] = p
		}
	}
	return index, nil
}

// comparePairs compares every pair on a bounded pool. Each worker writes
// only to its own slot of the result slice.
func (e *Engine) comparePairs(ctx context.Context, pairs []pair, report *models.Report, logger logging.Logger) ([]*compare.Comparison, error) {
	results := make([]*compare.Comparison, len(pairs))
	if len(pairs) == 0 {
		return results, nil
	}

	progress := e.opts.Progress
	if comp, ok := e.comparator.(interface {
		SetProgressCallback(compare.ProgressFunc)
	}); ok {
		comp.SetProgressCallback(func(path string, current, total int64) {
			progress.Update(output.ProgressUpdate{
				Type:       "file_progress",
				FilePath:   path,
				BytesRead:  current,
				TotalBytes: total,
			})
		})
	}

	progress.Start(len(pairs))
	defer progress.Finish()

	var bytesCompared atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxWorkers)
	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			progress.Update(output.ProgressUpdate{Type: "compare_start", FilePath: p.leftPath})

			result, err := e.comparator.Compare(gctx, e.left, e.right, p.leftPath, p.rightPath)
			if err != nil {
				return fmt.Errorf("could not compare %s: %w", p.key, err)
			}
			results[i] = result
			bytesCompared.Add(result.BytesCompared)

			if result.Result == compare.Different {
				logger.Debug(gctx, "File modified", logging.Fields{"key": p.key, "reason": result.Reason})
			}
			progress.Update(output.ProgressUpdate{
				Type:      "compare_complete",
				FilePath:  p.leftPath,
				BytesRead: result.BytesCompared,
			})
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// The loop may stop early on cancellation without any worker failing
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	report.Stats.FilesCompared = len(pairs)
	report.Stats.BytesCompared = bytesCompared.Load()
	return results, nil
}

// Compare classifies the regular files under root1 and root2 on the local
// filesystem using byte-by-byte comparison.
func Compare(ctx context.Context, root1, root2 string) (*models.Classification, error) {
	left, err := storage.NewLocal(root1)
	if err != nil {
		return nil, err
	}
	defer left.Close()

	right, err := storage.NewLocal(root2)
	if err != nil {
		return nil, err
	}
	defer right.Close()

	report, err := NewEngine(left, right, compare.NewBinaryComparator(0), Options{}).Run(ctx)
	if err != nil {
		return nil, err
	}
	return report.Classification, nil
}
