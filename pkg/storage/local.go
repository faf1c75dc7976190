package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/ratelimit"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
	opts     *options
}

// NewLocal creates a new local filesystem backend rooted at rootPath.
// The root is made absolute, so every listed path is absolute too.
func NewLocal(rootPath string, opts ...Option) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, newIOError("open directory", absPath, err)
	}

	if !info.IsDir() {
		return nil, newIOError("open directory", absPath, ErrNotDirectory)
	}

	return &Local{rootPath: absPath, opts: applyOptions(opts)}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// List returns all regular files under the root, depth first
func (l *Local) List(ctx context.Context) (models.FileSet, error) {
	var files models.FileSet
	if err := l.walk(ctx, l.rootPath, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (l *Local) walk(ctx context.Context, dir string, files *models.FileSet) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	d, err := os.Open(dir)
	if err != nil {
		return newIOError("open directory", dir, err)
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return newIOError("read directory", dir, err)
	}

	for _, entry := range entries {
		if isPseudoEntry(entry.Name()) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())
		kind, err := resolveKind(entry.Type(), fullPath, os.Lstat)
		if err != nil {
			return err
		}

		switch kind {
		case entryFile:
			if !l.excluded(fullPath, false) {
				*files = append(*files, fullPath)
			}
		case entryDir:
			if l.excluded(fullPath, true) {
				continue
			}
			if err := l.walk(ctx, fullPath, files); err != nil {
				return err
			}
		}
	}

	return nil
}

func (l *Local) excluded(fullPath string, isDir bool) bool {
	if len(l.opts.exclude) == 0 {
		return false
	}
	return excluded(fullPath[len(l.rootPath):], isDir, l.opts.exclude)
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, newIOError("open file", path, err)
	}

	return ratelimit.NewReadCloser(ctx, file, l.opts.limiter), nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, newIOError("stat", path, err)
	}

	return &FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
