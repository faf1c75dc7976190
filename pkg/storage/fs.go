package storage

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/sdejongh/treediff/pkg/models"
	"github.com/sdejongh/treediff/pkg/ratelimit"
)

// FS is a backend over any afero filesystem, e.g. an in-memory tree or a
// base-path restricted view of the host filesystem
type FS struct {
	fs       afero.Fs
	rootPath string
	opts     *options
}

// NewFS creates a backend rooted at rootPath inside fsys
func NewFS(fsys afero.Fs, rootPath string, opts ...Option) (*FS, error) {
	rootPath = filepath.Clean(rootPath)

	info, err := fsys.Stat(rootPath)
	if err != nil {
		return nil, newIOError("open directory", rootPath, err)
	}
	if !info.IsDir() {
		return nil, newIOError("open directory", rootPath, ErrNotDirectory)
	}

	return &FS{fs: fsys, rootPath: rootPath, opts: applyOptions(opts)}, nil
}

// Root returns the root path inside the filesystem
func (b *FS) Root() string {
	return b.rootPath
}

// List returns all regular files under the root, depth first
func (b *FS) List(ctx context.Context) (models.FileSet, error) {
	var files models.FileSet
	if err := b.walk(ctx, b.rootPath, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (b *FS) walk(ctx context.Context, dir string, files *models.FileSet) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := b.readDir(dir)
	if err != nil {
		return err
	}

	for _, info := range entries {
		if isPseudoEntry(info.Name()) {
			continue
		}

		fullPath := filepath.Join(dir, info.Name())
		kind, err := resolveKind(info.Mode(), fullPath, b.lstat)
		if err != nil {
			return err
		}

		switch kind {
		case entryFile:
			if !b.excluded(fullPath, false) {
				*files = append(*files, fullPath)
			}
		case entryDir:
			if b.excluded(fullPath, true) {
				continue
			}
			if err := b.walk(ctx, fullPath, files); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *FS) readDir(dir string) ([]fs.FileInfo, error) {
	d, err := b.fs.Open(dir)
	if err != nil {
		return nil, newIOError("open directory", dir, err)
	}
	defer d.Close()

	entries, err := d.Readdir(-1)
	if err != nil {
		return nil, newIOError("read directory", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	return entries, nil
}

// lstat avoids following symlinks when the filesystem supports it
func (b *FS) lstat(path string) (fs.FileInfo, error) {
	if l, ok := b.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return b.fs.Stat(path)
}

func (b *FS) excluded(fullPath string, isDir bool) bool {
	if len(b.opts.exclude) == 0 {
		return false
	}
	return excluded(fullPath[len(b.rootPath):], isDir, b.opts.exclude)
}

// Read opens a file for reading
func (b *FS) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := b.fs.Open(path)
	if err != nil {
		return nil, newIOError("open file", path, err)
	}
	return ratelimit.NewReadCloser(ctx, file, b.opts.limiter), nil
}

// Stat returns file metadata
func (b *FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := b.fs.Stat(path)
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

// Close releases resources (no-op, the filesystem is owned by the caller)
func (b *FS) Close() error {
	return nil
}
