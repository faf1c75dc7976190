package storage

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/treediff/pkg/models"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Backend is one side of a comparison: a root directory that can be
// enumerated and whose files can be read.
// Implementations include the local filesystem and any afero.Fs.
type Backend interface {
	// Root returns the root every listed path starts with
	Root() string

	// List returns the paths of all regular files under the root, recursively
	List(ctx context.Context) (models.FileSet, error)

	// Read opens a file returned by List for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata for a path returned by List
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Close releases any resources held by the backend
	Close() error
}

// Enumerate lists the regular files under root on the local filesystem
func Enumerate(ctx context.Context, root string, opts ...Option) (models.FileSet, error) {
	local, err := NewLocal(root, opts...)
	if err != nil {
		return nil, err
	}
	defer local.Close()

	return local.List(ctx)
}
