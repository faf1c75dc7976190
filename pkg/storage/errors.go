package storage

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is wrapped by an IOError when a root exists but is not a directory
var ErrNotDirectory = errors.New("not a directory")

// IOError reports a filesystem operation that failed on a specific path
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func newIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
