package cli

import (
	"context"
	"errors"
)

// Process exit codes. A successful comparison exits 0 whether or not the
// trees differ. Aborted runs exit with models.Status.ExitCode (2 failed,
// 3 cancelled).
const (
	exitOK        = 0
	exitUsage     = 1
	exitCancelled = 3
)

// ExitError carries the exit code for an error returned by a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the root command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, context.Canceled) {
		return exitCancelled
	}

	// Bad arguments, flags or configuration
	return exitUsage
}
