package models

import (
	"time"
)

// ComparisonMethod defines how file contents are compared
type ComparisonMethod string

const (
	// CompareBinary compares byte-by-byte
	CompareBinary ComparisonMethod = "binary"
	// CompareHash compares BLAKE3 digests
	CompareHash ComparisonMethod = "hash"
)

// Operation describes one requested tree comparison
type Operation struct {
	ID               string
	Root1            string
	Root2            string
	ComparisonMethod ComparisonMethod
	ExcludePatterns  []string
	Relative         bool // Render relative keys instead of full paths
	MaxWorkers       int
	BufferSize       int
	CreatedAt        time.Time
}

// Validate checks if the operation configuration is valid
func (op *Operation) Validate() error {
	if op.Root1 == "" {
		return &ValidationError{Field: "Root1", Message: "first root is required"}
	}
	if op.Root2 == "" {
		return &ValidationError{Field: "Root2", Message: "second root is required"}
	}
	switch op.ComparisonMethod {
	case CompareBinary, CompareHash:
	default:
		return &ValidationError{Field: "ComparisonMethod", Message: "must be 'binary' or 'hash'"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
