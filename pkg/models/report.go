package models

import (
	"time"
)

// Report represents the results of a comparison run
type Report struct {
	OperationID string
	Root1       string
	Root2       string
	Method      ComparisonMethod

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Statistics

	Classification *Classification

	Status Status
}

// Statistics holds comparison metrics
type Statistics struct {
	Root1Files int // Regular files enumerated under Root1
	Root2Files int // Regular files enumerated under Root2
	UniqueKeys int // Distinct relative keys across both roots

	Removed   int
	Modified  int
	Added     int
	Unchanged int

	FilesCompared int   // Pairs whose content was compared
	BytesCompared int64 // Bytes read from Root1 during content comparison
}

// Status represents the overall result
type Status string

const (
	// StatusSuccess indicates the comparison ran to completion
	StatusSuccess Status = "success"
	// StatusFailed indicates an I/O or programming error aborted the run
	StatusFailed Status = "failed"
	// StatusCancelled indicates the run was cancelled
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the process exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
