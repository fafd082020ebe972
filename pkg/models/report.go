package models

import (
	"time"
)

// Report represents the results of a duplicate search
type Report struct {
	// Run details
	RunID string
	Roots []string
	Mode  Mode

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Groups in the order they were formed
	Groups []Group

	// Directories is the reduced, directory-oriented view of Groups
	Directories *DirectoryReport

	// Skipped lists every path left out of the results
	Skipped []Skipped

	// Overall status
	Status Status
}

// Statistics holds search metrics
type Statistics struct {
	FilesScanned     int
	FilesSkipped     int
	BytesScanned     int64
	Comparisons      int
	Collisions       int // non-empty buckets where no candidate matched
	Groups           int
	DuplicateFiles   int // members of groups, representatives included
	DirectoryEntries int
	GroupsDropped    int
}

// Stage names the step at which a path was skipped
type Stage string

const (
	// StageScan indicates a root or directory could not be enumerated
	StageScan Stage = "scan"
	// StageFingerprint indicates a file could not be read for fingerprinting
	StageFingerprint Stage = "fingerprint"
	// StageReduce indicates a directory could not be canonicalized
	StageReduce Stage = "reduce"
)

// Skipped records an item excluded from the results
type Skipped struct {
	Path  string
	Stage Stage
	Err   error
}

// Status represents the overall result
type Status string

const (
	// StatusSuccess indicates every file was processed
	StatusSuccess Status = "success"
	// StatusPartial indicates some files or groups were skipped
	StatusPartial Status = "partial"
	// StatusFailed indicates the search could not complete
	StatusFailed Status = "failed"
	// StatusCancelled indicates the search was cancelled
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the appropriate exit code for the status.
// Skipped files are reported but do not fail the run.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess, StatusPartial:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
