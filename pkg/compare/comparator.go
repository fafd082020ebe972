package compare

import (
	"context"
	"io"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are equivalent
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
	// Error indicates comparison failed; the files are treated as different
	Error Result = "error"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	PathA  string
	PathB  string
	Result Result
	Reason string
	Error  error
}

// Equivalent reports whether the files were judged equivalent
func (c *Comparison) Equivalent() bool {
	return c != nil && c.Result == Same
}

// Comparator decides whether two files are equivalent.
// Implementations never return a hard failure: an unreadable file is reported
// through Comparison.Error and counts as not equivalent.
type Comparator interface {
	// Compare compares two files and returns the result
	Compare(ctx context.Context, pathA, pathB string) *Comparison

	// Name returns the name of the comparison method
	Name() string
}

// ReaderWrapper wraps a file reader, e.g. for bandwidth limiting
type ReaderWrapper func(io.Reader) io.Reader

func same(a, b, reason string) *Comparison {
	return &Comparison{PathA: a, PathB: b, Result: Same, Reason: reason}
}

func different(a, b, reason string) *Comparison {
	return &Comparison{PathA: a, PathB: b, Result: Different, Reason: reason}
}

func failed(a, b, reason string, err error) *Comparison {
	return &Comparison{PathA: a, PathB: b, Result: Error, Reason: reason, Error: err}
}
