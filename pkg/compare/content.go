package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/dupnorris/pkg/storage"
)

// ContentMatcher performs a byte-exact comparison of two readable files.
// An error means at least one file could not be read.
type ContentMatcher interface {
	Match(ctx context.Context, pathA, pathB string) (bool, error)
	Name() string
}

// Matcher names accepted by NewMatcher
const (
	MatcherMmap    = "mmap"
	MatcherChunked = "chunked"
)

// NewMatcher creates the named matcher. Memory mapping needs real files, so
// backends that are not on disk always get a chunked matcher.
func NewMatcher(name string, backend storage.Backend, bufferSize int) (ContentMatcher, error) {
	switch name {
	case MatcherMmap, "":
		if local, ok := backend.(*storage.Local); ok && local.OnDisk() {
			return NewMmapMatcher(), nil
		}
		return NewChunkedMatcher(backend, bufferSize), nil
	case MatcherChunked:
		return NewChunkedMatcher(backend, bufferSize), nil
	default:
		return nil, fmt.Errorf("unsupported content matcher: %s (use: mmap, chunked)", name)
	}
}

// ContentComparator compares files byte for byte through a ContentMatcher
type ContentComparator struct {
	matcher ContentMatcher
}

// NewContentComparator creates a content comparator
func NewContentComparator(matcher ContentMatcher) *ContentComparator {
	return &ContentComparator{matcher: matcher}
}

// Compare reports Same only when both files could be read and are identical
func (c *ContentComparator) Compare(ctx context.Context, pathA, pathB string) *Comparison {
	equal, err := c.matcher.Match(ctx, pathA, pathB)
	if err != nil {
		return failed(pathA, pathB, fmt.Sprintf("%s comparison failed", c.matcher.Name()), err)
	}
	if !equal {
		return different(pathA, pathB, "file contents differ")
	}
	return same(pathA, pathB, "file contents match")
}

// Name returns the comparator name
func (c *ContentComparator) Name() string {
	return "content-" + c.matcher.Name()
}
