package compare

import (
	"context"
	"path/filepath"
)

// NameComparator compares files by base name only
type NameComparator struct{}

// NewNameComparator creates a new name comparator
func NewNameComparator() *NameComparator {
	return &NameComparator{}
}

// Compare compares the base names of two paths. The files are not opened.
func (c *NameComparator) Compare(ctx context.Context, pathA, pathB string) *Comparison {
	if filepath.Base(pathA) != filepath.Base(pathB) {
		return different(pathA, pathB, "file names differ")
	}
	return same(pathA, pathB, "file names match")
}

// Name returns the comparator name
func (c *NameComparator) Name() string {
	return "name"
}
