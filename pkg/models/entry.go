package models

import (
	"path/filepath"
)

// FileEntry represents a regular file handed to the duplicate finder
type FileEntry struct {
	// Path is the file path as produced by enumeration
	Path string

	// Size in bytes
	Size int64

	// Root is the enumeration root the file was found under
	Root string
}

// Name returns the base name of the file
func (e FileEntry) Name() string {
	return filepath.Base(e.Path)
}

// Dir returns the parent directory of the file
func (e FileEntry) Dir() string {
	return filepath.Dir(e.Path)
}
