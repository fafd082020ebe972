package storage

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path      string
	Size      int64
	ModTime   time.Time
	IsDir     bool
	IsRegular bool
}

// Backend defines the read-only storage operations the duplicate finder needs.
// Files are never written, moved or deleted through it.
type Backend interface {
	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Canonical returns the absolute, symlink-free form of path
	Canonical(path string) (string, error)

	// Fs exposes the underlying filesystem for enumeration and fingerprinting
	Fs() afero.Fs

	// Close releases any resources held by the backend
	Close() error
}
