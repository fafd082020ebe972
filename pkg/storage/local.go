package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local is a filesystem-based storage backend
type Local struct {
	fs     afero.Fs
	onDisk bool
}

// NewLocal creates a backend over the host filesystem
func NewLocal() *Local {
	return &Local{fs: afero.NewOsFs(), onDisk: true}
}

// NewLocalFs creates a backend over an arbitrary afero filesystem.
// Symlinks are only resolved when fs is the host filesystem.
func NewLocalFs(fs afero.Fs) *Local {
	_, onDisk := fs.(*afero.OsFs)
	return &Local{fs: fs, onDisk: onDisk}
}

// OnDisk reports whether paths refer to the host filesystem
func (l *Local) OnDisk() bool {
	return l.onDisk
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsRegular: info.Mode().IsRegular(),
	}, nil
}

// Canonical resolves path to an absolute path with symlinks evaluated.
// It fails if the entry no longer exists.
func (l *Local) Canonical(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if l.onDisk {
		resolved, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		return resolved, nil
	}

	if _, err := l.fs.Stat(absPath); err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return absPath, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

// OpenFile opens path as an *os.File when the backend is on disk.
// It returns an error for in-memory filesystems.
func (l *Local) OpenFile(path string) (*os.File, error) {
	if !l.onDisk {
		return nil, fmt.Errorf("file %s is not on disk", path)
	}
	return os.Open(path)
}
