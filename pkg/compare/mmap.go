package compare

import (
	"bytes"
	"context"
	"fmt"
	"os"
)

// MmapMatcher compares files by mapping both fully into memory.
// Mappings are released as soon as the comparison finishes.
type MmapMatcher struct{}

// NewMmapMatcher creates a memory-mapping matcher for on-disk files
func NewMmapMatcher() *MmapMatcher {
	return &MmapMatcher{}
}

// Match maps both files and compares their bytes
func (m *MmapMatcher) Match(ctx context.Context, pathA, pathB string) (bool, error) {
	a, err := openMapped(pathA)
	if err != nil {
		return false, err
	}
	defer a.Close()

	b, err := openMapped(pathB)
	if err != nil {
		return false, err
	}
	defer b.Close()

	if len(a.data) != len(b.data) {
		return false, nil
	}
	return bytes.Equal(a.data, b.data), nil
}

// Name returns the matcher name
func (m *MmapMatcher) Name() string {
	return "mmap"
}

// mappedFile is a read-only view of a whole file
type mappedFile struct {
	data    []byte
	release func() error
}

func (f *mappedFile) Close() error {
	if f.release == nil {
		return nil
	}
	err := f.release()
	f.release = nil
	f.data = nil
	return err
}

func openMapped(path string) (*mappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// The mapping stays valid after the descriptor is closed
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot map %s: not a regular file", path)
	}
	if stat.Size() == 0 {
		return &mappedFile{}, nil
	}

	data, release, err := mapFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	return &mappedFile{data: data, release: release}, nil
}
