//go:build !unix

package compare

import (
	"io"
	"os"
)

// mapFile reads the whole file where mmap is unavailable
func mapFile(file *os.File, size int64) ([]byte, func() error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
