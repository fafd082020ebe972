package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath cleans a root path given on the command line.
// UNC prefixes survive cleaning on Windows.
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// ValidatePath rejects root paths no filesystem call could succeed on
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}
	if strings.ContainsRune(path, 0) {
		return &PathError{Path: path, Message: "path contains a NUL byte"}
	}

	if runtime.GOOS == "windows" && !IsUNCPath(path) {
		// The volume name may legitimately contain a colon
		rest := path[len(filepath.VolumeName(path)):]
		if i := strings.IndexAny(rest, "<>:\"|?*"); i >= 0 {
			return &PathError{Path: path, Message: "path contains invalid character: " + string(rest[i])}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
