package scan

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Excludes is a compiled set of exclude patterns. Patterns use
// filepath.Match syntax per path segment:
//   - name globs (*.tmp) match the last segments of a path
//   - multi-segment globs (build/*) match the trailing segments at any depth
//   - directory patterns (.git/) match any directory segment run
//   - a **/ prefix (**/test) matches a segment run anywhere in the path
type Excludes []excludePattern

type excludePattern struct {
	raw      string
	segments []string
	dirOnly  bool
	anyDepth bool
}

// CompileExcludes validates and normalizes patterns. Empty patterns are
// ignored; a malformed glob is an error naming the pattern.
func CompileExcludes(patterns []string) (Excludes, error) {
	var out Excludes
	for _, raw := range patterns {
		p := strings.TrimSpace(filepath.ToSlash(raw))
		if p == "" {
			continue
		}

		compiled := excludePattern{raw: raw}
		if strings.HasSuffix(p, "/") {
			compiled.dirOnly = true
			p = strings.TrimRight(p, "/")
		}
		if strings.HasPrefix(p, "**/") {
			compiled.anyDepth = true
			p = strings.TrimPrefix(p, "**/")
		}
		p = strings.TrimPrefix(p, "./")
		if p == "" || p == "**" {
			return nil, fmt.Errorf("exclude pattern %q matches everything", raw)
		}

		for _, seg := range strings.Split(p, "/") {
			if seg == "" || seg == "**" {
				return nil, fmt.Errorf("exclude pattern %q: ** is only supported as a leading segment", raw)
			}
			if _, err := filepath.Match(seg, ""); err != nil {
				return nil, fmt.Errorf("exclude pattern %q: %w", raw, err)
			}
			compiled.segments = append(compiled.segments, seg)
		}
		out = append(out, compiled)
	}
	return out, nil
}

// Match reports whether a path relative to a scan root is excluded.
// isDir marks directories, which directory patterns may match in full.
func (e Excludes) Match(relativePath string, isDir bool) bool {
	if len(e) == 0 {
		return false
	}

	rel := strings.Trim(filepath.ToSlash(relativePath), "/")
	if rel == "" || rel == "." {
		return false
	}
	segments := strings.Split(rel, "/")

	for _, p := range e {
		switch {
		case p.dirOnly:
			dirs := segments
			if !isDir {
				dirs = segments[:len(segments)-1]
			}
			if matchRunAnywhere(dirs, p.segments) {
				return true
			}
		case p.anyDepth:
			if matchRunAnywhere(segments, p.segments) {
				return true
			}
		default:
			if matchTrailing(segments, p.segments) {
				return true
			}
		}
	}
	return false
}

// String returns the patterns as given
func (e Excludes) String() string {
	raw := make([]string, len(e))
	for i, p := range e {
		raw[i] = p.raw
	}
	return strings.Join(raw, ",")
}

func matchTrailing(segments, pattern []string) bool {
	if len(pattern) > len(segments) {
		return false
	}
	return matchRun(segments[len(segments)-len(pattern):], pattern)
}

func matchRunAnywhere(segments, pattern []string) bool {
	for start := 0; start+len(pattern) <= len(segments); start++ {
		if matchRun(segments[start:start+len(pattern)], pattern) {
			return true
		}
	}
	return false
}

func matchRun(segments, pattern []string) bool {
	for i, glob := range pattern {
		if ok, _ := filepath.Match(glob, segments[i]); !ok {
			return false
		}
	}
	return true
}
