package compare

import (
	"context"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// ModeComparator combines the name and content checks selected by a mode.
// Stage 1: name check, if enabled
// Stage 2: content check, if enabled
// With both stages disabled every pair is equivalent.
type ModeComparator struct {
	mode    models.Mode
	name    *NameComparator
	content *ContentComparator
}

// NewComparator creates the comparator for mode.
// matcher may be nil when mode does not compare content.
func NewComparator(mode models.Mode, matcher ContentMatcher) *ModeComparator {
	c := &ModeComparator{
		mode: mode,
		name: NewNameComparator(),
	}
	if mode.ByContent && matcher != nil {
		c.content = NewContentComparator(matcher)
	}
	return c
}

// Mode returns the comparison mode
func (c *ModeComparator) Mode() models.Mode {
	return c.mode
}

// Compare applies each enabled stage; the files are equivalent only if all pass
func (c *ModeComparator) Compare(ctx context.Context, pathA, pathB string) *Comparison {
	result := same(pathA, pathB, "no checks enabled")

	if c.mode.ByName {
		result = c.name.Compare(ctx, pathA, pathB)
		if !result.Equivalent() {
			return result
		}
	}

	if c.mode.ByContent {
		if c.content == nil {
			return failed(pathA, pathB, "no content matcher configured", nil)
		}
		// A read failure is returned as-is and counts as not equivalent
		result = c.content.Compare(ctx, pathA, pathB)
	}

	return result
}

// Name returns the comparator name
func (c *ModeComparator) Name() string {
	contentName := "content"
	if c.content != nil {
		contentName = c.content.Name()
	}

	switch {
	case c.mode.ByName && c.mode.ByContent:
		return "name+" + contentName
	case c.mode.ByContent:
		return contentName
	case c.mode.ByName:
		return c.name.Name()
	default:
		return "none"
	}
}
