package models

import (
	"fmt"
	"strings"
)

// Mode selects which checks make two files equivalent.
// With both flags set a file is a duplicate only if name and content match.
type Mode struct {
	// ByName compares base file names
	ByName bool `json:"by_name" yaml:"name"`

	// ByContent compares file bytes
	ByContent bool `json:"by_content" yaml:"data"`
}

// Mode tokens accepted on the command line, applied left to right
const (
	TokenNameOn  = "+name"
	TokenNameOff = "-name"
	TokenDataOn  = "+data"
	TokenDataOff = "-data"
)

// DefaultMode compares by name only
func DefaultMode() Mode {
	return Mode{ByName: true, ByContent: false}
}

// NameOnly reports whether the fingerprint can be derived from the name alone
func (m Mode) NameOnly() bool {
	return m.ByName && !m.ByContent
}

// Degenerate reports whether every pair of files is considered equivalent.
// This happens when both checks are disabled; it is accepted but discouraged.
func (m Mode) Degenerate() bool {
	return !m.ByName && !m.ByContent
}

// String returns a compact description such as "name+data"
func (m Mode) String() string {
	var parts []string
	if m.ByName {
		parts = append(parts, "name")
	}
	if m.ByContent {
		parts = append(parts, "data")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// IsModeToken reports whether arg is one of the mode tokens
func IsModeToken(arg string) bool {
	switch arg {
	case TokenNameOn, TokenNameOff, TokenDataOn, TokenDataOff:
		return true
	}
	return false
}

// Apply applies a single mode token
func (m *Mode) Apply(token string) error {
	switch token {
	case TokenNameOn:
		m.ByName = true
	case TokenNameOff:
		m.ByName = false
	case TokenDataOn:
		m.ByContent = true
	case TokenDataOff:
		m.ByContent = false
	default:
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown token %q", token)}
	}
	return nil
}

// ParseModeTokens splits args into mode tokens and paths.
// Tokens are applied to base in order so the last one wins for each flag.
func ParseModeTokens(base Mode, args []string) (Mode, []string) {
	mode := base
	var paths []string
	for _, arg := range args {
		if IsModeToken(arg) {
			_ = mode.Apply(arg)
			continue
		}
		paths = append(paths, arg)
	}
	return mode, paths
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
