// Package fingerprint derives the cheap 32-bit bucketing key for a file.
//
// A fingerprint only narrows down candidates; the equality check in
// package compare decides whether two files are duplicates.
package fingerprint

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// DefaultPrefixSize is the number of leading bytes read in content mode
const DefaultPrefixSize = 2048

// Algorithm names a 32-bit checksum
type Algorithm string

const (
	// CRC32 is the IEEE CRC-32 (default)
	CRC32 Algorithm = "crc32"
	// XXHash uses the low 32 bits of xxhash64
	XXHash Algorithm = "xxhash"
)

// ErrUnreadable matches any UnreadableError via errors.Is
var ErrUnreadable = errors.New("file unreadable")

// UnreadableError is returned when content fingerprinting cannot read a file
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("cannot fingerprint %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnreadable) succeed
func (e *UnreadableError) Is(target error) bool {
	return target == ErrUnreadable
}

// ParseAlgorithm validates an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case CRC32, XXHash:
		return Algorithm(name), nil
	case "":
		return CRC32, nil
	default:
		return "", fmt.Errorf("unsupported fingerprint algorithm: %s (use: crc32, xxhash)", name)
	}
}

// Fingerprinter computes fingerprints for one comparison mode
type Fingerprinter struct {
	fs         afero.Fs
	mode       models.Mode
	algorithm  Algorithm
	prefixSize int
}

// New creates a fingerprinter reading from fs.
// A prefixSize below 1 selects DefaultPrefixSize.
func New(fs afero.Fs, mode models.Mode, algorithm Algorithm, prefixSize int) *Fingerprinter {
	if prefixSize < 1 {
		prefixSize = DefaultPrefixSize
	}
	if algorithm == "" {
		algorithm = CRC32
	}
	return &Fingerprinter{
		fs:         fs,
		mode:       mode,
		algorithm:  algorithm,
		prefixSize: prefixSize,
	}
}

// Mode returns the comparison mode the fingerprinter was built for
func (f *Fingerprinter) Mode() models.Mode {
	return f.mode
}

// Compute returns the fingerprint of path.
// In name-only mode the base name is hashed and the file is never opened.
// Otherwise at most prefixSize leading bytes are hashed.
func (f *Fingerprinter) Compute(path string) (uint32, error) {
	h := f.newHash()

	if f.mode.NameOnly() {
		h.Write([]byte(filepath.Base(path)))
		return f.sum(h), nil
	}

	file, err := f.fs.Open(path)
	if err != nil {
		return 0, &UnreadableError{Path: path, Err: err}
	}
	defer file.Close()

	if _, err := io.CopyN(h, file, int64(f.prefixSize)); err != nil && err != io.EOF {
		return 0, &UnreadableError{Path: path, Err: err}
	}

	return f.sum(h), nil
}

// Compute is a convenience wrapper using CRC-32 and the default prefix size
func Compute(fs afero.Fs, mode models.Mode, path string) (uint32, error) {
	return New(fs, mode, CRC32, DefaultPrefixSize).Compute(path)
}

func (f *Fingerprinter) newHash() hash.Hash {
	if f.algorithm == XXHash {
		return xxhash.New()
	}
	return crc32.NewIEEE()
}

func (f *Fingerprinter) sum(h hash.Hash) uint32 {
	switch hh := h.(type) {
	case hash.Hash32:
		return hh.Sum32()
	case hash.Hash64:
		return uint32(hh.Sum64())
	}
	return 0
}
