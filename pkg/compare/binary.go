package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/dupnorris/pkg/storage"
)

// ChunkedMatcher compares files byte-by-byte by streaming both through
// pooled buffers. It works on any storage backend and keeps memory use bounded
// for very large files.
type ChunkedMatcher struct {
	backend       storage.Backend
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper // Optional reader wrapper (e.g., for rate limiting)
}

// NewChunkedMatcher creates a streaming matcher
func NewChunkedMatcher(backend storage.Backend, bufferSize int) *ChunkedMatcher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &ChunkedMatcher{
		backend:    backend,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (m *ChunkedMatcher) SetReaderWrapper(wrapper ReaderWrapper) {
	m.readerWrapper = wrapper
}

// Match compares two files byte-by-byte
func (m *ChunkedMatcher) Match(ctx context.Context, pathA, pathB string) (bool, error) {
	infoA, err := m.backend.Stat(ctx, pathA)
	if err != nil {
		return false, err
	}
	infoB, err := m.backend.Stat(ctx, pathB)
	if err != nil {
		return false, err
	}

	// Quick check: if sizes differ, files are different
	if infoA.Size != infoB.Size {
		return false, nil
	}

	readerA, err := m.backend.Read(ctx, pathA)
	if err != nil {
		return false, err
	}
	defer readerA.Close()

	readerB, err := m.backend.Read(ctx, pathB)
	if err != nil {
		return false, err
	}
	defer readerB.Close()

	var a io.Reader = readerA
	var b io.Reader = readerB
	if m.readerWrapper != nil {
		a = m.readerWrapper(a)
		b = m.readerWrapper(b)
	}

	bufAPtr := m.bufferPool.Get().(*[]byte)
	defer m.bufferPool.Put(bufAPtr)
	bufA := *bufAPtr

	bufBPtr := m.bufferPool.Get().(*[]byte)
	defer m.bufferPool.Put(bufBPtr)
	bufB := *bufBPtr

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		nA, errA := io.ReadFull(a, bufA)
		nB, errB := io.ReadFull(b, bufB)

		if errA != nil && !isEOF(errA) {
			return false, fmt.Errorf("failed to read %s at offset %d: %w", pathA, offset, errA)
		}
		if errB != nil && !isEOF(errB) {
			return false, fmt.Errorf("failed to read %s at offset %d: %w", pathB, offset, errB)
		}

		// A length mismatch means one file changed size after Stat
		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}
		offset += int64(nA)

		if isEOF(errA) || isEOF(errB) {
			return isEOF(errA) && isEOF(errB), nil
		}
	}
}

// Name returns the matcher name
func (m *ChunkedMatcher) Name() string {
	return "chunked"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
