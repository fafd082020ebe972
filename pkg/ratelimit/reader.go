package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// minBurst keeps reads smooth at very low limits
const minBurst = 64 * 1024

// Limiter controls the rate of reads shared across multiple readers
type Limiter struct {
	bytesPerSecond int64
	limiter        *rate.Limiter
}

// NewLimiter creates a limiter allowing bytesPerSecond.
// The burst is one second worth of data, at least 64KB.
// A non-positive rate returns nil, meaning no limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// BytesPerSecond returns the configured rate
func (l *Limiter) BytesPerSecond() int64 {
	return l.bytesPerSecond
}

// Burst returns the maximum bytes granted in a single wait
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps reader. A nil limiter returns reader unchanged.
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

// Read implements io.Reader, waiting for budget before each read
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	toRead := len(p)
	if burst := r.limiter.Burst(); toRead > burst {
		toRead = burst
	}
	if toRead == 0 {
		return r.reader.Read(p)
	}

	if err := r.limiter.limiter.WaitN(r.ctx, toRead); err != nil {
		return 0, err
	}

	return r.reader.Read(p[:toRead])
}

// Wrapper returns a function suitable for compare.ReaderWrapper
func (l *Limiter) Wrapper(ctx context.Context) func(io.Reader) io.Reader {
	return func(r io.Reader) io.Reader {
		return NewReader(ctx, r, l)
	}
}
