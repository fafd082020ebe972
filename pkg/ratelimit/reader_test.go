package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNewLimiter tests the Limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024) // 1 MB/s
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.BytesPerSecond() != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", limiter.BytesPerSecond(), 1024*1024)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if NewLimiter(-100) != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1000)
		// Burst should be at least 64KB for smooth transfers
		if limiter.Burst() < 65536 {
			t.Errorf("Burst() = %d, want at least 65536", limiter.Burst())
		}
	})

	t.Run("LargeBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(100 * 1024 * 1024)
		if limiter.Burst() != 100*1024*1024 {
			t.Errorf("Burst() = %d, want %d", limiter.Burst(), 100*1024*1024)
		}
	})
}

// TestNewReader tests the Reader constructor
func TestNewReader(t *testing.T) {
	t.Run("WithLimiter", func(t *testing.T) {
		reader := NewReader(context.Background(), strings.NewReader("test content"), NewLimiter(1024*1024))
		if _, ok := reader.(*Reader); !ok {
			t.Error("NewReader() should return *Reader when limiter is provided")
		}
	})

	t.Run("NilLimiter", func(t *testing.T) {
		base := strings.NewReader("test content")
		reader := NewReader(context.Background(), base, nil)
		if reader != io.Reader(base) {
			t.Error("NewReader() should return the original reader when limiter is nil")
		}
	})
}

// TestReaderRead verifies data passes through unchanged
func TestReaderRead(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 200*1024)
	reader := NewReader(context.Background(), bytes.NewReader(content), NewLimiter(100*1024*1024))

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("read %d bytes, want %d identical bytes", len(data), len(content))
	}
}

// TestReaderThrottles verifies reads beyond the burst wait
func TestReaderThrottles(t *testing.T) {
	// 64KB/s with a 64KB burst: the second 64KB waits about a second
	limiter := NewLimiter(64 * 1024)
	if limiter.Burst() != 64*1024 {
		t.Fatalf("Burst() = %d, want %d", limiter.Burst(), 64*1024)
	}
	content := bytes.Repeat([]byte("y"), 128*1024)
	reader := NewReader(context.Background(), bytes.NewReader(content), limiter)

	start := time.Now()
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("copied %d bytes, want %d", n, len(content))
	}
	if elapsed := time.Since(start); elapsed < 700*time.Millisecond {
		t.Errorf("read finished in %v, expected throttling", elapsed)
	}
}

// TestReaderCancelled verifies context cancellation
func TestReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(ctx, strings.NewReader("data"), NewLimiter(1024))
	if _, err := reader.Read(make([]byte, 4)); err == nil {
		t.Error("Read() should fail on cancelled context")
	}
}

// TestWrapper verifies the wrapper helper
func TestWrapper(t *testing.T) {
	var limiter *Limiter
	base := strings.NewReader("abc")
	if limiter.Wrapper(context.Background())(base) != io.Reader(base) {
		t.Error("nil limiter wrapper should not wrap")
	}

	wrapped := NewLimiter(1024).Wrapper(context.Background())(base)
	if _, ok := wrapped.(*Reader); !ok {
		t.Error("wrapper should return *Reader")
	}
}
