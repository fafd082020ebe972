package logging

import "context"

var (
	_ Logger  = (*NullLogger)(nil)
	_ Rotator = (*NullLogger)(nil)
	_ Logger  = (*SlogLogger)(nil)
	_ Rotator = (*SlogLogger)(nil)
)

// NullLogger discards every entry. The finder falls back to it when no
// logger is given, and the CLI uses it when logging is not enabled.
type NullLogger struct{}

// NewNullLogger creates a logger that discards everything
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(ctx context.Context, msg string, fields Fields) {}

func (l *NullLogger) Info(ctx context.Context, msg string, fields Fields) {}

func (l *NullLogger) Warn(ctx context.Context, msg string, fields Fields) {}

func (l *NullLogger) Error(ctx context.Context, msg string, err error, fields Fields) {}

// WithFields returns l; there is nothing to attach fields to
func (l *NullLogger) WithFields(fields Fields) Logger {
	return l
}

// Rotate has no file to rotate
func (l *NullLogger) Rotate() error {
	return nil
}

func (l *NullLogger) Close() error {
	return nil
}

// Rotate asks logger to reopen its output file if it writes to one.
// Loggers without a file are left alone.
func Rotate(logger Logger) error {
	if r, ok := logger.(Rotator); ok {
		return r.Rotate()
	}
	return nil
}
