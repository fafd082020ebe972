package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSizeMB is the size in megabytes before rotation (0 = lumberjack default of 100)
	MaxSizeMB int
	// MaxBackups is the maximum number of rotated files to keep
	MaxBackups int
	// MaxAgeDays removes rotated files older than this (0 = keep)
	MaxAgeDays int
	// Compress gzips rotated files
	Compress bool
}

// SlogLogger implements Logger on top of log/slog
type SlogLogger struct {
	logger *slog.Logger
	closer io.Closer
	fields Fields
}

// NewFileLogger creates a logger writing to a rotating file
func NewFileLogger(config FileLoggerConfig) (*SlogLogger, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}

	logger := newSlogLogger(writer, config.Format, config.Level)
	logger.closer = writer
	return logger, nil
}

// NewWriterLogger creates a logger writing to w. The writer is not closed.
func NewWriterLogger(w io.Writer, format Format, level Level) *SlogLogger {
	return newSlogLogger(w, format, level)
}

func newSlogLogger(w io.Writer, format Format, level Level) *SlogLogger {
	opts := &slog.HandlerOptions{
		Level:       convertLevel(level),
		ReplaceAttr: renameAttr,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &SlogLogger{logger: slog.New(handler)}
}

// renameAttr keeps the timestamp/message keys used by earlier log files
func renameAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// Debug logs a debug message
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelDebug, msg, nil, fields)
}

// Info logs an info message
func (l *SlogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelInfo, msg, nil, fields)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelWarn, msg, nil, fields)
}

// Error logs an error message
func (l *SlogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ctx, slog.LevelError, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *SlogLogger) WithFields(fields Fields) Logger {
	return &SlogLogger{
		logger: l.logger,
		closer: l.closer,
		fields: mergeFields(l.fields, fields),
	}
}

// Rotate forces a rotation of the underlying file, if any
func (l *SlogLogger) Rotate() error {
	if rotator, ok := l.closer.(*lumberjack.Logger); ok {
		return rotator.Rotate()
	}
	return nil
}

// Close flushes and closes the logger
func (l *SlogLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *SlogLogger) log(ctx context.Context, level slog.Level, msg string, err error, fields Fields) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	all := mergeFields(l.fields, fields)
	attrs := make([]slog.Attr, 0, len(all)+1)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, all[k]))
	}

	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

func mergeFields(base, extra Fields) Fields {
	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func convertLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel
	case "info", "INFO":
		return InfoLevel
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
