package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/scan"
)

// Config represents the application configuration
type Config struct {
	Compare     CompareConfig     `yaml:"compare"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// CompareConfig holds duplicate detection settings
type CompareConfig struct {
	Name        bool   `yaml:"name"`        // Equal base names required
	Data        bool   `yaml:"data"`        // Byte-identical content required
	Matcher     string `yaml:"matcher"`     // "mmap" or "chunked"
	Fingerprint string `yaml:"fingerprint"` // "crc32" or "xxhash"
	PrefixSize  int    `yaml:"prefix_size"` // Bytes of content hashed for bucketing
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Mode returns the comparison mode described by the compare section
func (c *Config) Mode() models.Mode {
	return models.Mode{ByName: c.Compare.Name, ByContent: c.Compare.Data}
}

// Default returns the default configuration
func Default() *Config {
	mode := models.DefaultMode()
	return &Config{
		Compare: CompareConfig{
			Name:        mode.ByName,
			Data:        mode.ByContent,
			Matcher:     "mmap",
			Fingerprint: string(fingerprint.CRC32),
			PrefixSize:  fingerprint.DefaultPrefixSize,
		},
		Performance: PerformanceConfig{
			BufferSize:     65536,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: false,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validMatchers := map[string]bool{"mmap": true, "chunked": true}
	if !validMatchers[c.Compare.Matcher] {
		return &models.ValidationError{
			Field:   "compare.matcher",
			Message: "must be 'mmap' or 'chunked'",
		}
	}

	if _, err := fingerprint.ParseAlgorithm(c.Compare.Fingerprint); err != nil {
		return &models.ValidationError{
			Field:   "compare.fingerprint",
			Message: "must be 'crc32' or 'xxhash'",
		}
	}

	if c.Compare.PrefixSize < 1 {
		return &models.ValidationError{
			Field:   "compare.prefix_size",
			Message: "must be at least 1 byte",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if _, err := scan.CompileExcludes(c.Exclude); err != nil {
		return &models.ValidationError{
			Field:   "exclude",
			Message: err.Error(),
		}
	}

	return nil
}

// ParseSize parses a byte count such as "10M", "10MB" or "10MiB".
// Bare and B-suffixed units are SI (powers of 1000); "Ki", "Mi", "Gi" and
// their "iB" forms are IEC (powers of 1024). An empty string is zero.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s", s)
	}
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("size too large: %s", s)
	}

	return int64(size), nil
}
