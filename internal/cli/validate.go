package cli

import (
	"fmt"
	"os"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/spf13/cobra"
)

// validateRoots checks and normalizes the paths given on the command line.
// Roots that do not exist are kept: the search records them as skipped.
func validateRoots(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one path is required")
	}

	roots := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := platform.ValidatePath(path); err != nil {
			return nil, err
		}
		roots = append(roots, platform.NormalizePath(path))
	}
	return roots, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, flags *FindFlags) error {
	// Comparison mode; tokens in the arguments are applied afterwards
	if cmd.Flags().Changed("name") {
		cfg.Compare.Name = flags.Name
	}
	if cmd.Flags().Changed("data") {
		cfg.Compare.Data = flags.Data
	}

	if flags.Matcher != "" {
		cfg.Compare.Matcher = flags.Matcher
	}
	if flags.Fingerprint != "" {
		cfg.Compare.Fingerprint = flags.Fingerprint
	}

	// Bandwidth limit
	if flags.Bandwidth != "" {
		limit, err := config.ParseSize(flags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid bandwidth limit: %w", err)
		}
		cfg.Performance.BandwidthLimit = limit
	}

	// Exclude patterns
	if len(flags.Exclude) > 0 {
		cfg.Exclude = flags.Exclude
	}

	// Output format
	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}
	if flags.Progress {
		cfg.Output.Progress = true
	}

	// Logging
	if flags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = flags.LogFile
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	return nil
}

// fileExists reports whether path names an existing file
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
