package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the dupnorris configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", cfg.Mode())
			fmt.Fprintf(out, "Matcher: %s\n", cfg.Compare.Matcher)
			fmt.Fprintf(out, "Fingerprint: %s (%d bytes)\n", cfg.Compare.Fingerprint, cfg.Compare.PrefixSize)
			fmt.Fprintf(out, "Buffer Size: %s\n", humanize.IBytes(uint64(cfg.Performance.BufferSize)))
			if cfg.Performance.BandwidthLimit > 0 {
				fmt.Fprintf(out, "Bandwidth Limit: %s/s\n", humanize.IBytes(uint64(cfg.Performance.BandwidthLimit)))
			} else {
				fmt.Fprintf(out, "Bandwidth Limit: unlimited\n")
			}
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)
			if len(cfg.Exclude) > 0 {
				fmt.Fprintf(out, "Exclude: %s\n", strings.Join(cfg.Exclude, ", "))
			}

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if fileExists(path) && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}
