package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/dupes"
	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/ratelimit"
	"github.com/sdejongh/dupnorris/pkg/storage"
	"github.com/spf13/cobra"
)

// FindFlags holds find command flags
type FindFlags struct {
	Name         bool
	Data         bool
	Exclude      []string
	Output       string
	Matcher      string
	Fingerprint  string
	Bandwidth    string
	Progress     bool
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// ExitError carries a non-zero process exit code out of a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

const degenerateWarning = "warning: name and data comparison are both disabled; " +
	"every file sharing a fingerprint will be reported as a duplicate\n"

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	flags := &FindFlags{}

	cmd := &cobra.Command{
		Use:   "find [+name|-name|+data|-data|path]...",
		Short: "Find duplicate files and the directories sharing them",
		Long: `Scan one or more directory trees for duplicate files and print, for each
set of directories holding the same duplicates, the directories followed by
the duplicated names.

Mode tokens are applied left to right and the last one wins:
  +name / -name   require (or not) equal file names
  +data / -data   require (or not) byte-identical contents

Tokens starting with "-" are only recognized after "--" when invoking the
command directly; the dupnorris binary moves them there automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, flags, args)
		},
	}

	defaults := config.Default()
	cmd.Flags().BoolVar(&flags.Name, "name", defaults.Compare.Name, "require equal file names")
	cmd.Flags().BoolVar(&flags.Data, "data", defaults.Compare.Data, "require identical file contents")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&flags.Matcher, "matcher", "", "content matcher: mmap, chunked")
	cmd.Flags().StringVar(&flags.Fingerprint, "fingerprint", "", "fingerprint checksum: crc32, xxhash")
	cmd.Flags().StringVarP(&flags.Bandwidth, "bandwidth", "b", "", "read bandwidth limit for content matching, SI or IEC units (e.g., \"10MB\" = 10,000,000 B/s, \"10MiB\" = 10,485,760 B/s)")
	cmd.Flags().BoolVar(&flags.Progress, "progress", false, "show a progress bar on stderr")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write duplicate report to file")
	cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "human", "report file format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runFind(cmd *cobra.Command, flags *FindFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg, flags); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	mode, paths := models.ParseModeTokens(cfg.Mode(), args)
	roots, err := validateRoots(paths)
	if err != nil {
		return err
	}

	if mode.Degenerate() && !cfg.Output.Quiet {
		fmt.Fprint(stderr, degenerateWarning)
	}

	backend := storage.NewLocal()
	defer backend.Close()

	algorithm, err := fingerprint.ParseAlgorithm(cfg.Compare.Fingerprint)
	if err != nil {
		return err
	}
	fp := fingerprint.New(backend.Fs(), mode, algorithm, cfg.Compare.PrefixSize)

	matcher, err := createMatcher(ctx, cfg, backend)
	if err != nil {
		return err
	}
	comparator := compare.NewComparator(mode, matcher)

	formatter := createFormatter(cfg, stderr)

	logger, err := createLogger(cfg, stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		defer rotateOnHangup(ctx, logger)()
	}

	finder := dupes.NewFinder(backend, fp, comparator, formatter, logger, dupes.Options{
		Mode:     mode,
		Excludes: cfg.Exclude,
		Output:   stdout,
	})

	report, err := finder.Run(ctx, roots)
	if err != nil {
		if report != nil && report.Status == models.StatusCancelled {
			// The formatter has already reported the interruption
			return &ExitError{Code: report.Status.ExitCode()}
		}
		return fmt.Errorf("duplicate search failed: %w", err)
	}

	if flags.Report != "" {
		if err := output.WriteReport(report, flags.Report, flags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Err: fmt.Errorf("duplicate search %s", report.Status)}
	}
	return nil
}

// createMatcher builds the content matcher. A bandwidth limit needs a
// reader to throttle, so it always selects the chunked matcher.
func createMatcher(ctx context.Context, cfg *config.Config, backend storage.Backend) (compare.ContentMatcher, error) {
	limiter := ratelimit.NewLimiter(cfg.Performance.BandwidthLimit)
	if limiter == nil {
		return compare.NewMatcher(cfg.Compare.Matcher, backend, cfg.Performance.BufferSize)
	}

	chunked := compare.NewChunkedMatcher(backend, cfg.Performance.BufferSize)
	chunked.SetReaderWrapper(limiter.Wrapper(ctx))
	return chunked, nil
}

// createFormatter creates the output formatter for the configured format
func createFormatter(cfg *config.Config, stderr io.Writer) output.Formatter {
	var formatter output.Formatter
	switch cfg.Output.Format {
	case "json":
		formatter = output.NewJSONFormatter()
	default:
		human := output.NewHumanFormatter()
		if cfg.Output.Quiet {
			human.SetDiagnostics(io.Discard)
		} else {
			human.SetDiagnostics(stderr)
		}
		human.SetSummary(globalFlags.Verbose && !cfg.Output.Quiet)
		formatter = human
	}

	if cfg.Output.Progress {
		progress := output.NewProgressFormatter(formatter)
		progress.SetOutput(stderr, false)
		formatter = progress
	}
	return formatter
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		return logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSizeMB:  10,
			MaxBackups: 5,
		})
	}

	// Without a log file, verbose runs log to stderr
	if globalFlags.Verbose && !cfg.Output.Quiet {
		return logging.NewWriterLogger(stderr, format, level), nil
	}
	return logging.NewNullLogger(), nil
}

// rotateOnHangup rotates the log file each time the process gets SIGHUP,
// until the returned stop function is called
func rotateOnHangup(ctx context.Context, logger logging.Logger) func() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-hup:
				if err := logging.Rotate(logger); err != nil {
					logger.Error(ctx, "Log rotation failed", err, nil)
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(hup)
		close(done)
	}
}
