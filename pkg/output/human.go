package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// HumanFormatter prints each directory set followed by its name entries.
// The summary and warnings go to a separate diagnostics writer so stdout
// carries only the report.
type HumanFormatter struct {
	writer      io.Writer
	diagnostics io.Writer
	summary     bool
	colored     bool
}

// NewHumanFormatter creates a new human-readable formatter.
// Diagnostics default to stderr.
func NewHumanFormatter() *HumanFormatter {
	f := &HumanFormatter{}
	f.SetDiagnostics(os.Stderr)
	return f
}

// SetDiagnostics sets where warnings and the summary are written
func (f *HumanFormatter) SetDiagnostics(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	f.diagnostics = w
	f.colored = IsTerminal(w) && !color.NoColor
}

// SetSummary enables the statistics summary after the report
func (f *HumanFormatter) SetSummary(enabled bool) {
	f.summary = enabled
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, roots []string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is silent; use ProgressFormatter for live feedback
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete prints the directory report, then warnings and summary
func (f *HumanFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	if err := WriteDirectories(f.writer, report.Directories); err != nil {
		return err
	}

	writeWarnings(f.diagnostics, report, f.label("warning:", color.FgYellow))
	if f.summary {
		WriteSummary(f.diagnostics, report)
	}
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	fmt.Fprintf(f.diagnostics, "%s %v\n", f.label("Error:", color.FgRed), err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// WriteDirectories writes every entry as its directory lines followed by
// one tab-prefixed "a == b" line per name entry
func WriteDirectories(w io.Writer, report *models.DirectoryReport) error {
	if report == nil {
		return nil
	}
	for _, entry := range report.Entries() {
		if _, err := fmt.Fprintln(w, entry.Directories.Key()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, strings.Join(entry.DisplayNames(), "\n")); err != nil {
			return err
		}
	}
	return nil
}

// label colors a message prefix when diagnostics go to a terminal
func (f *HumanFormatter) label(text string, attr color.Attribute) string {
	if !f.colored {
		return text
	}
	return color.New(attr, color.Bold).Sprint(text)
}

// WriteWarnings prints one line per skipped item
func WriteWarnings(w io.Writer, report *models.Report) {
	writeWarnings(w, report, "warning:")
}

func writeWarnings(w io.Writer, report *models.Report, prefix string) {
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "%s skipped %s (%s): %v\n", prefix, s.Path, s.Stage, s.Err)
	}
}

// WriteSummary prints run statistics
func WriteSummary(w io.Writer, report *models.Report) {
	stats := report.Stats
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Search completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Mode:             %s\n", report.Mode)
	fmt.Fprintf(w, "  Files scanned:    %d (%s fingerprinted)\n", stats.FilesScanned, humanize.IBytes(uint64(stats.BytesScanned)))
	fmt.Fprintf(w, "  Files skipped:    %d\n", stats.FilesSkipped)
	fmt.Fprintf(w, "  Comparisons:      %d (%d fingerprint collisions)\n", stats.Comparisons, stats.Collisions)
	fmt.Fprintf(w, "  Duplicate groups: %d (%d files)\n", stats.Groups, stats.DuplicateFiles)
	fmt.Fprintf(w, "  Directory sets:   %d\n", stats.DirectoryEntries)
	if stats.GroupsDropped > 0 {
		fmt.Fprintf(w, "  Groups dropped:   %d\n", stats.GroupsDropped)
	}
	fmt.Fprintf(w, "Status: %s\n", report.Status)
}
