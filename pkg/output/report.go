package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// WriteReport writes the report to a file.
// Format can be "human" or "json".
func WriteReport(report *models.Report, path string, format string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeReportJSON(report, file)
	case "human", "":
		err = writeReportHuman(report, file)
	default:
		return fmt.Errorf("unsupported report format: %s (use: human, json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeReportHuman writes a header, the directory report and the summary
func writeReportHuman(report *models.Report, w io.Writer) error {
	fmt.Fprintf(w, "Duplicate Report\n")
	fmt.Fprintf(w, "================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	for _, root := range report.Roots {
		fmt.Fprintf(w, "Root: %s\n", root)
	}
	fmt.Fprintf(w, "\n")

	if err := WriteDirectories(w, report.Directories); err != nil {
		return err
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "\n")
		WriteWarnings(w, report)
	}
	WriteSummary(w, report)
	return nil
}

// writeReportJSON writes the same document as JSONFormatter
func writeReportJSON(report *models.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildJSONReport(report))
}
