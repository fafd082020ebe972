package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// JSONFormatter formats the final report as a single JSON document
type JSONFormatter struct {
	writer io.Writer
	errors []string
}

// JSONReport is the JSON form of a run report
type JSONReport struct {
	RunID      string          `json:"run_id"`
	Roots      []string        `json:"roots"`
	Mode       JSONModeData    `json:"mode"`
	Status     string          `json:"status"`
	StartTime  string          `json:"start_time"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Stats      JSONStatsData   `json:"stats"`
	Entries    []JSONEntryData `json:"entries"`
	Groups     []models.Group  `json:"groups,omitempty"`
	Skipped    []JSONSkipData  `json:"skipped,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// JSONModeData describes the comparison mode
type JSONModeData struct {
	Name bool `json:"name"`
	Data bool `json:"data"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesScanned     int    `json:"files_scanned"`
	FilesSkipped     int    `json:"files_skipped"`
	BytesScanned     int64  `json:"bytes_scanned"`
	BytesScannedStr  string `json:"bytes_scanned_human"`
	Comparisons      int    `json:"comparisons"`
	Collisions       int    `json:"collisions"`
	Groups           int    `json:"groups"`
	DuplicateFiles   int    `json:"duplicate_files"`
	DirectoryEntries int    `json:"directory_entries"`
	GroupsDropped    int    `json:"groups_dropped"`
}

// JSONEntryData is one directory set and its name entries
type JSONEntryData struct {
	Directories []string   `json:"directories"`
	Names       [][]string `json:"names"`
}

// JSONSkipData represents a skipped path
type JSONSkipData struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, roots []string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.errors = nil
	return nil
}

// Progress is ignored to keep the output a single parseable document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as indented JSON
func (f *JSONFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	data := BuildJSONReport(report)
	data.Errors = f.errors

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records an error; it is included in the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// BuildJSONReport converts a run report to its JSON form
func BuildJSONReport(report *models.Report) JSONReport {
	stats := report.Stats
	data := JSONReport{
		RunID:      report.RunID,
		Roots:      report.Roots,
		Mode:       JSONModeData{Name: report.Mode.ByName, Data: report.Mode.ByContent},
		Status:     string(report.Status),
		StartTime:  report.StartTime.Format(time.RFC3339),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesScanned:     stats.FilesScanned,
			FilesSkipped:     stats.FilesSkipped,
			BytesScanned:     stats.BytesScanned,
			BytesScannedStr:  humanize.IBytes(uint64(stats.BytesScanned)),
			Comparisons:      stats.Comparisons,
			Collisions:       stats.Collisions,
			Groups:           stats.Groups,
			DuplicateFiles:   stats.DuplicateFiles,
			DirectoryEntries: stats.DirectoryEntries,
			GroupsDropped:    stats.GroupsDropped,
		},
		Entries: []JSONEntryData{},
		Groups:  report.Groups,
	}

	if report.Directories != nil {
		for _, entry := range report.Directories.Entries() {
			names := make([][]string, 0, len(entry.Names))
			for _, set := range entry.Names {
				names = append(names, []string(set))
			}
			data.Entries = append(data.Entries, JSONEntryData{
				Directories: []string(entry.Directories),
				Names:       names,
			})
		}
	}

	for _, s := range report.Skipped {
		data.Skipped = append(data.Skipped, JSONSkipData{
			Path:  s.Path,
			Stage: string(s.Stage),
			Error: fmt.Sprint(s.Err),
		})
	}

	return data
}
