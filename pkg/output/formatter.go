package output

import (
	"io"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Progress update types
const (
	UpdateRootStart   = "root_start"   // a root is about to be walked
	UpdateFileIndexed = "file_indexed" // file fingerprinted, no equivalent yet
	UpdateFileGrouped = "file_grouped" // file joined a duplicate group
	UpdateFileSkipped = "file_skipped" // file or root could not be read
	UpdateReduce      = "reduce"       // traversal finished, building the report
)

// ProgressUpdate represents a progress notification during a run
type ProgressUpdate struct {
	Type         string
	FilePath     string
	Bytes        int64
	FilesScanned int
	Groups       int
	Error        error
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress-bar formatters
type Formatter interface {
	// Start initializes the formatter for a new run; a nil writer means stdout
	Start(writer io.Writer, roots []string) error

	// Progress reports progress during the run
	Progress(update ProgressUpdate) error

	// Complete renders the final report
	Complete(report *models.Report) error

	// Error reports an error during the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
