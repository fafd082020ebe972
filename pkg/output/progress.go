package output

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// scanTemplate renders a running counter; the total is unknown while walking
const scanTemplate pb.ProgressBarTemplate = `{{ cycle . "|" "/" "-" "\\" }} {{ counters . }} files, {{ string . "groups" }} groups, {{ string . "bytes" }} read, {{ string . "skipped" }} skipped {{ etime . }}`

// refreshRate is how often the bar redraws
const refreshRate = 200 * time.Millisecond

// ProgressFormatter draws a live counter while scanning and delegates the
// report itself to another formatter
type ProgressFormatter struct {
	inner  Formatter
	output io.Writer
	force  bool

	mu      sync.Mutex
	bar     *pb.ProgressBar
	bytes   int64
	skipped int
}

// NewProgressFormatter wraps inner with a progress bar on stderr
func NewProgressFormatter(inner Formatter) *ProgressFormatter {
	return &ProgressFormatter{
		inner:  inner,
		output: os.Stderr,
	}
}

// SetOutput redirects the bar. With force, the bar is drawn even when w is
// not a terminal.
func (f *ProgressFormatter) SetOutput(w io.Writer, force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.output = w
	f.force = force
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Start initializes the inner formatter and the bar
func (f *ProgressFormatter) Start(writer io.Writer, roots []string) error {
	if err := f.inner.Start(writer, roots); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.bytes = 0
	f.skipped = 0
	if f.output == nil || (!f.force && !IsTerminal(f.output)) {
		return nil
	}

	bar := scanTemplate.New(0)
	bar.SetWriter(f.output)
	bar.SetRefreshRate(refreshRate)
	bar.Set("groups", 0)
	bar.Set("bytes", humanize.IBytes(0))
	bar.Set("skipped", 0)
	f.bar = bar.Start()
	return nil
}

// Progress updates the counters and forwards the update
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	if f.bar != nil {
		switch update.Type {
		case UpdateFileIndexed, UpdateFileGrouped:
			f.bytes += update.Bytes
			f.bar.Increment()
			f.bar.Set("groups", update.Groups)
			f.bar.Set("bytes", humanize.IBytes(uint64(f.bytes)))
		case UpdateFileSkipped:
			f.skipped++
			f.bar.Set("skipped", f.skipped)
		case UpdateReduce:
			f.finishLocked()
		}
	}
	f.mu.Unlock()

	return f.inner.Progress(update)
}

// Complete stops the bar and renders the report
func (f *ProgressFormatter) Complete(report *models.Report) error {
	f.mu.Lock()
	f.finishLocked()
	f.mu.Unlock()

	return f.inner.Complete(report)
}

// Error stops the bar and forwards the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	f.finishLocked()
	f.mu.Unlock()

	return f.inner.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) finishLocked() {
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
}
