package dupes

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/scan"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Options holds per-run settings for a Finder
type Options struct {
	// Mode is recorded in the report; it must match the fingerprinter and comparator
	Mode models.Mode
	// Excludes are glob patterns skipped during traversal
	Excludes []string
	// RunID identifies the run; generated when empty
	RunID string
	// Output is handed to the formatter; nil means stdout
	Output io.Writer
}

// Finder walks roots, accumulates duplicate groups and reduces them to a report
type Finder struct {
	backend   storage.Backend
	fp        Fingerprinter
	cmp       compare.Comparator
	formatter output.Formatter
	logger    logging.Logger
	opts      Options
}

// NewFinder creates a new duplicate finder
func NewFinder(
	backend storage.Backend,
	fp Fingerprinter,
	cmp compare.Comparator,
	formatter output.Formatter,
	logger logging.Logger,
	opts Options,
) *Finder {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Finder{
		backend:   backend,
		fp:        fp,
		cmp:       cmp,
		formatter: formatter,
		logger:    logger,
		opts:      opts,
	}
}

// run holds the mutable state of one Run call
type run struct {
	*Finder
	acc    *Accumulator
	report *models.Report
	logger logging.Logger
	seen   map[string]struct{}
}

// Run scans every root in order and returns the run report. Roots that cannot
// be walked and files that cannot be read are recorded in report.Skipped and
// do not stop the run. Only context cancellation aborts, returning the partial
// report along with ctx.Err().
func (f *Finder) Run(ctx context.Context, roots []string) (*models.Report, error) {
	runID := f.opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	r := &run{
		Finder: f,
		acc:    NewAccumulator(f.fp, f.cmp),
		report: &models.Report{
			RunID:     runID,
			Roots:     roots,
			Mode:      f.opts.Mode,
			StartTime: time.Now(),
			Status:    models.StatusSuccess,
		},
		logger: f.logger.WithFields(logging.Fields{"run_id": runID}),
		seen:   make(map[string]struct{}),
	}

	r.logger.Info(ctx, "Starting duplicate search", logging.Fields{
		"roots":      len(roots),
		"mode":       f.opts.Mode.String(),
		"comparator": f.cmp.Name(),
	})

	walker, err := scan.NewWalker(f.backend.Fs(), f.opts.Excludes)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude patterns: %w", err)
	}

	if f.formatter != nil {
		if err := f.formatter.Start(f.opts.Output, roots); err != nil {
			return nil, fmt.Errorf("failed to start formatter: %w", err)
		}
	}

	if err := r.walkRoots(ctx, walker, roots); err != nil {
		r.report.Status = models.StatusCancelled
		r.finish()
		r.logger.Warn(ctx, "Duplicate search cancelled", logging.Fields{
			"files_scanned": r.report.Stats.FilesScanned,
		})
		if f.formatter != nil {
			f.formatter.Error(err)
		}
		return r.report, err
	}

	r.reduce(ctx)
	r.finish()

	r.logger.Info(ctx, "Duplicate search completed", logging.Fields{
		"status":        string(r.report.Status),
		"files_scanned": r.report.Stats.FilesScanned,
		"groups":        r.report.Stats.Groups,
		"skipped":       len(r.report.Skipped),
		"duration_ms":   r.report.Duration.Milliseconds(),
	})

	if f.formatter != nil {
		if err := f.formatter.Complete(r.report); err != nil {
			return r.report, fmt.Errorf("failed to render report: %w", err)
		}
	}

	return r.report, nil
}

// walkRoots feeds every regular file under roots to the accumulator.
// It returns an error only when ctx is done.
func (r *run) walkRoots(ctx context.Context, walker *scan.Walker, roots []string) error {
	walker.OnError(func(path string, err error) {
		r.skip(ctx, path, models.StageScan, err)
	})

	walked := 0
	for _, root := range roots {
		r.progress(output.ProgressUpdate{Type: output.UpdateRootStart, FilePath: root})
		r.logger.Debug(ctx, "Walking root", logging.Fields{"root": root})

		err := walker.Walk(ctx, root, func(entry models.FileEntry) error {
			r.add(ctx, entry)
			return nil
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			r.skip(ctx, root, models.StageScan, err)
			continue
		}
		walked++
	}

	if len(roots) > 0 && walked == 0 {
		r.report.Status = models.StatusFailed
	}
	return nil
}

// add hands one file to the accumulator and records the outcome
func (r *run) add(ctx context.Context, entry models.FileEntry) {
	key := entry.Path
	if abs, err := filepath.Abs(entry.Path); err == nil {
		key = abs
	}
	if _, dup := r.seen[key]; dup {
		r.logger.Debug(ctx, "File already scanned under another root", logging.Fields{"path": entry.Path})
		return
	}
	r.seen[key] = struct{}{}

	outcome, err := r.acc.Add(ctx, entry.Path)
	if outcome == OutcomeSkipped {
		r.skip(ctx, entry.Path, models.StageFingerprint, err)
		return
	}

	r.report.Stats.FilesScanned++
	r.report.Stats.BytesScanned += entry.Size

	update := output.ProgressUpdate{
		Type:         output.UpdateFileIndexed,
		FilePath:     entry.Path,
		Bytes:        entry.Size,
		FilesScanned: r.report.Stats.FilesScanned,
		Groups:       r.acc.GroupCount(),
	}
	if outcome == OutcomeGrouped {
		update.Type = output.UpdateFileGrouped
		r.logger.Debug(ctx, "Duplicate found", logging.Fields{"path": entry.Path})
	}
	r.progress(update)
}

// reduce builds the directory report from the accumulated groups
func (r *run) reduce(ctx context.Context) {
	r.progress(output.ProgressUpdate{
		Type:         output.UpdateReduce,
		FilesScanned: r.report.Stats.FilesScanned,
		Groups:       r.acc.GroupCount(),
	})

	groups := r.acc.Groups()
	directories, dropped := Reduce(groups, r.backend.Canonical)
	for _, s := range dropped {
		r.logger.Warn(ctx, "Dropping duplicate group", logging.Fields{
			"path":  s.Path,
			"error": s.Err.Error(),
		})
	}

	r.report.Groups = groups
	r.report.Directories = directories
	r.report.Skipped = append(r.report.Skipped, dropped...)

	stats := &r.report.Stats
	stats.Groups = len(groups)
	for _, g := range groups {
		stats.DuplicateFiles += len(g.Members)
	}
	stats.DirectoryEntries = directories.Len()
	stats.GroupsDropped = len(dropped)
}

// skip records a path that could not be processed
func (r *run) skip(ctx context.Context, path string, stage models.Stage, err error) {
	r.report.Skipped = append(r.report.Skipped, models.Skipped{Path: path, Stage: stage, Err: err})
	r.report.Stats.FilesSkipped++

	r.logger.Warn(ctx, "Skipping unreadable path", logging.Fields{
		"path":  path,
		"stage": string(stage),
		"error": fmt.Sprint(err),
	})
	r.progress(output.ProgressUpdate{
		Type:         output.UpdateFileSkipped,
		FilePath:     path,
		FilesScanned: r.report.Stats.FilesScanned,
		Groups:       r.acc.GroupCount(),
		Error:        err,
	})
}

func (r *run) progress(update output.ProgressUpdate) {
	if r.formatter != nil {
		r.formatter.Progress(update)
	}
}

// finish fills the timing, comparison counters and final status
func (r *run) finish() {
	r.report.EndTime = time.Now()
	r.report.Duration = r.report.EndTime.Sub(r.report.StartTime)
	r.report.Stats.Comparisons = r.acc.Comparisons()
	r.report.Stats.Collisions = r.acc.Collisions()

	if r.report.Status == models.StatusSuccess && len(r.report.Skipped) > 0 {
		r.report.Status = models.StatusPartial
	}
}
