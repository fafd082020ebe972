package dupes

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

var (
	contentOnly = models.Mode{ByContent: true}
	nameOnly    = models.Mode{ByName: true}
	nameAndData = models.Mode{ByName: true, ByContent: true}
	neither     = models.Mode{}
)

// memFs builds an in-memory tree from path -> content
func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

// unreadableFs fails every open of the listed paths
type unreadableFs struct {
	afero.Fs
	paths map[string]bool
}

func newUnreadableFs(base afero.Fs, paths ...string) *unreadableFs {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return &unreadableFs{Fs: base, paths: set}
}

func (f *unreadableFs) Open(name string) (afero.File, error) {
	if f.paths[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func (f *unreadableFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.paths[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// constFingerprint puts every file in the same bucket
type constFingerprint uint32

func (c constFingerprint) Compute(string) (uint32, error) {
	return uint32(c), nil
}

func newComparator(fs afero.Fs, mode models.Mode) compare.Comparator {
	return compare.NewComparator(mode, compare.NewChunkedMatcher(storage.NewLocalFs(fs), 4096))
}

func newAccumulator(fs afero.Fs, mode models.Mode) *Accumulator {
	fp := fingerprint.New(fs, mode, fingerprint.CRC32, fingerprint.DefaultPrefixSize)
	return NewAccumulator(fp, newComparator(fs, mode))
}

func addAll(t *testing.T, acc *Accumulator, paths ...string) []Outcome {
	t.Helper()
	outcomes := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		outcome, err := acc.Add(context.Background(), p)
		if outcome != OutcomeSkipped {
			require.NoError(t, err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// threeHi is the shared tree used by the mode scenarios
func threeHi(t *testing.T) afero.Fs {
	return memFs(t, map[string]string{
		"/A/x.txt": "hi",
		"/B/x.txt": "hi",
		"/C/y.txt": "hi",
	})
}

// recordingFormatter captures formatter calls
type recordingFormatter struct {
	started bool
	roots   []string
	updates []output.ProgressUpdate
	report  *models.Report
	errors  []error
}

func (f *recordingFormatter) Start(_ io.Writer, roots []string) error {
	f.started = true
	f.roots = roots
	return nil
}

func (f *recordingFormatter) Progress(update output.ProgressUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func (f *recordingFormatter) Complete(report *models.Report) error {
	f.report = report
	return nil
}

func (f *recordingFormatter) Error(err error) error {
	f.errors = append(f.errors, err)
	return nil
}

func (f *recordingFormatter) Name() string { return "recording" }

func (f *recordingFormatter) count(updateType string) int {
	n := 0
	for _, u := range f.updates {
		if u.Type == updateType {
			n++
		}
	}
	return n
}
