package dupes

import (
	"fmt"
	"path/filepath"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Canonicalizer resolves a directory to its canonical absolute form.
// storage.Backend.Canonical satisfies it.
type Canonicalizer func(dir string) (string, error)

// PathResolutionError is returned when a group member's directory cannot be
// canonicalized, typically because it vanished after scanning
type PathResolutionError struct {
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", e.Path, e.Err)
}

func (e *PathResolutionError) Unwrap() error {
	return e.Err
}

// Reduce folds groups into a directory report. Each group contributes its set
// of canonical parent directories as the key and its set of base names as one
// name entry; groups with the same directory set merge. A group with any
// unresolvable member is dropped whole and reported as skipped.
//
// Reduce does not modify groups and returns an equal report for equal input.
func Reduce(groups []models.Group, canon Canonicalizer) (*models.DirectoryReport, []models.Skipped) {
	report := models.NewDirectoryReport()
	var skipped []models.Skipped

	for _, g := range groups {
		dirs, names, err := reduceGroup(g, canon)
		if err != nil {
			skipped = append(skipped, models.Skipped{
				Path:  g.Representative,
				Stage: models.StageReduce,
				Err:   err,
			})
			continue
		}
		report.Add(models.NewDirKey(dirs), models.NewNameSet(names))
	}

	return report, skipped
}

func reduceGroup(g models.Group, canon Canonicalizer) ([]string, []string, error) {
	dirs := make([]string, 0, len(g.Members))
	names := make([]string, 0, len(g.Members))

	for _, member := range g.Members {
		dir, err := canon(filepath.Dir(member))
		if err != nil {
			return nil, nil, &PathResolutionError{Path: member, Err: err}
		}
		dirs = append(dirs, dir)
		names = append(names, filepath.Base(member))
	}

	return dirs, names, nil
}
