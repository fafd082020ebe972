package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// FileFunc receives each regular file found under a root.
// Returning an error stops the walk.
type FileFunc func(entry models.FileEntry) error

// ErrorFunc receives paths that could not be listed or inspected.
// The walk continues after it returns.
type ErrorFunc func(path string, err error)

// Walker enumerates regular files under one or more roots
type Walker struct {
	fs       afero.Fs
	excludes Excludes
	onError  ErrorFunc
}

// NewWalker creates a walker over fs. Exclude patterns are compiled once;
// a malformed pattern is an error.
func NewWalker(fs afero.Fs, excludes []string) (*Walker, error) {
	compiled, err := CompileExcludes(excludes)
	if err != nil {
		return nil, err
	}
	return &Walker{
		fs:       fs,
		excludes: compiled,
		onError:  func(string, error) {},
	}, nil
}

// OnError sets the callback for entries that cannot be read
func (w *Walker) OnError(fn ErrorFunc) {
	if fn != nil {
		w.onError = fn
	}
}

// Walk calls fn for every regular file under root, depth first in lexical
// order. Symbolic links to regular files are reported; links to directories
// below root are not followed. A root that is itself a link to a directory
// is walked through, and paths stay under the root as given.
// A missing root is an error.
func (w *Walker) Walk(ctx context.Context, root string, fn FileFunc) error {
	rootInfo, err := w.fs.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access root %s: %w", root, err)
	}

	walkRoot := root
	if rootInfo.IsDir() && w.isSymlink(root) {
		// A trailing separator makes the lstat inside afero.Walk resolve the link
		walkRoot = root + string(filepath.Separator)
	}

	return afero.Walk(w.fs, walkRoot, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			w.onError(path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if info.IsDir() {
			if path != walkRoot && w.excludes.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.excludes.Match(rel, false) {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, statErr := w.fs.Stat(path)
			if statErr != nil {
				w.onError(path, statErr)
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return fn(models.FileEntry{
			Path: path,
			Size: info.Size(),
			Root: root,
		})
	})
}

// isSymlink reports whether path is a symbolic link on filesystems that
// can tell
func (w *Walker) isSymlink(path string) bool {
	lstater, ok := w.fs.(afero.Lstater)
	if !ok {
		return false
	}
	info, lstatCalled, err := lstater.LstatIfPossible(path)
	return err == nil && lstatCalled && info.Mode()&os.ModeSymlink != 0
}

// Walk is a convenience wrapper for a single walk without error reporting
func Walk(ctx context.Context, fs afero.Fs, root string, excludes []string, fn FileFunc) error {
	w, err := NewWalker(fs, excludes)
	if err != nil {
		return err
	}
	return w.Walk(ctx, root, fn)
}
