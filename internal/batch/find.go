package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/extract"
)

// FindFiles returns the PDF and DOCX files in dir, sorted. Subdirectories are
// searched only when recursive is set. Hidden files and directories are skipped.
func FindFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.ErrFileNotFound, "find files", dir, "directory does not exist")
		}
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == dir {
			return nil
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden || !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if _, ok := extract.FormatFromPath(path); !ok {
			return nil
		}
		// Follow symlinks; only regular files are processed.
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
