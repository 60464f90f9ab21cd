package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskUsageBytes sums the sizes of files under the given paths. Directories
// are walked; empty and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, root := range paths {
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			if _, statErr := os.Lstat(root); errors.Is(statErr, fs.ErrNotExist) {
				continue
			}
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
