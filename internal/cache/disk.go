package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const entryExt = ".json"

// DiskCache keeps one JSON document per hash under a directory.
type DiskCache struct {
	dir    string
	logger *zap.Logger
}

// NewDiskCache creates dir if needed and returns a cache rooted there.
func NewDiskCache(dir string, opts ...Option) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	o := applyOptions(opts)
	return &DiskCache{dir: dir, logger: o.logger}, nil
}

func (c *DiskCache) path(hash string) string {
	return filepath.Join(c.dir, hash+entryExt)
}

// Get reads the entry for hash.
func (c *DiskCache) Get(_ context.Context, hash string) (*Entry, error) {
	if err := checkHash(hash); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.path(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	e, err := decodeEntry(hash, data)
	if err != nil && c.logger != nil {
		c.logger.Warn("corrupt cache entry", zap.String("hash", hash), zap.Error(err))
	}
	return e, err
}

// Put writes the entry to a temp file and renames it into place, so readers
// never observe a partial document.
func (c *DiskCache) Put(_ context.Context, e *Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, e.Hash+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(e.Hash)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

func (c *DiskCache) entries() ([]string, error) {
	des, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}
	var out []string
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryExt) {
			continue
		}
		out = append(out, filepath.Join(c.dir, de.Name()))
	}
	return out, nil
}

// Info reports the number of entries and their total size on disk.
func (c *DiskCache) Info(_ context.Context) (Info, error) {
	files, err := c.entries()
	if err != nil {
		return Info{}, err
	}
	size, err := DiskUsageBytes(files...)
	if err != nil {
		return Info{}, err
	}
	return Info{Enabled: true, Backend: "disk", Dir: c.dir, Entries: len(files), TotalBytes: size}, nil
}

// Clear deletes every entry file.
func (c *DiskCache) Clear(_ context.Context) (int, error) {
	files, err := c.entries()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove cache entry: %w", err)
		}
		removed++
	}
	if c.logger != nil {
		c.logger.Info("cache cleared", zap.String("dir", c.dir), zap.Int("removed", removed))
	}
	return removed, nil
}

func (c *DiskCache) Close() error { return nil }
