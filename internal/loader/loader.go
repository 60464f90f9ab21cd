// Package loader reads résumé files, enforces the format and size limits and
// consults the content cache.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/cache"
	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/extract"
	"github.com/hyperjump/cvingest/internal/fileid"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/parser"
)

const defaultMaxBytes = 10 << 20

// FileData is a loaded document. Cached is set when an entry written by the
// current parser version exists for Hash.
type FileData struct {
	Path    string
	Name    string
	Format  extract.Format
	Hash    string
	Content []byte
	Size    int64
	Cached  *cache.Entry
}

// CacheHit reports whether extraction and parsing can be skipped.
func (d *FileData) CacheHit() bool {
	return d.Cached != nil
}

// Loader loads files and looks them up in the cache.
type Loader struct {
	cache    cache.Cache
	maxBytes int64
	version  string
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache sets the content cache. Without one nothing is cached.
func WithCache(c cache.Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithMaxFileSize sets the largest accepted file in bytes.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		l.maxBytes = n
	}
}

// WithParserVersion overrides the version entries must carry to count as hits.
func WithParserVersion(v string) Option {
	return func(l *Loader) {
		l.version = v
	}
}

// WithLogger sets the logger for cache events.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = lg
	}
}

// New returns a Loader with a 10 MB limit and no cache.
func New(opts ...Option) *Loader {
	l := &Loader{
		cache:    cache.Disabled{},
		maxBytes: defaultMaxBytes,
		version:  parser.Version,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFromConfig returns a Loader using the ingestion limits in cfg.
func NewFromConfig(cfg *config.Config, c cache.Cache, opts ...Option) *Loader {
	base := []Option{
		WithCache(c),
		WithMaxFileSize(int64(cfg.Ingestion.MaxFileSizeMB) << 20),
	}
	return New(append(base, opts...)...)
}

// Check validates path without reading it.
func (l *Loader) Check(path string) error {
	_, _, err := l.check(path)
	return err
}

func (l *Loader) check(path string) (extract.Format, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, errs.New(errs.ErrFileNotFound, "load", path, "")
		}
		return "", nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, errs.New(errs.ErrFileNotFound, "load", path, "not a regular file")
	}
	f, ok := extract.FormatFromPath(path)
	if !ok {
		return "", nil, errs.New(errs.ErrUnsupportedFormat, "load", path, filepath.Ext(path))
	}
	if err := l.checkSize(path, info.Size()); err != nil {
		return "", nil, err
	}
	return f, info, nil
}

func (l *Loader) checkSize(path string, size int64) error {
	if l.maxBytes > 0 && size > l.maxBytes {
		return errs.New(errs.ErrFileTooLarge, "load", path,
			fmt.Sprintf("%s exceeds %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(l.maxBytes))))
	}
	return nil
}

// Load reads the file at path, hashes it and looks it up in the cache.
func (l *Loader) Load(ctx context.Context, path string) (*FileData, error) {
	f, _, err := l.check(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	// The file may have grown since the stat.
	if err := l.checkSize(path, int64(len(content))); err != nil {
		return nil, err
	}
	return l.build(ctx, path, filepath.Base(path), f, content), nil
}

// LoadBytes is Load for content that did not come from disk, such as an
// upload. name supplies the extension.
func (l *Loader) LoadBytes(ctx context.Context, name string, content []byte) (*FileData, error) {
	f, ok := extract.FormatFromPath(name)
	if !ok {
		return nil, errs.New(errs.ErrUnsupportedFormat, "load", name, filepath.Ext(name))
	}
	if err := l.checkSize(name, int64(len(content))); err != nil {
		return nil, err
	}
	return l.build(ctx, "", name, f, content), nil
}

func (l *Loader) build(ctx context.Context, path, name string, f extract.Format, content []byte) *FileData {
	d := &FileData{
		Path:    path,
		Name:    name,
		Format:  f,
		Hash:    fileid.ContentHash(content),
		Content: content,
		Size:    int64(len(content)),
	}
	d.Cached = l.lookup(ctx, d)
	return d
}

// lookup never fails: every cache problem is a miss.
func (l *Loader) lookup(ctx context.Context, d *FileData) *cache.Entry {
	e, err := l.cache.Get(ctx, d.Hash)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		l.logger.Debug("cache miss", zap.String("file", d.Name), zap.String("hash", d.Hash))
		return nil
	case errors.Is(err, errs.ErrCacheCorruption):
		l.logger.Warn("ignoring corrupt cache entry", zap.String("file", d.Name), zap.Error(err))
		return nil
	case err != nil:
		l.logger.Warn("cache lookup failed", zap.String("file", d.Name), zap.Error(err))
		return nil
	}
	if e.ParserVersion != l.version || e.Parsed == nil {
		l.logger.Debug("stale cache entry",
			zap.String("file", d.Name),
			zap.String("entry_version", e.ParserVersion),
			zap.String("version", l.version))
		return nil
	}
	l.logger.Debug("cache hit", zap.String("file", d.Name), zap.String("hash", d.Hash))
	return e
}

// Store writes a fresh extraction result back to the cache.
func (l *Loader) Store(ctx context.Context, d *FileData, text string, parsed *models.ExtractionRecord) error {
	e := &cache.Entry{
		Hash:          d.Hash,
		ParserVersion: l.version,
		Text:          text,
		Parsed:        parsed,
		CreatedAt:     l.now().UTC(),
	}
	if err := l.cache.Put(ctx, e); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
