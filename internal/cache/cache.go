// Package cache stores extraction results keyed by the content hash of the source file.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/fileid"
	"github.com/hyperjump/cvingest/internal/models"
)

// ErrNotFound is returned by Get when no entry exists for a hash.
var ErrNotFound = errors.New("cache entry not found")

// Entry is the cached result of extracting and parsing one document.
type Entry struct {
	Hash          string                   `json:"fileHash"`
	ParserVersion string                   `json:"parserVersion"`
	Text          string                   `json:"text"`
	Parsed        *models.ExtractionRecord `json:"parsed,omitempty"`
	CreatedAt     time.Time                `json:"cachedAt"`
}

// Info describes the current cache contents.
type Info struct {
	Enabled    bool   `json:"enabled"`
	Backend    string `json:"backend"`
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
}

// Cache is a content-addressed store. Implementations must be safe for
// concurrent use; writing the same hash twice is not an error.
type Cache interface {
	// Get returns ErrNotFound on a miss and an errs.ErrCacheCorruption error
	// when the stored entry cannot be decoded.
	Get(ctx context.Context, hash string) (*Entry, error)
	Put(ctx context.Context, e *Entry) error
	Info(ctx context.Context) (Info, error)
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	Close() error
}

// Open returns the cache selected by cfg. A disabled cache never hits.
func Open(cfg config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	switch cfg.Backend {
	case "", "disk":
		return NewDiskCache(cfg.Dir, WithLogger(logger))
	case "sqlite":
		return NewSQLiteCache(filepath.Join(cfg.Dir, "cache.db"), WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Option configures a cache backend.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report corrupt entries.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkHash(hash string) error {
	if !fileid.Valid(hash) {
		return fmt.Errorf("invalid content hash %q", hash)
	}
	return nil
}

func encodeEntry(e *Entry) ([]byte, error) {
	if err := checkHash(e.Hash); err != nil {
		return nil, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func decodeEntry(hash string, data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errs.Wrap(errs.ErrCacheCorruption, "cache get", hash, err)
	}
	if e.Hash != hash {
		return nil, errs.New(errs.ErrCacheCorruption, "cache get", hash, "hash mismatch")
	}
	return &e, nil
}

// Disabled is a Cache that stores nothing.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (*Entry, error) { return nil, ErrNotFound }
func (Disabled) Put(context.Context, *Entry) error           { return nil }
func (Disabled) Info(context.Context) (Info, error)          { return Info{}, nil }
func (Disabled) Clear(context.Context) (int, error)          { return 0, nil }
func (Disabled) Close() error                                { return nil }
