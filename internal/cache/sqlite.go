package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteCache stores entries as rows in a single SQLite database file.
type SQLiteCache struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLiteCache opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteCache(dbPath string, opts ...Option) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		hash TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	o := applyOptions(opts)
	return &SQLiteCache{db: db, path: dbPath, logger: o.logger}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, hash string) (*Entry, error) {
	if err := checkHash(hash); err != nil {
		return nil, err
	}
	var body []byte
	err := c.db.QueryRowContext(ctx, `SELECT body FROM cache_entries WHERE hash = ?`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry: %w", err)
	}
	e, err := decodeEntry(hash, body)
	if err != nil && c.logger != nil {
		c.logger.Warn("corrupt cache entry", zap.String("hash", hash), zap.Error(err))
	}
	return e, err
}

func (c *SQLiteCache) Put(ctx context.Context, e *Entry) error {
	body, err := encodeEntry(e)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (hash, body, created_at) VALUES (?, ?, ?)`,
		e.Hash, body, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Info(ctx context.Context) (Info, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&n); err != nil {
		return Info{}, fmt.Errorf("count cache entries: %w", err)
	}
	size, err := DiskUsageBytes(c.path, c.path+"-wal", c.path+"-shm")
	if err != nil {
		return Info{}, err
	}
	return Info{Enabled: true, Backend: "sqlite", Dir: filepath.Dir(c.path), Entries: n, TotalBytes: size}, nil
}

func (c *SQLiteCache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if c.logger != nil {
		c.logger.Info("cache cleared", zap.String("path", c.path), zap.Int64("removed", n))
	}
	return int(n), nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
