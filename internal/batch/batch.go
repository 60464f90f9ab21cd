// Package batch runs many résumés through the pipeline on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/pipeline"
)

// Processor runs a single file. *pipeline.Pipeline implements it.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)
	Check(path string) error
}

// ProgressFunc is called once per finished file with the number finished so far.
type ProgressFunc func(done, total int, path string)

// Options control one batch run.
type Options struct {
	Recursive bool
	// Workers overrides the coordinator's pool size when positive.
	Workers    int
	OnProgress ProgressFunc
}

// Report is the result of a batch run. Outcomes are in input order.
type Report struct {
	RunID     string               `json:"runId"`
	Started   time.Time            `json:"started"`
	Duration  time.Duration        `json:"duration"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Valid     int                  `json:"valid"`
	CacheHits int                  `json:"cacheHits"`
	Outcomes  []models.FileOutcome `json:"outcomes"`
}

// Coordinator fans files out to workers and collects their outcomes.
type Coordinator struct {
	proc      Processor
	workers   int
	batchSize int
	logger    *zap.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the default pool size.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBatchSize sets the slice size used by ProcessBatch and Info.
func WithBatchSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// New returns a sequential Coordinator with a batch size of 10.
func New(proc Processor, opts ...Option) *Coordinator {
	c := &Coordinator{
		proc:      proc,
		workers:   1,
		batchSize: 10,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig sizes the pool from the batch settings.
func NewFromConfig(cfg config.BatchConfig, proc Processor, opts ...Option) *Coordinator {
	base := []Option{WithWorkers(cfg.Workers()), WithBatchSize(cfg.BatchSize)}
	return New(proc, append(base, opts...)...)
}

// ProcessDirectory finds the résumés under dir and processes them.
func (c *Coordinator) ProcessDirectory(ctx context.Context, dir string, opts Options) (*Report, error) {
	paths, err := FindFiles(dir, opts.Recursive)
	if err != nil {
		return nil, err
	}
	return c.ProcessFiles(ctx, paths, opts)
}

// ProcessBatch processes paths[start:start+size]. A size of zero uses the
// configured batch size.
func (c *Coordinator) ProcessBatch(ctx context.Context, paths []string, start, size int, opts Options) (*Report, error) {
	if size <= 0 {
		size = c.batchSize
	}
	start = min(max(start, 0), len(paths))
	end := min(start+size, len(paths))
	return c.ProcessFiles(ctx, paths[start:end], opts)
}

type result struct {
	idx     int
	outcome models.FileOutcome
}

// ProcessFiles processes every path. A failing file never stops the run; its
// outcome carries the error. Cancelling ctx stops new files from starting,
// lets running ones finish and marks the rest with the context error.
func (c *Coordinator) ProcessFiles(ctx context.Context, paths []string, opts Options) (*Report, error) {
	runID := uuid.NewString()
	started := time.Now()
	total := len(paths)
	logger := c.logger.With(zap.String("run_id", runID))

	workers := c.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	workers = max(1, min(workers, total))
	logger.Info("batch started", zap.Int("files", total), zap.Int("workers", workers))

	jobs := make(chan int)
	results := make(chan result)
	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				results <- result{idx: idx, outcome: c.processOne(ctx, paths[idx])}
			}
		}()
	}

	submitted := make(chan int, 1)
	go func() {
		defer close(jobs)
		n := 0
		defer func() { submitted <- n }()
		for i := range paths {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
				n++
			}
		}
	}()

	outcomes := make([]models.FileOutcome, total)
	finished := make([]bool, total)
	done := 0
	pending := -1
	for pending < 0 || done < pending {
		select {
		case n := <-submitted:
			pending = n
		case r := <-results:
			outcomes[r.idx] = r.outcome
			finished[r.idx] = true
			done++
			if !r.outcome.Success {
				logger.Warn("file failed", zap.String("path", r.outcome.Path), zap.Error(r.outcome.Err))
			}
			if opts.OnProgress != nil {
				opts.OnProgress(done, total, r.outcome.Path)
			}
		}
	}

	for i, ok := range finished {
		if !ok {
			outcomes[i] = pipeline.Outcome(paths[i], nil, fmt.Errorf("not processed: %w", ctx.Err()))
		}
	}

	rep := &Report{
		RunID:    runID,
		Started:  started,
		Duration: time.Since(started),
		Total:    total,
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Success {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		if o.Valid {
			rep.Valid++
		}
		if o.CacheHit {
			rep.CacheHits++
		}
	}
	logger.Info("batch finished",
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed),
		zap.Int("cache_hits", rep.CacheHits),
		zap.Duration("duration", rep.Duration),
	)
	if done < total {
		return rep, ctx.Err()
	}
	return rep, nil
}

func (c *Coordinator) processOne(ctx context.Context, path string) (o models.FileOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o = pipeline.Outcome(path, nil, fmt.Errorf("panic processing file: %v", r))
		}
	}()
	res, err := c.proc.ProcessFile(ctx, path)
	return pipeline.Outcome(path, res, err)
}

// Info summarizes paths without processing them.
type Info struct {
	TotalFiles   int      `json:"totalFiles"`
	ValidFiles   int      `json:"validFiles"`
	InvalidFiles []string `json:"invalidFiles"`
	BatchCount   int      `json:"batchCount"`
	BatchSize    int      `json:"batchSize"`
	TotalBytes   int64    `json:"totalBytes"`
	Workers      int      `json:"workers"`
}

// Info reports sizes and the batch split for paths. Files that cannot be
// stat'ed are listed as invalid.
func (c *Coordinator) Info(paths []string) Info {
	info := Info{
		TotalFiles:   len(paths),
		InvalidFiles: []string{},
		BatchCount:   (len(paths) + c.batchSize - 1) / c.batchSize,
		BatchSize:    c.batchSize,
		Workers:      c.workers,
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			info.InvalidFiles = append(info.InvalidFiles, p)
			continue
		}
		info.ValidFiles++
		info.TotalBytes += fi.Size()
	}
	return info
}

// FileCheck is one rejected file.
type FileCheck struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// CheckSummary is the result of ValidateFiles.
type CheckSummary struct {
	Total   int         `json:"total"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
	Errors  []FileCheck `json:"errors"`
}

// ValidateFiles checks existence, format and size of every path without reading it.
func (c *Coordinator) ValidateFiles(paths []string) CheckSummary {
	s := CheckSummary{Total: len(paths), Errors: []FileCheck{}}
	for _, p := range paths {
		if err := c.proc.Check(p); err != nil {
			s.Invalid++
			s.Errors = append(s.Errors, FileCheck{Path: p, Error: err.Error()})
			continue
		}
		s.Valid++
	}
	return s
}
