package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/pipeline"
	"github.com/hyperjump/cvingest/pkg/utils"
)

// Processor runs one file through the pipeline.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// JSONSink writes one outcome document per résumé into a directory.
type JSONSink struct {
	proc   Processor
	outDir string
	logger *zap.Logger
}

// NewJSONSink creates outDir if needed.
func NewJSONSink(proc Processor, outDir string, logger *zap.Logger) (*JSONSink, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONSink{proc: proc, outDir: outDir, logger: utils.OrNop(logger)}, nil
}

// OutputPath is where the outcome for path is written. The source extension
// is kept so cv.pdf and cv.docx do not collide.
func (s *JSONSink) OutputPath(path string) string {
	return filepath.Join(s.outDir, filepath.Base(path)+".json")
}

// Ingest processes path and writes its outcome. Failures are written too, so
// the output directory mirrors every résumé seen.
func (s *JSONSink) Ingest(ctx context.Context, path string) {
	res, err := s.proc.ProcessFile(ctx, path)
	o := pipeline.Outcome(path, res, err)
	if err != nil {
		s.logger.Warn("résumé rejected", zap.String("path", path), zap.String("reason", errs.Reason(err)), zap.Error(err))
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		s.logger.Error("encode outcome", zap.String("path", path), zap.Error(err))
		return
	}
	out := s.OutputPath(path)
	tmp := out + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.logger.Error("write outcome", zap.String("path", out), zap.Error(err))
		return
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		s.logger.Error("write outcome", zap.String("path", out), zap.Error(err))
		return
	}
	s.logger.Info("résumé ingested",
		zap.String("path", path),
		zap.String("output", out),
		zap.Bool("valid", o.Valid),
		zap.Bool("cache_hit", o.CacheHit),
	)
}

// Forget removes the outcome written for path.
func (s *JSONSink) Forget(path string) {
	out := s.OutputPath(path)
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("remove outcome", zap.String("path", out), zap.Error(err))
		return
	}
	s.logger.Debug("outcome removed", zap.String("path", out))
}
