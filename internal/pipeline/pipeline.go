// Package pipeline runs one document through loading, extraction, parsing,
// validation and transformation.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/cache"
	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/extract"
	"github.com/hyperjump/cvingest/internal/loader"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/parser"
	"github.com/hyperjump/cvingest/internal/transform"
	"github.com/hyperjump/cvingest/internal/validate"
	"github.com/hyperjump/cvingest/pkg/utils"
)

// Overrides are values supplied by the uploader. Non-empty fields replace
// what was extracted before validation.
type Overrides struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Input is an in-memory document. Name supplies the format through its extension.
type Input struct {
	Name      string
	Content   []byte
	Overrides Overrides
}

// Result is the output of one pipeline run.
type Result struct {
	Record       *models.CandidateRecord
	Validation   validate.Result
	Completeness float64
	CacheHit     bool
	Hash         string
	Size         int64
}

// Pipeline is safe for concurrent use when its cache is.
type Pipeline struct {
	cache       cache.Cache
	loader      *loader.Loader
	extractor   *extract.Extractor
	engine      *parser.Engine
	validator   *validate.Validator
	transformer *transform.Transformer
	logger      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
	now    func() time.Time
}

// WithLogger sets the logger shared by every stage.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		s.logger = utils.OrNop(l)
	}
}

// WithClock fixes the time used for parsedAt and current roles.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// New builds a Pipeline from cfg. c may be nil, which disables caching.
func New(cfg *config.Config, c cache.Cache, opts ...Option) *Pipeline {
	s := settings{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	if c == nil {
		c = cache.Disabled{}
	}
	engine := parser.NewEngine(
		parser.WithLogger(s.logger),
		parser.WithExtractionConfig(cfg.Extraction),
	)
	return &Pipeline{
		cache: c,
		loader: loader.NewFromConfig(cfg, c,
			loader.WithParserVersion(engine.Fingerprint()),
			loader.WithLogger(s.logger),
		),
		extractor: extract.NewExtractor(),
		engine:    engine,
		validator: validate.New(validate.RulesFromConfig(cfg.Validation), validate.WithClock(s.now)),
		transformer: transform.NewFromConfig(cfg,
			transform.WithClock(s.now),
			transform.WithLogger(s.logger),
		),
		logger: s.logger,
	}
}

// Cache returns the cache the pipeline reads and writes.
func (p *Pipeline) Cache() cache.Cache {
	return p.cache
}

// Check validates path without processing it.
func (p *Pipeline) Check(path string) error {
	return p.loader.Check(path)
}

// ProcessFile runs the file at path through every stage. Errors carry an
// errs kind; validation problems are reported in Result, not as an error.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	d, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, d, Overrides{})
}

// ProcessBytes is ProcessFile for an upload.
func (p *Pipeline) ProcessBytes(ctx context.Context, in Input) (*Result, error) {
	d, err := p.loader.LoadBytes(ctx, in.Name, in.Content)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, d, in.Overrides)
}

func (p *Pipeline) run(ctx context.Context, d *loader.FileData, o Overrides) (*Result, error) {
	var rec *models.ExtractionRecord
	if d.CacheHit() {
		rec = d.Cached.Parsed
		if rec.Text == "" {
			rec.Text = d.Cached.Text
		}
	} else {
		text, err := p.extractor.ExtractBytes(d.Content, d.Format)
		if err != nil {
			var fe *errs.FileError
			if errors.As(err, &fe) {
				fe.Path = d.Path
				if fe.Path == "" {
					fe.Path = d.Name
				}
			}
			return nil, err
		}
		rec = p.engine.Extract(text)
		if err := p.loader.Store(ctx, d, text, rec); err != nil {
			p.logger.Warn("cache write failed", zap.String("file", d.Name), zap.Error(err))
		}
	}

	rec = applyOverrides(rec, o)
	res := &Result{
		Validation:   p.validator.Validate(rec),
		Completeness: validate.CompletenessScore(rec),
		Record:       p.transformer.Transform(rec),
		CacheHit:     d.CacheHit(),
		Hash:         d.Hash,
		Size:         d.Size,
	}
	p.logger.Debug("document processed",
		zap.String("file", d.Name),
		zap.Bool("cache_hit", res.CacheHit),
		zap.Bool("valid", res.Validation.Valid),
		zap.Float64("completeness", res.Completeness),
	)
	return res, nil
}

// applyOverrides returns rec itself when o is empty and a shallow copy otherwise.
func applyOverrides(rec *models.ExtractionRecord, o Overrides) *models.ExtractionRecord {
	if o == (Overrides{}) {
		return rec
	}
	cp := *rec
	if o.FullName != "" {
		cp.Name = o.FullName
	}
	if o.Email != "" {
		cp.Email = o.Email
	}
	if o.Phone != "" {
		cp.Phone = o.Phone
	}
	return &cp
}
