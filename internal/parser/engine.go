// Package parser extracts résumé fields from plain text with an ordered
// catalogue of pattern matchers.
package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/fileid"
	"github.com/hyperjump/cvingest/internal/models"
)

// Version identifies the extraction rules. Cache entries written by another
// version are ignored.
const Version = "1.0.0"

// Matcher categories.
const (
	CategoryContact        = "contact"
	CategorySummary        = "summary"
	CategorySkills         = "skills"
	CategoryExperience     = "experience"
	CategoryEducation      = "education"
	CategoryCertifications = "certifications"
	CategoryProjects       = "projects"
	CategoryLanguages      = "languages"
)

// Matcher populates the fields of one category. Apply must only add to rec;
// a field already set by an earlier matcher is left alone.
type Matcher interface {
	Name() string
	Category() string
	Apply(doc *Document, rec *models.ExtractionRecord)
}

// Engine runs its matchers in registration order.
type Engine struct {
	matchers []Matcher
	disabled map[string]bool
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report failing matchers.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithExtractionConfig disables the optional categories turned off in cfg.
func WithExtractionConfig(cfg config.ExtractionConfig) Option {
	return func(e *Engine) {
		e.disabled[CategoryCertifications] = !cfg.Certifications
		e.disabled[CategoryProjects] = !cfg.Projects
		e.disabled[CategoryLanguages] = !cfg.Languages
	}
}

// NewEngine returns an engine with the default matcher catalogue.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{disabled: map[string]bool{}}
	for _, opt := range opts {
		opt(e)
	}
	for _, m := range DefaultMatchers() {
		e.Register(m)
	}
	return e
}

// DefaultMatchers returns the built-in catalogue in evaluation order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		emailMatcher{},
		phoneMatcher{},
		linksMatcher{},
		nameMatcher{},
		locationMatcher{},
		summaryMatcher{},
		skillsMatcher{},
		experienceMatcher{},
		educationMatcher{},
		certificationMatcher{},
		projectMatcher{},
		languageMatcher{},
	}
}

// Register appends m to the catalogue unless its category is disabled.
func (e *Engine) Register(m Matcher) {
	if e.disabled[m.Category()] {
		return
	}
	e.matchers = append(e.matchers, m)
}

// Matchers returns the names of the registered matchers in order.
func (e *Engine) Matchers() []string {
	names := make([]string, len(e.matchers))
	for i, m := range e.matchers {
		names[i] = m.Name()
	}
	return names
}

// Fingerprint identifies the rules this engine applies: Version plus the
// registered matchers. Engines with different optional categories disagree.
func (e *Engine) Fingerprint() string {
	return Version + "+" + fileid.ContentHash([]byte(strings.Join(e.Matchers(), ",")))[:12]
}

// Extract never fails: fields that are not found stay empty.
func (e *Engine) Extract(text string) *models.ExtractionRecord {
	doc := NewDocument(text)
	rec := &models.ExtractionRecord{
		Text:           text,
		Skills:         []models.RawSkill{},
		Experience:     []models.RawExperience{},
		Education:      []models.RawEducation{},
		Certifications: []models.RawCertification{},
		Projects:       []models.RawProject{},
		Languages:      []models.RawLanguage{},
	}
	for _, m := range e.matchers {
		e.apply(m, doc, rec)
	}
	return rec
}

func (e *Engine) apply(m Matcher, doc *Document, rec *models.ExtractionRecord) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Error("matcher failed",
				zap.String("matcher", m.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	m.Apply(doc, rec)
}
