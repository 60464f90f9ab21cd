// Package transform normalizes extracted records into the canonical candidate schema.
package transform

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/parser"
	"github.com/hyperjump/cvingest/internal/taxonomy"
	"github.com/hyperjump/cvingest/pkg/utils"
)

// Transformer is deterministic for a fixed clock.
type Transformer struct {
	now        func() time.Time
	region     string
	includeRaw bool
	maxRaw     int
	version    string
	logger     *zap.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithClock sets the time source for parsedAt and for current roles.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) {
		t.now = now
	}
}

// WithDefaultRegion sets the ISO region used for phone numbers without a country code.
func WithDefaultRegion(region string) Option {
	return func(t *Transformer) {
		t.region = strings.ToUpper(region)
	}
}

// WithRawText controls whether rawText is kept and how many runes survive.
func WithRawText(include bool, maxRunes int) Option {
	return func(t *Transformer) {
		t.includeRaw = include
		t.maxRaw = maxRunes
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transformer) {
		t.logger = l
	}
}

// New returns a Transformer with the given options.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		now:        time.Now,
		region:     "US",
		includeRaw: true,
		maxRaw:     1000,
		version:    parser.Version,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromConfig builds a Transformer from the output and extraction settings.
func NewFromConfig(cfg *config.Config, opts ...Option) *Transformer {
	base := []Option{
		WithDefaultRegion(cfg.Extraction.DefaultRegion),
		WithRawText(cfg.Output.IncludeRawText, cfg.Output.TruncateRawText),
	}
	return New(append(base, opts...)...)
}

// Transform never modifies rec.
func (t *Transformer) Transform(rec *models.ExtractionRecord) *models.CandidateRecord {
	now := t.now()
	out := models.NewCandidateRecord()
	out.PersonalInfo = models.PersonalInfo{
		Name:     NormalizeName(rec.Name),
		Email:    NormalizeEmail(rec.Email),
		Phone:    NormalizePhone(rec.Phone, t.region),
		Location: utils.CollapseSpaces(rec.Location),
		Summary:  utils.CollapseSpaces(rec.Summary),
		Links: models.Links{
			LinkedIn: NormalizeURL(rec.Links.LinkedIn),
			GitHub:   NormalizeURL(rec.Links.GitHub),
			Website:  NormalizeURL(rec.Links.Website),
		},
	}
	if rec.Phone != "" && out.PersonalInfo.Phone == "" && t.logger != nil {
		t.logger.Debug("phone number dropped during normalization", zap.String("phone", rec.Phone))
	}

	out.Skills = t.skills(rec.Skills)

	for _, e := range rec.Experience {
		resp := make([]string, 0, len(e.Responsibilities))
		for _, r := range e.Responsibilities {
			if r = utils.CollapseSpaces(r); r != "" {
				resp = append(resp, r)
			}
		}
		out.Experience = append(out.Experience, models.Experience{
			Title:            utils.CollapseSpaces(e.Title),
			Company:          utils.CollapseSpaces(e.Company),
			Location:         utils.CollapseSpaces(e.Location),
			StartDate:        e.Start.Canonical(),
			EndDate:          e.End.Canonical(),
			Current:          e.Current || e.End.Present,
			Description:      utils.CollapseSpaces(e.Description),
			Responsibilities: resp,
			DurationMonths:   RoleMonths(e, now),
		})
	}

	for _, e := range rec.Education {
		edu := models.Education{
			Degree:       utils.CollapseSpaces(e.Degree),
			DegreeLevel:  DegreeLevelOf(e.Degree),
			Institution:  utils.CollapseSpaces(e.Institution),
			FieldOfStudy: utils.CollapseSpaces(e.FieldOfStudy),
			StartDate:    e.Start.Canonical(),
			EndDate:      e.End.Canonical(),
			Honors:       utils.CollapseSpaces(e.Honors),
		}
		if e.GPA != nil {
			gpa := *e.GPA
			edu.GPA = &gpa
			edu.GPAScale = e.GPAScale
			if edu.GPAScale == 0 {
				edu.GPAScale = InferGPAScale(gpa)
			}
		}
		out.Education = append(out.Education, edu)
	}

	for _, c := range rec.Certifications {
		out.Certifications = append(out.Certifications, models.Certification{
			Name:         utils.CollapseSpaces(c.Name),
			Issuer:       utils.CollapseSpaces(c.Issuer),
			Date:         c.Date.Canonical(),
			CredentialID: strings.TrimSpace(c.CredentialID),
			URL:          NormalizeURL(c.URL),
		})
	}

	for _, p := range rec.Projects {
		tech := make([]string, 0, len(p.Technologies))
		for _, name := range p.Technologies {
			c, _ := taxonomy.Canonical(name)
			if c != "" {
				tech = append(tech, c)
			}
		}
		out.Projects = append(out.Projects, models.Project{
			Name:         utils.CollapseSpaces(p.Name),
			Description:  utils.CollapseSpaces(p.Description),
			Technologies: tech,
			URL:          NormalizeURL(p.URL),
			Role:         utils.CollapseSpaces(p.Role),
		})
	}

	for _, l := range rec.Languages {
		out.Languages = append(out.Languages, models.Language{
			Language:    NormalizeName(l.Language),
			Proficiency: NormalizeLanguageLevel(l.Proficiency),
		})
	}

	out.YearsOfExperience = utils.RoundTo(float64(ExperienceMonths(rec.Experience, now))/12, 2)
	if t.includeRaw {
		out.RawText = utils.Truncate(rec.Text, t.maxRaw)
	}
	out.ParsedAt = now.UTC().Truncate(time.Second)
	out.ParserVersion = t.version
	return out
}

// skills canonicalizes names, assigns categories and drops duplicates that
// only become equal after canonicalization.
func (t *Transformer) skills(in []models.RawSkill) []models.Skill {
	out := make([]models.Skill, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		name, _ := taxonomy.Canonical(s.Name)
		key := strings.ToLower(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		skill := models.Skill{
			Name:        name,
			Category:    taxonomy.Categorize(name),
			Proficiency: strings.ToLower(strings.TrimSpace(s.Proficiency)),
		}
		if s.Years != nil {
			y := *s.Years
			skill.YearsExperience = &y
		}
		out = append(out, skill)
	}
	return out
}
