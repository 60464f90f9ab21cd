// Package validate checks extracted résumé records against configured requirements.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/transform"
)

const (
	maxRoleYears       = 50
	maxExperienceYears = 70
)

var (
	phoneStrip = regexp.MustCompile(`[\s().\-]`)
	phoneValid = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Rules enumerates the hard requirements.
type Rules struct {
	RequireEmail      bool
	RequirePhone      bool
	RequireExperience bool
	RequireEducation  bool
	MinSkillsCount    int
}

// RulesFromConfig copies the validation section of the config.
func RulesFromConfig(cfg config.ValidationConfig) Rules {
	return Rules{
		RequireEmail:      cfg.RequireEmail,
		RequirePhone:      cfg.RequirePhone,
		RequireExperience: cfg.RequireExperience,
		RequireEducation:  cfg.RequireEducation,
		MinSkillsCount:    cfg.MinSkillsCount,
	}
}

// Result is the outcome of validating one record.
type Result struct {
	Valid      bool               `json:"valid"`
	Violations []models.Violation `json:"violations"`
}

// Err returns nil for a valid result and an errs.ErrValidationFailure error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.String()
	}
	return errs.New(errs.ErrValidationFailure, "validate", "", strings.Join(msgs, "; "))
}

// Validator applies Rules plus field-level format checks.
type Validator struct {
	rules Rules
	v     *validator.Validate
	now   func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the time used to resolve "present" end dates.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New returns a Validator for rules.
func New(rules Rules, opts ...Option) *Validator {
	v := &Validator{rules: rules, v: validator.New(), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate never fails; every problem is reported as a violation.
func (v *Validator) Validate(rec *models.ExtractionRecord) Result {
	c := &collector{}
	v.contact(rec, c)
	v.skills(rec, c)
	v.experience(rec, c)
	v.education(rec, c)
	v.other(rec, c)
	return Result{Valid: len(c.out) == 0, Violations: c.out}
}

type collector struct {
	out []models.Violation
}

func (c *collector) add(field, code, format string, args ...any) {
	c.out = append(c.out, models.Violation{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (v *Validator) contact(rec *models.ExtractionRecord, c *collector) {
	email := strings.TrimSpace(rec.Email)
	phone := strings.TrimSpace(rec.Phone)

	switch {
	case email == "" && v.rules.RequireEmail:
		c.add("personalInfo.email", models.CodeMissing, "email is required")
	case email != "" && v.v.Var(email, "email") != nil:
		c.add("personalInfo.email", models.CodeInvalidFormat, "invalid email address %q", email)
	}

	switch {
	case phone == "" && v.rules.RequirePhone:
		c.add("personalInfo.phone", models.CodeMissing, "phone number is required")
	case phone != "" && !phoneValid.MatchString(phoneStrip.ReplaceAllString(phone, "")):
		c.add("personalInfo.phone", models.CodeInvalidFormat, "invalid phone number %q", phone)
	}

	if email == "" && phone == "" && !v.rules.RequireEmail && !v.rules.RequirePhone {
		c.add("personalInfo", models.CodeMissing, "at least one contact method (email or phone) is required")
	}
}

func (v *Validator) skills(rec *models.ExtractionRecord, c *collector) {
	if n := len(rec.Skills); n < v.rules.MinSkillsCount {
		c.add("skills", models.CodeTooFew, "at least %d skills required, found %d", v.rules.MinSkillsCount, n)
	}
	seen := map[string]bool{}
	for i, s := range rec.Skills {
		name := strings.TrimSpace(s.Name)
		if utf8.RuneCountInString(name) < 2 {
			c.add(fmt.Sprintf("skills[%d].name", i), models.CodeInvalidFormat, "skill name %q is too short", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			c.add(fmt.Sprintf("skills[%d].name", i), models.CodeInvalidFormat, "duplicate skill %q", name)
		}
		seen[key] = true
	}
}

func (v *Validator) experience(rec *models.ExtractionRecord, c *collector) {
	if len(rec.Experience) == 0 && v.rules.RequireExperience {
		c.add("experience", models.CodeMissing, "at least one experience entry is required")
	}
	for i, e := range rec.Experience {
		field := fmt.Sprintf("experience[%d]", i)
		if strings.TrimSpace(e.Title) == "" {
			c.add(field+".title", models.CodeMissing, "job title is required")
		}
		if strings.TrimSpace(e.Company) == "" {
			c.add(field+".company", models.CodeMissing, "company is required")
		}
		v.dateRange(field, e.Start, e.End, e.Current, c)
	}
	if months := transform.ExperienceMonths(rec.Experience, v.now()); months > maxExperienceYears*12 {
		c.add("yearsOfExperience", models.CodeInvalidRange, "%.1f years of experience is implausible", float64(months)/12)
	}
}

func (v *Validator) education(rec *models.ExtractionRecord, c *collector) {
	if len(rec.Education) == 0 && v.rules.RequireEducation {
		c.add("education", models.CodeMissing, "at least one education entry is required")
	}
	for i, e := range rec.Education {
		field := fmt.Sprintf("education[%d]", i)
		if strings.TrimSpace(e.Degree) == "" {
			c.add(field+".degree", models.CodeMissing, "degree is required")
		}
		if strings.TrimSpace(e.Institution) == "" {
			c.add(field+".institution", models.CodeMissing, "institution is required")
		}
		v.dateRange(field, e.Start, e.End, false, c)
		if e.GPA != nil && !gpaInRange(*e.GPA, e.GPAScale) {
			c.add(field+".gpa", models.CodeInvalidRange, "GPA %g is outside the valid range", *e.GPA)
		}
	}
}

func (v *Validator) other(rec *models.ExtractionRecord, c *collector) {
	for i, cert := range rec.Certifications {
		field := fmt.Sprintf("certifications[%d]", i)
		if strings.TrimSpace(cert.Name) == "" {
			c.add(field+".name", models.CodeMissing, "certification name is required")
		}
		dateFormat(field+".date", cert.Date, c)
	}
	for i, p := range rec.Projects {
		if strings.TrimSpace(p.Name) == "" {
			c.add(fmt.Sprintf("projects[%d].name", i), models.CodeMissing, "project name is required")
		}
	}
	for i, l := range rec.Languages {
		if strings.TrimSpace(l.Language) == "" {
			c.add(fmt.Sprintf("languages[%d].language", i), models.CodeMissing, "language is required")
		}
	}
}

func (v *Validator) dateRange(field string, start, end models.PartialDate, current bool, c *collector) {
	okStart := dateFormat(field+".startDate", start, c)
	okEnd := dateFormat(field+".endDate", end, c)
	if !okStart || !okEnd {
		return
	}
	s, hasStart := start.MonthIndex(true)
	e, hasEnd := end.MonthIndex(false)
	if current || end.Present {
		now := v.now()
		e, hasEnd = now.Year()*12+int(now.Month())-1, true
	}
	if !hasStart || !hasEnd {
		return
	}
	if s > e {
		c.add(field+".startDate", models.CodeInvalidRange, "start date %s is after end date", start.Text)
		return
	}
	if e-s > maxRoleYears*12 {
		c.add(field+".endDate", models.CodeInvalidRange, "date range spans more than %d years", maxRoleYears)
	}
}

// dateFormat reports unparsed date text and returns whether the date is usable.
func dateFormat(field string, d models.PartialDate, c *collector) bool {
	if d.IsZero() || d.Parsed() {
		return true
	}
	c.add(field, models.CodeInvalidFormat, "unrecognized date %q", d.Text)
	return false
}

// gpaInRange accepts a GPA within its stated scale. Without a scale the
// widest common scale (percentage) applies.
func gpaInRange(gpa, scale float64) bool {
	if gpa < 0 {
		return false
	}
	if scale <= 0 {
		scale = transform.MaxGPAScale
	}
	return gpa <= scale
}
