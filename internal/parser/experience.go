package parser

import (
	"regexp"
	"strings"

	"github.com/hyperjump/cvingest/internal/models"
)

var (
	atSep    = regexp.MustCompile(`(?i)\s+(?:at|@)\s+`)
	titleSep = regexp.MustCompile(`\s*[|,]\s*|\s+[-–—]\s+`)
	titleRe  = regexp.MustCompile(`(?i)\b(engineer|developer|manager|analyst|designer|consultant|intern|lead|director|architect|scientist|specialist|administrator|officer|coordinator|head|vp|president|founder|assistant|technician|researcher|programmer|tester|owner|cto|ceo|cfo|sre|devops)\b`)
)

type experienceMatcher struct{}

func (experienceMatcher) Name() string     { return "experience" }
func (experienceMatcher) Category() string { return CategoryExperience }

// Apply anchors each role on a date-range line. The non-bullet lines just
// before it name the role; bullets after it are responsibilities.
func (experienceMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	lines := doc.Section(SectionExperience)
	if len(lines) == 0 {
		return
	}

	var (
		entries []models.RawExperience
		pending []string
	)
	flush := func() {
		if len(entries) > 0 && len(pending) > 0 {
			cur := &entries[len(entries)-1]
			cur.Description = strings.TrimSpace(cur.Description + " " + strings.Join(pending, " "))
		}
		pending = nil
	}

	for _, line := range lines {
		if isBullet(line) {
			if len(pending) > 0 && len(entries) == 0 {
				entries = append(entries, newExperience(pending, dateRange{}))
				pending = nil
			}
			flush()
			if len(entries) > 0 {
				cur := &entries[len(entries)-1]
				cur.Responsibilities = append(cur.Responsibilities, stripBullet(line))
			}
			continue
		}
		dr, ok := findDateRange(line)
		if !ok {
			pending = append(pending, line)
			continue
		}
		header := pending
		if rest := cut(line, dr.loc); rest != "" {
			header = []string{rest}
			if len(pending) > 0 && len(pending) <= 2 && !titleRe.MatchString(rest) {
				header = append(pending, rest)
			} else {
				flush()
			}
		} else if len(pending) > 2 {
			keep := pending[len(pending)-2:]
			pending = pending[:len(pending)-2]
			flush()
			header = keep
		}
		pending = nil
		entries = append(entries, newExperience(header, dr))
	}
	if len(entries) == 0 && len(pending) > 0 {
		entries = append(entries, newExperience(pending[:min(len(pending), 2)], dateRange{}))
		pending = pending[min(len(pending), 2):]
	}
	flush()
	for i := range entries {
		if entries[i].Responsibilities == nil {
			entries[i].Responsibilities = []string{}
		}
	}
	rec.Experience = append(rec.Experience, entries...)
}

func newExperience(header []string, dr dateRange) models.RawExperience {
	e := models.RawExperience{Start: dr.start, End: dr.end, Current: dr.end.Present}
	e.Title, e.Company, e.Location = splitRole(header)
	return e
}

// splitRole reads title, company and location from one or two header lines.
func splitRole(header []string) (title, company, location string) {
	var parts []string
	for _, h := range header {
		if p := atSep.Split(h, 2); len(p) == 2 {
			parts = append(parts, p[0], p[1])
			continue
		}
		parts = append(parts, titleSep.Split(h, -1)...)
	}
	var rest []string
	for _, p := range parts {
		p = trimSeparators(p)
		if p == "" {
			continue
		}
		if title == "" && titleRe.MatchString(p) {
			title = p
			continue
		}
		rest = append(rest, p)
	}
	if title == "" && len(rest) > 0 {
		title, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		company, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		location = strings.Join(rest, ", ")
	}
	return title, company, location
}
