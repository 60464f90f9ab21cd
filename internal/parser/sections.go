package parser

import (
	"regexp"
	"strings"

	"github.com/hyperjump/cvingest/internal/models"
)

var (
	urlRe        = regexp.MustCompile(`(?i)\bhttps?://[^\s|,;)]+|\b(?:www\.)?github\.com/[^\s|,;)]+`)
	credentialRe = regexp.MustCompile(`(?i)\b(?:credential\s*id|license\s*(?:no|number)|id)\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{3,})`)
	techLabelRe  = regexp.MustCompile(`(?i)^(?:technologies|tech stack|stack|built with|tools)\s*:\s*(.+)$`)
	roleLabelRe  = regexp.MustCompile(`(?i)^role\s*:\s*(.+)$`)
	parenRe      = regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`)
	langSuffixRe = regexp.MustCompile(`^(.*?)\s*[-–:]\s*(.+)$`)
)

type certificationMatcher struct{}

func (certificationMatcher) Name() string     { return "certifications" }
func (certificationMatcher) Category() string { return CategoryCertifications }

// Apply reads one certification per line: name, then issuer, with optional
// date, credential ID and URL anywhere on the line.
func (certificationMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	for _, line := range doc.Section(SectionCertifications) {
		line = stripBullet(line)
		var c models.RawCertification
		if loc := urlRe.FindStringIndex(line); loc != nil {
			c.URL = line[loc[0]:loc[1]]
			line = cut(line, loc)
		}
		if m := credentialRe.FindStringSubmatchIndex(line); m != nil {
			c.CredentialID = line[m[2]:m[3]]
			line = cut(line, m[:2])
		}
		if d, loc, ok := findDate(line); ok {
			c.Date = d
			line = cut(line, loc)
		}
		parts := segmentSep.Split(line, -1)
		var kept []string
		for _, p := range parts {
			if p = trimSeparators(p); p != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		c.Name = kept[0]
		if len(kept) > 1 {
			c.Issuer = kept[1]
		}
		rec.Certifications = append(rec.Certifications, c)
	}
}

type projectMatcher struct{}

func (projectMatcher) Name() string     { return "projects" }
func (projectMatcher) Category() string { return CategoryProjects }

// Apply treats each non-bullet line as a project heading and the lines under
// it as description, technologies or role.
func (projectMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	var projects []models.RawProject
	for _, line := range doc.Section(SectionProjects) {
		bullet := isBullet(line)
		line = stripBullet(line)

		if len(projects) > 0 {
			cur := &projects[len(projects)-1]
			if m := techLabelRe.FindStringSubmatch(line); m != nil {
				cur.Technologies = append(cur.Technologies, splitList(m[1])...)
				continue
			}
			if m := roleLabelRe.FindStringSubmatch(line); m != nil {
				cur.Role = strings.TrimSpace(m[1])
				continue
			}
			if bullet {
				cur.Description = strings.TrimSpace(cur.Description + " " + line)
				continue
			}
		}

		p := models.RawProject{Technologies: []string{}}
		if loc := urlRe.FindStringIndex(line); loc != nil {
			p.URL = line[loc[0]:loc[1]]
			line = cut(line, loc)
		}
		name, desc := line, ""
		if parts := titleSep.Split(line, 2); len(parts) == 2 {
			name, desc = trimSeparators(parts[0]), trimSeparators(parts[1])
		}
		if m := parenRe.FindStringSubmatch(name); m != nil {
			name = m[1]
			p.Technologies = append(p.Technologies, splitList(m[2])...)
		}
		p.Name, p.Description = strings.TrimSpace(name), desc
		if p.Name != "" {
			projects = append(projects, p)
		}
	}
	rec.Projects = append(rec.Projects, projects...)
}

type languageMatcher struct{}

func (languageMatcher) Name() string     { return "languages" }
func (languageMatcher) Category() string { return CategoryLanguages }

// Apply reads "English (Native)", "Spanish - Fluent" or "French: B2" items.
func (languageMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	for _, line := range doc.Section(SectionLanguages) {
		for _, item := range skillSep.Split(stripBullet(line), -1) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			l := models.RawLanguage{Language: item}
			if m := parenRe.FindStringSubmatch(item); m != nil {
				l.Language, l.Proficiency = m[1], m[2]
			} else if m := langSuffixRe.FindStringSubmatch(item); m != nil {
				l.Language, l.Proficiency = m[1], m[2]
			}
			l.Language = strings.TrimSpace(l.Language)
			l.Proficiency = strings.TrimSpace(l.Proficiency)
			rec.Languages = append(rec.Languages, l)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range skillSep.Split(s, -1) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
