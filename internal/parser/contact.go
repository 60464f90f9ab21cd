package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hyperjump/cvingest/internal/models"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{5,}\d`)
	phoneLabel = regexp.MustCompile(`(?i)\b(?:phone|tel|telephone|mobile|cell)\b`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/[^\s|,;)]+`)
	githubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[^\s|,;)]+`)
	websiteRe  = regexp.MustCompile(`(?i)\bhttps?://[^\s|,;)]+|\bwww\.[^\s|,;)]+`)
	labelRe    = regexp.MustCompile(`(?i)^(name|full name|location|address|city)\s*:\s*(.+)$`)
	locationRe = regexp.MustCompile(`^[A-Z][A-Za-z.'\-]*(?: [A-Z][A-Za-z.'\-]*){0,3}, ?[A-Z][A-Za-z.'\-]*(?: [A-Z][A-Za-z.'\-]*){0,3}$`)
	headerSep  = regexp.MustCompile(`\s*[|•·]\s*`)
)

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

type emailMatcher struct{}

func (emailMatcher) Name() string     { return "email" }
func (emailMatcher) Category() string { return CategoryContact }

// Apply takes the first address in document order.
func (emailMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Email != "" {
		return
	}
	rec.Email = strings.TrimRight(emailRe.FindString(doc.Text), ".")
}

type phoneMatcher struct{}

func (phoneMatcher) Name() string     { return "phone" }
func (phoneMatcher) Category() string { return CategoryContact }

// Apply looks in the header block first, then the whole document. Labelled
// lines accept shorter local numbers.
func (phoneMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Phone != "" {
		return
	}
	for _, lines := range [][]string{doc.Section(SectionHeader), doc.Lines} {
		for _, line := range lines {
			minDigits := 10
			if phoneLabel.MatchString(line) {
				minDigits = 7
			}
			for _, m := range phoneRe.FindAllString(line, -1) {
				if n := digitCount(m); n >= minDigits && n <= 15 {
					rec.Phone = strings.TrimSpace(m)
					return
				}
			}
		}
	}
}

type linksMatcher struct{}

func (linksMatcher) Name() string     { return "links" }
func (linksMatcher) Category() string { return CategoryContact }

// Apply records the first link of each kind.
func (linksMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Links.LinkedIn == "" {
		rec.Links.LinkedIn = strings.TrimRight(linkedinRe.FindString(doc.Text), "./")
	}
	if rec.Links.GitHub == "" {
		rec.Links.GitHub = strings.TrimRight(githubRe.FindString(doc.Text), "./")
	}
	if rec.Links.Website != "" {
		return
	}
	emailDomain := ""
	if i := strings.LastIndex(rec.Email, "@"); i >= 0 {
		emailDomain = strings.ToLower(rec.Email[i+1:])
	}
	text := emailRe.ReplaceAllString(doc.Text, " ")
	for _, m := range websiteRe.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "linkedin.com") || strings.Contains(lower, "github.com") {
			continue
		}
		if emailDomain != "" && strings.Contains(lower, emailDomain) {
			continue
		}
		rec.Links.Website = strings.TrimRight(m, "./")
		return
	}
}

type nameMatcher struct{}

func (nameMatcher) Name() string     { return "name" }
func (nameMatcher) Category() string { return CategoryContact }

// Apply prefers an explicit "Name:" label, then the first header line that
// reads like a personal name.
func (nameMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Name != "" {
		return
	}
	for _, line := range doc.Lines {
		if m := labelRe.FindStringSubmatch(line); m != nil && strings.Contains(strings.ToLower(m[1]), "name") {
			rec.Name = strings.TrimSpace(m[2])
			return
		}
	}
	candidates := doc.Section(SectionHeader)
	if len(candidates) == 0 && len(doc.Lines) > 0 {
		candidates = doc.Lines[:min(len(doc.Lines), 3)]
	}
	for _, line := range candidates {
		if looksLikeName(line) {
			rec.Name = line
			return
		}
	}
}

func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	if _, isHeading := headingOf(line); isHeading {
		return false
	}
	for _, w := range words {
		for i, r := range w {
			switch {
			case unicode.IsLetter(r):
				if i == 0 && !unicode.IsUpper(r) {
					return false
				}
			case r == '.' || r == '\'' || r == '-':
			default:
				return false
			}
		}
	}
	return true
}

type locationMatcher struct{}

func (locationMatcher) Name() string     { return "location" }
func (locationMatcher) Category() string { return CategoryContact }

// Apply uses a "Location:" label, or a "City, Region" segment of a header line.
func (locationMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Location != "" {
		return
	}
	for _, line := range doc.Lines {
		if m := labelRe.FindStringSubmatch(line); m != nil && !strings.Contains(strings.ToLower(m[1]), "name") {
			rec.Location = strings.TrimSpace(m[2])
			return
		}
	}
	for _, line := range doc.Section(SectionHeader) {
		for _, part := range headerSep.Split(line, -1) {
			part = strings.TrimSpace(part)
			if locationRe.MatchString(part) {
				rec.Location = part
				return
			}
		}
	}
}

type summaryMatcher struct{}

func (summaryMatcher) Name() string     { return "summary" }
func (summaryMatcher) Category() string { return CategorySummary }

func (summaryMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	if rec.Summary != "" {
		return
	}
	rec.Summary = strings.Join(doc.Section(SectionSummary), " ")
}
