package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/cvingest/internal/models"
)

var (
	degreeRe      = regexp.MustCompile(`(?i)(?:^|[^a-z])(ph\.?\s?d\.?|doctor(?:ate)?|doctoral|master'?s?|m\.?b\.?a\.?|m\.?sc\.?|m\.s\.?|m\.?eng\.?|m\.a\.|bachelor'?s?|b\.?sc\.?|b\.s\.?|b\.a\.|b\.?tech|b\.?eng\.?|b\.e\.|associate'?s?|a\.a\.|a\.s\.|diploma|certificate|high school)(?:[^a-z]|$)`)
	institutionRe = regexp.MustCompile(`(?i)\b(university|college|institute|school|academy|polytechnic|universidad|université|conservatory)\b`)
	gpaRe         = regexp.MustCompile(`(?i)\b(?:gpa|cgpa|grade point average)\b\s*[:\-]?\s*(\d+(?:\.\d+)?)(?:\s*(?:/|out of)\s*(\d+(?:\.\d+)?))?`)
	honorsRe      = regexp.MustCompile(`(?i)(summa cum laude|magna cum laude|cum laude|first class honou?rs|with honou?rs|with distinction|dean'?s list)`)
	fieldRes      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bin\s+([A-Za-z][A-Za-z &/]+)`),
		regexp.MustCompile(`(?i)\bof\s+([A-Za-z][A-Za-z &/]+)`),
	}
	segmentSep = regexp.MustCompile(`\s*[|,;•·]\s*|\s+[-–—]\s+`)
)

type educationMatcher struct{}

func (educationMatcher) Name() string     { return "education" }
func (educationMatcher) Category() string { return CategoryEducation }

// Apply starts a new entry whenever a degree or institution appears that the
// current entry already has.
func (educationMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	var entries []models.RawEducation
	cur := func() *models.RawEducation {
		if len(entries) == 0 {
			entries = append(entries, models.RawEducation{})
		}
		return &entries[len(entries)-1]
	}
	next := func() *models.RawEducation {
		entries = append(entries, models.RawEducation{})
		return &entries[len(entries)-1]
	}

	for _, line := range doc.Section(SectionEducation) {
		line = stripBullet(line)
		if m := gpaRe.FindStringSubmatchIndex(line); m != nil {
			e := cur()
			if v, err := strconv.ParseFloat(line[m[2]:m[3]], 64); err == nil {
				e.GPA = &v
			}
			if m[4] >= 0 {
				e.GPAScale, _ = strconv.ParseFloat(line[m[4]:m[5]], 64)
			}
			line = cut(line, m[:2])
		}
		if m := honorsRe.FindStringIndex(line); m != nil {
			cur().Honors = line[m[0]:m[1]]
			line = cut(line, m)
		}
		if dr, ok := findDateRange(line); ok {
			e := cur()
			if !e.End.IsZero() {
				e = next()
			}
			e.Start, e.End = dr.start, dr.end
			line = cut(line, dr.loc)
		} else if d, loc, ok := findDate(line); ok {
			e := cur()
			if !e.End.IsZero() {
				e = next()
			}
			e.End = d
			line = cut(line, loc)
		}

		sawDegree := false
		for _, seg := range segmentSep.Split(line, -1) {
			seg = trimSeparators(seg)
			if seg == "" {
				continue
			}
			switch {
			case degreeRe.MatchString(seg) && !institutionRe.MatchString(seg):
				e := cur()
				if e.Degree != "" {
					e = next()
				}
				e.Degree = seg
				e.FieldOfStudy = fieldOf(seg)
				sawDegree = true
			case institutionRe.MatchString(seg):
				e := cur()
				if e.Institution != "" {
					e = next()
				}
				e.Institution = seg
			case sawDegree && cur().FieldOfStudy == "":
				cur().FieldOfStudy = seg
			}
		}
	}

	for _, e := range entries {
		if e.Degree != "" || e.Institution != "" {
			rec.Education = append(rec.Education, e)
		}
	}
}

// fieldOf prefers "in X" over "of X", so "Master of Science in Physics" yields Physics.
func fieldOf(degree string) string {
	for _, re := range fieldRes {
		if m := re.FindStringSubmatch(degree); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
