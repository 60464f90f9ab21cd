package parser

import (
	"regexp"
	"strings"
)

// Section names a résumé block.
type Section string

const (
	SectionHeader         Section = "header"
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionProjects       Section = "projects"
	SectionLanguages      Section = "languages"
	SectionOther          Section = "other"
)

var headings = map[string]Section{
	"summary":                     SectionSummary,
	"professional summary":        SectionSummary,
	"career summary":              SectionSummary,
	"profile":                     SectionSummary,
	"professional profile":        SectionSummary,
	"objective":                   SectionSummary,
	"career objective":            SectionSummary,
	"about":                       SectionSummary,
	"about me":                    SectionSummary,
	"experience":                  SectionExperience,
	"work experience":             SectionExperience,
	"professional experience":     SectionExperience,
	"relevant experience":         SectionExperience,
	"employment":                  SectionExperience,
	"employment history":          SectionExperience,
	"work history":                SectionExperience,
	"career history":              SectionExperience,
	"education":                   SectionEducation,
	"academic background":         SectionEducation,
	"academic qualifications":     SectionEducation,
	"education and training":      SectionEducation,
	"qualifications":              SectionEducation,
	"skills":                      SectionSkills,
	"technical skills":            SectionSkills,
	"key skills":                  SectionSkills,
	"core competencies":           SectionSkills,
	"competencies":                SectionSkills,
	"technologies":                SectionSkills,
	"tech stack":                  SectionSkills,
	"skills and tools":            SectionSkills,
	"certifications":              SectionCertifications,
	"certification":               SectionCertifications,
	"certificates":                SectionCertifications,
	"licenses and certifications": SectionCertifications,
	"projects":                    SectionProjects,
	"personal projects":           SectionProjects,
	"key projects":                SectionProjects,
	"selected projects":           SectionProjects,
	"languages":                   SectionLanguages,
	"language skills":             SectionLanguages,
	"spoken languages":            SectionLanguages,
	"interests":                   SectionOther,
	"hobbies":                     SectionOther,
	"references":                  SectionOther,
	"awards":                      SectionOther,
	"honors and awards":           SectionOther,
	"publications":                SectionOther,
	"volunteer experience":        SectionOther,
	"volunteering":                SectionOther,
	"achievements":                SectionOther,
}

var (
	headingClean = regexp.MustCompile(`[^a-z ]+`)
	bulletRe     = regexp.MustCompile(`^(?:[-*•·▪‣◦●○]|\d{1,2}[.)])\s+`)
)

// Document is résumé text split into lines and sections.
type Document struct {
	Text     string
	Lines    []string
	sections map[Section][]string
}

// NewDocument segments text by section headings. Lines before the first
// heading form the header block.
func NewDocument(text string) *Document {
	d := &Document{Text: text, sections: map[Section][]string{}}
	current := SectionHeader
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		d.Lines = append(d.Lines, line)
		if s, ok := headingOf(line); ok {
			current = s
			d.sections[s] = d.sections[s]
			continue
		}
		d.sections[current] = append(d.sections[current], line)
	}
	return d
}

// Section returns the lines of s in document order.
func (d *Document) Section(s Section) []string {
	return d.sections[s]
}

// Has reports whether a heading for s was found.
func (d *Document) Has(s Section) bool {
	_, ok := d.sections[s]
	return ok
}

func headingOf(line string) (Section, bool) {
	if len(line) > 40 {
		return "", false
	}
	key := strings.ToLower(line)
	key = strings.ReplaceAll(key, "&", " and ")
	key = strings.Join(strings.Fields(headingClean.ReplaceAllString(key, " ")), " ")
	s, ok := headings[key]
	return s, ok
}

func isBullet(line string) bool {
	return bulletRe.MatchString(line)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
}
