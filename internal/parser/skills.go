package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/taxonomy"
)

var (
	skillSep      = regexp.MustCompile(`\s*[,;|•·]\s*`)
	skillLabel    = regexp.MustCompile(`^[A-Za-z &/]{2,30}:\s*`)
	skillParen    = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)$`)
	skillSuffix   = regexp.MustCompile(`^(.*?)\s+[-–:]\s+(.+)$`)
	yearsRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)`)
	proficiencyRe = regexp.MustCompile(`(?i)\b(beginner|basic|elementary|intermediate|advanced|expert|proficient|familiar|working knowledge|native|fluent)\b`)
)

type skillsMatcher struct{}

func (skillsMatcher) Name() string     { return "skills" }
func (skillsMatcher) Category() string { return CategorySkills }

// Apply reads the skills section, or scans the whole text for known skills
// when there is none. Names are deduplicated case-insensitively, keeping the
// first occurrence.
func (skillsMatcher) Apply(doc *Document, rec *models.ExtractionRecord) {
	seen := map[string]bool{}
	for _, s := range rec.Skills {
		seen[strings.ToLower(s.Name)] = true
	}
	add := func(s models.RawSkill) {
		key := strings.ToLower(s.Name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		rec.Skills = append(rec.Skills, s)
	}

	if lines := doc.Section(SectionSkills); len(lines) > 0 {
		for _, line := range lines {
			line = skillLabel.ReplaceAllString(stripBullet(line), "")
			for _, item := range skillSep.Split(line, -1) {
				add(parseSkill(item))
			}
		}
		return
	}
	for _, name := range scanKnownSkills(doc.Text) {
		add(models.RawSkill{Name: name})
	}
}

// parseSkill splits hints such as "Go (5 years, expert)" or "Python - advanced".
func parseSkill(item string) models.RawSkill {
	item = strings.TrimSpace(strings.TrimRight(item, "."))
	s := models.RawSkill{Name: item}
	hint := ""
	if m := skillParen.FindStringSubmatch(item); m != nil {
		s.Name, hint = m[1], m[2]
	} else if m := skillSuffix.FindStringSubmatch(item); m != nil && (yearsRe.MatchString(m[2]) || proficiencyRe.MatchString(m[2])) {
		s.Name, hint = m[1], m[2]
	}
	if m := yearsRe.FindStringSubmatch(hint); m != nil {
		if y, err := strconv.ParseFloat(m[1], 64); err == nil {
			s.Years = &y
		}
	}
	if m := proficiencyRe.FindString(hint); m != "" {
		s.Proficiency = strings.ToLower(m)
	}
	s.Name = strings.TrimSpace(s.Name)
	return s
}

type knownSkill struct {
	name string
	re   *regexp.Regexp
}

var (
	knownOnce   sync.Once
	knownSkills []knownSkill
)

func compileKnownSkills() {
	for _, name := range taxonomy.Names() {
		if len(name) < 2 {
			continue
		}
		flags := "(?i)"
		if len(name) <= 2 {
			flags = ""
		}
		pat := flags + `(?:^|[^\w+#.])` + regexp.QuoteMeta(name) + `(?:$|[^\w+#])`
		knownSkills = append(knownSkills, knownSkill{name: name, re: regexp.MustCompile(pat)})
	}
}

// scanKnownSkills returns taxonomy skills mentioned in text, ordered by first occurrence.
func scanKnownSkills(text string) []string {
	knownOnce.Do(compileKnownSkills)
	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, k := range knownSkills {
		if loc := k.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{k.name, loc[0]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
