package transform

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/pkg/utils"
)

// MaxGPAScale is the widest grading scale accepted.
const MaxGPAScale = 100

var gpaScales = []float64{4, 5, 10, MaxGPAScale}

// InferGPAScale returns the smallest common scale that can hold gpa.
func InferGPAScale(gpa float64) float64 {
	for _, s := range gpaScales {
		if gpa <= s {
			return s
		}
	}
	return 0
}

var emailCheck = validator.New()

// NormalizeEmail trims and lower-cases an address. Addresses that fail the
// email grammar normalize to "".
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || emailCheck.Var(s, "email") != nil {
		return ""
	}
	return s
}

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone returns the E.164 form of raw, parsing numbers without a
// country code in region. Numbers the parser rejects fall back to their digits,
// keeping a leading "+".
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if num, err := phonenumbers.Parse(raw, region); err == nil && phonenumbers.IsPossibleNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	digits := nonDigit.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "00") {
		return "+" + strings.TrimPrefix(digits, "00")
	}
	return digits
}

var titleCaser = cases.Title(language.Und)

// NormalizeName collapses whitespace and title-cases names written entirely
// in upper or lower case. Mixed-case names are kept as written.
func NormalizeName(s string) string {
	s = utils.CollapseSpaces(s)
	hasUpper, hasLower := false, false
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasUpper != hasLower {
		return titleCaser.String(strings.ToLower(s))
	}
	return s
}

// NormalizeURL adds an https scheme to bare links.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

type degreeRule struct {
	level models.DegreeLevel
	re    *regexp.Regexp
}

// degreeRules are checked from the highest level down.
var degreeRules = []degreeRule{
	{models.DegreeDoctorate, regexp.MustCompile(`(?i)\bph\.?\s?d\b|doctor|doctoral|doctorate|d\.phil`)},
	{models.DegreeMaster, regexp.MustCompile(`(?i)master|\bm\.?sc\b|\bm\.s\b|\bms\b|\bmba\b|m\.b\.a|\bm\.?eng\b|\bm\.a\b|\bmphil\b`)},
	{models.DegreeBachelor, regexp.MustCompile(`(?i)bachelor|\bb\.?sc\b|\bb\.s\b|\bbs\b|\bb\.a\b|\bba\b|\bb\.?tech\b|\bb\.?eng\b|\bb\.e\b|undergraduate`)},
	{models.DegreeAssociate, regexp.MustCompile(`(?i)associate|\ba\.a\b|\ba\.s\b`)},
	{models.DegreeDiploma, regexp.MustCompile(`(?i)diploma|high school`)},
	{models.DegreeCertificate, regexp.MustCompile(`(?i)certificate|certification`)},
}

// DegreeLevelOf maps free-text degree names to a level by keyword.
func DegreeLevelOf(degree string) models.DegreeLevel {
	for _, r := range degreeRules {
		if r.re.MatchString(degree) {
			return r.level
		}
	}
	return models.DegreeUnspecified
}

var languageLevels = []struct {
	level    string
	keywords []string
}{
	{"native", []string{"native", "mother tongue", "bilingual", "c2"}},
	{"fluent", []string{"fluent", "advanced", "c1"}},
	{"professional", []string{"professional", "working", "business", "b2"}},
	{"conversational", []string{"conversational", "intermediate", "b1"}},
	{"basic", []string{"basic", "beginner", "elementary", "a1", "a2"}},
}

// NormalizeLanguageLevel maps proficiency wording to a fixed scale.
func NormalizeLanguageLevel(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, l := range languageLevels {
		for _, k := range l.keywords {
			if strings.Contains(lower, k) {
				return l.level
			}
		}
	}
	return lower
}
