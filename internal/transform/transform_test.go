package transform

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/parser"
	"github.com/hyperjump/cvingest/internal/taxonomy"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 15, 10, 30, 45, 999, time.UTC) }

func month(y, m int) models.PartialDate {
	return models.PartialDate{Text: "x", Year: y, Month: m}
}

func sampleRecord() *models.ExtractionRecord {
	gpa := 3.7
	return &models.ExtractionRecord{
		Name:  "JANE DOE",
		Email: "  Jane.Doe@Example.COM ",
		Phone: "(415) 555-0100",
		Links: models.Links{LinkedIn: "linkedin.com/in/janedoe", GitHub: "https://github.com/janedoe"},
		Skills: []models.RawSkill{
			{Name: "golang"},
			{Name: "Go"},
			{Name: "k8s", Proficiency: "Expert"},
			{Name: "Basket Weaving"},
		},
		Experience: []models.RawExperience{
			{Title: "Engineer", Company: "Acme", Start: month(2020, 1), End: month(2020, 12),
				Responsibilities: []string{"  Built   things ", ""}},
			{Title: "Lead", Company: "Globex", Start: month(2020, 6), End: month(2021, 6)},
		},
		Education: []models.RawEducation{{
			Degree:      "B.S. in Computer Science",
			Institution: "State University",
			Start:       models.PartialDate{Text: "2012", Year: 2012},
			End:         models.PartialDate{Text: "2016", Year: 2016},
			GPA:         &gpa,
		}},
		Certifications: []models.RawCertification{{Name: "CKA", Date: models.PartialDate{Text: "2021", Year: 2021}}},
		Projects:       []models.RawProject{{Name: "cvingest", Technologies: []string{"golang", "postgres"}}},
		Languages:      []models.RawLanguage{{Language: "spanish", Proficiency: "Professional working"}},
		Text:           strings.Repeat("a", 50),
	}
}

func TestTransform(t *testing.T) {
	tr := New(WithClock(fixedNow), WithRawText(true, 10))
	got := tr.Transform(sampleRecord())

	if got.PersonalInfo.Name != "Jane Doe" {
		t.Errorf("name = %q", got.PersonalInfo.Name)
	}
	if got.PersonalInfo.Email != "jane.doe@example.com" {
		t.Errorf("email = %q", got.PersonalInfo.Email)
	}
	if got.PersonalInfo.Phone != "+14155550100" {
		t.Errorf("phone = %q", got.PersonalInfo.Phone)
	}
	if got.PersonalInfo.Links.LinkedIn != "https://linkedin.com/in/janedoe" {
		t.Errorf("linkedin = %q", got.PersonalInfo.Links.LinkedIn)
	}
	if got.PersonalInfo.Links.GitHub != "https://github.com/janedoe" {
		t.Errorf("github = %q", got.PersonalInfo.Links.GitHub)
	}

	wantSkills := []models.Skill{
		{Name: "Go", Category: taxonomy.Language},
		{Name: "Kubernetes", Category: taxonomy.DevOps, Proficiency: "expert"},
		{Name: "Basket Weaving", Category: taxonomy.Uncategorized},
	}
	if !reflect.DeepEqual(got.Skills, wantSkills) {
		t.Errorf("skills = %+v", got.Skills)
	}

	if got.YearsOfExperience != 1.5 {
		t.Errorf("yearsOfExperience = %v, want 1.5", got.YearsOfExperience)
	}
	exp := got.Experience[0]
	if exp.StartDate != "2020-01" || exp.EndDate != "2020-12" || exp.DurationMonths != 12 {
		t.Errorf("experience[0] = %+v", exp)
	}
	if !reflect.DeepEqual(exp.Responsibilities, []string{"Built things"}) {
		t.Errorf("responsibilities = %q", exp.Responsibilities)
	}

	edu := got.Education[0]
	if edu.DegreeLevel != models.DegreeBachelor {
		t.Errorf("degreeLevel = %v", edu.DegreeLevel)
	}
	if edu.StartDate != "2012" || edu.EndDate != "2016" {
		t.Errorf("education dates = %q %q", edu.StartDate, edu.EndDate)
	}
	if edu.GPA == nil || *edu.GPA != 3.7 || edu.GPAScale != 4 {
		t.Errorf("gpa = %v / %v", edu.GPA, edu.GPAScale)
	}

	if got.Certifications[0].Date != "2021" {
		t.Errorf("certification date = %q", got.Certifications[0].Date)
	}
	if !reflect.DeepEqual(got.Projects[0].Technologies, []string{"Go", "PostgreSQL"}) {
		t.Errorf("technologies = %q", got.Projects[0].Technologies)
	}
	if l := got.Languages[0]; l.Language != "Spanish" || l.Proficiency != "professional" {
		t.Errorf("language = %+v", l)
	}

	bad := tr.Transform(&models.ExtractionRecord{Email: "Not An Email"})
	if bad.PersonalInfo.Email != "" {
		t.Errorf("malformed email kept as %q, want empty", bad.PersonalInfo.Email)
	}

	if got.RawText != strings.Repeat("a", 10)+"..." {
		t.Errorf("rawText = %q", got.RawText)
	}
	if want := time.Date(2024, 6, 15, 10, 30, 45, 0, time.UTC); !got.ParsedAt.Equal(want) {
		t.Errorf("parsedAt = %v", got.ParsedAt)
	}
	if got.ParserVersion != parser.Version {
		t.Errorf("parserVersion = %q", got.ParserVersion)
	}
}

func TestTransform_deterministic(t *testing.T) {
	tr := New(WithClock(fixedNow))
	a := tr.Transform(sampleRecord())
	b := tr.Transform(sampleRecord())
	if !reflect.DeepEqual(a, b) {
		t.Error("same input and clock produced different records")
	}
}

func TestTransform_emptyRecordHasArrays(t *testing.T) {
	got := New(WithClock(fixedNow)).Transform(&models.ExtractionRecord{})
	doc, err := got.ToDocument()
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"skills", "experience", "education", "certifications", "projects", "languages"} {
		if _, ok := doc[key].([]any); !ok {
			t.Errorf("%s = %#v, want array", key, doc[key])
		}
	}
	if got.YearsOfExperience != 0 {
		t.Errorf("yearsOfExperience = %v", got.YearsOfExperience)
	}
}

func TestTransform_rawTextOmitted(t *testing.T) {
	cfg := config.Default()
	cfg.Output.IncludeRawText = false
	got := NewFromConfig(cfg, WithClock(fixedNow)).Transform(sampleRecord())
	if got.RawText != "" {
		t.Errorf("rawText = %q", got.RawText)
	}
}

func TestTransform_currentRole(t *testing.T) {
	rec := &models.ExtractionRecord{Experience: []models.RawExperience{{
		Start: month(2023, 7),
		End:   models.PartialDate{Text: "Present", Present: true},
	}}}
	got := New(WithClock(fixedNow)).Transform(rec)
	e := got.Experience[0]
	if !e.Current || e.EndDate != "" || e.DurationMonths != 12 {
		t.Errorf("experience = %+v", e)
	}
	if got.YearsOfExperience != 1 {
		t.Errorf("yearsOfExperience = %v", got.YearsOfExperience)
	}
}

func TestExperienceMonths(t *testing.T) {
	now := fixedNow()
	tests := []struct {
		name  string
		roles []models.RawExperience
		want  int
	}{
		{"none", nil, 0},
		{"single year", []models.RawExperience{{Start: month(2020, 1), End: month(2020, 12)}}, 12},
		{"overlap merged", []models.RawExperience{
			{Start: month(2020, 6), End: month(2021, 6)},
			{Start: month(2020, 1), End: month(2020, 12)},
		}, 18},
		{"adjacent merged", []models.RawExperience{
			{Start: month(2019, 1), End: month(2019, 6)},
			{Start: month(2019, 7), End: month(2019, 12)},
		}, 12},
		{"gap", []models.RawExperience{
			{Start: month(2018, 1), End: month(2018, 3)},
			{Start: month(2019, 1), End: month(2019, 3)},
		}, 6},
		{"year only", []models.RawExperience{{
			Start: models.PartialDate{Year: 2015},
			End:   models.PartialDate{Year: 2016},
		}}, 24},
		{"unparsed skipped", []models.RawExperience{{Start: models.PartialDate{Text: "Spring 2015"}, End: month(2016, 1)}}, 0},
		{"reversed skipped", []models.RawExperience{{Start: month(2021, 1), End: month(2020, 1)}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExperienceMonths(tt.roles, now); got != tt.want {
				t.Errorf("ExperienceMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"Not An Email", ""},
		{"jane@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw, region, want string
	}{
		{"+1 (415) 555-0100", "US", "+14155550100"},
		{"415.555.0100", "US", "+14155550100"},
		{"+49 30 1234567", "US", "+49301234567"},
		{"030 1234567", "DE", "+49301234567"},
		{"12", "US", "12"},
		{"", "US", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.raw, tt.region); got != tt.want {
			t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.raw, tt.region, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"JANE DOE":        "Jane Doe",
		"jane   doe":      "Jane Doe",
		"Ronald McDonald": "Ronald McDonald",
		"":                "",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDegreeLevelOf(t *testing.T) {
	tests := map[string]models.DegreeLevel{
		"Ph.D. in Physics":               models.DegreeDoctorate,
		"PhD":                            models.DegreeDoctorate,
		"Master of Science":              models.DegreeMaster,
		"MBA":                            models.DegreeMaster,
		"M.S. Computer Science":          models.DegreeMaster,
		"B.S. in Computer Science":       models.DegreeBachelor,
		"Bachelor of Arts":               models.DegreeBachelor,
		"BSc Mathematics":                models.DegreeBachelor,
		"Associate of Applied Science":   models.DegreeAssociate,
		"High School Diploma":            models.DegreeDiploma,
		"Graduate Certificate in Design": models.DegreeCertificate,
		"Graphic Design":                 models.DegreeUnspecified,
	}
	for in, want := range tests {
		if got := DegreeLevelOf(in); got != want {
			t.Errorf("DegreeLevelOf(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInferGPAScale(t *testing.T) {
	tests := map[float64]float64{3.7: 4, 4: 4, 4.5: 5, 8.2: 10, 87: 100, 120: 0}
	for gpa, want := range tests {
		if got := InferGPAScale(gpa); got != want {
			t.Errorf("InferGPAScale(%v) = %v, want %v", gpa, got, want)
		}
	}
}

func TestNormalizeLanguageLevel(t *testing.T) {
	tests := map[string]string{
		"Native":               "native",
		"Bilingual":            "native",
		"Fluent":               "fluent",
		"Professional working": "professional",
		"Intermediate (B1)":    "conversational",
		"Beginner":             "basic",
		"Some":                 "some",
	}
	for in, want := range tests {
		if got := NormalizeLanguageLevel(in); got != want {
			t.Errorf("NormalizeLanguageLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
