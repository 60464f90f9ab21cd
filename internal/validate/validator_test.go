package validate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

func fullRecord() *models.ExtractionRecord {
	gpa := 3.6
	return &models.ExtractionRecord{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 (415) 555-0100",
		Location: "Berlin, Germany",
		Summary:  "Engineer.",
		Links:    models.Links{GitHub: "github.com/jane"},
		Skills:   []models.RawSkill{{Name: "Go"}, {Name: "Python"}},
		Experience: []models.RawExperience{{
			Title:   "Engineer",
			Company: "Acme",
			Start:   models.PartialDate{Text: "Jan 2020", Year: 2020, Month: 1},
			End:     models.PartialDate{Text: "Present", Present: true},
			Current: true,
		}},
		Education: []models.RawEducation{{
			Degree:      "BSc",
			Institution: "TU Berlin",
			End:         models.PartialDate{Text: "2019", Year: 2019},
			GPA:         &gpa,
			GPAScale:    4,
		}},
		Certifications: []models.RawCertification{{Name: "CKA"}},
		Projects:       []models.RawProject{{Name: "cvingest"}},
		Languages:      []models.RawLanguage{{Language: "German"}},
	}
}

func codes(vs []models.Violation) string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Field+"="+v.Code)
	}
	return strings.Join(out, ",")
}

func TestValidate_fullRecordIsValid(t *testing.T) {
	v := New(RulesFromConfig(config.Default().Validation), WithClock(fixedNow))
	res := v.Validate(fullRecord())
	if !res.Valid || len(res.Violations) != 0 {
		t.Errorf("expected valid, got %s", codes(res.Violations))
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v", res.Err())
	}
}

func TestValidate_requireEmailSingleViolation(t *testing.T) {
	v := New(Rules{RequireEmail: true})
	res := v.Validate(&models.ExtractionRecord{})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %s", codes(res.Violations))
	}
	if got := res.Violations[0]; got.Field != "personalInfo.email" || got.Code != models.CodeMissing {
		t.Errorf("violation = %+v", got)
	}
	if err := res.Err(); !errors.Is(err, errs.ErrValidationFailure) {
		t.Errorf("Err() = %v", err)
	}
}

func TestValidate_rules(t *testing.T) {
	tests := []struct {
		name   string
		rules  Rules
		mutate func(*models.ExtractionRecord)
		want   string
	}{
		{
			name:   "invalid email",
			mutate: func(r *models.ExtractionRecord) { r.Email = "jane@" },
			want:   "personalInfo.email=invalid_format",
		},
		{
			name:   "invalid phone",
			mutate: func(r *models.ExtractionRecord) { r.Phone = "12-34" },
			want:   "personalInfo.phone=invalid_format",
		},
		{
			name:   "phone required",
			rules:  Rules{RequirePhone: true},
			mutate: func(r *models.ExtractionRecord) { r.Phone = "" },
			want:   "personalInfo.phone=missing",
		},
		{
			name:   "no contact method",
			mutate: func(r *models.ExtractionRecord) { r.Email, r.Phone = "", "" },
			want:   "personalInfo=missing",
		},
		{
			name:   "too few skills",
			rules:  Rules{MinSkillsCount: 3},
			mutate: func(r *models.ExtractionRecord) {},
			want:   "skills=too_few",
		},
		{
			name:   "short and duplicate skills",
			mutate: func(r *models.ExtractionRecord) {
				r.Skills = []models.RawSkill{{Name: "C"}, {Name: "go"}, {Name: "Go"}}
			},
			want:   "skills[0].name=invalid_format,skills[2].name=invalid_format",
		},
		{
			name:   "experience required",
			rules:  Rules{RequireExperience: true},
			mutate: func(r *models.ExtractionRecord) { r.Experience = nil },
			want:   "experience=missing",
		},
		{
			name: "start after end",
			mutate: func(r *models.ExtractionRecord) {
				r.Experience[0].Current = false
				r.Experience[0].End = models.PartialDate{Text: "2019", Year: 2019}
			},
			want: "experience[0].startDate=invalid_range",
		},
		{
			name:   "unparsable date",
			mutate: func(r *models.ExtractionRecord) { r.Experience[0].Start = models.PartialDate{Text: "Spring 2019"} },
			want:   "experience[0].startDate=invalid_format",
		},
		{
			name: "span over fifty years",
			mutate: func(r *models.ExtractionRecord) {
				r.Experience[0].Start = models.PartialDate{Text: "1960", Year: 1960}
			},
			want: "experience[0].endDate=invalid_range",
		},
		{
			name:   "missing title and company",
			mutate: func(r *models.ExtractionRecord) { r.Experience[0].Title, r.Experience[0].Company = "", "" },
			want:   "experience[0].title=missing,experience[0].company=missing",
		},
		{
			name:   "education required",
			rules:  Rules{RequireEducation: true},
			mutate: func(r *models.ExtractionRecord) { r.Education = nil },
			want:   "education=missing",
		},
		{
			name:   "education fields",
			mutate: func(r *models.ExtractionRecord) { r.Education[0].Degree, r.Education[0].Institution = "", "" },
			want:   "education[0].degree=missing,education[0].institution=missing",
		},
		{
			name: "gpa above scale",
			mutate: func(r *models.ExtractionRecord) {
				g := 4.5
				r.Education[0].GPA = &g
			},
			want: "education[0].gpa=invalid_range",
		},
		{
			name:   "certification date",
			mutate: func(r *models.ExtractionRecord) { r.Certifications[0].Date = models.PartialDate{Text: "someday"} },
			want:   "certifications[0].date=invalid_format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			tt.mutate(rec)
			res := New(tt.rules, WithClock(fixedNow)).Validate(rec)
			if got := codes(res.Violations); got != tt.want {
				t.Errorf("violations = %q, want %q", got, tt.want)
			}
			if res.Valid {
				t.Error("expected invalid")
			}
		})
	}
}

func TestValidate_experienceYearsCap(t *testing.T) {
	rec := fullRecord()
	rec.Experience = []models.RawExperience{
		{Title: "A", Company: "X", Start: models.PartialDate{Year: 1940}, End: models.PartialDate{Year: 1985}},
		{Title: "B", Company: "Y", Start: models.PartialDate{Year: 1980}, End: models.PartialDate{Year: 2024}},
	}
	res := New(Rules{}, WithClock(fixedNow)).Validate(rec)
	if got := codes(res.Violations); got != "yearsOfExperience=invalid_range" {
		t.Errorf("violations = %q", got)
	}
}

func TestCompletenessScore(t *testing.T) {
	if got := CompletenessScore(&models.ExtractionRecord{}); got != 0 {
		t.Errorf("empty record score = %v, want 0", got)
	}
	if got := CompletenessScore(nil); got != 0 {
		t.Errorf("nil record score = %v, want 0", got)
	}
	if got := CompletenessScore(fullRecord()); got != 1 {
		t.Errorf("full record score = %v, want 1", got)
	}

	partial := fullRecord()
	partial.Phone = ""
	partial.Projects = nil
	got := CompletenessScore(partial)
	if got <= 0 || got >= 1 {
		t.Errorf("partial score = %v, want within (0, 1)", got)
	}

	res := New(Rules{}).Validate(partial)
	if !res.Valid {
		t.Errorf("partial record should still be valid: %s", codes(res.Violations))
	}
}
