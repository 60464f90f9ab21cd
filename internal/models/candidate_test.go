package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func fullRecord() *CandidateRecord {
	years := 4.0
	gpa := 3.8
	return &CandidateRecord{
		PersonalInfo: PersonalInfo{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+14155550100",
			Location: "San Francisco, CA",
			Summary:  "Backend engineer.",
			Links:    Links{LinkedIn: "https://linkedin.com/in/jane", GitHub: "https://github.com/jane"},
		},
		Skills: []Skill{
			{Name: "Go", Category: "language", Proficiency: "expert", YearsExperience: &years},
			{Name: "Teamwork", Category: "soft-skill"},
		},
		Experience: []Experience{{
			Title:            "Engineer",
			Company:          "Acme",
			StartDate:        "2020-01",
			Current:          true,
			Responsibilities: []string{"Built APIs"},
			DurationMonths:   12,
		}},
		Education: []Education{{
			Degree:      "BSc Computer Science",
			DegreeLevel: DegreeBachelor,
			Institution: "State University",
			EndDate:     "2019",
			GPA:         &gpa,
			GPAScale:    4,
		}},
		Certifications:    []Certification{{Name: "CKA", Issuer: "CNCF", Date: "2021-05"}},
		Projects:          []Project{{Name: "cvingest", Technologies: []string{"Go"}}},
		Languages:         []Language{{Language: "English", Proficiency: "native"}},
		YearsOfExperience: 1.5,
		RawText:           "Jane Doe",
		ParsedAt:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ParserVersion:     "1.0.0",
	}
}

func TestToDocument_fieldNames(t *testing.T) {
	doc, err := fullRecord().ToDocument()
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"personalInfo", "skills", "experience", "education", "certifications",
		"projects", "languages", "yearsOfExperience", "rawText", "parsedAt", "parserVersion",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing key %q", key)
		}
	}
	edu := doc["education"].([]any)[0].(map[string]any)
	if edu["degreeLevel"] != "bachelor" {
		t.Errorf("degreeLevel = %v", edu["degreeLevel"])
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for name, rec := range map[string]*CandidateRecord{
		"full":  fullRecord(),
		"empty": NewCandidateRecord(),
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := rec.ToDocument()
			if err != nil {
				t.Fatal(err)
			}
			got, err := RecordFromDocument(doc)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, rec) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
			}
		})
	}
}

func TestNewCandidateRecord_emptyArrays(t *testing.T) {
	data, err := json.Marshal(NewCandidateRecord())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["skills"].([]any); !ok {
		t.Errorf("skills should be an array, got %T", doc["skills"])
	}
}

func TestDegreeLevel(t *testing.T) {
	if !(DegreeAssociate < DegreeBachelor && DegreeBachelor < DegreeMaster && DegreeMaster < DegreeDoctorate) {
		t.Error("degree levels out of order")
	}
	for lvl := DegreeUnspecified; lvl <= DegreeDoctorate; lvl++ {
		got, err := ParseDegreeLevel(lvl.String())
		if err != nil || got != lvl {
			t.Errorf("ParseDegreeLevel(%q) = %v, %v", lvl.String(), got, err)
		}
	}
	if _, err := ParseDegreeLevel("wizard"); err == nil {
		t.Error("expected error for unknown level")
	}
	if DegreeLevel(42).String() != "unspecified" {
		t.Error("out of range level should render unspecified")
	}
}

func TestPartialDate(t *testing.T) {
	tests := []struct {
		d         PartialDate
		canonical string
		parsed    bool
	}{
		{PartialDate{Text: "Jan 2020", Year: 2020, Month: 1}, "2020-01", true},
		{PartialDate{Text: "2019", Year: 2019}, "2019", true},
		{PartialDate{Text: "Present", Present: true}, "", true},
		{PartialDate{Text: "sometime"}, "sometime", false},
		{PartialDate{}, "", false},
	}
	for _, tt := range tests {
		if got := tt.d.Canonical(); got != tt.canonical {
			t.Errorf("%+v Canonical() = %q, want %q", tt.d, got, tt.canonical)
		}
		if got := tt.d.Parsed(); got != tt.parsed {
			t.Errorf("%+v Parsed() = %v", tt.d, got)
		}
	}
	start, _ := PartialDate{Year: 2020}.MonthIndex(true)
	end, _ := PartialDate{Year: 2020}.MonthIndex(false)
	if end-start != 11 {
		t.Errorf("year-only span = %d months, want 11", end-start)
	}
	if !(PartialDate{}).IsZero() {
		t.Error("zero date should be IsZero")
	}
}
