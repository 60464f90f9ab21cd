package parser

import (
	"testing"

	"github.com/hyperjump/cvingest/internal/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want models.PartialDate
	}{
		{"Jan 2020", models.PartialDate{Text: "Jan 2020", Year: 2020, Month: 1}},
		{"January 2020", models.PartialDate{Text: "January 2020", Year: 2020, Month: 1}},
		{"Sept. 2018", models.PartialDate{Text: "Sept. 2018", Year: 2018, Month: 9}},
		{"2020-01", models.PartialDate{Text: "2020-01", Year: 2020, Month: 1}},
		{"01/2020", models.PartialDate{Text: "01/2020", Year: 2020, Month: 1}},
		{"2020", models.PartialDate{Text: "2020", Year: 2020}},
		{"Present", models.PartialDate{Text: "Present", Present: true}},
		{"current", models.PartialDate{Text: "current", Present: true}},
		{"13/2020", models.PartialDate{Text: "13/2020"}},
		{"Spring 2019", models.PartialDate{Text: "Spring 2019"}},
		{"1850", models.PartialDate{Text: "1850"}},
		{"", models.PartialDate{}},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in); got != tt.want {
			t.Errorf("ParseDate(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFindDateRange(t *testing.T) {
	tests := []struct {
		line       string
		start, end string
		present    bool
		rest       string
	}{
		{"Jan 2020 - Present", "2020-01", "", true, ""},
		{"Engineer, Acme (2016 – 2019)", "2016", "2019", false, "Engineer, Acme"},
		{"2020-01 to 2021-03", "2020-01", "2021-03", false, ""},
		{"06/2016 - 12/2019", "2016-06", "2019-12", false, ""},
		{"Intern, Spring 2015 - Fall 2015", "Spring 2015", "Fall 2015", false, "Intern"},
	}
	for _, tt := range tests {
		dr, ok := findDateRange(tt.line)
		if !ok {
			t.Errorf("findDateRange(%q) found nothing", tt.line)
			continue
		}
		if dr.start.Canonical() != tt.start || dr.end.Canonical() != tt.end || dr.end.Present != tt.present {
			t.Errorf("findDateRange(%q) = %+v - %+v", tt.line, dr.start, dr.end)
		}
		if rest := cut(tt.line, dr.loc); rest != tt.rest {
			t.Errorf("cut(%q) = %q, want %q", tt.line, rest, tt.rest)
		}
	}
	if _, ok := findDateRange("Built 3 services for 40 clients"); ok {
		t.Error("unexpected range in plain sentence")
	}
}
