package models

import "fmt"

// ExtractionRecord is the loosely typed output of field extraction. Values are
// free text as found in the document; dates keep their original wording.
// A record belongs to a single pipeline run and is never shared.
type ExtractionRecord struct {
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Location       string             `json:"location"`
	Summary        string             `json:"summary"`
	Links          Links              `json:"links"`
	Skills         []RawSkill         `json:"skills"`
	Experience     []RawExperience    `json:"experience"`
	Education      []RawEducation     `json:"education"`
	Certifications []RawCertification `json:"certifications"`
	Projects       []RawProject       `json:"projects"`
	Languages      []RawLanguage      `json:"languages"`
	Text           string             `json:"text"`
}

type RawSkill struct {
	Name        string   `json:"name"`
	Proficiency string   `json:"proficiency"`
	Years       *float64 `json:"years,omitempty"`
}

type RawExperience struct {
	Title            string      `json:"title"`
	Company          string      `json:"company"`
	Location         string      `json:"location"`
	Start            PartialDate `json:"start"`
	End              PartialDate `json:"end"`
	Current          bool        `json:"current"`
	Description      string      `json:"description"`
	Responsibilities []string    `json:"responsibilities"`
}

type RawEducation struct {
	Degree       string      `json:"degree"`
	Institution  string      `json:"institution"`
	FieldOfStudy string      `json:"fieldOfStudy"`
	Start        PartialDate `json:"start"`
	End          PartialDate `json:"end"`
	GPA          *float64    `json:"gpa,omitempty"`
	GPAScale     float64     `json:"gpaScale,omitempty"`
	Honors       string      `json:"honors"`
}

type RawCertification struct {
	Name         string      `json:"name"`
	Issuer       string      `json:"issuer"`
	Date         PartialDate `json:"date"`
	CredentialID string      `json:"credentialId"`
	URL          string      `json:"url"`
}

type RawProject struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
	Role         string   `json:"role"`
}

type RawLanguage struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// PartialDate is a date as written on a résumé. Year is 0 when the text could
// not be parsed; Month is 0 when only the year is known.
type PartialDate struct {
	Text    string `json:"text"`
	Year    int    `json:"year,omitempty"`
	Month   int    `json:"month,omitempty"`
	Present bool   `json:"present,omitempty"`
}

// IsZero reports whether no date text was found.
func (d PartialDate) IsZero() bool {
	return d.Text == "" && d.Year == 0 && !d.Present
}

// Parsed reports whether the date resolved to a year or to "present".
func (d PartialDate) Parsed() bool {
	return d.Year > 0 || d.Present
}

// Canonical renders the date as "YYYY-MM" or "YYYY". Unparsed text is returned
// unchanged and "present" renders as the empty string.
func (d PartialDate) Canonical() string {
	switch {
	case d.Present:
		return ""
	case d.Year > 0 && d.Month > 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case d.Year > 0:
		return fmt.Sprintf("%04d", d.Year)
	default:
		return d.Text
	}
}

// MonthIndex returns year*12+month-1. A missing month resolves to January when
// start is true and to December otherwise.
func (d PartialDate) MonthIndex(start bool) (int, bool) {
	if d.Year <= 0 {
		return 0, false
	}
	m := d.Month
	if m == 0 {
		if start {
			m = 1
		} else {
			m = 12
		}
	}
	return d.Year*12 + m - 1, true
}
