// Package models defines the candidate records produced by the ingestion pipeline.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CandidateRecord is the canonical, normalized form of one résumé.
// Field names are fixed; downstream services read the document form produced by ToDocument.
type CandidateRecord struct {
	PersonalInfo      PersonalInfo    `json:"personalInfo"`
	Skills            []Skill         `json:"skills"`
	Experience        []Experience    `json:"experience"`
	Education         []Education     `json:"education"`
	Certifications    []Certification `json:"certifications"`
	Projects          []Project       `json:"projects"`
	Languages         []Language      `json:"languages"`
	YearsOfExperience float64         `json:"yearsOfExperience"`
	RawText           string          `json:"rawText,omitempty"`
	ParsedAt          time.Time       `json:"parsedAt"`
	ParserVersion     string          `json:"parserVersion"`
}

// PersonalInfo holds contact details. Each link kind has exactly one slot.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
	Links    Links  `json:"links"`
}

// Links are the social and personal URLs found on a résumé.
type Links struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

type Skill struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Proficiency     string   `json:"proficiency"`
	YearsExperience *float64 `json:"yearsExperience,omitempty"`
}

// Experience is one role. Dates are "YYYY-MM", "YYYY", or the original text
// when it could not be parsed. EndDate is empty when Current is set.
type Experience struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Current          bool     `json:"current"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	DurationMonths   int      `json:"durationMonths"`
}

type Education struct {
	Degree       string      `json:"degree"`
	DegreeLevel  DegreeLevel `json:"degreeLevel"`
	Institution  string      `json:"institution"`
	FieldOfStudy string      `json:"fieldOfStudy"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	GPA          *float64    `json:"gpa,omitempty"`
	GPAScale     float64     `json:"gpaScale,omitempty"`
	Honors       string      `json:"honors"`
}

type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	Date         string `json:"date"`
	CredentialID string `json:"credentialId"`
	URL          string `json:"url"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
	Role         string   `json:"role"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// NewCandidateRecord returns a record whose sequences are empty rather than nil,
// so its document form always carries arrays.
func NewCandidateRecord() *CandidateRecord {
	return &CandidateRecord{
		Skills:         []Skill{},
		Experience:     []Experience{},
		Education:      []Education{},
		Certifications: []Certification{},
		Projects:       []Project{},
		Languages:      []Language{},
	}
}

// ToDocument converts the record to a plain key-value document.
func (r *CandidateRecord) ToDocument() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode candidate document: %w", err)
	}
	return doc, nil
}

// RecordFromDocument rebuilds a record from the output of ToDocument.
func RecordFromDocument(doc map[string]any) (*CandidateRecord, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode candidate document: %w", err)
	}
	var r CandidateRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal candidate record: %w", err)
	}
	return &r, nil
}
