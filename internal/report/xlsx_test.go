package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
)

func outcomes() []models.FileOutcome {
	rec := models.NewCandidateRecord()
	rec.PersonalInfo.Name = "Jane Doe"
	rec.PersonalInfo.Email = "jane@example.com"
	rec.YearsOfExperience = 3.25
	rec.Experience = append(rec.Experience, models.Experience{Title: "Engineer"})
	rec.Education = append(rec.Education,
		models.Education{DegreeLevel: models.DegreeBachelor},
		models.Education{DegreeLevel: models.DegreeMaster})
	rec.Skills = append(rec.Skills, models.Skill{Name: "Go"}, models.Skill{Name: "SQL"})
	ok := models.FileOutcome{
		Path:         "a.pdf",
		Success:      true,
		Record:       rec,
		Completeness: 0.75,
		CacheHit:     true,
		Violations: []models.Violation{
			{Field: "personalInfo.phone", Code: models.CodeMissing, Message: "phone is required"},
			{Field: "education", Code: models.CodeMissing, Message: "at least one entry is required"},
		},
	}
	bad := models.FileOutcome{Path: "b.pdf"}
	bad.Fail(errs.New(errs.ErrCorruptDocument, "extract", "b.pdf", ""))
	return []models.FileOutcome{ok, bad}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(outcomes())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{candidatesSheet, violationsSheet}, f.GetSheetList())

	rows, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, candidateHeaders, rows[0])
	assert.Equal(t, []string{"a.pdf", "ok", "FALSE", "0.75", "Jane Doe", "jane@example.com", "", "", "3.25", "Engineer", "master", "Go, SQL", "hit"}, rows[1][:13])
	assert.Equal(t, "failed", rows[2][1])
	assert.Contains(t, rows[2][13], "could not be read")

	vrows, err := f.GetRows(violationsSheet)
	require.NoError(t, err)
	require.Len(t, vrows, 3)
	assert.Equal(t, []string{"a.pdf", "personalInfo.phone", "missing", "phone is required"}, vrows[1])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, nil))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
