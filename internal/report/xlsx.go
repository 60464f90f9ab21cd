// Package report exports batch outcomes as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
)

const (
	candidatesSheet = "Candidates"
	violationsSheet = "Violations"
)

var candidateHeaders = []string{
	"File", "Status", "Valid", "Completeness", "Name", "Email", "Phone", "Location",
	"Years of Experience", "Latest Title", "Highest Degree", "Skills", "Cache", "Error",
}

var violationHeaders = []string{"File", "Field", "Code", "Message"}

// XLSX returns a workbook with one row per outcome and one row per violation.
func XLSX(outcomes []models.FileOutcome) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(violationsSheet); err != nil {
		return nil, err
	}
	writeRow(f, candidatesSheet, 1, toAny(candidateHeaders))
	writeRow(f, violationsSheet, 1, toAny(violationHeaders))

	vrow := 2
	for i, o := range outcomes {
		writeRow(f, candidatesSheet, i+2, candidateRow(o))
		for _, v := range o.Violations {
			writeRow(f, violationsSheet, vrow, []any{o.Path, v.Field, v.Code, v.Message})
			vrow++
		}
	}

	_ = f.SetColWidth(candidatesSheet, "A", "A", 40)
	_ = f.SetColWidth(candidatesSheet, "E", "H", 24)
	_ = f.SetColWidth(candidatesSheet, "J", "L", 32)
	_ = f.SetColWidth(candidatesSheet, "N", "N", 60)
	_ = f.SetColWidth(violationsSheet, "A", "B", 32)
	_ = f.SetColWidth(violationsSheet, "D", "D", 60)
	_ = f.SetPanes(candidatesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX writes the workbook for outcomes to path.
func WriteXLSX(path string, outcomes []models.FileOutcome) error {
	data, err := XLSX(outcomes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func candidateRow(o models.FileOutcome) []any {
	if !o.Success {
		return []any{o.Path, "failed", "", "", "", "", "", "", "", "", "", "", "", errs.Reason(o.Err)}
	}
	r := o.Record
	title := ""
	if len(r.Experience) > 0 {
		title = r.Experience[0].Title
	}
	highest := models.DegreeUnspecified
	for _, e := range r.Education {
		highest = max(highest, e.DegreeLevel)
	}
	skills := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		skills[i] = s.Name
	}
	cacheState := "miss"
	if o.CacheHit {
		cacheState = "hit"
	}
	return []any{
		o.Path, "ok", o.Valid, o.Completeness,
		r.PersonalInfo.Name, r.PersonalInfo.Email, r.PersonalInfo.Phone, r.PersonalInfo.Location,
		r.YearsOfExperience, title, highest.String(), strings.Join(skills, ", "), cacheState, "",
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
