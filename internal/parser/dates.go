package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/cvingest/internal/models"
)

const monthPat = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// datePat matches one date in any accepted format. Alternatives are ordered so
// the longest form is tried first.
const datePat = monthPat + `\.?,?\s+\d{4}|\d{1,2}/\d{4}|\d{4}[-/]\d{1,2}|\d{4}`

const presentPat = `present|current|now|today|ongoing|date`

var (
	dateRangeRe = regexp.MustCompile(`(?i)\b(` + datePat + `)\s*(?:-|–|—|to|until|through)\s*(` + datePat + `|` + presentPat + `)\b`)
	// looseRangeRe catches ranges whose ends are not in an accepted format,
	// e.g. "Spring 2019 - Fall 2020", so the text can be kept and flagged.
	looseRangeRe = regexp.MustCompile(`\b([A-Z][a-z]+\.?\s+\d{4}|\d{4})\s*(?:-|–|—|to|until)\s*([A-Z][a-z]+\.?\s+\d{4}|\d{4}|(?i:` + presentPat + `))\b`)
	singleDateRe = regexp.MustCompile(`(?i)\b(` + datePat + `)\b`)

	monthNameRe = regexp.MustCompile(`(?i)^(` + monthPat + `)\.?,?\s*(\d{4})$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	monthYearRe = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	yearRe      = regexp.MustCompile(`^(\d{4})$`)
	presentRe   = regexp.MustCompile(`(?i)^(?:` + presentPat + `)$`)
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseDate reads one free-text date. Text that matches no accepted format is
// returned with Year 0 so that it can be reported later.
func ParseDate(s string) models.PartialDate {
	s = strings.TrimSpace(s)
	d := models.PartialDate{Text: s}
	if s == "" {
		return d
	}
	if presentRe.MatchString(s) {
		d.Present = true
		return d
	}

	var year, month int
	switch {
	case monthNameRe.MatchString(s):
		m := monthNameRe.FindStringSubmatch(s)
		month = months[strings.ToLower(m[1])[:3]]
		year, _ = strconv.Atoi(m[2])
	case yearMonthRe.MatchString(s):
		m := yearMonthRe.FindStringSubmatch(s)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	case monthYearRe.MatchString(s):
		m := monthYearRe.FindStringSubmatch(s)
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
	case yearRe.MatchString(s):
		year, _ = strconv.Atoi(s)
	default:
		return d
	}
	if year < 1900 || year > 2100 || month < 0 || month > 12 {
		return d
	}
	d.Year, d.Month = year, month
	return d
}

// dateRange is a start/end pair found in a line, with the matched span.
type dateRange struct {
	start, end models.PartialDate
	loc        []int
}

// findDateRange returns the first date range in line.
func findDateRange(line string) (dateRange, bool) {
	if m := dateRangeRe.FindStringSubmatchIndex(line); m != nil {
		return dateRange{
			start: ParseDate(line[m[2]:m[3]]),
			end:   ParseDate(line[m[4]:m[5]]),
			loc:   m[:2],
		}, true
	}
	if m := looseRangeRe.FindStringSubmatchIndex(line); m != nil {
		return dateRange{
			start: ParseDate(line[m[2]:m[3]]),
			end:   ParseDate(line[m[4]:m[5]]),
			loc:   m[:2],
		}, true
	}
	return dateRange{}, false
}

// findDate returns the last single date in line, which on education and
// certification lines is usually the completion date.
func findDate(line string) (models.PartialDate, []int, bool) {
	all := singleDateRe.FindAllStringSubmatchIndex(line, -1)
	if len(all) == 0 {
		return models.PartialDate{}, nil, false
	}
	m := all[len(all)-1]
	return ParseDate(line[m[2]:m[3]]), m[:2], true
}

// cut removes line[loc[0]:loc[1]] and trims separators left at the seams.
func cut(line string, loc []int) string {
	return trimSeparators(line[:loc[0]] + " " + line[loc[1]:])
}

func trimSeparators(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ,;|•·-–—()[]:")
}
