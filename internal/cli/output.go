// Package cli renders pipeline results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hyperjump/cvingest/internal/batch"
	"github.com/hyperjump/cvingest/internal/cache"
	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
)

// OutputFormat selects text or JSON output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat accepts "text" or "json".
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteOutcome writes the result of processing one file.
func WriteOutcome(w io.Writer, o models.FileOutcome, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, o)
	}
	if !o.Success {
		fmt.Fprintf(w, "%s: %s\n", o.Path, errs.Reason(o.Err))
		return nil
	}
	writeRecordText(w, o)
	return nil
}

func writeRecordText(w io.Writer, o models.FileOutcome) {
	r := o.Record
	p := r.PersonalInfo
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%s (%s)\n", o.Path, humanize.IBytes(uint64(o.SizeBytes)))
	fmt.Fprintf(w, "Name:     %s\n", orDash(p.Name))
	fmt.Fprintf(w, "Email:    %s\n", orDash(p.Email))
	fmt.Fprintf(w, "Phone:    %s\n", orDash(p.Phone))
	if p.Location != "" {
		fmt.Fprintf(w, "Location: %s\n", p.Location)
	}
	fmt.Fprintf(w, "Experience: %.2f years\n", r.YearsOfExperience)
	for _, e := range r.Experience {
		end := e.EndDate
		if e.Current {
			end = "present"
		}
		fmt.Fprintf(w, "  %s, %s (%s - %s)\n", orDash(e.Title), orDash(e.Company), orDash(e.StartDate), orDash(end))
	}
	if len(r.Education) > 0 {
		fmt.Fprintln(w, "Education:")
		for _, e := range r.Education {
			fmt.Fprintf(w, "  %s, %s [%s]\n", orDash(e.Degree), orDash(e.Institution), e.DegreeLevel)
		}
	}
	if len(r.Skills) > 0 {
		names := make([]string, len(r.Skills))
		for i, s := range r.Skills {
			names[i] = s.Name
		}
		fmt.Fprintf(w, "Skills:   %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Valid: %s | Completeness: %.0f%% | Cache: %s\n",
		yesNo(o.Valid), o.Completeness*100, hitMiss(o.CacheHit))
	for _, v := range o.Violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
}

// WriteReport writes a batch summary followed by every outcome.
func WriteReport(w io.Writer, rep *batch.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, rep)
	}
	for _, o := range rep.Outcomes {
		_ = WriteOutcome(w, o, OutputText)
	}
	fmt.Fprintf(w, "\nProcessed %d files in %s: %d succeeded, %d failed, %d valid, %d from cache\n",
		rep.Total, rep.Duration.Round(time.Millisecond), rep.Succeeded, rep.Failed, rep.Valid, rep.CacheHits)
	return nil
}

// WriteCacheInfo describes the cache.
func WriteCacheInfo(w io.Writer, info cache.Info, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, info)
	}
	if !info.Enabled {
		fmt.Fprintln(w, "Cache: disabled")
		return nil
	}
	fmt.Fprintf(w, "Cache:   %s (%s)\n", info.Dir, info.Backend)
	fmt.Fprintf(w, "Entries: %s\n", humanize.Comma(int64(info.Entries)))
	fmt.Fprintf(w, "Size:    %s\n", humanize.IBytes(uint64(info.TotalBytes)))
	return nil
}

// WriteBatchInfo describes a set of files before processing.
func WriteBatchInfo(w io.Writer, info batch.Info, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, info)
	}
	fmt.Fprintf(w, "Files:   %d (%d readable, %s)\n", info.TotalFiles, info.ValidFiles, humanize.IBytes(uint64(info.TotalBytes)))
	fmt.Fprintf(w, "Batches: %d of up to %d, %d workers\n", info.BatchCount, info.BatchSize, info.Workers)
	for _, p := range info.InvalidFiles {
		fmt.Fprintf(w, "  unreadable: %s\n", p)
	}
	return nil
}

// WriteCheckSummary describes the result of checking files without processing them.
func WriteCheckSummary(w io.Writer, s batch.CheckSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "%d of %d files acceptable\n", s.Valid, s.Total)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Error)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func hitMiss(b bool) string {
	if b {
		return "hit"
	}
	return "miss"
}
