package pipeline

import "github.com/hyperjump/cvingest/internal/models"

// Outcome converts a run into the per-file outcome reported by batches.
func Outcome(path string, res *Result, err error) models.FileOutcome {
	o := models.FileOutcome{Path: path}
	if err != nil {
		o.Fail(err)
		return o
	}
	o.Success = true
	o.Record = res.Record
	o.Valid = res.Validation.Valid
	o.Violations = res.Validation.Violations
	o.Completeness = res.Completeness
	o.CacheHit = res.CacheHit
	o.ContentHash = res.Hash
	o.SizeBytes = res.Size
	return o
}
