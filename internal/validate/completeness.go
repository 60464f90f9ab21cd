package validate

import (
	"strings"

	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/pkg/utils"
)

type weighted struct {
	weight    float64
	populated func(*models.ExtractionRecord) bool
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

// completenessWeights sum to 100.
var completenessWeights = []weighted{
	{10, func(r *models.ExtractionRecord) bool { return present(r.Name) }},
	{10, func(r *models.ExtractionRecord) bool { return present(r.Email) }},
	{8, func(r *models.ExtractionRecord) bool { return present(r.Phone) }},
	{5, func(r *models.ExtractionRecord) bool { return present(r.Location) }},
	{5, func(r *models.ExtractionRecord) bool { return present(r.Summary) }},
	{5, func(r *models.ExtractionRecord) bool {
		return present(r.Links.LinkedIn) || present(r.Links.GitHub) || present(r.Links.Website)
	}},
	{15, func(r *models.ExtractionRecord) bool { return len(r.Skills) > 0 }},
	{20, func(r *models.ExtractionRecord) bool { return len(r.Experience) > 0 }},
	{12, func(r *models.ExtractionRecord) bool { return len(r.Education) > 0 }},
	{4, func(r *models.ExtractionRecord) bool { return len(r.Certifications) > 0 }},
	{3, func(r *models.ExtractionRecord) bool { return len(r.Projects) > 0 }},
	{3, func(r *models.ExtractionRecord) bool { return len(r.Languages) > 0 }},
}

// CompletenessScore is the weighted fraction of populated fields, in [0, 1].
// It does not depend on the validation rules.
func CompletenessScore(rec *models.ExtractionRecord) float64 {
	if rec == nil {
		return 0
	}
	var got, total float64
	for _, w := range completenessWeights {
		total += w.weight
		if w.populated(rec) {
			got += w.weight
		}
	}
	return utils.Clamp01(got / total)
}
