package transform

import (
	"sort"
	"time"

	"github.com/hyperjump/cvingest/internal/models"
)

type span struct{ start, end int }

// ExperienceMonths returns the number of calendar months covered by at least
// one role. Overlapping roles are merged rather than summed. Both ends are
// inclusive; a current role ends in the month of now. Roles without a parsed
// start, or with an end before their start, are skipped.
func ExperienceMonths(roles []models.RawExperience, now time.Time) int {
	nowIdx := now.Year()*12 + int(now.Month()) - 1
	var spans []span
	for _, r := range roles {
		if s, e, ok := roleSpan(r, nowIdx); ok {
			spans = append(spans, span{s, e})
		}
	}
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	total := 0
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.start <= cur.end+1 {
			cur.end = max(cur.end, s.end)
			continue
		}
		total += cur.end - cur.start + 1
		cur = s
	}
	return total + cur.end - cur.start + 1
}

// roleSpan returns the inclusive month indexes of one role.
func roleSpan(r models.RawExperience, nowIdx int) (int, int, bool) {
	start, ok := r.Start.MonthIndex(true)
	if !ok {
		return 0, 0, false
	}
	var end int
	switch {
	case r.Current || r.End.Present:
		end = nowIdx
	default:
		end, ok = r.End.MonthIndex(false)
		if !ok {
			return 0, 0, false
		}
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

// RoleMonths is the inclusive month count of a single role, or 0 when its
// dates are unusable.
func RoleMonths(r models.RawExperience, now time.Time) int {
	s, e, ok := roleSpan(r, now.Year()*12+int(now.Month())-1)
	if !ok {
		return 0
	}
	return e - s + 1
}
