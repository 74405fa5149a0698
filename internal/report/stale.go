package report

import (
	"time"

	"github.com/samber/lo"

	"GrantReport/internal/domain"
)

// longWaitingIDs lists pending applications submitted on or before anchor minus staleAfterDays.
func longWaitingIDs(entries []entry, anchor time.Time, staleAfterDays int) []string {
	cutoff := anchor.AddDate(0, 0, -staleAfterDays)
	ids := lo.FilterMap(entries, func(e entry, _ int) (string, bool) {
		return e.app.ApplicationID, e.app.Status == domain.StatusSubmitted && !e.submitted.After(cutoff)
	})
	if ids == nil {
		ids = []string{}
	}
	return ids
}
