package report

import (
	"math"

	"github.com/samber/lo"
)

// avgProcessingDays averages submission-to-action time over decided records
// that carry an actioned date, rounded half away from zero.
func avgProcessingDays(entries []entry) (int, error) {
	decided := lo.Filter(entries, func(e entry, _ int) bool {
		return e.app.Status.Actioned() && e.hasActioned
	})
	if len(decided) == 0 {
		return 0, &EmptyDivisorError{Metric: "avg_processing_time"}
	}

	total := lo.SumBy(decided, func(e entry) int { return e.elapsedDays() })
	return int(math.Round(float64(total) / float64(len(decided)))), nil
}
