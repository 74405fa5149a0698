package report

import (
	"fmt"
	"time"

	"GrantReport/internal/domain"
)

// MonthStat is one month of the trailing window. ApprovedFunding stays nil
// when nothing was approved in the month.
type MonthStat struct {
	Submitted       int      `json:"submitted"`
	Approved        int      `json:"approved"`
	Rejected        int      `json:"rejected"`
	ApprovedFunding *float64 `json:"approved_funding"`
}

// AnnualStat is keyed by calendar year, then two-digit month ("01".."12").
type AnnualStat map[int]map[string]MonthStat

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

// monthRange returns the first and last calendar day of the month i months before anchor.
func monthRange(anchor time.Time, i int) (time.Time, time.Time) {
	first := time.Date(anchor.Year(), anchor.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

type monthAcc struct {
	stat    MonthStat
	funding int64
	funded  bool
}

// annualStat buckets the snapshot into the twelve months ending at anchor.
func annualStat(entries []entry, anchor time.Time, attribution RejectionAttribution) AnnualStat {
	buckets := make(map[monthKey]*monthAcc, annualMonths)
	order := make([]monthKey, 0, annualMonths)
	for i := 0; i < annualMonths; i++ {
		first, _ := monthRange(anchor, i)
		key := keyOf(first)
		buckets[key] = &monthAcc{}
		order = append(order, key)
	}

	for _, e := range entries {
		if acc, ok := buckets[keyOf(e.submitted)]; ok {
			acc.stat.Submitted++
		}

		switch e.app.Status {
		case domain.StatusApproved:
			if !e.hasActioned {
				continue
			}
			if acc, ok := buckets[keyOf(e.actioned)]; ok {
				acc.stat.Approved++
				acc.funding += int64(e.app.AmountAwarded)
				acc.funded = true
			}
		case domain.StatusRejected:
			when := e.submitted
			if attribution == AttributeByAction && e.hasActioned {
				when = e.actioned
			}
			if acc, ok := buckets[keyOf(when)]; ok {
				acc.stat.Rejected++
			}
		}
	}

	result := make(AnnualStat, 2)
	for _, key := range order {
		acc := buckets[key]
		stat := acc.stat
		if acc.funded {
			funding := float64(acc.funding)
			stat.ApprovedFunding = &funding
		}

		year, ok := result[key.year]
		if !ok {
			year = make(map[string]MonthStat, annualMonths)
			result[key.year] = year
		}
		year[fmt.Sprintf("%02d", int(key.month))] = stat
	}

	return result
}
