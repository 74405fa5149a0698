package report

import (
	"time"

	"GrantReport/internal/domain"
)

// entry is an application with its dates parsed once per build.
type entry struct {
	app         domain.Application
	submitted   time.Time
	actioned    time.Time
	hasActioned bool
}

func (e entry) elapsedDays() int {
	return int(e.actioned.Sub(e.submitted).Hours() / 24)
}

// snapshot parses every record up front so a malformed date fails the whole build.
func snapshot(records []domain.Application) ([]entry, error) {
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		submitted, err := parseDate(rec.ApplicationID, "submitted_date", rec.SubmittedDate)
		if err != nil {
			return nil, err
		}

		e := entry{app: rec, submitted: submitted}
		if rec.HasActionedDate() {
			e.actioned, err = parseDate(rec.ApplicationID, "actioned_date", rec.ActionedDate)
			if err != nil {
				return nil, err
			}
			e.hasActioned = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseDate(id, field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, &MalformedDateError{ApplicationID: id, Field: field, Value: value, Err: err}
	}
	return t, nil
}

// civilDay drops the clock part of t as seen in loc and returns midnight UTC,
// the same representation parseDate produces.
func civilDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
