package report

import (
	"fmt"
	"strings"
	"time"
)

const (
	// annualMonths is the fixed length of the annual window.
	annualMonths          = 12
	defaultStaleAfterDays = 60

	// OtherArea collects labels outside the whitelist when UnknownAreaOther is set.
	OtherArea = "other"
)

// UnknownAreaMode decides what happens to areas outside a non-empty whitelist.
type UnknownAreaMode string

const (
	UnknownAreaKeep   UnknownAreaMode = "keep"
	UnknownAreaOther  UnknownAreaMode = "other"
	UnknownAreaReject UnknownAreaMode = "reject"
)

// ParseUnknownAreaMode accepts keep, other or reject; empty means keep.
func ParseUnknownAreaMode(raw string) (UnknownAreaMode, error) {
	switch m := UnknownAreaMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return UnknownAreaKeep, nil
	case UnknownAreaKeep, UnknownAreaOther, UnknownAreaReject:
		return m, nil
	default:
		return "", fmt.Errorf("unknown area mode %q", raw)
	}
}

// RejectionAttribution selects the date that places a rejection in a month.
type RejectionAttribution string

const (
	// AttributeBySubmission always uses the submitted date. Upstream never
	// populates actioned_date for rejections.
	AttributeBySubmission RejectionAttribution = "submission"
	// AttributeByAction uses the actioned date when present.
	AttributeByAction RejectionAttribution = "action"
)

// ParseRejectionAttribution accepts submission or action; empty means submission.
func ParseRejectionAttribution(raw string) (RejectionAttribution, error) {
	switch a := RejectionAttribution(strings.ToLower(strings.TrimSpace(raw))); a {
	case "":
		return AttributeBySubmission, nil
	case AttributeBySubmission, AttributeByAction:
		return a, nil
	default:
		return "", fmt.Errorf("unknown rejection attribution %q", raw)
	}
}

// AreaPolicy is the research-area whitelist passed to the area aggregator.
type AreaPolicy struct {
	Known   []string
	Unknown UnknownAreaMode
}

// Options tune the report builder. Zero values fall back to defaults.
type Options struct {
	Areas                AreaPolicy
	RejectionAttribution RejectionAttribution
	StaleAfterDays       int
	Location             *time.Location
}

func (o Options) withDefaults() Options {
	if o.StaleAfterDays <= 0 {
		o.StaleAfterDays = defaultStaleAfterDays
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.RejectionAttribution == "" {
		o.RejectionAttribution = AttributeBySubmission
	}
	if o.Areas.Unknown == "" {
		o.Areas.Unknown = UnknownAreaKeep
	}
	return o
}
