package report

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDivisor signals an average over zero qualifying records.
	ErrEmptyDivisor = errors.New("no qualifying records to average")
	// ErrMalformedDate signals a record date that is not a calendar date.
	ErrMalformedDate = errors.New("malformed date")
	// ErrUnknownResearchArea signals an area outside the configured whitelist.
	ErrUnknownResearchArea = errors.New("unknown research area")
)

// EmptyDivisorError distinguishes "no data" from an average of zero days.
type EmptyDivisorError struct {
	Metric string
}

func (e *EmptyDivisorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Metric, ErrEmptyDivisor)
}

func (e *EmptyDivisorError) Unwrap() error {
	return ErrEmptyDivisor
}

// MalformedDateError identifies the offending record and field.
type MalformedDateError struct {
	ApplicationID string
	Field         string
	Value         string
	Err           error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("application %s: %s %q: %v", e.ApplicationID, e.Field, e.Value, ErrMalformedDate)
}

func (e *MalformedDateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedDate}
	}
	return []error{ErrMalformedDate, e.Err}
}

// UnknownResearchAreaError is returned when the area policy rejects a label.
type UnknownResearchAreaError struct {
	ApplicationID string
	Area          string
}

func (e *UnknownResearchAreaError) Error() string {
	return fmt.Sprintf("application %s: %v %q", e.ApplicationID, ErrUnknownResearchArea, e.Area)
}

func (e *UnknownResearchAreaError) Unwrap() error {
	return ErrUnknownResearchArea
}

// IsDataError reports whether err comes from the record set rather than infrastructure.
func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyDivisor) ||
		errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrUnknownResearchArea)
}
