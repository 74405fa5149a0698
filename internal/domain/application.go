package domain

import "fmt"

// DateLayout is the calendar date format used by the upstream API and the store.
const DateLayout = "2006-01-02"

// Status enumerates the lifecycle stages of a grant application.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Actioned reports whether a decision has been made.
func (s Status) Actioned() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus maps a raw label to a known Status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status %q", raw)
	}
}

// Research areas named by the downstream report schema.
const (
	AreaInfectiousDisease = "infectious_disease"
	AreaMentalHealth      = "mental_health"
	AreaClimateAndHealth  = "climate_and_health"
)

// DefaultResearchAreas lists the areas the report always carries.
func DefaultResearchAreas() []string {
	return []string{AreaInfectiousDisease, AreaMentalHealth, AreaClimateAndHealth}
}

// Application is one grant application and its current disposition.
// Dates are kept in DateLayout form; ActionedDate is empty until a decision exists.
type Application struct {
	ApplicationID        string
	LeadApplicantName    string
	LeadApplicantEmail   string
	LeadApplicantAddress string
	OrganisationName     string
	Summary              string
	AmountAwarded        int
	ResearchArea         string
	Status               Status
	SubmittedDate        string
	ActionedDate         string
}

// HasActionedDate reports whether the actioned date is populated.
func (a Application) HasActionedDate() bool {
	return a.ActionedDate != ""
}
