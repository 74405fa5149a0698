package report

import (
	"github.com/samber/lo"

	"GrantReport/internal/domain"
)

// StatusCount holds per-area totals. Approved and Rejected are each bounded by Submitted.
type StatusCount struct {
	Submitted int `json:"submitted"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
}

// statusPerResearchArea counts submissions, approvals and rejections per area.
// Every record has a submitted date, so Submitted counts all records of the area.
func statusPerResearchArea(entries []entry, policy AreaPolicy) (map[string]StatusCount, error) {
	known := lo.SliceToMap(policy.Known, func(area string) (string, struct{}) {
		return area, struct{}{}
	})

	result := make(map[string]StatusCount, len(known))
	for area := range known {
		result[area] = StatusCount{}
	}

	for _, e := range entries {
		area := e.app.ResearchArea
		if _, ok := known[area]; !ok && len(known) > 0 {
			switch policy.Unknown {
			case UnknownAreaOther:
				area = OtherArea
			case UnknownAreaReject:
				return nil, &UnknownResearchAreaError{ApplicationID: e.app.ApplicationID, Area: area}
			}
		}

		counts := result[area]
		counts.Submitted++
		switch e.app.Status {
		case domain.StatusApproved:
			counts.Approved++
		case domain.StatusRejected:
			counts.Rejected++
		}
		result[area] = counts
	}

	return result, nil
}
