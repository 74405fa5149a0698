package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"GrantReport/internal/domain"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

var itemSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"application_id", "amount_awarded", "research_area", "status", "submitted_date",
	},
	"properties": map[string]interface{}{
		"application_id":         map[string]interface{}{"type": "string", "minLength": 1},
		"amount_awarded":         map[string]interface{}{"type": "integer", "minimum": 0},
		"research_area":          map[string]interface{}{"type": "string", "minLength": 1},
		"status":                 map[string]interface{}{"type": "string", "enum": []interface{}{"submitted", "approved", "rejected"}},
		"submitted_date":         map[string]interface{}{"type": "string", "pattern": datePattern, "format": "date"},
		"actioned_date":          map[string]interface{}{"type": []interface{}{"string", "null"}, "pattern": datePattern, "format": "date"},
		"lead_applicant_name":    optionalString,
		"lead_applicant_email":   optionalString,
		"lead_applicant_address": optionalString,
		"organisation_name":      optionalString,
		"summary":                optionalString,
	},
}

var optionalString = map[string]interface{}{"type": []interface{}{"string", "null"}}

// wireItem mirrors one element of the upstream items array.
type wireItem struct {
	ApplicationID        string  `json:"application_id"`
	LeadApplicantName    *string `json:"lead_applicant_name"`
	LeadApplicantEmail   *string `json:"lead_applicant_email"`
	LeadApplicantAddress *string `json:"lead_applicant_address"`
	OrganisationName     *string `json:"organisation_name"`
	Summary              *string `json:"summary"`
	AmountAwarded        int     `json:"amount_awarded"`
	ResearchArea         string  `json:"research_area"`
	Status               string  `json:"status"`
	SubmittedDate        string  `json:"submitted_date"`
	ActionedDate         *string `json:"actioned_date"`
}

var compiledItemSchema = mustCompile()

func compileItemSchema() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(itemSchema))
}

// decodeItem validates raw against the item schema and maps it to the domain type.
func decodeItem(schema *gojsonschema.Schema, index int, raw json.RawMessage) (domain.Application, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return domain.Application{}, &InvalidItemError{Index: index, ApplicationID: applicationIDOf(raw), Reasons: []string{err.Error()}}
	}
	if !result.Valid() {
		reasons := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			reasons[i] = desc.String()
		}
		return domain.Application{}, &InvalidItemError{Index: index, ApplicationID: applicationIDOf(raw), Reasons: reasons}
	}

	var item wireItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.Application{}, &InvalidItemError{Index: index, ApplicationID: applicationIDOf(raw), Reasons: []string{err.Error()}}
	}
	status, err := domain.ParseStatus(item.Status)
	if err != nil {
		return domain.Application{}, &InvalidItemError{Index: index, ApplicationID: item.ApplicationID, Reasons: []string{err.Error()}}
	}

	return domain.Application{
		ApplicationID:        item.ApplicationID,
		LeadApplicantName:    deref(item.LeadApplicantName),
		LeadApplicantEmail:   deref(item.LeadApplicantEmail),
		LeadApplicantAddress: deref(item.LeadApplicantAddress),
		OrganisationName:     deref(item.OrganisationName),
		Summary:              deref(item.Summary),
		AmountAwarded:        item.AmountAwarded,
		ResearchArea:         item.ResearchArea,
		Status:               status,
		SubmittedDate:        item.SubmittedDate,
		ActionedDate:         deref(item.ActionedDate),
	}, nil
}

// applicationIDOf extracts the id of a rejected item for error reporting;
// items without a readable string id report an empty id.
func applicationIDOf(raw json.RawMessage) string {
	var head struct {
		ApplicationID string `json:"application_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	return head.ApplicationID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mustCompile() *gojsonschema.Schema {
	schema, err := compileItemSchema()
	if err != nil {
		panic(fmt.Sprintf("upstream: item schema: %v", err))
	}
	return schema
}
