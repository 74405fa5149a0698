package upstream

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingToken is returned before any request when no API token is configured.
	ErrMissingToken = errors.New("API_TOKEN is not set")
	// ErrUnexpectedPayload marks a page that is not the paginated envelope.
	ErrUnexpectedPayload = errors.New("the response did not return the expected JSON")
)

// StatusError carries a non-200 upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}

// InvalidItemError reports an item that failed schema validation.
type InvalidItemError struct {
	Index         int
	ApplicationID string
	Reasons       []string
}

func (e *InvalidItemError) Error() string {
	id := e.ApplicationID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("item %d (application %s): %s", e.Index, id, strings.Join(e.Reasons, "; "))
}
