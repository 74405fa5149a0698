package httpapi

import (
	"errors"
	"net/http"

	"GrantReport/internal/infrastructure/upstream"
	"GrantReport/internal/report"
)

const (
	missingTokenDetail = "Ooops, that did not work. Make sure you have the right API TOKEN set in the " +
		"environment. To double check revisit the documentation."
	upstreamDetailPrefix = "There was a problem trying to access the API: "
	unexpectedDetail     = "The response did not return the expected JSON."
	invalidDataPrefix    = "Invalid data: "
	internalDetail       = "Internal server error"
)

// errorResponse maps use-case errors to a status code and client-facing detail.
func errorResponse(err error) (int, string) {
	var (
		statusErr *upstream.StatusError
		itemErr   *upstream.InvalidItemError
	)

	switch {
	case errors.Is(err, upstream.ErrMissingToken):
		return http.StatusBadRequest, missingTokenDetail
	case errors.As(err, &statusErr):
		return statusErr.Code, upstreamDetailPrefix + statusErr.Body
	case errors.Is(err, upstream.ErrUnexpectedPayload):
		return http.StatusBadRequest, unexpectedDetail
	case errors.As(err, &itemErr):
		return http.StatusBadRequest, invalidDataPrefix + itemErr.Error()
	case report.IsDataError(err):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, internalDetail
	}
}
