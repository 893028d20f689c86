package registry

import (
	"fmt"
	"strings"
)

// Endpoint names used in errors, logs and metrics.
const (
	EndpointLegalUnit      = "legal_unit"
	EndpointEstablishments = "establishments"
)

// PageSize is the number of establishments requested per page.
const PageSize = 1000

const sirenQueryPrefix = "siren:"

// SIRENQuery builds the search expression selecting all establishments of a legal unit.
func SIRENQuery(siren string) string {
	return sirenQueryPrefix + siren
}

// SIRENFromQuery extracts the SIREN from a query built by SIRENQuery.
func SIRENFromQuery(q string) string {
	return strings.TrimPrefix(q, sirenQueryPrefix)
}

// StatusError is returned by clients when the registry answers with a
// non-success status code.
type StatusError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("registry %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("registry %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// NotFound reports whether the registry had no record.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == 404
}

// Retryable reports whether the call is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
