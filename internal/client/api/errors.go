package api

import (
	"fmt"
	"net/http"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// APIError is a failure the server reported about the request itself:
// rejected credentials, a geofence violation, an already-open record, and
// so on. Message is surfaced to the user verbatim, never reinterpreted.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap maps authorization failures onto the shared sentinel so callers
// can match with errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	}
	return nil
}
