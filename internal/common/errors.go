// Package common contains shared constants and sentinel errors used across
// the Smart Attendance client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Transport / backend boundary errors.
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed server response")

	// Credential token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session state errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoActiveSession  = errors.New("no active QR session")

	// Capability errors.
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrLocationTimeout     = errors.New("location request timed out")

	// Check-out confirmation guard.
	ErrConfirmationMismatch = errors.New("confirmation phrase mismatch")
)
