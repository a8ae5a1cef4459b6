// Package api defines the contract with the attendance backend and its
// REST implementation. The backend owns correctness of stored records;
// this package only frames requests and maps failures onto the shared
// sentinel errors.
package api

import (
	"context"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
)

// Client is the backend surface the rest of the client depends on.
//
// All methods honor context cancellation. Methods returning a string return
// the server-provided human-readable message; callers surface it verbatim.
type Client interface {
	// Login exchanges credentials for a token + identity payload.
	Login(ctx context.Context, email, password string) (*models.Session, error)

	// SelectOrganisation exchanges the current token for one scoped to the
	// chosen organisation. Super-admin only.
	SelectOrganisation(ctx context.Context, orgID int64) (*models.Session, error)

	// StartQRSession creates the organisation's rotating QR session, or
	// returns the one already active (the server enforces at most one).
	StartQRSession(ctx context.Context, latitude, longitude float64, radiusMeters int) (*models.QRSession, error)

	// CurrentQRSession fetches the active session without creating one.
	// Used on reload and on countdown-driven refresh.
	CurrentQRSession(ctx context.Context) (*models.QRSession, error)

	// StopQRSession ends the active session server-side.
	StopQRSession(ctx context.Context) error

	// CheckInQR submits a scanned code bound to a geolocation reading.
	CheckInQR(ctx context.Context, code string, latitude, longitude float64) (string, error)

	// CheckOut closes today's open attendance record.
	CheckOut(ctx context.Context) (string, error)

	// TodayAttendance returns today's record, or nil when there is none.
	TodayAttendance(ctx context.Context) (*models.AttendanceRecord, error)
}
