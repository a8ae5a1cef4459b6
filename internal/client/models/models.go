// Package models holds the client-side data types exchanged with the
// attendance backend.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Time unmarshals the backend's timestamps. The backend serializes them
// without a zone designator ("2026-08-30T12:00:00"); such values are UTC
// on the wire. RFC3339 with an explicit offset is accepted as well.
type Time struct {
	time.Time
}

// isoNoZone covers the zone-less form, with or without fractional seconds.
const isoNoZone = "2006-01-02T15:04:05.999999999"

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, isoNoZone} {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Role is the role embedded in the credential token.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// CanAdminister reports whether the role may manage QR sessions.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity is the user payload returned alongside a token on login or
// organisation selection.
type Identity struct {
	UserID           int64  `json:"userId"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Role             Role   `json:"role"`
	OrganisationID   int64  `json:"organisationId"`
	OrganisationName string `json:"organisationName"`
}

// DisplayName returns "First Last", falling back to the email address.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// Session is the adopted credential: an opaque signed token plus the
// identity it was issued for. ExpiresAt is extracted from the token's
// claims when the session is adopted; it is not part of the wire payload.
type Session struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"-"`
}

// QRSession is one rotating attendance QR code held by the organisation.
// Code is an opaque payload; Image is the server-rendered representation
// (a data URI). The geo anchor and radius are fixed at session start.
type QRSession struct {
	Code         string  `json:"code"`
	Image        string  `json:"qrCodeImage"`
	ExpiresAt    Time    `json:"expiresAt"`
	ScanCount    int     `json:"scanCount"`
	RadiusMeters int     `json:"radiusMeters"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Expired reports whether the session's expiry has passed at the given time.
func (q *QRSession) Expired(now time.Time) bool {
	return !q.ExpiresAt.After(now)
}

// AttendanceMethod is how a check-in or check-out was performed.
type AttendanceMethod string

const (
	MethodQRCode AttendanceMethod = "QR_CODE"
	MethodWeb    AttendanceMethod = "WEB"
)

// AttendanceRecord is today's attendance row as owned by the backend.
// The client only reads it.
type AttendanceRecord struct {
	ID             int64            `json:"id"`
	CheckInTime    *Time            `json:"checkInTime"`
	CheckInMethod  AttendanceMethod `json:"checkInMethod,omitempty"`
	CheckOutTime   *Time            `json:"checkOutTime"`
	CheckOutMethod AttendanceMethod `json:"checkOutMethod,omitempty"`
}

// Open reports whether the record is checked in but not yet checked out.
func (r *AttendanceRecord) Open() bool {
	return r != nil && r.CheckInTime != nil && r.CheckOutTime == nil
}
