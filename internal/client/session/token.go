package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// Claims are the token claims the client cares about. The subject is the
// user's email address; currentOrganisationId is present only after a
// super-admin has selected an organisation.
type Claims struct {
	jwt.RegisteredClaims
	UserID                int64       `json:"userId"`
	Role                  models.Role `json:"role"`
	OrganisationID        int64       `json:"organisationId"`
	CurrentOrganisationID int64       `json:"currentOrganisationId,omitempty"`
}

// Organisation returns the effective organisation scope of the token.
func (c *Claims) Organisation() int64 {
	if c.CurrentOrganisationID != 0 {
		return c.CurrentOrganisationID
	}
	return c.OrganisationID
}

// DecodeToken extracts claims from the opaque signed token without
// verifying the signature: the client holds no key, and the backend
// re-validates every request anyway. Decoding failures are non-fatal for
// callers; they downgrade the session to unauthenticated.
func DecodeToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: no expiry claim", common.ErrInvalidToken)
	}
	return claims, nil
}

// tokenExpiry returns the embedded expiry timestamp.
func tokenExpiry(claims *Claims) time.Time {
	return claims.ExpiresAt.Time
}
