package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, exp time.Time, role models.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":            "alice@example.org",
		"exp":            exp.Unix(),
		"userId":         int64(7),
		"role":           string(role),
		"organisationId": int64(3),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	claims, err := DecodeToken(makeToken(t, exp, models.RoleAdmin))
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, int64(3), claims.Organisation())
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeToken_ExpiredStillDecodes(t *testing.T) {
	// Expiry enforcement is the manager's job; decoding itself must not
	// reject an expired token.
	claims, err := DecodeToken(makeToken(t, time.Now().Add(-time.Hour), models.RoleUser))
	require.NoError(t, err)
	require.True(t, tokenExpiry(claims).Before(time.Now()))
}

func TestDecodeToken_Garbage(t *testing.T) {
	_, err := DecodeToken("not-a-token")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestDecodeToken_NoExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a@b.c"})
	signed, err := token.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = DecodeToken(signed)
	require.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestClaims_CurrentOrganisationWins(t *testing.T) {
	claims := &Claims{OrganisationID: 3, CurrentOrganisationID: 9}
	require.Equal(t, int64(9), claims.Organisation())
}
