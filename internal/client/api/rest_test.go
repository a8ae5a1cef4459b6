package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
	"github.com/stretchr/testify/require"
)

func staticToken(tok string) TokenSource {
	return func() string { return tok }
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTClient(srv.URL, staticToken("tok-123"), opts...)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    json.RawMessage(raw),
	})
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice@example.org", body["email"])
		require.Equal(t, "hunter2", body["password"])

		writeEnvelope(w, http.StatusOK, true, "Login successful", map[string]any{
			"token":     "jwt-abc",
			"email":     "alice@example.org",
			"firstName": "Alice",
			"role":      "ADMIN",
		})
	})

	session, err := c.Login(context.Background(), "alice@example.org", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "jwt-abc", session.Token)
	require.Equal(t, "alice@example.org", session.Identity.Email)
	require.Equal(t, "ADMIN", string(session.Identity.Role))
}

func TestLogin_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Invalid email or password", nil)
	})

	_, err := c.Login(context.Background(), "alice@example.org", "wrong")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestDo_TransportFailure(t *testing.T) {
	// Point at a closed server so the dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewRESTClient(srv.URL, staticToken(""))

	_, err := c.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestDo_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"token": 42}`)
	})

	_, err := c.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestDo_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "ok", map[string]any{"email": "a@b.c"})
	})

	_, err := c.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestDo_AuthFailureHandlerFires(t *testing.T) {
	fired := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Token expired", nil)
	})
	c.SetAuthFailureHandler(func() { fired++ })

	_, err := c.TodayAttendance(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Equal(t, 1, fired, "every unauthorized response must reach the handler")
}

func TestDo_ForbiddenMapsToUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, false, "Access denied", nil)
	})

	err := c.StopQRSession(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDo_RequestHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get(common.AuthorizationHeaderName))
		require.Equal(t, "install-1", r.Header.Get(common.ClientIDHeaderName))
		writeEnvelope(w, http.StatusOK, true, "ok", nil)
	}, WithClientID("install-1"))

	_, err := c.CheckOut(context.Background())
	require.NoError(t, err)
}

func TestStartQRSession(t *testing.T) {
	expires := time.Now().Add(30 * time.Second).UTC().Truncate(time.Second)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/admin/qr-codes/start", r.URL.Path)

		var body startQRRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, 5.6037, body.Latitude)
		require.Equal(t, -0.187, body.Longitude)
		require.Equal(t, 100, body.RadiusMeters)

		writeEnvelope(w, http.StatusOK, true, "QR session started", map[string]any{
			"code":         "QR-1",
			"qrCodeImage":  "data:image/png;base64,xxx",
			"expiresAt":    expires.Format(time.RFC3339),
			"scanCount":    0,
			"radiusMeters": 100,
		})
	})

	session, err := c.StartQRSession(context.Background(), 5.6037, -0.187, 100)
	require.NoError(t, err)
	require.Equal(t, "QR-1", session.Code)
	require.True(t, session.ExpiresAt.Equal(expires))
}

func TestCurrentQRSession_BareBody(t *testing.T) {
	// The refresh endpoint returns the object without the envelope, with
	// the backend's zone-less UTC timestamps.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"code":"QR-2","expiresAt":"2026-08-30T12:00:00","scanCount":4}`)
	})

	session, err := c.CurrentQRSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, "QR-2", session.Code)
	require.Equal(t, 4, session.ScanCount)
	require.True(t, session.ExpiresAt.Equal(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)))
}

func TestCurrentQRSession_NoneActive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", nil)
	})

	_, err := c.CurrentQRSession(context.Background())
	require.ErrorIs(t, err, common.ErrNoActiveSession)
}

func TestCheckInQR(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/attendance/check-in-qr", r.URL.Path)

		var body checkInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "QR-1", body.QRCode)
		require.Equal(t, "QR_CODE", string(body.CheckInMethod))

		writeEnvelope(w, http.StatusOK, true, "Checked in successfully", nil)
	})

	msg, err := c.CheckInQR(context.Background(), "QR-1", 5.6, -0.18)
	require.NoError(t, err)
	require.Equal(t, "Checked in successfully", msg)
}

func TestCheckInQR_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, false, "Already checked in today", nil)
	})

	_, err := c.CheckInQR(context.Background(), "QR-1", 5.6, -0.18)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "Already checked in today", apiErr.Message)
	require.False(t, errors.Is(err, common.ErrUnauthorized))
}

func TestTodayAttendance_None(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", nil)
	})

	record, err := c.TodayAttendance(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestTodayAttendance_OpenRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"id":            12,
			"checkInTime":   "2026-08-30T08:15:00",
			"checkInMethod": "QR_CODE",
		})
	})

	record, err := c.TodayAttendance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	require.True(t, record.Open())
}
