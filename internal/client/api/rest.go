package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// TokenSource yields the current credential token, or "" when the caller is
// unauthenticated. The session manager owns the token; the client only
// reads it per request.
type TokenSource func() string

// RESTClient talks JSON over HTTP to the attendance backend.
//
// Every response carrying an authorization-failure status is routed to the
// configured auth-failure handler, regardless of which endpoint produced
// it. That is the server's clock winning over the client's local expiry
// estimate.
type RESTClient struct {
	baseURL       string
	httpClient    *http.Client
	token         TokenSource
	clientID      string
	onAuthFailure func()
}

// Option configures a RESTClient.
type Option func(*RESTClient)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *RESTClient) { c.httpClient = hc }
}

// WithClientID sets the per-install id sent with every request.
func WithClientID(id string) Option {
	return func(c *RESTClient) { c.clientID = id }
}

// NewRESTClient builds a client for the given base URL, e.g.
// "http://localhost:8080/api".
func NewRESTClient(baseURL string, token TokenSource, opts ...Option) *RESTClient {
	c := &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 12 * time.Second},
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthFailureHandler registers the forced-logout hook. Set once during
// wiring, before any request is issued.
func (c *RESTClient) SetAuthFailureHandler(fn func()) {
	c.onAuthFailure = fn
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"errorCode"`
}

// do issues one request and decodes the response into out (when non-nil).
// It returns the server's message so success notifications can surface it.
func (c *RESTClient) do(ctx context.Context, method, path string, body any, out any) (string, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set(common.ClientIDHeaderName, c.clientID)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: connectivity, DNS, timeout.
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	var env envelope
	envOK := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return "", &APIError{Status: resp.StatusCode, Message: env.Message, Code: env.ErrorCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (envOK && !env.Success && env.Message != "") {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message, Code: env.ErrorCode}
	}

	if out != nil {
		// Most endpoints wrap the payload in the envelope's data field;
		// a few return the object bare. Accept both.
		payload := raw
		if envOK && len(env.Data) > 0 {
			payload = env.Data
		}
		if string(payload) == "null" {
			return env.Message, nil
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
		}
	}

	return env.Message, nil
}

// sessionPayload mirrors the backend's login response: the token sits next
// to the identity fields, not nested under them.
type sessionPayload struct {
	Token string `json:"token"`
	models.Identity
}

func (c *RESTClient) session(ctx context.Context, method, path string, body any) (*models.Session, error) {
	var payload sessionPayload
	if _, err := c.do(ctx, method, path, body, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, fmt.Errorf("%w: token missing", common.ErrMalformedResponse)
	}
	return &models.Session{Token: payload.Token, Identity: payload.Identity}, nil
}

func (c *RESTClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.session(ctx, http.MethodPost, "/auth/login", body)
}

func (c *RESTClient) SelectOrganisation(ctx context.Context, orgID int64) (*models.Session, error) {
	return c.session(ctx, http.MethodPut, fmt.Sprintf("/auth/select-organisation/%d", orgID), nil)
}

type startQRRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radiusMeters"`
}

func (c *RESTClient) StartQRSession(ctx context.Context, latitude, longitude float64, radiusMeters int) (*models.QRSession, error) {
	var session models.QRSession
	body := startQRRequest{Latitude: latitude, Longitude: longitude, RadiusMeters: radiusMeters}
	if _, err := c.do(ctx, http.MethodPost, "/admin/qr-codes/start", body, &session); err != nil {
		return nil, err
	}
	if session.Code == "" {
		return nil, fmt.Errorf("%w: QR session missing code", common.ErrMalformedResponse)
	}
	return &session, nil
}

func (c *RESTClient) CurrentQRSession(ctx context.Context) (*models.QRSession, error) {
	var session models.QRSession
	if _, err := c.do(ctx, http.MethodGet, "/admin/qr-codes/start", nil, &session); err != nil {
		return nil, err
	}
	if session.Code == "" {
		return nil, common.ErrNoActiveSession
	}
	return &session, nil
}

func (c *RESTClient) StopQRSession(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/qr-codes/stop", nil, nil)
	return err
}

type checkInRequest struct {
	QRCode        string                  `json:"qrCode"`
	Latitude      float64                 `json:"latitude"`
	Longitude     float64                 `json:"longitude"`
	CheckInMethod models.AttendanceMethod `json:"checkInMethod"`
}

func (c *RESTClient) CheckInQR(ctx context.Context, code string, latitude, longitude float64) (string, error) {
	body := checkInRequest{
		QRCode:        code,
		Latitude:      latitude,
		Longitude:     longitude,
		CheckInMethod: models.MethodQRCode,
	}
	return c.do(ctx, http.MethodPost, "/attendance/check-in-qr", body, nil)
}

func (c *RESTClient) CheckOut(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodPut, "/attendance/check-out", struct{}{}, nil)
}

func (c *RESTClient) TodayAttendance(ctx context.Context) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if _, err := c.do(ctx, http.MethodGet, "/attendance/today", nil, &record); err != nil {
		return nil, err
	}
	if record.ID == 0 && record.CheckInTime == nil {
		return nil, nil
	}
	return &record, nil
}
