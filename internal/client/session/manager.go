// Package session owns the authenticated-session lifecycle: the single
// current credential token and derived identity, its persistence across
// restarts, and the expiry watchdog that forces logout without a server
// round-trip.
//
// The token is the one shared mutable resource of the whole client. All
// writes go through Login, SelectOrganisation and Logout; everything else
// reads it through Token or Current.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/api"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/store"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/logging"
)

// Store is the slice of the state store the manager needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetAll(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Manager holds the current session and arms a one-shot watchdog that
// logs out when the token's embedded expiry passes. Adopting a new token
// always cancels the previous watchdog, so at most one is armed.
type Manager struct {
	client api.Client
	store  Store
	log    logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	current  *models.Session
	watchdog *time.Timer
	onLogout func(reason string)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithLogoutHandler registers a callback invoked after any forced or
// explicit logout, with a human-readable reason. The UI uses it to return
// to the unauthenticated entry point.
func WithLogoutHandler(fn func(reason string)) ManagerOption {
	return func(m *Manager) { m.onLogout = fn }
}

func NewManager(client api.Client, st Store, log logging.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		client: client,
		store:  st,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore adopts the persisted session on startup, if any. A missing,
// undecodable or already-expired token clears persisted state and leaves
// the caller unauthenticated; it never fails the start. No network call is
// made.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, store.KeyToken)
	if err != nil {
		return fmt.Errorf("reading persisted token: %w", err)
	}
	if len(token) == 0 {
		return nil
	}

	claims, err := DecodeToken(string(token))
	if err != nil {
		m.log.Warn(ctx, "persisted token undecodable, clearing", "err", err)
		return m.clear(ctx)
	}
	if !tokenExpiry(claims).After(m.now()) {
		m.log.Info(ctx, "persisted token expired, clearing")
		return m.clear(ctx)
	}

	var identity models.Identity
	if raw, err := m.store.Get(ctx, store.KeyIdentity); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &identity); err != nil {
			m.log.Warn(ctx, "persisted identity undecodable, clearing", "err", err)
			return m.clear(ctx)
		}
	}

	session := &models.Session{
		Token:     string(token),
		Identity:  identity,
		ExpiresAt: tokenExpiry(claims),
	}

	m.mu.Lock()
	m.current = session
	m.armWatchdogLocked(session.ExpiresAt)
	m.mu.Unlock()

	m.log.Info(ctx, "session restored", "user", identity.Email, "role", identity.Role,
		"expiresAt", session.ExpiresAt)
	return nil
}

// Login authenticates and adopts the resulting session. The returned error
// distinguishes rejected credentials, no response from the server, and a
// malformed response.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, classifyLoginError(err)
	}
	if err := m.adopt(ctx, session); err != nil {
		return nil, err
	}
	return m.Current(), nil
}

// SelectOrganisation exchanges the token for one scoped to orgID and
// adopts it. Used by super-admins administering multiple organisations.
func (m *Manager) SelectOrganisation(ctx context.Context, orgID int64) (*models.Session, error) {
	session, err := m.client.SelectOrganisation(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to switch organisation: %w", err)
	}
	if err := m.adopt(ctx, session); err != nil {
		return nil, err
	}
	return m.Current(), nil
}

// classifyLoginError turns boundary errors into the messages the login
// screen shows.
func classifyLoginError(err error) error {
	switch {
	case errors.Is(err, common.ErrUnavailable):
		return fmt.Errorf("no response from server: %w", err)
	case errors.Is(err, common.ErrMalformedResponse):
		return fmt.Errorf("malformed response: %w", err)
	default:
		// The server rejected the credentials; its message is in err.
		return err
	}
}

// adopt decodes the token, persists token + identity atomically, installs
// the session and re-arms the watchdog. A token already past its expiry is
// never adopted.
func (m *Manager) adopt(ctx context.Context, session *models.Session) error {
	claims, err := DecodeToken(session.Token)
	if err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	expiry := tokenExpiry(claims)
	if !expiry.After(m.now()) {
		return common.ErrTokenExpired
	}
	session.ExpiresAt = expiry

	identity, err := json.Marshal(session.Identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}
	if err := m.store.SetAll(ctx, map[string][]byte{
		store.KeyToken:    []byte(session.Token),
		store.KeyIdentity: identity,
	}); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	m.mu.Lock()
	m.current = session
	m.armWatchdogLocked(expiry)
	m.mu.Unlock()

	m.log.Info(ctx, "session adopted", "user", session.Identity.Email,
		"role", session.Identity.Role, "org", claims.Organisation(), "expiresAt", expiry)
	return nil
}

// armWatchdogLocked schedules the one-shot forced logout at expiry,
// cancelling any previously armed timer. Caller holds m.mu.
func (m *Manager) armWatchdogLocked(expiry time.Time) {
	if m.watchdog != nil {
		m.watchdog.Stop()
	}
	m.watchdog = time.AfterFunc(expiry.Sub(m.now()), func() {
		m.ForceLogout("session expired")
	})
}

// Logout clears persisted state, disarms the watchdog and returns the
// caller to unauthenticated. Safe to call when already logged out.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.disarmLocked()
	m.current = nil
	m.mu.Unlock()
	return m.clear(ctx)
}

// ForceLogout is the convergence point for the expiry watchdog and for
// authorization-failure signals from any request. Whichever fires first
// wins; the second call is a no-op.
func (m *Manager) ForceLogout(reason string) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.disarmLocked()
	m.current = nil
	onLogout := m.onLogout
	m.mu.Unlock()

	ctx := context.Background()
	if err := m.clear(ctx); err != nil {
		m.log.Error(ctx, "clearing persisted session", "err", err)
	}
	m.log.Info(ctx, "forced logout", "reason", reason)
	if onLogout != nil {
		onLogout(reason)
	}
}

func (m *Manager) disarmLocked() {
	if m.watchdog != nil {
		m.watchdog.Stop()
		m.watchdog = nil
	}
}

func (m *Manager) clear(ctx context.Context) error {
	return m.store.Delete(ctx, store.KeyToken, store.KeyIdentity)
}

// Current returns a copy of the adopted session, or nil when
// unauthenticated.
func (m *Manager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// Token is the api.TokenSource: the current token or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// IsAuthenticated reports whether a session is adopted.
func (m *Manager) IsAuthenticated() bool {
	return m.Current() != nil
}
