// Package qr owns the lifecycle of one rotating attendance QR session:
// start, display, automatic refresh when the expiry passes, stop.
//
// The refresh trigger is purely time-driven: a one-second tick recomputes
// the countdown and, the moment it reaches zero, fetches the replacement
// session. Rotation does not depend on anyone scanning. The countdown
// update and the refresh check happen in the same tick handler, and all
// ticks are processed serially, so a refresh can never run ahead of the
// most recently published countdown.
package qr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/api"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/geo"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/logging"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateActive
	StateRefreshing
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateRefreshing:
		return "refreshing"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a point-in-time view of the controller for rendering.
// Remaining is clamped to zero so the display never shows a negative
// countdown.
type Snapshot struct {
	State     State
	Session   *models.QRSession
	Remaining time.Duration
	Err       error
}

// Config carries the controller's tunables.
type Config struct {
	TickInterval   time.Duration
	GeoTimeout     time.Duration
	RequestTimeout time.Duration
	DefaultAnchor  geo.Reading
	DefaultRadius  int
}

func (c *Config) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.GeoTimeout <= 0 {
		c.GeoTimeout = 5 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 12 * time.Second
	}
	if c.DefaultRadius <= 0 {
		c.DefaultRadius = 100
	}
}

// Controller drives one QR session for one admin view. Create one per
// view; it is not reusable after Stop.
type Controller struct {
	client api.Client
	geo    geo.Provider
	log    logging.Logger
	cfg    Config
	now    func() time.Time

	onUpdate func(Snapshot)

	mu      sync.Mutex
	state   State
	session *models.QRSession
	cause   error
	done    chan struct{}
	stopped bool
	closed  bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithOnUpdate registers the render callback, invoked after every state
// transition and every countdown tick.
func WithOnUpdate(fn func(Snapshot)) ControllerOption {
	return func(c *Controller) { c.onUpdate = fn }
}

func NewController(client api.Client, provider geo.Provider, log logging.Logger, cfg Config, opts ...ControllerOption) *Controller {
	cfg.applyDefaults()
	c := &Controller{
		client: client,
		geo:    provider,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start ensures an active session exists and begins the tick loop. The
// server enforces at most one active session per organisation, so starting
// after a reload adopts the existing session rather than replacing it.
//
// The geo anchor is fixed here from a best-effort reading; a failed or
// slow reading falls back to the configured default so session creation is
// never blocked on geolocation.
func (c *Controller) Start(ctx context.Context) error {
	return c.begin(ctx, func(rctx context.Context) (*models.QRSession, error) {
		anchor, err := geo.AcquireOrDefault(ctx, c.geo, c.cfg.GeoTimeout, c.cfg.DefaultAnchor)
		if err != nil {
			c.log.Warn(ctx, "geolocation failed, using default anchor", "err", err)
		}
		return c.client.StartQRSession(rctx, anchor.Latitude, anchor.Longitude, c.cfg.DefaultRadius)
	})
}

// Resume adopts the already-active session without creating one. Used when
// the display view is reopened.
func (c *Controller) Resume(ctx context.Context) error {
	return c.begin(ctx, c.client.CurrentQRSession)
}

// Retry re-fetches after an error, leaving the controller alive.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Resume(ctx)
}

func (c *Controller) begin(ctx context.Context, fetch func(context.Context) (*models.QRSession, error)) error {
	c.mu.Lock()
	if c.stopped || c.closed {
		c.mu.Unlock()
		return fmt.Errorf("qr controller is %s", c.state)
	}
	if c.state == StateActive || c.state == StateRefreshing || c.state == StateLoading {
		c.mu.Unlock()
		return nil
	}
	c.state = StateLoading
	c.cause = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	session, err := fetch(rctx)
	cancel()

	c.mu.Lock()
	if c.stopped || c.closed {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.state = StateError
		c.cause = err
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
		return err
	}
	c.session = session
	c.state = StateActive
	c.startLoopLocked(ctx)
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
	return nil
}

// startLoopLocked launches the tick loop if it is not already running.
// Caller holds c.mu.
func (c *Controller) startLoopLocked(ctx context.Context) {
	if c.done != nil {
		return
	}
	done := make(chan struct{})
	c.done = done
	go c.run(ctx, done)
}

func (c *Controller) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick recomputes the countdown and refreshes the session the moment the
// countdown reaches zero. Ticks run serially on the loop goroutine.
func (c *Controller) tick(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateActive && c.state != StateRefreshing {
		c.mu.Unlock()
		return
	}
	remaining := c.session.ExpiresAt.Sub(c.now())
	if c.state == StateActive && remaining > 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
		return
	}

	// Countdown hit zero: the held session is spent and must be replaced.
	prevExpiry := c.session.ExpiresAt.Time
	c.state = StateRefreshing
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	session, err := c.client.CurrentQRSession(rctx)
	cancel()

	c.mu.Lock()
	if c.stopped || c.closed {
		c.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		// Keep the controller alive: the admin may retry or stop. The
		// loop is halted so the error state is stable until then.
		c.state = StateError
		c.cause = err
		c.haltLoopLocked()
	case !session.ExpiresAt.After(prevExpiry):
		// The server has not rotated yet; stay refreshing and try again
		// on the next tick. Never re-enter Active with an older expiry.
		c.log.Warn(ctx, "server returned unrotated session", "expiresAt", session.ExpiresAt)
	default:
		c.session = session
		c.state = StateActive
		c.cause = nil
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Stop ends the session server-side and tears down the tick loop. The
// loop is torn down before the server call is issued, so no refresh can
// fire after a stop is requested even if the call is slow or fails.
// Calling Stop again is a no-op with no further server call.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.state = StateStopped
	c.haltLoopLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	if err := c.client.StopQRSession(rctx); err != nil {
		c.log.Error(ctx, "stopping QR session server-side", "err", err)
		return err
	}
	return nil
}

// Close tears down the tick loop without a server call: the display went
// away but the session may keep running until explicitly stopped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.haltLoopLocked()
}

func (c *Controller) haltLoopLocked() {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

// Snapshot returns the current view of the controller.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Err: c.cause}
	if c.session != nil {
		copied := *c.session
		snap.Session = &copied
		if remaining := c.session.ExpiresAt.Sub(c.now()); remaining > 0 {
			snap.Remaining = remaining
		}
	}
	return snap
}

func (c *Controller) emit(snap Snapshot) {
	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}
