// Package cli is the terminal front end: a small REPL over the session
// manager, the attendance protocol and the QR session controller.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/api"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/attendance"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/config"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/geo"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/qr"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/session"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/store"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/logging"
)

// authSession is the slice of the session manager the CLI needs.
type authSession interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SelectOrganisation(ctx context.Context, orgID int64) (*models.Session, error)
	Logout(ctx context.Context) error
	Current() *models.Session
}

// attendanceOps is the slice of the attendance service the CLI needs.
type attendanceOps interface {
	CheckInQR(ctx context.Context, code string) (string, error)
	CheckOut(ctx context.Context, confirmation string) (string, error)
	Today(ctx context.Context) (*models.AttendanceRecord, error)
}

// qrController matches *qr.Controller; tests substitute a fake.
type qrController interface {
	Start(ctx context.Context) error
	Resume(ctx context.Context) error
	Retry(ctx context.Context) error
	Stop(ctx context.Context) error
	Close()
	Snapshot() qr.Snapshot
}

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	session    authSession
	attendance attendanceOps
	store      *store.Store
	geo        geo.Provider

	// newController builds a QR controller bound to a render callback.
	// One controller per `qr` invocation; it is not reused.
	newController func(onUpdate func(qr.Snapshot)) qrController
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	st, err := store.Open(ctx, cfg.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	clientID, err := st.ClientID(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("resolving client id: %w", err)
	}

	app := &App{
		config: cfg,
		log:    log,
		out:    os.Stdout,
		reader: bufio.NewReader(os.Stdin),
		store:  st,
	}

	var manager *session.Manager
	restClient := api.NewRESTClient(cfg.ServerBaseURL,
		func() string {
			if manager == nil {
				return ""
			}
			return manager.Token()
		},
		api.WithClientID(clientID),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	manager = session.NewManager(restClient, st, log,
		session.WithLogoutHandler(func(reason string) {
			fmt.Fprintf(app.out, "\nSession ended: %s. Please log in again.\n", reason)
		}),
	)
	// Any 401 from any endpoint converges on the same forced-logout path
	// as the local expiry watchdog.
	restClient.SetAuthFailureHandler(func() {
		manager.ForceLogout("terminated by server")
	})

	var provider geo.Provider
	if cfg.GeoEndpoint != "" {
		provider = geo.NewHTTPProvider(cfg.GeoEndpoint)
	} else {
		provider = geo.NewStatic(cfg.DefaultLatitude, cfg.DefaultLongitude)
	}

	app.session = manager
	app.geo = provider
	app.attendance = attendance.NewService(restClient, provider, st, log,
		attendance.WithGeoTimeout(cfg.CheckInGeoTimeout))
	app.newController = func(onUpdate func(qr.Snapshot)) qrController {
		return qr.NewController(restClient, provider, log, qr.Config{
			TickInterval:   cfg.TickInterval,
			GeoTimeout:     cfg.QRStartGeoTimeout,
			RequestTimeout: cfg.RequestTimeout,
			DefaultAnchor:  geo.Reading{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude},
			DefaultRadius:  cfg.DefaultRadiusMeters,
		}, qr.WithOnUpdate(onUpdate))
	}

	return app, nil
}

// Run restores any persisted session and enters the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.log.Error(ctx, "restoring session", "err", err)
	}

	fmt.Fprintln(a.out, "Smart Attendance CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin), a.out)
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

// status builds the prompt suffix: "email role" when logged in.
func (a *App) status() string {
	current := a.session.Current()
	if current == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", current.Identity.Email, current.Identity.Role)
}
