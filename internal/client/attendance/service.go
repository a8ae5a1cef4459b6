// Package attendance implements the check-in / check-out protocol. It
// binds a decoded code to a geolocation reading and submits both in one
// call; the backend owns the geofence check and the one-open-record-per-day
// invariant, and its conflict messages are surfaced verbatim.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/api"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/geo"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/store"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/logging"
)

// Cache is the slice of the state store the service needs for the cached
// "today" record.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Service struct {
	client     api.Client
	geo        geo.Provider
	cache      Cache
	log        logging.Logger
	geoTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGeoTimeout bounds geolocation acquisition for check-in.
func WithGeoTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.geoTimeout = d }
}

func NewService(client api.Client, provider geo.Provider, cache Cache, log logging.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		client:     client,
		geo:        provider,
		cache:      cache,
		log:        log,
		geoTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckInQR obtains a geolocation reading and submits the decoded code.
// Unlike QR session start there is no default coordinate here: the reading
// is the basis of the server's geofence check, so failing to obtain one is
// a hard local failure and the network is never reached.
//
// The returned message is the server's own; rapid repeated submissions are
// not de-duplicated here, the backend's one-open-record-per-day rule
// rejects the second one and that rejection is surfaced as-is.
func (s *Service) CheckInQR(ctx context.Context, code string) (string, error) {
	reading, err := geo.Acquire(ctx, s.geo, s.geoTimeout)
	if err != nil {
		return "", fmt.Errorf("cannot determine your location: %w", err)
	}

	message, err := s.client.CheckInQR(ctx, code, reading.Latitude, reading.Longitude)
	if err != nil {
		return "", err
	}

	// Best-effort refresh of the cached today view; the check-in already
	// succeeded, so a failure here is only logged.
	if _, err := s.Today(ctx); err != nil {
		s.log.Warn(ctx, "refreshing today attendance after check-in", "err", err)
	}
	return message, nil
}

// CheckOut closes today's open record. Check-out cannot be undone, so the
// caller must supply the typed confirmation phrase first; without it no
// request is sent.
func (s *Service) CheckOut(ctx context.Context, confirmation string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(confirmation), common.CheckOutConfirmationPhrase) {
		return "", common.ErrConfirmationMismatch
	}

	message, err := s.client.CheckOut(ctx)
	if err != nil {
		return "", err
	}

	if _, err := s.Today(ctx); err != nil {
		s.log.Warn(ctx, "refreshing today attendance after check-out", "err", err)
	}
	return message, nil
}

// Today fetches today's attendance record (nil when none) and caches it.
// When the server is unreachable the last cached record is served so the
// dashboard still renders offline.
func (s *Service) Today(ctx context.Context) (*models.AttendanceRecord, error) {
	record, err := s.client.TodayAttendance(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			if cached := s.cachedToday(ctx); cached != nil {
				s.log.Warn(ctx, "server unreachable, serving cached today record")
				return cached, nil
			}
		}
		return nil, err
	}

	raw, merr := json.Marshal(record)
	if merr == nil {
		if cerr := s.cache.Set(ctx, store.KeyToday, raw); cerr != nil {
			s.log.Warn(ctx, "caching today attendance", "err", cerr)
		}
	}
	return record, nil
}

func (s *Service) cachedToday(ctx context.Context) *models.AttendanceRecord {
	raw, err := s.cache.Get(ctx, store.KeyToday)
	if err != nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var record models.AttendanceRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil
	}
	return &record
}
