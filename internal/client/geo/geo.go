// Package geo is the geolocation capability boundary: a single best-effort
// (latitude, longitude) reading, or a failure with a reason. Acquisition is
// always bounded by a timeout so callers never hang on a silent provider.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// Reading is one geolocation fix.
type Reading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Provider yields the device's current position. Implementations map their
// failures onto common.ErrLocationUnavailable / common.ErrLocationTimeout.
type Provider interface {
	Locate(ctx context.Context) (Reading, error)
}

// Static always returns a fixed reading. Used for kiosk installs with a
// configured position, and as the default when no provider is configured.
type Static struct {
	reading Reading
}

func NewStatic(latitude, longitude float64) *Static {
	return &Static{reading: Reading{Latitude: latitude, Longitude: longitude}}
}

func (s *Static) Locate(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, mapContextErr(err)
	}
	return s.reading, nil
}

// Acquire obtains one reading within the given timeout. The timeout bound
// is what keeps check-in from hanging on a denied or silent provider.
func Acquire(ctx context.Context, p Provider, timeout time.Duration) (Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reading, err := p.Locate(ctx)
	if err != nil {
		return Reading{}, mapContextErr(err)
	}
	return reading, nil
}

// AcquireOrDefault is Acquire with a fallback, for callers where a missing
// reading must not block (QR session start). The failure is reported to the
// caller so it can be logged, never escalated.
func AcquireOrDefault(ctx context.Context, p Provider, timeout time.Duration, fallback Reading) (Reading, error) {
	reading, err := Acquire(ctx, p, timeout)
	if err != nil {
		return fallback, err
	}
	return reading, nil
}

func mapContextErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrLocationTimeout
	case errors.Is(err, context.Canceled):
		return common.ErrLocationUnavailable
	default:
		return err
	}
}
