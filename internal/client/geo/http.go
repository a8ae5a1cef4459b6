package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// HTTPProvider queries a JSON geolocation endpoint (an IP-geolocation
// service or a local positioning daemon). It accepts both
// {"latitude","longitude"} and the common {"lat","lon"} shape.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
}

func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type httpReading struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

func (p *HTTPProvider) Locate(ctx context.Context) (Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", common.ErrLocationUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reading{}, common.ErrLocationTimeout
		}
		return Reading{}, fmt.Errorf("%w: %v", common.ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: provider returned status %d", common.ErrLocationUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", common.ErrLocationUnavailable, err)
	}

	var body httpReading
	if err := json.Unmarshal(raw, &body); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", common.ErrLocationUnavailable, err)
	}

	switch {
	case body.Latitude != nil && body.Longitude != nil:
		return Reading{Latitude: *body.Latitude, Longitude: *body.Longitude}, nil
	case body.Lat != nil && body.Lon != nil:
		return Reading{Latitude: *body.Lat, Longitude: *body.Lon}, nil
	default:
		return Reading{}, fmt.Errorf("%w: no coordinates in response", common.ErrLocationUnavailable)
	}
}
