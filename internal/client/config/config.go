package config

import "time"

// Config holds runtime settings for the attendance CLI.
type Config struct {
	// ServerBaseURL is the backend REST root, e.g. "http://localhost:8080/api".
	ServerBaseURL string

	// StateDBPath is the sqlite file holding the persisted session and caches.
	StateDBPath string

	// GeoEndpoint, when set, is a JSON geolocation service queried for the
	// device position. When empty the default coordinates are used as a
	// fixed position.
	GeoEndpoint string

	// ScannerDevice, when set, is a line-oriented device to read decoded
	// codes from (a serial QR scanner). When empty codes are typed or
	// pasted at the prompt.
	ScannerDevice string

	// DefaultLatitude/DefaultLongitude/DefaultRadiusMeters anchor a QR
	// session when no geolocation reading is available.
	DefaultLatitude     float64
	DefaultLongitude    float64
	DefaultRadiusMeters int

	// QRStartGeoTimeout bounds geolocation for starting a QR session
	// (falls back to the default anchor). CheckInGeoTimeout bounds it for
	// check-in (hard failure).
	QRStartGeoTimeout time.Duration
	CheckInGeoTimeout time.Duration

	// TickInterval is the QR countdown recompute interval.
	TickInterval time.Duration

	// RequestTimeout bounds individual backend requests.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api"
	c.StateDBPath = "attendance.db"
	c.DefaultLatitude = 5.6037
	c.DefaultLongitude = -0.187
	c.DefaultRadiusMeters = 100
	c.QRStartGeoTimeout = 5 * time.Second
	c.CheckInGeoTimeout = 10 * time.Second
	c.TickInterval = time.Second
	c.RequestTimeout = 12 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
