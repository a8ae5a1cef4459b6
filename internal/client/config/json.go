package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/flagx"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so the file can say "5s" instead of nanoseconds.
type jsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	StateDBPath         string         `json:"state_db_path"`
	GeoEndpoint         string         `json:"geo_endpoint"`
	ScannerDevice       string         `json:"scanner_device"`
	DefaultLatitude     *float64       `json:"default_latitude"`
	DefaultLongitude    *float64       `json:"default_longitude"`
	DefaultRadiusMeters int            `json:"default_radius_meters"`
	QRStartGeoTimeout   timex.Duration `json:"qr_start_geo_timeout"`
	CheckInGeoTimeout   timex.Duration `json:"check_in_geo_timeout"`
	TickInterval        timex.Duration `json:"tick_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

// parseJSON overlays cfg with values loaded from the JSON file given via
// -c/-config. Absent fields keep their current values. Read or unmarshal
// errors panic; config problems should stop startup loudly.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.StateDBPath != "" {
		cfg.StateDBPath = jc.StateDBPath
	}
	if jc.GeoEndpoint != "" {
		cfg.GeoEndpoint = jc.GeoEndpoint
	}
	if jc.ScannerDevice != "" {
		cfg.ScannerDevice = jc.ScannerDevice
	}
	if jc.DefaultLatitude != nil {
		cfg.DefaultLatitude = *jc.DefaultLatitude
	}
	if jc.DefaultLongitude != nil {
		cfg.DefaultLongitude = *jc.DefaultLongitude
	}
	if jc.DefaultRadiusMeters > 0 {
		cfg.DefaultRadiusMeters = jc.DefaultRadiusMeters
	}
	if jc.QRStartGeoTimeout.Duration > 0 {
		cfg.QRStartGeoTimeout = time.Duration(jc.QRStartGeoTimeout.Duration)
	}
	if jc.CheckInGeoTimeout.Duration > 0 {
		cfg.CheckInGeoTimeout = time.Duration(jc.CheckInGeoTimeout.Duration)
	}
	if jc.TickInterval.Duration > 0 {
		cfg.TickInterval = time.Duration(jc.TickInterval.Duration)
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
