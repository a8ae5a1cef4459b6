package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"client"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	require.Equal(t, "http://localhost:8080/api", cfg.ServerBaseURL)
	require.Equal(t, "attendance.db", cfg.StateDBPath)
	require.Equal(t, 5.6037, cfg.DefaultLatitude)
	require.Equal(t, -0.187, cfg.DefaultLongitude)
	require.Equal(t, 100, cfg.DefaultRadiusMeters)
	require.Equal(t, 5*time.Second, cfg.QRStartGeoTimeout)
	require.Equal(t, 10*time.Second, cfg.CheckInGeoTimeout)
	require.Equal(t, time.Second, cfg.TickInterval)
	require.Equal(t, 12*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_NoSources(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8080/api", cfg.ServerBaseURL)
}

func TestLoadConfig_JSONOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "https://attendance.example.org/api",
		"default_latitude": 51.5,
		"default_longitude": -0.12,
		"qr_start_geo_timeout": "3s",
		"check_in_geo_timeout": 15000000000
	}`), 0o600))
	withArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, "https://attendance.example.org/api", cfg.ServerBaseURL)
	require.Equal(t, 51.5, cfg.DefaultLatitude)
	require.Equal(t, -0.12, cfg.DefaultLongitude)
	require.Equal(t, 3*time.Second, cfg.QRStartGeoTimeout)
	require.Equal(t, 15*time.Second, cfg.CheckInGeoTimeout)

	// Fields absent from the file keep their defaults.
	require.Equal(t, "attendance.db", cfg.StateDBPath)
	require.Equal(t, 100, cfg.DefaultRadiusMeters)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "https://from-json.example.org/api",
		"state_db_path": "/var/lib/attendance/state.db"
	}`), 0o600))
	withArgs(t, "-c", path, "-a", "https://from-flag.example.org/api", "-g", "http://localhost:9999/loc")

	cfg := LoadConfig()
	require.Equal(t, "https://from-flag.example.org/api", cfg.ServerBaseURL)
	require.Equal(t, "/var/lib/attendance/state.db", cfg.StateDBPath)
	require.Equal(t, "http://localhost:9999/loc", cfg.GeoEndpoint)
}

func TestLoadConfig_ScannerDeviceFlag(t *testing.T) {
	withArgs(t, "-r", "/dev/ttyACM0")

	cfg := LoadConfig()
	require.Equal(t, "/dev/ttyACM0", cfg.ScannerDevice)
}
