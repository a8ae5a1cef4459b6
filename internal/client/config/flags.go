package config

import (
	"flag"
	"os"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend REST API
//	-s string   path to the sqlite state database
//	-g string   geolocation endpoint URL
//	-r string   line-oriented scanner device path
//
// Only these flags are parsed here; flagx.FilterArgs keeps the -c/-config
// flags (handled by the JSON stage) from interfering.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-g", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend REST API")
	fs.StringVar(&cfg.StateDBPath, "s", cfg.StateDBPath, "path to the sqlite state database")
	fs.StringVar(&cfg.GeoEndpoint, "g", cfg.GeoEndpoint, "geolocation endpoint URL")
	fs.StringVar(&cfg.ScannerDevice, "r", cfg.ScannerDevice, "scanner device path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
