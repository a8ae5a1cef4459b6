package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/buildinfo"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/cli"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/config"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/logging"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
