package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/server"
	"github.com/desertthunder/lineup/internal/shared"
)

// Serve runs the REST API over the local database until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.WithLogger(r.logger, "addr", cfg.Addr())
	metrics := server.NewMetrics()
	api := server.NewLineupHandler(db, r.engineOptions(), metrics, r.logger)

	logger.Info("starting API server", "origins", cfg.AllowedOrigins)
	return server.New(cfg, api, metrics, r.logger).Start(ctx)
}
