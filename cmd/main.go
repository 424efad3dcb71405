package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lineup",
		Usage:   "Reorder event playlists and keep scanner links in sync",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Use the REST backend at backend.base_url instead of the local database",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}
