// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func eventFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "event",
		Aliases:  []string{"e"},
		Usage:    "Event ID",
		Required: true,
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// eventsCommand handles event operations
func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Manage events",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an event",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Event name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "venue",
						Usage: "Venue name",
					},
					&cli.StringFlag{
						Name:  "starts-at",
						Usage: "Start time (RFC 3339)",
					},
				}, jsonFlags()...),
				Action: r.EventsCreate,
			},
			{
				Name:   "list",
				Usage:  "List events",
				Flags:  jsonFlags(),
				Action: r.EventsList,
			},
		},
	}
}

// songsCommand handles playlist operations
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage an event's playlist",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Append a song to the playlist",
				Flags: append([]cli.Flag{
					eventFlag(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Song artist",
					},
				}, jsonFlags()...),
				Action: r.SongsAdd,
			},
			{
				Name:  "list",
				Usage: "Show the playlist in position order",
				Flags: append([]cli.Flag{
					eventFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown or csv",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the lineup and its metadata to files with this base path",
					},
				}, jsonFlags()...),
				Action: r.SongsList,
			},
			{
				Name:  "move",
				Usage: "Move a song one slot up or down, or to a position",
				Flags: append([]cli.Flag{
					eventFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Song ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "up",
						Usage: "Move one slot towards the start",
					},
					&cli.BoolFlag{
						Name:  "down",
						Usage: "Move one slot towards the end",
					},
					&cli.IntFlag{
						Name:  "to",
						Usage: "Target position (1-based, clamped to the playlist)",
					},
				}, jsonFlags()...),
				Action: r.SongsMove,
			},
			{
				Name:  "remove",
				Usage: "Remove a song and renumber the rest",
				Flags: []cli.Flag{
					eventFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Song ID",
						Required: true,
					},
				},
				Action: r.SongsRemove,
			},
		},
	}
}

// scannersCommand handles scanner and assignment operations
func scannersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scanners",
		Usage: "Manage scanners and their event links",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a scanner",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Scanner name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "serial",
						Usage:    "Device serial number",
						Required: true,
					},
				}, jsonFlags()...),
				Action: r.ScannersCreate,
			},
			{
				Name:   "list",
				Usage:  "List scanners",
				Flags:  jsonFlags(),
				Action: r.ScannersList,
			},
			{
				Name:      "link",
				Usage:     "Link scanners to an event; each scanner succeeds or fails on its own",
				ArgsUsage: "SCANNER_ID...",
				Flags:     append([]cli.Flag{eventFlag()}, jsonFlags()...),
				Action:    r.ScannersLink,
			},
			{
				Name:  "sync",
				Usage: "Link and unlink scanners so the event has exactly the given set",
				Flags: append([]cli.Flag{
					eventFlag(),
					&cli.StringSliceFlag{
						Name:    "scanner",
						Aliases: []string{"s"},
						Usage:   "Scanner ID to keep linked (repeatable); none unlinks all",
					},
				}, jsonFlags()...),
				Action: r.ScannersSync,
			},
			{
				Name:  "unlink",
				Usage: "Remove one assignment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "assignment",
						Aliases:  []string{"a"},
						Usage:    "Assignment ID",
						Required: true,
					},
				},
				Action: r.ScannersUnlink,
			},
			{
				Name:   "assignments",
				Usage:  "Show an event's scanner links",
				Flags:  append([]cli.Flag{eventFlag()}, jsonFlags()...),
				Action: r.ScannersAssignments,
			},
		},
	}
}

// serveCommand starts the REST API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the REST API over the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist reordering.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for reordering a playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event",
				Aliases: []string{"e"},
				Usage:   "Open this event directly",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI runs",
				Value: "./tmp/lineup-tui.log",
			},
		},
		Action: r.TUI,
	}
}
