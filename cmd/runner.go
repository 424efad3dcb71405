package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/services"
	"github.com/desertthunder/lineup/internal/shared"
	"github.com/desertthunder/lineup/internal/tasks"
	"github.com/desertthunder/lineup/internal/ui"
)

// Backend is everything the commands read and write: the local database or a remote lineup server.
type Backend interface {
	tasks.ListSource
	tasks.AssignmentSource
	ui.Catalog

	CreateEvent(ctx context.Context, event models.EventBody) (models.EventBody, error)
	AddSong(ctx context.Context, eventID string, song models.SongBody) (models.SongBody, error)
	RemoveSong(ctx context.Context, eventID, songID string) error
	Scanners(ctx context.Context) ([]models.ScannerBody, error)
	CreateScanner(ctx context.Context, scanner models.ScannerBody) (models.ScannerBody, error)
}

var _ Backend = (*services.BackendClient)(nil)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, backend and engine are opened on first use so commands that need none of them
// (setup, help) never touch the database file.
type Runner struct {
	config     *shared.Config
	configPath string
	remote     bool
	db         *sql.DB
	backend    Backend
	engine     *tasks.LineupEngine
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Backend    Backend
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		backend:    opts.Backend,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, eventsCommand, songsCommand, scannersCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --remote and the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	r.remote = cmd.Bool("remote") || r.config.Backend.Mode == shared.BackendRemote
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. to keep log output away from the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// database opens the configured database and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// lineup returns the backend selected by configuration and the engine that drives it.
func (r *Runner) lineup(ctx context.Context) (Backend, *tasks.LineupEngine, error) {
	if r.backend == nil {
		if r.remote {
			r.logger.Debug("using remote backend", "url", r.config.Backend.BaseURL)
			r.backend = services.NewBackendClientFromConfig(ctx, r.config.Backend)
		} else {
			db, err := r.database()
			if err != nil {
				return nil, nil, err
			}
			r.backend = newLocalBackend(db)
		}
	}

	if r.engine == nil {
		r.engine = tasks.NewLineupEngine(r.backend, r.backend, r.engineOptions())
	}
	return r.backend, r.engine, nil
}

func (r *Runner) engineOptions() tasks.Options {
	return tasks.Options{
		Workers:   r.config.Sync.Workers,
		RateLimit: r.config.Sync.RateLimit,
		Logger:    r.logger,
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
