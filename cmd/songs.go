package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/formatter"
	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
	"github.com/desertthunder/lineup/internal/tasks"
)

// SongsAdd appends a song to an event's playlist.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	song, err := backend.AddSong(ctx, cmd.String("event"), models.SongBody{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	return r.writePlain("Added %q at position %d (%s)\n", song.Title, song.Position, song.ID)
}

// SongsList renders an event's playlist, or writes it to files with --output.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	eventID := cmd.String("event")

	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	export, err := r.export(ctx, backend, eventID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	if base := cmd.String("output"); base != "" {
		result, err := formatter.WriteExport(export, format, base)
		if err != nil {
			return err
		}
		r.logger.Info("lineup exported", "lineup", result.LineupFile, "metadata", result.MetadataFile)
		return r.writePlain("Wrote %s and %s\n", result.LineupFile, result.MetadataFile)
	}

	data, err := formatter.Export(export, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

func (r *Runner) export(ctx context.Context, backend Backend, eventID string) (*formatter.LineupExport, error) {
	events, err := backend.Events(ctx)
	if err != nil {
		return nil, err
	}

	export := &formatter.LineupExport{}
	for _, e := range events {
		if e.ID == eventID {
			export.Event = e
		}
	}
	if export.Event.ID == "" {
		return nil, shared.NewNotFound("event", eventID)
	}

	if export.Songs, err = backend.Songs(ctx, eventID); err != nil {
		return nil, err
	}
	return export, nil
}

// moveRequest builds the request named by exactly one of --up, --down and --to.
func moveRequest(cmd *cli.Command) (models.MoveRequest, error) {
	id := cmd.String("id")
	up, down, to := cmd.Bool("up"), cmd.Bool("down"), cmd.Int("to")

	set := 0
	for _, ok := range []bool{up, down, cmd.IsSet("to")} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return models.MoveRequest{}, fmt.Errorf("%w: exactly one of --up, --down or --to is required", shared.ErrInvalidFlag)
	}

	switch {
	case up:
		return models.MoveUp(id), nil
	case down:
		return models.MoveDown(id), nil
	default:
		return models.MoveTo(id, to), nil
	}
}

// SongsMove moves one song and prints the updated playlist.
func (r *Runner) SongsMove(ctx context.Context, cmd *cli.Command) error {
	req, err := moveRequest(cmd)
	if err != nil {
		return err
	}

	_, engine, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	progress, done := r.logProgress()
	result, err := engine.Move(ctx, cmd.String("event"), req, progress)
	close(progress)
	<-done
	if errors.Is(err, shared.ErrNoChange) {
		return r.writePlain("Song %s is already as close to position %d as it can be.\n", req.ID, req.TargetPosition())
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.ItemsBody{Items: result.After}, cmd.Bool("pretty"))
	}
	r.writePlain("%s\n\n", formatter.FormatMove(result))
	return r.writePlain("%s\n", formatter.FormatItems(result.After))
}

// SongsRemove removes a song; the rest of the playlist is renumbered.
func (r *Runner) SongsRemove(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	if err := backend.RemoveSong(ctx, cmd.String("event"), cmd.String("id")); err != nil {
		return err
	}
	return r.writePlain("Removed song %s\n", cmd.String("id"))
}

// logProgress returns a progress channel drained into the debug log. done closes once the channel is closed and drained.
func (r *Runner) logProgress() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()
	return progress, done
}
