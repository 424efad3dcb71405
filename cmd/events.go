package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/models"
)

// EventsCreate creates an event.
func (r *Runner) EventsCreate(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	event, err := backend.CreateEvent(ctx, models.EventBody{
		Name:     cmd.String("name"),
		Venue:    cmd.String("venue"),
		StartsAt: cmd.String("starts-at"),
	})
	if err != nil {
		return err
	}
	r.logger.Info("event created", "id", event.ID, "name", event.Name)

	if cmd.Bool("json") {
		return r.writeJSON(event, cmd.Bool("pretty"))
	}
	return r.writePlain("Created event %s (%s)\n", event.Name, event.ID)
}

// EventsList lists events.
func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	events, err := backend.Events(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(events, cmd.Bool("pretty"))
	}

	if len(events) == 0 {
		return r.writePlain("No events.\n")
	}
	for _, e := range events {
		r.writePlain("%s  %s", e.ID, e.Name)
		if e.Venue != "" {
			r.writePlain(" @ %s", e.Venue)
		}
		if e.StartsAt != "" {
			r.writePlain(" (%s)", e.StartsAt)
		}
		r.writePlain("\n")
	}
	return nil
}
