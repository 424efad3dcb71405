package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lineup/internal/formatter"
	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// ScannersCreate registers a scanner.
func (r *Runner) ScannersCreate(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	scanner, err := backend.CreateScanner(ctx, models.ScannerBody{
		Name:   cmd.String("name"),
		Serial: cmd.String("serial"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(scanner, cmd.Bool("pretty"))
	}
	return r.writePlain("Created scanner %s (%s)\n", scanner.Name, scanner.ID)
}

// ScannersList lists scanners.
func (r *Runner) ScannersList(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	scanners, err := backend.Scanners(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(scanners, cmd.Bool("pretty"))
	}
	if len(scanners) == 0 {
		return r.writePlain("No scanners.\n")
	}
	for _, s := range scanners {
		r.writePlain("%s  %s [%s]\n", s.ID, s.Name, s.Serial)
	}
	return nil
}

// ScannersLink links the scanner IDs given as arguments to an event.
//
// Each scanner is reported on its own; the command fails only when every link failed.
func (r *Runner) ScannersLink(ctx context.Context, cmd *cli.Command) error {
	scannerIDs := cmd.Args().Slice()
	if len(scannerIDs) == 0 {
		return fmt.Errorf("%w: at least one scanner ID is required", shared.ErrMissingArgument)
	}

	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	outcomes, err := backend.Link(ctx, cmd.String("event"), scannerIDs)
	if err != nil {
		return err
	}

	result := &reconcile.Result{OwnerID: cmd.String("event")}
	for _, o := range outcomes {
		result.Record(o)
	}
	return r.writeSyncResult(cmd, result)
}

// ScannersSync links and unlinks scanners so the event has exactly the --scanner set.
func (r *Runner) ScannersSync(ctx context.Context, cmd *cli.Command) error {
	_, engine, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	progress, done := r.logProgress()
	result, err := engine.SyncAssignments(ctx, cmd.String("event"), cmd.StringSlice("scanner"), progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}
	return r.writeSyncResult(cmd, result)
}

func (r *Runner) writeSyncResult(cmd *cli.Command, result *reconcile.Result) error {
	if cmd.Bool("json") {
		if err := r.writeJSON(result.Body(), cmd.Bool("pretty")); err != nil {
			return err
		}
	} else if err := r.writePlain("%s\n", formatter.FormatSync(result)); err != nil {
		return err
	}

	if result.Status() == reconcile.AllFailed {
		return fmt.Errorf("%w: no scanner links were updated", shared.ErrAPIRequest)
	}
	return nil
}

// ScannersUnlink removes one assignment.
func (r *Runner) ScannersUnlink(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	id := cmd.String("assignment")
	if err := backend.Unlink(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Removed assignment %s\n", id)
}

// ScannersAssignments shows an event's scanner links.
func (r *Runner) ScannersAssignments(ctx context.Context, cmd *cli.Command) error {
	backend, _, err := r.lineup(ctx)
	if err != nil {
		return err
	}

	assignments, err := backend.Assignments(ctx, cmd.String("event"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.AssignmentsBody{Assignments: assignments}, cmd.Bool("pretty"))
	}
	if len(assignments) == 0 {
		return r.writePlain("No scanners linked.\n")
	}
	for _, a := range assignments {
		r.writePlain("%s  scanner %s\n", a.AssignmentID, a.MemberID)
	}
	return nil
}
