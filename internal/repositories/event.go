package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// EventRepository implements models.Repository[*models.Event].
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository with the given database connection
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, sequence, name, venue, starts_at, created_at, updated_at, deleted_at`

// Create inserts a new event with a generated ID and sequence
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	sequence, err := NextSequence(ctx, r.db, "events")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	event.SetID(shared.GenerateID())
	event.SetSequence(sequence)

	if err := event.Validate(); err != nil {
		return shared.NewInvalidInput("%v", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (id, sequence, name, venue, starts_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, event.ID(), sequence, event.Name, event.Venue, event.StartsAt, event.CreatedAt(), event.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID, excluding soft-deleted events
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ? AND deleted_at IS NULL`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, shared.NewNotFound("event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

// Update modifies an event's name, venue and start time
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return shared.NewInvalidInput("%v", err)
	}

	now := time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE events SET name = ?, venue = ?, starts_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, event.Name, event.Venue, event.StartsAt, now, event.ID())
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if err := checkAffected(result, shared.NewNotFound("event", event.ID())); err != nil {
		return err
	}

	event.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an event by ID
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(result, shared.NewNotFound("event", id))
}

// List retrieves events ordered by sequence. Supported criteria: "venue".
func (r *EventRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE deleted_at IS NULL`
	args := []any{}

	if venue, ok := criteria["venue"].(string); ok && venue != "" {
		query += " AND venue = ?"
		args = append(args, venue)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

// scanner abstracts [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		id, name, venue      string
		sequence             int
		startsAt, deletedAt  sql.NullTime
		createdAt, updatedAt time.Time
	)
	if err := s.Scan(&id, &sequence, &name, &venue, &startsAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	event := models.NewEvent(sequence, name, venue, nil)
	if startsAt.Valid {
		event.StartsAt = &startsAt.Time
	}
	event.SetID(id)
	event.SetCreatedAt(createdAt)
	event.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		event.SetDeletedAt(&deletedAt.Time)
	}
	return event, nil
}
