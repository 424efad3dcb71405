package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/ordering"
	"github.com/desertthunder/lineup/internal/shared"
)

// SongRepository persists event playlists.
//
// Positions within an event are always 1..N; every write that moves, adds or removes a song keeps them that way.
// It implements the ordered-list source consumed by the reorder engine, with the event ID as the list ID.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = `id, event_id, title, artist, position, created_at, updated_at`

// Create appends a song to the end of its event's playlist and sets its position.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	song.SetID(shared.GenerateID())

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := eventExists(ctx, tx, song.EventID); err != nil {
			return err
		}

		var last int
		err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM songs WHERE event_id = ?`, song.EventID).Scan(&last)
		if err != nil {
			return fmt.Errorf("failed to read playlist length: %w", err)
		}
		song.Position = last + 1

		if err := song.Validate(); err != nil {
			return shared.NewInvalidInput("%v", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO songs (id, event_id, title, artist, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, song.ID(), song.EventID, song.Title, song.Artist, song.Position, song.CreatedAt(), song.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert song: %w", err)
		}
		return nil
	})
}

// Get retrieves a song by ID
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)

	song, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, shared.NewNotFound("song", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return song, nil
}

// Update changes a song's title and artist. Positions only change through [SongRepository.SubmitPositions].
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return shared.NewInvalidInput("%v", err)
	}

	now := time.Now()
	result, err := r.db.ExecContext(ctx, `UPDATE songs SET title = ?, artist = ?, updated_at = ? WHERE id = ?`,
		song.Title, song.Artist, now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	if err := checkAffected(result, shared.NewNotFound("song", song.ID())); err != nil {
		return err
	}

	song.SetUpdatedAt(now)
	return nil
}

// Delete removes a song and closes the gap it leaves in the playlist.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var eventID string
		err := tx.QueryRowContext(ctx, `DELETE FROM songs WHERE id = ? RETURNING event_id`, id).Scan(&eventID)
		if err == sql.ErrNoRows {
			return shared.NewNotFound("song", id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete song: %w", err)
		}

		items, err := loadItems(ctx, tx, eventID)
		if err != nil {
			return err
		}
		return writePositions(ctx, tx, eventID, ordering.Renumber(items))
	})
}

// List retrieves songs in playlist order. Supported criteria: "event_id".
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs`
	args := []any{}

	if eventID, ok := criteria["event_id"].(string); ok && eventID != "" {
		query += " WHERE event_id = ?"
		args = append(args, eventID)
	}
	query += " ORDER BY event_id, position ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// ListByEvent retrieves an event's playlist, failing when the event does not exist.
func (r *SongRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Song, error) {
	if err := eventExists(ctx, r.db, eventID); err != nil {
		return nil, err
	}
	return r.List(ctx, map[string]any{"event_id": eventID})
}

// Items returns the playlist of eventID as ordered items.
func (r *SongRepository) Items(ctx context.Context, eventID string) ([]models.OrderedItem, error) {
	if err := eventExists(ctx, r.db, eventID); err != nil {
		return nil, err
	}
	return loadItems(ctx, r.db, eventID)
}

// SubmitPositions applies updates to the playlist of eventID atomically.
//
// The result must still be 1..N; otherwise nothing is written and an [shared.InvalidInputError] is returned.
func (r *SongRepository) SubmitPositions(ctx context.Context, eventID string, updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if u.NewPosition < 1 {
			return shared.NewInvalidInput("position %d for song %q must be at least 1", u.NewPosition, u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			return shared.NewInvalidInput("song %q updated more than once", u.ID)
		}
		seen[u.ID] = struct{}{}
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := eventExists(ctx, tx, eventID); err != nil {
			return err
		}
		if err := writePositions(ctx, tx, eventID, updates); err != nil {
			return err
		}

		items, err := loadItems(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := ordering.Validate(items); err != nil {
			return shared.NewInvalidInput("updates leave playlist %s out of order: %v", eventID, err)
		}
		return nil
	})
}

// writePositions stores updates in two phases: targets are first written negated, then flipped.
// No intermediate state collides with the unique (event_id, position) index unless two updates share a target.
func writePositions(ctx context.Context, tx *sql.Tx, eventID string, updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE songs SET position = ? WHERE id = ? AND event_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare position update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, -u.NewPosition, u.ID, eventID)
		if isUniqueViolation(err) {
			return shared.NewInvalidInput("more than one song targets position %d", u.NewPosition)
		}
		if err != nil {
			return fmt.Errorf("failed to stage position for song %s: %w", u.ID, err)
		}
		if err := checkAffected(result, shared.NewNotFound("song", u.ID)); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE songs SET position = -position, updated_at = ? WHERE event_id = ? AND position < 0`,
		time.Now(), eventID)
	if isUniqueViolation(err) {
		return shared.NewInvalidInput("updates collide with unchanged positions in playlist %s", eventID)
	}
	if err != nil {
		return fmt.Errorf("failed to commit staged positions: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadItems(ctx context.Context, q querier, eventID string) ([]models.OrderedItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, position FROM songs WHERE event_id = ? ORDER BY position ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	defer rows.Close()

	items := []models.OrderedItem{}
	for rows.Next() {
		var it models.OrderedItem
		if err := rows.Scan(&it.ID, &it.Position); err != nil {
			return nil, fmt.Errorf("failed to scan playlist item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func eventExists(ctx context.Context, q querier, eventID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? AND deleted_at IS NULL`, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return shared.NewNotFound("event", eventID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up event: %w", err)
	}
	return nil
}

func scanSong(s scanner) (*models.Song, error) {
	var (
		id, eventID, title, artist string
		position                   int
		createdAt, updatedAt       time.Time
	)
	if err := s.Scan(&id, &eventID, &title, &artist, &position, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	song := models.NewSong(eventID, title, artist)
	song.SetID(id)
	song.Position = position
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	return song, nil
}
