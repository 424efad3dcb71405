package main

import (
	"context"
	"database/sql"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/repositories"
	"github.com/desertthunder/lineup/internal/shared"
)

// localBackend serves commands straight from the SQLite repositories.
type localBackend struct {
	events      *repositories.EventRepository
	songs       *repositories.SongRepository
	scanners    *repositories.ScannerRepository
	assignments *repositories.AssignmentRepository
}

var _ Backend = (*localBackend)(nil)

func newLocalBackend(db *sql.DB) *localBackend {
	return &localBackend{
		events:      repositories.NewEventRepository(db),
		songs:       repositories.NewSongRepository(db),
		scanners:    repositories.NewScannerRepository(db),
		assignments: repositories.NewAssignmentRepository(db),
	}
}

func (b *localBackend) Events(ctx context.Context) ([]models.EventBody, error) {
	events, err := b.events.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	bodies := make([]models.EventBody, 0, len(events))
	for _, e := range events {
		bodies = append(bodies, e.Body())
	}
	return bodies, nil
}

func (b *localBackend) CreateEvent(ctx context.Context, body models.EventBody) (models.EventBody, error) {
	event, err := body.Event()
	if err != nil {
		return models.EventBody{}, shared.NewInvalidInput("%v", err)
	}
	if err := b.events.Create(ctx, event); err != nil {
		return models.EventBody{}, err
	}
	return event.Body(), nil
}

func (b *localBackend) Songs(ctx context.Context, eventID string) ([]models.SongBody, error) {
	songs, err := b.songs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	bodies := make([]models.SongBody, 0, len(songs))
	for _, s := range songs {
		bodies = append(bodies, s.Body())
	}
	return bodies, nil
}

func (b *localBackend) AddSong(ctx context.Context, eventID string, body models.SongBody) (models.SongBody, error) {
	song := models.NewSong(eventID, body.Title, body.Artist)
	if err := b.songs.Create(ctx, song); err != nil {
		return models.SongBody{}, err
	}
	return song.Body(), nil
}

func (b *localBackend) RemoveSong(ctx context.Context, eventID, songID string) error {
	song, err := b.songs.Get(ctx, songID)
	if err != nil {
		return err
	}
	if song.EventID != eventID {
		return shared.NewNotFound("song", songID)
	}
	return b.songs.Delete(ctx, songID)
}

func (b *localBackend) Items(ctx context.Context, eventID string) ([]models.OrderedItem, error) {
	return b.songs.Items(ctx, eventID)
}

func (b *localBackend) SubmitPositions(ctx context.Context, eventID string, updates []models.PositionUpdate) error {
	return b.songs.SubmitPositions(ctx, eventID, updates)
}

func (b *localBackend) Scanners(ctx context.Context) ([]models.ScannerBody, error) {
	scanners, err := b.scanners.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	bodies := make([]models.ScannerBody, 0, len(scanners))
	for _, s := range scanners {
		bodies = append(bodies, s.Body())
	}
	return bodies, nil
}

func (b *localBackend) CreateScanner(ctx context.Context, body models.ScannerBody) (models.ScannerBody, error) {
	s := models.NewScanner(0, body.Name, body.Serial)
	if err := b.scanners.Create(ctx, s); err != nil {
		return models.ScannerBody{}, err
	}
	return s.Body(), nil
}

func (b *localBackend) Assignments(ctx context.Context, eventID string) ([]models.Assignment, error) {
	return b.assignments.Assignments(ctx, eventID)
}

func (b *localBackend) Link(ctx context.Context, eventID string, scannerIDs []string) ([]reconcile.Outcome, error) {
	return b.assignments.Link(ctx, eventID, scannerIDs)
}

func (b *localBackend) Unlink(ctx context.Context, assignmentID string) error {
	return b.assignments.Unlink(ctx, assignmentID)
}
