package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// BackendClient reads and writes playlists and scanner links through the REST API.
//
// It satisfies the same list and assignment source contracts as the SQLite repositories.
type BackendClient struct {
	api *APIService
}

// NewBackendClient creates a BackendClient on top of api.
func NewBackendClient(api *APIService) *BackendClient {
	return &BackendClient{api: api}
}

func eventPath(eventID, suffix string) string {
	return "/api/events/" + url.PathEscape(eventID) + suffix
}

// Health checks that the backend is reachable.
func (c *BackendClient) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.api.Get(ctx, "/health", &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: health status %q", shared.ErrServiceUnavailable, body.Status)
	}
	return nil
}

// Events lists the backend's events.
func (c *BackendClient) Events(ctx context.Context) ([]models.EventBody, error) {
	var body struct {
		Events []models.EventBody `json:"events"`
	}
	if err := c.api.Get(ctx, "/api/events", &body); err != nil {
		return nil, err
	}
	return body.Events, nil
}

// CreateEvent creates an event and returns it with its ID.
func (c *BackendClient) CreateEvent(ctx context.Context, event models.EventBody) (models.EventBody, error) {
	var created models.EventBody
	err := c.api.Post(ctx, "/api/events", event, &created)
	return created, err
}

// AddSong appends a song to an event's playlist.
func (c *BackendClient) AddSong(ctx context.Context, eventID string, song models.SongBody) (models.SongBody, error) {
	var created models.SongBody
	err := c.api.Post(ctx, eventPath(eventID, "/songs"), song, &created)
	return created, err
}

// Items returns the playlist of eventID in position order.
func (c *BackendClient) Items(ctx context.Context, eventID string) ([]models.OrderedItem, error) {
	var body models.ItemsBody
	if err := c.api.Get(ctx, eventPath(eventID, "/songs"), &body); err != nil {
		return nil, err
	}
	if body.Items == nil {
		body.Items = []models.OrderedItem{}
	}
	return body.Items, nil
}

// Songs returns the songs of eventID with titles, in position order.
func (c *BackendClient) Songs(ctx context.Context, eventID string) ([]models.SongBody, error) {
	var body models.ItemsBody
	if err := c.api.Get(ctx, eventPath(eventID, "/songs"), &body); err != nil {
		return nil, err
	}
	return body.Songs, nil
}

// SubmitPositions sends updates for the playlist of eventID; the server applies them atomically.
func (c *BackendClient) SubmitPositions(ctx context.Context, eventID string, updates []models.PositionUpdate) error {
	return c.api.Patch(ctx, eventPath(eventID, "/songs/positions"), models.PositionsBody{Updates: updates}, nil)
}

// Move asks the server to plan and apply req itself, returning the resulting playlist.
func (c *BackendClient) Move(ctx context.Context, eventID string, req models.MoveRequest) ([]models.OrderedItem, error) {
	var body models.ItemsBody
	if err := c.api.Post(ctx, eventPath(eventID, "/songs/move"), req, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// Assignments returns the scanner links of eventID.
func (c *BackendClient) Assignments(ctx context.Context, eventID string) ([]models.Assignment, error) {
	var body models.AssignmentsBody
	if err := c.api.Get(ctx, eventPath(eventID, "/scanners"), &body); err != nil {
		return nil, err
	}
	if body.Assignments == nil {
		body.Assignments = []models.Assignment{}
	}
	return body.Assignments, nil
}

// Link links scanners to eventID in one request and returns one outcome per scanner.
func (c *BackendClient) Link(ctx context.Context, eventID string, scannerIDs []string) ([]reconcile.Outcome, error) {
	var body models.LinkResultsBody
	if err := c.api.Post(ctx, eventPath(eventID, "/scanners"), models.LinkBody{ScannerIDs: scannerIDs}, &body); err != nil {
		return nil, err
	}

	outcomes := make([]reconcile.Outcome, 0, len(body.Results))
	for _, r := range body.Results {
		o := reconcile.Outcome{Op: reconcile.Link, MemberID: r.ScannerID, AssignmentID: r.AssignmentID}
		if r.Code != "" {
			o.Err = shared.ErrorFromCode(r.Code, r.Error)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Unlink removes one assignment by its ID.
func (c *BackendClient) Unlink(ctx context.Context, assignmentID string) error {
	return c.api.Delete(ctx, "/api/assignments/"+url.PathEscape(assignmentID))
}

// RemoveSong deletes songID from the playlist of eventID; the server renumbers the rest.
func (c *BackendClient) RemoveSong(ctx context.Context, eventID, songID string) error {
	return c.api.Delete(ctx, eventPath(eventID, "/songs/"+url.PathEscape(songID)))
}

// Scanners lists the backend's scanners.
func (c *BackendClient) Scanners(ctx context.Context) ([]models.ScannerBody, error) {
	var body struct {
		Scanners []models.ScannerBody `json:"scanners"`
	}
	if err := c.api.Get(ctx, "/api/scanners", &body); err != nil {
		return nil, err
	}
	return body.Scanners, nil
}

// CreateScanner registers a scanner and returns it with its ID.
func (c *BackendClient) CreateScanner(ctx context.Context, scanner models.ScannerBody) (models.ScannerBody, error) {
	var created models.ScannerBody
	err := c.api.Post(ctx, "/api/scanners", scanner, &created)
	return created, err
}
