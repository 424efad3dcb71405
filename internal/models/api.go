package models

import (
	"fmt"
	"time"
)

// Request and response bodies of the REST API, shared by the server and its client.

// ErrorBody is returned with every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ItemsBody lists a playlist in position order. Songs repeats the items with their details when the server has them.
type ItemsBody struct {
	Items []OrderedItem `json:"items"`
	Songs []SongBody    `json:"songs,omitempty"`
}

// PositionsBody submits position updates for one playlist.
type PositionsBody struct {
	Updates []PositionUpdate `json:"updates"`
}

// AssignmentsBody lists an event's scanner links.
type AssignmentsBody struct {
	Assignments []Assignment `json:"assignments"`
}

// LinkBody asks for scanners to be linked to an event.
type LinkBody struct {
	ScannerIDs []string `json:"scanner_ids"`
}

// LinkResult reports the outcome of linking one scanner. Code and Error are empty on success.
type LinkResult struct {
	Op           string `json:"op,omitempty"` // "link" or "unlink"; empty means link
	ScannerID    string `json:"scanner_id"`
	AssignmentID string `json:"assignment_id,omitempty"`
	Error        string `json:"error,omitempty"`
	Code         string `json:"code,omitempty"`
}

// LinkResultsBody carries one [LinkResult] per requested scanner, in request order.
type LinkResultsBody struct {
	Results []LinkResult `json:"results"`
}

// SyncResultBody reports a server-side scanner sync.
type SyncResultBody struct {
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	Results     []LinkResult `json:"results"`
	Assignments []Assignment `json:"assignments"`
}

// ScannerBody creates or describes a scanner.
type ScannerBody struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Serial string `json:"serial"`
}

// EventBody creates or describes an event.
type EventBody struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Venue    string `json:"venue,omitempty"`
	StartsAt string `json:"starts_at,omitempty"` // RFC 3339
}

// SongBody creates or describes a song.
type SongBody struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Position int    `json:"position,omitempty"`
}

// Event converts the body into an unsaved [Event]. StartsAt must be empty or RFC 3339.
func (b EventBody) Event() (*Event, error) {
	var startsAt *time.Time
	if b.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, b.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("starts_at must be RFC 3339: %w", err)
		}
		startsAt = &t
	}
	return NewEvent(0, b.Name, b.Venue, startsAt), nil
}

// Body returns the wire form of e.
func (e *Event) Body() EventBody {
	body := EventBody{ID: e.id, Name: e.Name, Venue: e.Venue}
	if e.StartsAt != nil {
		body.StartsAt = e.StartsAt.Format(time.RFC3339)
	}
	return body
}

// Body returns the wire form of s.
func (s *Song) Body() SongBody {
	return SongBody{ID: s.id, Title: s.Title, Artist: s.Artist, Position: s.Position}
}

// Body returns the wire form of s.
func (s *Scanner) Body() ScannerBody {
	return ScannerBody{ID: s.id, Name: s.Name, Serial: s.Serial}
}
