package models

import "fmt"

// Song is one entry of an event's playlist.
type Song struct {
	record
	EventID  string
	Title    string
	Artist   string
	Position int
}

// NewSong creates an unsaved song; the repository assigns its position.
func NewSong(eventID, title, artist string) *Song {
	return &Song{record: newRecord(0), EventID: eventID, Title: title, Artist: artist}
}

func (s *Song) Validate() error {
	if s.id == "" {
		return fmt.Errorf("song ID is required")
	}
	if s.EventID == "" {
		return fmt.Errorf("song event ID is required")
	}
	if s.Title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.Position < 1 {
		return fmt.Errorf("song position must be at least 1, got %d", s.Position)
	}
	return nil
}

// Item returns the song's position model.
func (s *Song) Item() OrderedItem {
	return OrderedItem{ID: s.id, Position: s.Position}
}
