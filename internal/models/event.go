package models

import (
	"fmt"
	"time"
)

// Event is a scheduled happening at a venue. It owns a playlist of [Song] and a set of scanner assignments.
type Event struct {
	record
	Name     string
	Venue    string
	StartsAt *time.Time
}

// NewEvent creates an unsaved event.
func NewEvent(sequence int, name, venue string, startsAt *time.Time) *Event {
	return &Event{record: newRecord(sequence), Name: name, Venue: venue, StartsAt: startsAt}
}

func (e *Event) Validate() error {
	if e.id == "" {
		return fmt.Errorf("event ID is required")
	}
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	return nil
}
