package models

import "fmt"

// Scanner is a ticket scanning device that can be linked to events.
type Scanner struct {
	record
	Name   string
	Serial string
}

// NewScanner creates an unsaved scanner.
func NewScanner(sequence int, name, serial string) *Scanner {
	return &Scanner{record: newRecord(sequence), Name: name, Serial: serial}
}

func (s *Scanner) Validate() error {
	if s.id == "" {
		return fmt.Errorf("scanner ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("scanner name is required")
	}
	if s.Serial == "" {
		return fmt.Errorf("scanner serial is required")
	}
	return nil
}
