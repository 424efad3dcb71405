package models

import "fmt"

// OrderedItem is one entry of an ordered list: a stable identity and its 1-based position.
type OrderedItem struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// PositionUpdate assigns a new position to one identity.
type PositionUpdate struct {
	ID          string `json:"id"`
	NewPosition int    `json:"new_position"`
}

// Direction of an adjacent move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// MoveRequest asks for one item to move either one slot (Direction) or to Target.
//
// Exactly one of Direction and Target is set. Target is 1-based and any value, including 0
// or a negative one, is clamped to the list.
type MoveRequest struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction,omitempty"`
	Target    *int      `json:"target,omitempty"`
}

func MoveUp(id string) MoveRequest   { return MoveRequest{ID: id, Direction: Up} }
func MoveDown(id string) MoveRequest { return MoveRequest{ID: id, Direction: Down} }

func MoveTo(id string, target int) MoveRequest {
	return MoveRequest{ID: id, Target: &target}
}

// IsAdjacent reports whether the request is an up/down move rather than a targeted one.
func (m MoveRequest) IsAdjacent() bool {
	return m.Direction != ""
}

// TargetPosition returns the requested target, or 0 for an adjacent move.
func (m MoveRequest) TargetPosition() int {
	if m.Target == nil {
		return 0
	}
	return *m.Target
}

func (m MoveRequest) String() string {
	if m.IsAdjacent() {
		return fmt.Sprintf("%s %s", m.ID, m.Direction)
	}
	return fmt.Sprintf("%s to %d", m.ID, m.TargetPosition())
}
