package models

// Assignment links a member (e.g. a scanner) to an owner (e.g. an event).
//
// AssignmentID identifies the link record itself and is what removal requires.
type Assignment struct {
	AssignmentID string `json:"assignment_id"`
	OwnerID      string `json:"owner_id"`
	MemberID     string `json:"member_id"`
}
