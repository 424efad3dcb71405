package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// Op is the kind of change an [Outcome] reports on.
type Op string

const (
	Link   Op = "link"
	Unlink Op = "unlink"
)

// Outcome is the result of linking or unlinking one member.
type Outcome struct {
	Op           Op
	MemberID     string
	AssignmentID string // Assigned on a successful link; the removed record on unlink
	Err          error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Reason returns a human-readable failure reason, empty on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return Reason(o.Err)
}

// Reason normalizes err into a short message for people.
//
// Conflicts surface as "already linked" no matter which source reported them.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, shared.ErrAlreadyLinked):
		return "already linked"
	case errors.Is(err, shared.ErrNotFound):
		return "not found"
	case errors.Is(err, shared.ErrInvalidInput):
		return "invalid input"
	default:
		return err.Error()
	}
}

// Status summarizes a [Result].
type Status int

const (
	NoChanges Status = iota
	AllSucceeded
	Partial
	AllFailed
)

func (s Status) String() string {
	switch s {
	case NoChanges:
		return "no_changes"
	case AllSucceeded:
		return "all_succeeded"
	case Partial:
		return "partial"
	case AllFailed:
		return "all_failed"
	default:
		return ""
	}
}

// Result collects per-member outcomes of applying a [Plan].
type Result struct {
	OwnerID   string
	Plan      *Plan
	Succeeded []Outcome
	Failed    []Outcome
	After     []models.Assignment // Assignments re-fetched after applying
}

// Record files an outcome under Succeeded or Failed.
func (r *Result) Record(o Outcome) {
	if o.OK() {
		r.Succeeded = append(r.Succeeded, o)
	} else {
		r.Failed = append(r.Failed, o)
	}
}

// Status classifies the result as all succeeded, partial, or all failed.
func (r *Result) Status() Status {
	switch {
	case len(r.Succeeded) == 0 && len(r.Failed) == 0:
		return NoChanges
	case len(r.Failed) == 0:
		return AllSucceeded
	case len(r.Succeeded) == 0:
		return AllFailed
	default:
		return Partial
	}
}

// Message returns the user-facing summary for the result's status.
func (r *Result) Message() string {
	switch r.Status() {
	case NoChanges:
		return "Scanners already match the requested selection."
	case AllSucceeded:
		return fmt.Sprintf("Updated scanner links: %s.", r.counts(r.Succeeded))
	case Partial:
		return fmt.Sprintf("Some scanner links could not be updated (%d of %d failed): %s.",
			len(r.Failed), len(r.Failed)+len(r.Succeeded), r.failures())
	default:
		return fmt.Sprintf("No scanner links were updated: %s.", r.failures())
	}
}

func (r *Result) counts(outcomes []Outcome) string {
	var linked, unlinked int
	for _, o := range outcomes {
		if o.Op == Link {
			linked++
		} else {
			unlinked++
		}
	}
	return fmt.Sprintf("%d linked, %d unlinked", linked, unlinked)
}

func (r *Result) failures() string {
	parts := make([]string, 0, len(r.Failed))
	for _, o := range r.Failed {
		id := o.MemberID
		if id == "" {
			id = o.AssignmentID
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", o.Op, id, o.Reason()))
	}
	return strings.Join(parts, "; ")
}
