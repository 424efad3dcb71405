// Package reconcile computes the links to add and remove so that an owner's current assignments
// converge on a desired set of members, and reports how applying them went.
package reconcile

import (
	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// Plan describes the mutations needed to reconcile assignments.
//
// ToAdd and ToRemove never refer to the same member, so they may be applied in either order.
type Plan struct {
	ToAdd     []string            // Members in desired but not linked, in desired order
	ToRemove  []string            // Assignment IDs whose member is not desired, in current order
	Removals  []models.Assignment // Full records behind ToRemove
	Unchanged []string            // Members linked and still desired
}

// IsEmpty returns true if no assignment changes are needed.
func (p *Plan) IsEmpty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Diff computes the delta between current assignments and the desired members.
//
// Matching is by member identity, never by assignment identity. Duplicate or empty members in desired are rejected.
func Diff(desired []string, current []models.Assignment) (*Plan, error) {
	want := make(map[string]struct{}, len(desired))
	for _, member := range desired {
		if member == "" {
			return nil, shared.NewInvalidInput("desired set contains an empty member")
		}
		if _, dup := want[member]; dup {
			return nil, shared.NewInvalidInput("desired set contains %q more than once", member)
		}
		want[member] = struct{}{}
	}

	linked := make(map[string]struct{}, len(current))
	for _, a := range current {
		linked[a.MemberID] = struct{}{}
	}

	plan := &Plan{}
	for _, member := range desired {
		if _, ok := linked[member]; ok {
			plan.Unchanged = append(plan.Unchanged, member)
		} else {
			plan.ToAdd = append(plan.ToAdd, member)
		}
	}

	for _, a := range current {
		if _, ok := want[a.MemberID]; !ok {
			plan.ToRemove = append(plan.ToRemove, a.AssignmentID)
			plan.Removals = append(plan.Removals, a)
		}
	}

	return plan, nil
}
