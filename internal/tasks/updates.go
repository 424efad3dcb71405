package tasks

import (
	"fmt"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
)

// ProgressUpdate represents a progress event during an operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchList Phase = iota
	PlanMove
	SubmitPositions
	VerifyList
	FetchAssignments
	PlanSync
	UnlinkMembers
	LinkMembers
	VerifyAssignments
)

func (p Phase) String() string {
	switch p {
	case FetchList:
		return "fetch_list"
	case PlanMove:
		return "plan_move"
	case SubmitPositions:
		return "submit_positions"
	case VerifyList:
		return "verify_list"
	case FetchAssignments:
		return "fetch_assignments"
	case PlanSync:
		return "plan_sync"
	case UnlinkMembers:
		return "unlink_members"
	case LinkMembers:
		return "link_members"
	case VerifyAssignments:
		return "verify_assignments"
	default:
		return ""
	}
}

func fetchListUpdate(listID string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchList, Step: 1, Total: 1, Message: fmt.Sprintf("Fetching playlist %s...", listID)}
}

func planMoveUpdate(req models.MoveRequest, updates []models.PositionUpdate) ProgressUpdate {
	msg := fmt.Sprintf("Moving %s: %d position(s) change", req, len(updates))
	if len(updates) == 0 {
		msg = fmt.Sprintf("Moving %s: nothing to change", req)
	}
	return ProgressUpdate{Phase: PlanMove, Step: 1, Total: 1, Message: msg, Data: updates}
}

func submitUpdate(n int, skipped bool) ProgressUpdate {
	msg := fmt.Sprintf("Submitting %d position update(s)...", n)
	if skipped {
		msg = "Positions already up to date, skipping submission"
	}
	return ProgressUpdate{Phase: SubmitPositions, Step: 1, Total: 1, Message: msg}
}

func verifyListUpdate(items []models.OrderedItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Verified playlist (%d songs)", len(items)),
		Data:    items,
	}
}

func fetchAssignmentsUpdate(ownerID string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchAssignments, Step: 1, Total: 1, Message: fmt.Sprintf("Fetching scanner links for %s...", ownerID)}
}

func planSyncUpdate(plan *reconcile.Plan) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanSync,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d to link, %d to unlink, %d unchanged", len(plan.ToAdd), len(plan.ToRemove), len(plan.Unchanged)),
		Data:    plan,
	}
}

func outcomeUpdate(phase Phase, step, total int, o reconcile.Outcome) ProgressUpdate {
	mark, detail := "✓", ""
	if !o.OK() {
		mark, detail = "✗", ": "+o.Reason()
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s %s%s", step, total, mark, o.Op, o.MemberID, detail),
		Data:    o,
	}
}

func verifyAssignmentsUpdate(after []models.Assignment) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyAssignments,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Event now has %d scanner link(s)", len(after)),
		Data:    after,
	}
}
