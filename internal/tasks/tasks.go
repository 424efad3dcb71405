package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/ordering"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// ListSource reads and writes ordered lists. SubmitPositions applies all updates or none.
type ListSource interface {
	Items(ctx context.Context, listID string) ([]models.OrderedItem, error)
	SubmitPositions(ctx context.Context, listID string, updates []models.PositionUpdate) error
}

// AssignmentSource reads and writes owner/member links.
//
// Link reports one outcome per member; its error is reserved for failures of the whole batch.
type AssignmentSource interface {
	Assignments(ctx context.Context, ownerID string) ([]models.Assignment, error)
	Link(ctx context.Context, ownerID string, memberIDs []string) ([]reconcile.Outcome, error)
	Unlink(ctx context.Context, assignmentID string) error
}

// MoveResult describes a completed move or submission.
type MoveResult struct {
	ListID  string
	Updates []models.PositionUpdate
	Before  []models.OrderedItem // Snapshot the updates were checked against
	After   []models.OrderedItem // Authoritative state re-fetched after submitting
	Skipped bool                 // Before already reflected the updates
}

// Changed reports whether the operation wrote anything.
func (r *MoveResult) Changed() bool {
	return len(r.Updates) > 0 && !r.Skipped
}

// Options configure a [LineupEngine].
type Options struct {
	Workers   int     // Concurrent unlink calls (default: 4)
	RateLimit float64 // Source calls per second during sync (default: 10)
	Logger    *log.Logger
}

// LineupEngine runs reorder and assignment sync operations against its sources.
//
// Either source may be nil when the caller only needs the other kind of operation.
type LineupEngine struct {
	lists       ListSource
	assignments AssignmentSource
	opts        Options
	locks       *keyedMutex
	logger      *log.Logger
}

// NewLineupEngine creates a new LineupEngine with the provided sources.
func NewLineupEngine(lists ListSource, assignments AssignmentSource, opts Options) *LineupEngine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &LineupEngine{
		lists:       lists,
		assignments: assignments,
		opts:        opts,
		locks:       newKeyedMutex(),
		logger:      shared.WithLogger(logger, "component", "engine"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LineupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Move plans req against a fresh snapshot of listID and submits the result.
//
// Boundary moves and moves to the current position return a result with no updates.
func (e *LineupEngine) Move(ctx context.Context, listID string, req models.MoveRequest, progress chan<- ProgressUpdate) (*MoveResult, error) {
	if e.lists == nil {
		return nil, fmt.Errorf("%w: list source not configured", shared.ErrServiceUnavailable)
	}

	unlock := e.locks.Lock(listID)
	defer unlock()

	e.sendProgress(progress, fetchListUpdate(listID))
	items, err := e.lists.Items(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	updates, err := ordering.Plan(items, req)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, planMoveUpdate(req, updates))

	result := &MoveResult{ListID: listID, Updates: updates, Before: items}
	if len(updates) == 0 {
		result.After = items
		return result, nil
	}

	return result, e.submit(ctx, result, progress)
}

// Submit applies updates planned from a snapshot that may be stale.
//
// Updates that the current list already reflects are skipped. Updates that would break the
// current list fail with [shared.ErrStaleSnapshot] and nothing is written.
func (e *LineupEngine) Submit(ctx context.Context, listID string, updates []models.PositionUpdate, progress chan<- ProgressUpdate) (*MoveResult, error) {
	if e.lists == nil {
		return nil, fmt.Errorf("%w: list source not configured", shared.ErrServiceUnavailable)
	}

	unlock := e.locks.Lock(listID)
	defer unlock()

	e.sendProgress(progress, fetchListUpdate(listID))
	items, err := e.lists.Items(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	result := &MoveResult{ListID: listID, Updates: updates, Before: items}
	if ordering.Applied(items, updates) {
		result.Skipped = true
		result.After = items
		e.sendProgress(progress, submitUpdate(len(updates), true))
		e.logger.Debug("submission already applied", "list", listID, "updates", len(updates))
		return result, nil
	}

	if _, err := ordering.Apply(items, updates); err != nil {
		return nil, fmt.Errorf("%w: updates do not fit list %s: %v", shared.ErrStaleSnapshot, listID, err)
	}

	return result, e.submit(ctx, result, progress)
}

// submit writes result.Updates and fills result.After from a re-fetch. Callers hold the list lock.
func (e *LineupEngine) submit(ctx context.Context, result *MoveResult, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, submitUpdate(len(result.Updates), false))
	if err := e.lists.SubmitPositions(ctx, result.ListID, result.Updates); err != nil {
		return fmt.Errorf("failed to submit positions for list %s: %w", result.ListID, err)
	}

	after, err := e.lists.Items(ctx, result.ListID)
	if err != nil {
		return fmt.Errorf("failed to re-fetch list %s: %w", result.ListID, err)
	}
	if err := ordering.Validate(after); err != nil {
		return fmt.Errorf("list %s is inconsistent after submitting: %w", result.ListID, err)
	}
	if !ordering.Applied(after, result.Updates) {
		e.logger.Warn("list changed by another writer after submitting", "list", result.ListID)
	}

	result.After = after
	e.sendProgress(progress, verifyListUpdate(after))
	return nil
}

// SyncAssignments links and unlinks members so the links of ownerID match desired.
//
// The returned result records one outcome per attempted operation. An error is returned only when
// the sync could not start: the current links could not be fetched or desired is invalid.
func (e *LineupEngine) SyncAssignments(ctx context.Context, ownerID string, desired []string, progress chan<- ProgressUpdate) (*reconcile.Result, error) {
	if e.assignments == nil {
		return nil, fmt.Errorf("%w: assignment source not configured", shared.ErrServiceUnavailable)
	}

	unlock := e.locks.Lock("assignments:" + ownerID)
	defer unlock()

	e.sendProgress(progress, fetchAssignmentsUpdate(ownerID))
	current, err := e.assignments.Assignments(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments for %s: %w", ownerID, err)
	}

	plan, err := reconcile.Diff(desired, current)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, planSyncUpdate(plan))

	result := &reconcile.Result{OwnerID: ownerID, Plan: plan}
	if plan.IsEmpty() {
		result.After = current
		return result, nil
	}

	for _, o := range e.apply(ctx, ownerID, plan, progress) {
		result.Record(o)
	}

	after, err := e.assignments.Assignments(ctx, ownerID)
	if err != nil {
		e.logger.Warn("could not re-fetch assignments after sync", "owner", ownerID, "err", err)
	} else {
		result.After = after
		e.sendProgress(progress, verifyAssignmentsUpdate(after))
	}

	e.logger.Info("synced assignments", "owner", ownerID, "status", result.Status(),
		"succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

// apply runs the plan and returns link outcomes in desired order followed by unlink outcomes in current order.
func (e *LineupEngine) apply(ctx context.Context, ownerID string, plan *reconcile.Plan, progress chan<- ProgressUpdate) []reconcile.Outcome {
	limiter := rate.NewLimiter(rate.Limit(e.opts.RateLimit), 1)
	total := len(plan.ToAdd) + len(plan.ToRemove)

	var (
		mu      sync.Mutex
		step    int
		links   []reconcile.Outcome
		unlinks = make([]reconcile.Outcome, len(plan.Removals))
		g       errgroup.Group
	)
	report := func(phase Phase, o reconcile.Outcome) {
		mu.Lock()
		step++
		update := outcomeUpdate(phase, step, total, o)
		mu.Unlock()
		e.sendProgress(progress, update)
	}
	g.SetLimit(e.opts.Workers)

	if len(plan.ToAdd) > 0 {
		g.Go(func() error {
			links = e.link(ctx, limiter, ownerID, plan.ToAdd)
			for _, o := range links {
				report(LinkMembers, o)
			}
			return nil
		})
	}

	for i, a := range plan.Removals {
		g.Go(func() error {
			o := reconcile.Outcome{Op: reconcile.Unlink, MemberID: a.MemberID, AssignmentID: a.AssignmentID}
			if err := limiter.Wait(ctx); err != nil {
				o.Err = err
			} else {
				o.Err = e.assignments.Unlink(ctx, a.AssignmentID)
			}
			if o.Err != nil {
				e.logger.Warn("unlink failed", "owner", ownerID, "assignment", a.AssignmentID, "err", o.Err)
			}
			unlinks[i] = o
			report(UnlinkMembers, o)
			return nil
		})
	}

	// Failures are recorded per outcome; no goroutine returns an error.
	_ = g.Wait()
	return append(links, unlinks...)
}

// link adds members in one batch call. A batch failure is recorded against every member.
func (e *LineupEngine) link(ctx context.Context, limiter *rate.Limiter, ownerID string, members []string) []reconcile.Outcome {
	err := limiter.Wait(ctx)
	var outcomes []reconcile.Outcome
	if err == nil {
		outcomes, err = e.assignments.Link(ctx, ownerID, members)
	}
	if err != nil {
		e.logger.Error("link batch failed", "owner", ownerID, "members", len(members), "err", err)
		outcomes = make([]reconcile.Outcome, 0, len(members))
		for _, m := range members {
			outcomes = append(outcomes, reconcile.Outcome{Op: reconcile.Link, MemberID: m, Err: err})
		}
		return outcomes
	}

	reported := make(map[string]struct{}, len(outcomes))
	for _, o := range outcomes {
		reported[o.MemberID] = struct{}{}
	}
	for _, m := range members {
		if _, ok := reported[m]; !ok {
			outcomes = append(outcomes, reconcile.Outcome{
				Op:       reconcile.Link,
				MemberID: m,
				Err:      fmt.Errorf("%w: no result reported for %s", shared.ErrAPIRequest, m),
			})
		}
	}
	return outcomes
}
