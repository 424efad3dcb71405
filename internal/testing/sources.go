package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/ordering"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// MemoryLists is an in-memory list source. Submissions are atomic and rejected when they break 1..N.
type MemoryLists struct {
	mu          sync.Mutex
	lists       map[string][]models.OrderedItem
	Submissions int

	ItemsErr     error              // Returned by every Items call when set
	SubmitErr    error              // Returned by every SubmitPositions call when set
	BeforeSubmit func(listID string) // Runs before a submission is applied, outside the lock
}

// NewMemoryLists creates a source holding lists keyed by ID. Items are given as IDs in position order.
func NewMemoryLists(lists map[string][]string) *MemoryLists {
	m := &MemoryLists{lists: make(map[string][]models.OrderedItem, len(lists))}
	for id, ids := range lists {
		m.Set(id, ids...)
	}
	return m
}

// Set replaces a list with ids in position order.
func (m *MemoryLists) Set(listID string, ids ...string) {
	items := make([]models.OrderedItem, 0, len(ids))
	for i, id := range ids {
		items = append(items, models.OrderedItem{ID: id, Position: i + 1})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[listID] = items
}

// Order returns the IDs of a list in position order.
func (m *MemoryLists) Order(listID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.lists[listID]))
	for _, it := range m.lists[listID] {
		ids = append(ids, it.ID)
	}
	return ids
}

func (m *MemoryLists) Items(ctx context.Context, listID string) ([]models.OrderedItem, error) {
	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.lists[listID]
	if !ok {
		return nil, shared.NewNotFound("list", listID)
	}
	out := make([]models.OrderedItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryLists) SubmitPositions(ctx context.Context, listID string, updates []models.PositionUpdate) error {
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	if m.BeforeSubmit != nil {
		m.BeforeSubmit(listID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.lists[listID]
	if !ok {
		return shared.NewNotFound("list", listID)
	}
	next, err := ordering.Apply(items, updates)
	if err != nil {
		return err
	}
	m.lists[listID] = next
	m.Submissions++
	return nil
}

// MemoryAssignments is an in-memory assignment source with per-member fault injection.
type MemoryAssignments struct {
	mu      sync.Mutex
	owners  map[string][]models.Assignment
	members map[string]struct{}
	nextID  int

	inFlight    int
	MaxInFlight int // Highest number of concurrent Unlink calls observed

	LinkErr     error            // Fails the whole Link batch when set
	LinkErrs    map[string]error // Per-member Link failures
	UnlinkErrs  map[string]error // Per-assignment Unlink failures
	UnlinkDelay time.Duration
	LinkCalls   int
	UnlinkCalls int
}

// NewMemoryAssignments creates a source that knows the given members. Linking any other member fails with not found.
func NewMemoryAssignments(members ...string) *MemoryAssignments {
	m := &MemoryAssignments{
		owners:     make(map[string][]models.Assignment),
		members:    make(map[string]struct{}, len(members)),
		LinkErrs:   map[string]error{},
		UnlinkErrs: map[string]error{},
	}
	for _, id := range members {
		m.members[id] = struct{}{}
	}
	return m
}

// Seed links members to owner directly and returns the created assignments.
func (m *MemoryAssignments) Seed(owner string, members ...string) []models.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.owners[owner]; !ok {
		m.owners[owner] = []models.Assignment{}
	}
	var seeded []models.Assignment
	for _, member := range members {
		a := m.insert(owner, member)
		seeded = append(seeded, a)
	}
	return seeded
}

// Members returns the linked member IDs of owner in link order.
func (m *MemoryAssignments) Members(owner string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.owners[owner]))
	for _, a := range m.owners[owner] {
		ids = append(ids, a.MemberID)
	}
	return ids
}

func (m *MemoryAssignments) insert(owner, member string) models.Assignment {
	m.nextID++
	a := models.Assignment{AssignmentID: fmt.Sprintf("as-%d", m.nextID), OwnerID: owner, MemberID: member}
	m.owners[owner] = append(m.owners[owner], a)
	return a
}

func (m *MemoryAssignments) Assignments(ctx context.Context, owner string) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.owners[owner]
	if !ok {
		return nil, shared.NewNotFound("owner", owner)
	}
	out := make([]models.Assignment, len(current))
	copy(out, current)
	return out, nil
}

func (m *MemoryAssignments) Link(ctx context.Context, owner string, members []string) ([]reconcile.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LinkCalls++
	if m.LinkErr != nil {
		return nil, m.LinkErr
	}
	if _, ok := m.owners[owner]; !ok {
		return nil, shared.NewNotFound("owner", owner)
	}

	outcomes := make([]reconcile.Outcome, 0, len(members))
	for _, member := range members {
		o := reconcile.Outcome{Op: reconcile.Link, MemberID: member}
		switch {
		case m.LinkErrs[member] != nil:
			o.Err = m.LinkErrs[member]
		case !m.known(member):
			o.Err = shared.NewNotFound("member", member)
		case m.linked(owner, member):
			o.Err = fmt.Errorf("%s: %w", member, shared.ErrAlreadyLinked)
		default:
			o.AssignmentID = m.insert(owner, member).AssignmentID
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (m *MemoryAssignments) known(member string) bool {
	_, ok := m.members[member]
	return ok
}

func (m *MemoryAssignments) linked(owner, member string) bool {
	for _, a := range m.owners[owner] {
		if a.MemberID == member {
			return true
		}
	}
	return false
}

func (m *MemoryAssignments) Unlink(ctx context.Context, assignmentID string) error {
	m.mu.Lock()
	m.UnlinkCalls++
	m.inFlight++
	m.MaxInFlight = max(m.MaxInFlight, m.inFlight)
	err := m.UnlinkErrs[assignmentID]
	m.mu.Unlock()

	if m.UnlinkDelay > 0 {
		select {
		case <-time.After(m.UnlinkDelay):
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if err != nil {
		return err
	}

	for owner, current := range m.owners {
		for i, a := range current {
			if a.AssignmentID == assignmentID {
				m.owners[owner] = append(current[:i:i], current[i+1:]...)
				return nil
			}
		}
	}
	return shared.NewNotFound("assignment", assignmentID)
}
