package ordering

import (
	"sort"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// Validate checks that items are sorted with positions exactly 1..N and unique, non-empty identities.
func Validate(items []models.OrderedItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return shared.NewInvalidInput("item at index %d has an empty identity", i)
		}
		if _, dup := seen[it.ID]; dup {
			return shared.NewInvalidInput("duplicate identity %q", it.ID)
		}
		seen[it.ID] = struct{}{}

		if it.Position != i+1 {
			return shared.NewInvalidInput("item %q has position %d at index %d, want %d", it.ID, it.Position, i, i+1)
		}
	}
	return nil
}

// Plan returns the position updates needed to carry out req on items.
//
// The moved item comes first, followed by displaced items in ascending old position.
// An empty or single-item list, and boundary moves (first up, last down) yield no updates.
func Plan(items []models.OrderedItem, req models.MoveRequest) ([]models.PositionUpdate, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	idx := indexOf(items, req.ID)
	if idx < 0 {
		return nil, shared.NewNotFound("item", req.ID)
	}
	if len(items) == 1 {
		return nil, nil
	}

	if req.IsAdjacent() {
		return swap(items, idx, req.Direction), nil
	}
	return moveTo(items, idx, *req.Target)
}

func validateRequest(req models.MoveRequest) error {
	if req.ID == "" {
		return shared.NewInvalidInput("move request has an empty identity")
	}
	if req.IsAdjacent() {
		if _, err := models.ParseDirection(string(req.Direction)); err != nil {
			return shared.NewInvalidInput("%v", err)
		}
		if req.Target != nil {
			return shared.NewInvalidInput("move request sets both a direction and a target")
		}
		return nil
	}
	if req.Target == nil {
		return shared.NewInvalidInput("move request needs a direction or a target position")
	}
	return nil
}

// swap exchanges the item at idx with its neighbour in direction d.
func swap(items []models.OrderedItem, idx int, d models.Direction) []models.PositionUpdate {
	other := idx - 1
	if d == models.Down {
		other = idx + 1
	}
	if other < 0 || other >= len(items) {
		return nil
	}

	return []models.PositionUpdate{
		{ID: items[idx].ID, NewPosition: items[other].Position},
		{ID: items[other].ID, NewPosition: items[idx].Position},
	}
}

// moveTo reinserts the item at idx at target, clamped to [1, N].
func moveTo(items []models.OrderedItem, idx, target int) ([]models.PositionUpdate, error) {
	from := idx + 1
	to := min(max(target, 1), len(items))

	if to == from {
		if to != target {
			return nil, &shared.InvalidInputError{
				Reason: "target position resolves to the current position after clamping",
				Err:    shared.ErrNoChange,
			}
		}
		return nil, nil
	}

	updates := make([]models.PositionUpdate, 0, abs(to-from)+1)
	updates = append(updates, models.PositionUpdate{ID: items[idx].ID, NewPosition: to})

	if to < from {
		for i := to - 1; i < from-1; i++ {
			updates = append(updates, models.PositionUpdate{ID: items[i].ID, NewPosition: items[i].Position + 1})
		}
	} else {
		for i := from; i < to; i++ {
			updates = append(updates, models.PositionUpdate{ID: items[i].ID, NewPosition: items[i].Position - 1})
		}
	}

	return updates, nil
}

// Apply returns a copy of items with updates applied, sorted by position.
//
// Updates naming unknown identities, naming one identity twice, or producing anything other than 1..N are rejected.
func Apply(items []models.OrderedItem, updates []models.PositionUpdate) ([]models.OrderedItem, error) {
	positions := make(map[string]int, len(items))
	for _, it := range items {
		positions[it.ID] = it.Position
	}

	touched := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if _, ok := positions[u.ID]; !ok {
			return nil, shared.NewNotFound("item", u.ID)
		}
		if _, dup := touched[u.ID]; dup {
			return nil, shared.NewInvalidInput("identity %q updated more than once", u.ID)
		}
		touched[u.ID] = struct{}{}
		positions[u.ID] = u.NewPosition
	}

	result := make([]models.OrderedItem, 0, len(items))
	for _, it := range items {
		result = append(result, models.OrderedItem{ID: it.ID, Position: positions[it.ID]})
	}
	sortByPosition(result)

	if err := Validate(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Applied reports whether items already reflect every update.
//
// A true result for a non-empty set of updates means the submission would be a repeat of one already persisted.
func Applied(items []models.OrderedItem, updates []models.PositionUpdate) bool {
	positions := make(map[string]int, len(items))
	for _, it := range items {
		positions[it.ID] = it.Position
	}

	for _, u := range updates {
		pos, ok := positions[u.ID]
		if !ok || pos != u.NewPosition {
			return false
		}
	}
	return true
}

// Renumber compacts items to positions 1..N, keeping their relative order, and returns the updates needed.
//
// Items may arrive unsorted or with gaps (after a deletion); ties keep their input order.
func Renumber(items []models.OrderedItem) []models.PositionUpdate {
	sorted := make([]models.OrderedItem, len(items))
	copy(sorted, items)
	sortByPosition(sorted)

	var updates []models.PositionUpdate
	for i, it := range sorted {
		if it.Position != i+1 {
			updates = append(updates, models.PositionUpdate{ID: it.ID, NewPosition: i + 1})
		}
	}
	return updates
}

func sortByPosition(items []models.OrderedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
}

func indexOf(items []models.OrderedItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
