package ordering

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// list builds a valid ordered list from identities in order.
func list(ids ...string) []models.OrderedItem {
	items := make([]models.OrderedItem, len(ids))
	for i, id := range ids {
		items[i] = models.OrderedItem{ID: id, Position: i + 1}
	}
	return items
}

func ids(items []models.OrderedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestPlan(t *testing.T) {
	t.Run("move B up swaps with A", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveUp("B"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.PositionUpdate{{ID: "B", NewPosition: 1}, {ID: "A", NewPosition: 2}}
		if !reflect.DeepEqual(updates, want) {
			t.Errorf("expected %v, got %v", want, updates)
		}
	})

	t.Run("move A up is a no-op", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveUp("A"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updates) != 0 {
			t.Errorf("expected no updates, got %v", updates)
		}
	})

	t.Run("move last down is a no-op", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveDown("C"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updates) != 0 {
			t.Errorf("expected no updates, got %v", updates)
		}
	})

	t.Run("move down swaps with next", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveDown("A"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.PositionUpdate{{ID: "A", NewPosition: 2}, {ID: "B", NewPosition: 1}}
		if !reflect.DeepEqual(updates, want) {
			t.Errorf("expected %v, got %v", want, updates)
		}
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		updates, err := Plan(nil, models.MoveUp("A"))
		if err != nil || len(updates) != 0 {
			t.Errorf("expected no-op, got %v, %v", updates, err)
		}
	})

	t.Run("single item list is a no-op", func(t *testing.T) {
		for _, req := range []models.MoveRequest{models.MoveUp("A"), models.MoveDown("A"), models.MoveTo("A", 5)} {
			updates, err := Plan(list("A"), req)
			if err != nil || len(updates) != 0 {
				t.Errorf("%v: expected no-op, got %v, %v", req, updates, err)
			}
		}
	})

	t.Run("unknown identity fails with NotFoundError", func(t *testing.T) {
		_, err := Plan(list("A", "B"), models.MoveUp("Z"))

		var nf *shared.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if nf.ID != "Z" {
			t.Errorf("expected missing ID Z, got %s", nf.ID)
		}
	})

	t.Run("move to earlier target shifts items down", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C", "D", "E"), models.MoveTo("D", 2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.PositionUpdate{
			{ID: "D", NewPosition: 2},
			{ID: "B", NewPosition: 3},
			{ID: "C", NewPosition: 4},
		}
		if !reflect.DeepEqual(updates, want) {
			t.Errorf("expected %v, got %v", want, updates)
		}
	})

	t.Run("move to later target shifts items up", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C", "D", "E"), models.MoveTo("A", 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.PositionUpdate{
			{ID: "A", NewPosition: 4},
			{ID: "B", NewPosition: 1},
			{ID: "C", NewPosition: 2},
			{ID: "D", NewPosition: 3},
		}
		if !reflect.DeepEqual(updates, want) {
			t.Errorf("expected %v, got %v", want, updates)
		}
	})

	t.Run("target is clamped", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveTo("A", 42))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updates[0].NewPosition != 3 {
			t.Errorf("expected clamp to 3, got %d", updates[0].NewPosition)
		}

		updates, err = Plan(list("A", "B", "C"), models.MoveTo("C", -7))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updates[0].NewPosition != 1 {
			t.Errorf("expected clamp to 1, got %d", updates[0].NewPosition)
		}

		for _, target := range []int{0, -1, -4} {
			updates, err = Plan(list("A", "B", "C"), models.MoveTo("C", target))
			if err != nil {
				t.Fatalf("target %d: unexpected error: %v", target, err)
			}
			want := []models.PositionUpdate{{ID: "C", NewPosition: 1}, {ID: "A", NewPosition: 2}, {ID: "B", NewPosition: 3}}
			if !reflect.DeepEqual(updates, want) {
				t.Errorf("target %d: expected %v, got %v", target, want, updates)
			}
		}
	})

	t.Run("target equal to current position is a no-op", func(t *testing.T) {
		updates, err := Plan(list("A", "B", "C"), models.MoveTo("B", 2))
		if err != nil || len(updates) != 0 {
			t.Errorf("expected no-op, got %v, %v", updates, err)
		}
	})

	t.Run("out of range target clamping to current position is invalid", func(t *testing.T) {
		_, err := Plan(list("A", "B", "C"), models.MoveTo("C", 10))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
		if !errors.Is(err, shared.ErrNoChange) {
			t.Errorf("expected ErrNoChange to be wrapped, got %v", err)
		}
	})

	t.Run("invalid lists are rejected", func(t *testing.T) {
		tc := []struct {
			name  string
			items []models.OrderedItem
		}{
			{name: "gap", items: []models.OrderedItem{{ID: "A", Position: 1}, {ID: "B", Position: 3}}},
			{name: "duplicate position", items: []models.OrderedItem{{ID: "A", Position: 1}, {ID: "B", Position: 1}}},
			{name: "duplicate identity", items: []models.OrderedItem{{ID: "A", Position: 1}, {ID: "A", Position: 2}}},
			{name: "starts at zero", items: []models.OrderedItem{{ID: "A", Position: 0}, {ID: "B", Position: 1}}},
			{name: "unsorted", items: []models.OrderedItem{{ID: "A", Position: 2}, {ID: "B", Position: 1}}},
			{name: "empty identity", items: []models.OrderedItem{{ID: "", Position: 1}}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Plan(tt.items, models.MoveUp("A"))
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected invalid input, got %v", err)
				}
			})
		}
	})

	t.Run("invalid requests are rejected", func(t *testing.T) {
		tc := []struct {
			name string
			req  models.MoveRequest
		}{
			{name: "empty identity", req: models.MoveRequest{Direction: models.Up}},
			{name: "no direction or target", req: models.MoveRequest{ID: "A"}},
			{name: "unknown direction", req: models.MoveRequest{ID: "A", Direction: "sideways"}},
			{name: "direction and target", req: models.MoveRequest{ID: "A", Direction: models.Up, Target: models.MoveTo("A", 2).Target}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Plan(list("A", "B"), tt.req)
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected invalid input, got %v", err)
				}
			})
		}
	})
}

// TestPlanProperties checks every move on every list size up to 6.
func TestPlanProperties(t *testing.T) {
	for n := 0; n <= 6; n++ {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("s%d", i+1)
		}
		items := list(names...)

		var reqs []models.MoveRequest
		for _, id := range names {
			reqs = append(reqs, models.MoveUp(id), models.MoveDown(id))
			for target := -1; target <= n+2; target++ {
				if target != 0 {
					reqs = append(reqs, models.MoveTo(id, target))
				}
			}
		}

		for _, req := range reqs {
			t.Run(fmt.Sprintf("n=%d/%v", n, req), func(t *testing.T) {
				updates, err := Plan(items, req)
				if errors.Is(err, shared.ErrNoChange) {
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if req.IsAdjacent() && len(updates) > 2 {
					t.Errorf("adjacent move returned %d updates", len(updates))
				}

				seen := map[string]bool{}
				for _, u := range updates {
					if seen[u.ID] {
						t.Errorf("identity %s updated twice", u.ID)
					}
					seen[u.ID] = true
				}

				after, err := Apply(items, updates)
				if err != nil {
					t.Fatalf("applying updates broke the list: %v", err)
				}
				if err := Validate(after); err != nil {
					t.Errorf("result is not 1..N: %v", err)
				}

				for _, u := range updates {
					before := items[indexOf(items, u.ID)].Position
					if before == u.NewPosition {
						t.Errorf("update for %s does not change its position", u.ID)
					}
				}
			})
		}
	}
}

func TestApply(t *testing.T) {
	t.Run("applies and sorts", func(t *testing.T) {
		items := list("A", "B", "C")
		after, err := Apply(items, []models.PositionUpdate{{ID: "C", NewPosition: 1}, {ID: "A", NewPosition: 2}, {ID: "B", NewPosition: 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := ids(after); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
			t.Errorf("unexpected order %v", got)
		}
		if ids(items)[0] != "A" {
			t.Error("input must not be modified")
		}
	})

	t.Run("rejects unknown identity", func(t *testing.T) {
		_, err := Apply(list("A"), []models.PositionUpdate{{ID: "Z", NewPosition: 1}})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("rejects result with duplicate positions", func(t *testing.T) {
		_, err := Apply(list("A", "B", "C"), []models.PositionUpdate{{ID: "A", NewPosition: 2}})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("rejects repeated identity", func(t *testing.T) {
		_, err := Apply(list("A", "B"), []models.PositionUpdate{{ID: "A", NewPosition: 2}, {ID: "A", NewPosition: 1}})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
}

func TestIdempotence(t *testing.T) {
	items := list("A", "B", "C", "D")

	for _, req := range []models.MoveRequest{models.MoveUp("C"), models.MoveDown("A"), models.MoveTo("D", 1)} {
		t.Run(req.String(), func(t *testing.T) {
			updates, err := Plan(items, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if Applied(items, updates) {
				t.Fatal("fresh updates must not look applied")
			}

			once, err := Apply(items, updates)
			if err != nil {
				t.Fatalf("first apply failed: %v", err)
			}

			if !Applied(once, updates) {
				t.Error("re-submitting already applied updates should be detectable")
			}

			twice, err := Apply(once, updates)
			if err != nil {
				t.Fatalf("second apply failed: %v", err)
			}
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("second application changed the list: %v vs %v", once, twice)
			}
		})
	}

	t.Run("stale snapshot produces a different valid plan", func(t *testing.T) {
		updates, _ := Plan(items, models.MoveUp("C"))
		after, _ := Apply(items, updates)

		again, err := Plan(after, models.MoveUp("C"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reflect.DeepEqual(updates, again) {
			t.Error("expected a new plan computed from the refreshed list")
		}
		if _, err := Apply(after, again); err != nil {
			t.Errorf("plan from refreshed list should apply cleanly: %v", err)
		}
	})

	t.Run("empty updates count as applied", func(t *testing.T) {
		if !Applied(items, nil) {
			t.Error("expected no updates to be trivially applied")
		}
	})
}

func TestConcurrentStalePlans(t *testing.T) {
	items := list("A", "B", "C")

	first, _ := Plan(items, models.MoveUp("B"))
	second, _ := Plan(items, models.MoveUp("C"))

	after, err := Apply(items, first)
	if err != nil {
		t.Fatalf("first plan should apply: %v", err)
	}

	if _, err := Apply(after, second); err == nil {
		t.Error("applying a plan computed from the same stale snapshot should break the invariant and be rejected")
	}
}

func TestRenumber(t *testing.T) {
	tc := []struct {
		name  string
		items []models.OrderedItem
		want  []models.PositionUpdate
	}{
		{name: "already contiguous", items: list("A", "B"), want: nil},
		{
			name:  "gap after delete",
			items: []models.OrderedItem{{ID: "A", Position: 1}, {ID: "C", Position: 3}, {ID: "D", Position: 4}},
			want:  []models.PositionUpdate{{ID: "C", NewPosition: 2}, {ID: "D", NewPosition: 3}},
		},
		{
			name:  "unsorted input",
			items: []models.OrderedItem{{ID: "B", Position: 5}, {ID: "A", Position: 2}},
			want:  []models.PositionUpdate{{ID: "A", NewPosition: 1}, {ID: "B", NewPosition: 2}},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Renumber(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
