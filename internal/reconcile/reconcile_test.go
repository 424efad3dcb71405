package reconcile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

func assignment(member, id string) models.Assignment {
	return models.Assignment{AssignmentID: id, OwnerID: "event-1", MemberID: member}
}

func TestDiff(t *testing.T) {
	t.Run("adds missing and removes undesired", func(t *testing.T) {
		current := []models.Assignment{assignment("y", "a1"), assignment("z", "a2")}

		plan, err := Diff([]string{"x", "y"}, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(plan.ToAdd, []string{"x"}) {
			t.Errorf("expected toAdd [x], got %v", plan.ToAdd)
		}
		if !reflect.DeepEqual(plan.ToRemove, []string{"a2"}) {
			t.Errorf("expected toRemove [a2], got %v", plan.ToRemove)
		}
		if !reflect.DeepEqual(plan.Unchanged, []string{"y"}) {
			t.Errorf("expected unchanged [y], got %v", plan.Unchanged)
		}
		if plan.Removals[0].MemberID != "z" {
			t.Errorf("expected removal record for z, got %+v", plan.Removals[0])
		}
	})

	t.Run("duplicate desired member fails", func(t *testing.T) {
		_, err := Diff([]string{"x", "x"}, nil)

		var invalid *shared.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidInputError, got %v", err)
		}
	})

	t.Run("empty desired member fails", func(t *testing.T) {
		if _, err := Diff([]string{""}, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("preserves input order", func(t *testing.T) {
		current := []models.Assignment{assignment("m3", "a3"), assignment("m1", "a1"), assignment("m2", "a2")}

		plan, err := Diff([]string{"n2", "n1", "n3"}, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(plan.ToAdd, []string{"n2", "n1", "n3"}) {
			t.Errorf("toAdd lost desired order: %v", plan.ToAdd)
		}
		if !reflect.DeepEqual(plan.ToRemove, []string{"a3", "a1", "a2"}) {
			t.Errorf("toRemove lost current order: %v", plan.ToRemove)
		}
	})

	t.Run("identical sets need no changes", func(t *testing.T) {
		plan, err := Diff([]string{"y", "z"}, []models.Assignment{assignment("y", "a1"), assignment("z", "a2")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !plan.IsEmpty() {
			t.Errorf("expected empty plan, got %+v", plan)
		}
	})

	t.Run("empty desired removes everything", func(t *testing.T) {
		plan, err := Diff(nil, []models.Assignment{assignment("y", "a1"), assignment("z", "a2")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(plan.ToAdd) != 0 || len(plan.ToRemove) != 2 {
			t.Errorf("unexpected plan %+v", plan)
		}
	})
}

// TestDiffProperties checks the reconciliation invariants over every pair of subsets of a small universe.
func TestDiffProperties(t *testing.T) {
	universe := []string{"a", "b", "c", "d"}
	subset := func(mask int) []string {
		var out []string
		for i, m := range universe {
			if mask&(1<<i) != 0 {
				out = append(out, m)
			}
		}
		return out
	}

	for dm := 0; dm < 1<<len(universe); dm++ {
		for cm := 0; cm < 1<<len(universe); cm++ {
			desired := subset(dm)
			var current []models.Assignment
			for _, m := range subset(cm) {
				current = append(current, assignment(m, "as-"+m))
			}

			t.Run(fmt.Sprintf("desired=%v/current=%v", desired, subset(cm)), func(t *testing.T) {
				plan, err := Diff(desired, current)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				currentMembers := map[string]bool{}
				byAssignment := map[string]string{}
				for _, a := range current {
					currentMembers[a.MemberID] = true
					byAssignment[a.AssignmentID] = a.MemberID
				}
				wanted := map[string]bool{}
				for _, m := range desired {
					wanted[m] = true
				}

				for _, m := range plan.ToAdd {
					if currentMembers[m] {
						t.Errorf("toAdd contains already linked member %s", m)
					}
				}
				removed := map[string]bool{}
				for _, id := range plan.ToRemove {
					member, ok := byAssignment[id]
					if !ok {
						t.Errorf("toRemove contains unknown assignment %s", id)
					}
					if wanted[member] {
						t.Errorf("toRemove removes desired member %s", member)
					}
					removed[member] = true
				}
				for m := range wanted {
					if currentMembers[m] && (removed[m] || contains(plan.ToAdd, m)) {
						t.Errorf("member %s in both sets must be untouched", m)
					}
				}

				converged := map[string]bool{}
				for m := range currentMembers {
					if !removed[m] {
						converged[m] = true
					}
				}
				for _, m := range plan.ToAdd {
					converged[m] = true
				}
				if !reflect.DeepEqual(converged, wanted) && !(len(converged) == 0 && len(wanted) == 0) {
					t.Errorf("applying plan gives %v, want %v", converged, wanted)
				}
			})
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestResult(t *testing.T) {
	linked := Outcome{Op: Link, MemberID: "x", AssignmentID: "a9"}
	conflict := Outcome{Op: Link, MemberID: "y", Err: fmt.Errorf("insert: %w", shared.ErrAlreadyLinked)}
	unlinked := Outcome{Op: Unlink, MemberID: "z", AssignmentID: "a2"}

	t.Run("Status", func(t *testing.T) {
		tc := []struct {
			name     string
			outcomes []Outcome
			want     Status
		}{
			{name: "nothing", want: NoChanges},
			{name: "all ok", outcomes: []Outcome{linked, unlinked}, want: AllSucceeded},
			{name: "mixed", outcomes: []Outcome{linked, conflict}, want: Partial},
			{name: "all failed", outcomes: []Outcome{conflict}, want: AllFailed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				r := &Result{}
				for _, o := range tt.outcomes {
					r.Record(o)
				}
				if r.Status() != tt.want {
					t.Errorf("expected %v, got %v", tt.want, r.Status())
				}
			})
		}
	})

	t.Run("Messages are distinct", func(t *testing.T) {
		seen := map[string]Status{}
		for _, outcomes := range [][]Outcome{nil, {linked}, {linked, conflict}, {conflict}} {
			r := &Result{}
			for _, o := range outcomes {
				r.Record(o)
			}
			msg := r.Message()
			if prev, dup := seen[msg]; dup {
				t.Errorf("status %v and %v share message %q", prev, r.Status(), msg)
			}
			seen[msg] = r.Status()
		}
	})

	t.Run("Partial message names failures with reasons", func(t *testing.T) {
		r := &Result{}
		r.Record(linked)
		r.Record(conflict)

		msg := r.Message()
		if !strings.Contains(msg, "y (already linked)") {
			t.Errorf("expected normalized conflict reason, got %q", msg)
		}
		if !strings.Contains(msg, "1 of 2") {
			t.Errorf("expected failure counts, got %q", msg)
		}
	})

	t.Run("Reason", func(t *testing.T) {
		tc := []struct {
			err  error
			want string
		}{
			{err: nil, want: ""},
			{err: shared.ErrAlreadyLinked, want: "already linked"},
			{err: shared.NewNotFound("scanner", "s1"), want: "not found"},
			{err: shared.NewInvalidInput("bad"), want: "invalid input"},
			{err: errors.New("boom"), want: "boom"},
		}

		for _, tt := range tc {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		}
	})
}
