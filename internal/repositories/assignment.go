package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// AssignmentRepository persists links between scanners and events.
//
// It implements the assignment source used by sync, with the event as owner and scanners as members.
// Duplicate links are detected from sqlite's structured constraint code, not from error text.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new AssignmentRepository with the given database connection
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assignments returns the scanner links of eventID in creation order.
func (r *AssignmentRepository) Assignments(ctx context.Context, eventID string) ([]models.Assignment, error) {
	if err := eventExists(ctx, r.db, eventID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.event_id, a.scanner_id
		FROM scanner_assignments a
		JOIN scanners s ON s.id = a.scanner_id AND s.deleted_at IS NULL
		WHERE a.event_id = ?
		ORDER BY a.created_at ASC, a.rowid ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.AssignmentID, &a.OwnerID, &a.MemberID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return assignments, nil
}

// Get retrieves one assignment by its ID.
func (r *AssignmentRepository) Get(ctx context.Context, id string) (models.Assignment, error) {
	var a models.Assignment
	err := r.db.QueryRowContext(ctx, `SELECT id, event_id, scanner_id FROM scanner_assignments WHERE id = ?`, id).
		Scan(&a.AssignmentID, &a.OwnerID, &a.MemberID)
	if err == sql.ErrNoRows {
		return a, shared.NewNotFound("assignment", id)
	}
	if err != nil {
		return a, fmt.Errorf("failed to scan assignment: %w", err)
	}
	return a, nil
}

// Link links each scanner to eventID independently and reports one outcome per scanner.
//
// A scanner already linked fails with [shared.ErrAlreadyLinked]; an unknown scanner with a [shared.NotFoundError].
// The returned error is reserved for failures that affect the whole batch, such as a missing event.
func (r *AssignmentRepository) Link(ctx context.Context, eventID string, scannerIDs []string) ([]reconcile.Outcome, error) {
	if err := eventExists(ctx, r.db, eventID); err != nil {
		return nil, err
	}

	outcomes := make([]reconcile.Outcome, 0, len(scannerIDs))
	for _, scannerID := range scannerIDs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		id, err := r.link(ctx, eventID, scannerID)
		outcomes = append(outcomes, reconcile.Outcome{
			Op:           reconcile.Link,
			MemberID:     scannerID,
			AssignmentID: id,
			Err:          err,
		})
	}
	return outcomes, nil
}

func (r *AssignmentRepository) link(ctx context.Context, eventID, scannerID string) (string, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM scanners WHERE id = ? AND deleted_at IS NULL`, scannerID).Scan(&one)
	if err == sql.ErrNoRows {
		return "", shared.NewNotFound("scanner", scannerID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up scanner: %w", err)
	}

	id := shared.GenerateID()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scanner_assignments (id, event_id, scanner_id, created_at) VALUES (?, ?, ?, ?)
	`, id, eventID, scannerID, time.Now())
	switch {
	case isUniqueViolation(err):
		return "", fmt.Errorf("scanner %s on event %s: %w", scannerID, eventID, shared.ErrAlreadyLinked)
	case isForeignKeyViolation(err):
		return "", shared.NewNotFound("scanner", scannerID)
	case err != nil:
		return "", fmt.Errorf("failed to insert assignment: %w", err)
	}
	return id, nil
}

// Unlink removes one assignment by its ID.
func (r *AssignmentRepository) Unlink(ctx context.Context, assignmentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scanner_assignments WHERE id = ?`, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return checkAffected(result, shared.NewNotFound("assignment", assignmentID))
}
