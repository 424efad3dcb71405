package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// ScannerRepository implements models.Repository[*models.Scanner].
//
// Serials are unique across live and deleted scanners.
type ScannerRepository struct {
	db *sql.DB
}

// NewScannerRepository creates a new ScannerRepository with the given database connection
func NewScannerRepository(db *sql.DB) *ScannerRepository {
	return &ScannerRepository{db: db}
}

const scannerColumns = `id, sequence, name, serial, created_at, updated_at, deleted_at`

// Create inserts a new scanner. A reused serial fails with [shared.ErrInvalidInput].
func (r *ScannerRepository) Create(ctx context.Context, s *models.Scanner) error {
	sequence, err := NextSequence(ctx, r.db, "scanners")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	s.SetID(shared.GenerateID())
	s.SetSequence(sequence)

	if err := s.Validate(); err != nil {
		return shared.NewInvalidInput("%v", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scanners (id, sequence, name, serial, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID(), sequence, s.Name, s.Serial, s.CreatedAt(), s.UpdatedAt())
	if isUniqueViolation(err) {
		return shared.NewInvalidInput("scanner serial %q is already registered", s.Serial)
	}
	if err != nil {
		return fmt.Errorf("failed to insert scanner: %w", err)
	}
	return nil
}

// Get retrieves a scanner by ID, excluding soft-deleted scanners
func (r *ScannerRepository) Get(ctx context.Context, id string) (*models.Scanner, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetBySerial retrieves a scanner by its device serial
func (r *ScannerRepository) GetBySerial(ctx context.Context, serial string) (*models.Scanner, error) {
	return r.getWhere(ctx, "serial = ?", serial)
}

func (r *ScannerRepository) getWhere(ctx context.Context, cond string, arg string) (*models.Scanner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scannerColumns+` FROM scanners WHERE `+cond+` AND deleted_at IS NULL`, arg)

	s, err := scanScanner(row)
	if err == sql.ErrNoRows {
		return nil, shared.NewNotFound("scanner", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scanner: %w", err)
	}
	return s, nil
}

// Update renames a scanner. Serials are immutable.
func (r *ScannerRepository) Update(ctx context.Context, s *models.Scanner) error {
	if err := s.Validate(); err != nil {
		return shared.NewInvalidInput("%v", err)
	}

	now := time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE scanners SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL
	`, s.Name, now, s.ID())
	if err != nil {
		return fmt.Errorf("failed to update scanner: %w", err)
	}
	if err := checkAffected(result, shared.NewNotFound("scanner", s.ID())); err != nil {
		return err
	}

	s.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a scanner and drops its event links.
func (r *ScannerRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE scanners SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to delete scanner: %w", err)
		}
		if err := checkAffected(result, shared.NewNotFound("scanner", id)); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM scanner_assignments WHERE scanner_id = ?`, id); err != nil {
			return fmt.Errorf("failed to unlink scanner: %w", err)
		}
		return nil
	})
}

// List retrieves scanners ordered by sequence. Criteria are not used.
func (r *ScannerRepository) List(ctx context.Context, _ map[string]any) ([]*models.Scanner, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+scannerColumns+` FROM scanners WHERE deleted_at IS NULL ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scanners: %w", err)
	}
	defer rows.Close()

	var scanners []*models.Scanner
	for rows.Next() {
		s, err := scanScanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scanner: %w", err)
		}
		scanners = append(scanners, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return scanners, nil
}

func scanScanner(s scanner) (*models.Scanner, error) {
	var (
		id, name, serial     string
		sequence             int
		createdAt, updatedAt time.Time
		deletedAt            sql.NullTime
	)
	if err := s.Scan(&id, &sequence, &name, &serial, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	sc := models.NewScanner(sequence, name, serial)
	sc.SetID(id)
	sc.SetCreatedAt(createdAt)
	sc.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		sc.SetDeletedAt(&deletedAt.Time)
	}
	return sc, nil
}
