package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// NextSequence increments and returns the next sequence number for the given table.
//
// Sequence numbers give events and scanners a human-readable ordering (event #3, scanner #12).
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRowContext(ctx, query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}

// withTx runs fn in a transaction, committing when it returns nil.
//
// fn must only use tx: in-memory databases hold a single connection.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// constraintCode returns the extended sqlite result code of a constraint failure, or 0.
func constraintCode(err error) sqlite3.ErrNoExtended {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return se.ExtendedCode
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintForeignKey
}

func checkAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
