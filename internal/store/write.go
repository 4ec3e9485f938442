package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/weft/internal/engine"
)

// Pass statuses.
const (
	StatusCommitted = "committed"
	StatusFailed    = "failed"
)

// WriteRoot registers a render target. Duplicate ids are ignored, so the
// first label wins.
func (s *Store) WriteRoot(ctx context.Context, id, label string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roots (id, label) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, label)
	if err != nil {
		return fmt.Errorf("write root: %w", err)
	}
	return nil
}

// WriteCommit records a committed pass and its effects in one transaction.
// The root is registered if needed. Writing the same pass twice is a no-op.
func (s *Store) WriteCommit(ctx context.Context, rec engine.CommitRecord, snapshot string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write commit: begin: %w", err)
	}
	defer tx.Rollback()

	if err := ensureRoot(ctx, tx, rec.RootID); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO passes (root_id, pass, status, units, snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(root_id, pass) DO NOTHING
	`, rec.RootID, rec.Pass, StatusCommitted, rec.Units, snapshot)
	if err != nil {
		return fmt.Errorf("write commit: pass %d: %w", rec.Pass, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	for i, e := range rec.Effects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO effects (root_id, pass, ord, effect, kind, path)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.RootID, rec.Pass, i, e.Effect.String(), e.Kind, e.Path)
		if err != nil {
			return fmt.Errorf("write commit: effect %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	return nil
}

// WriteFailure records a pass that ended in a *engine.PassError.
func (s *Store) WriteFailure(ctx context.Context, pe *engine.PassError) error {
	details, err := marshalDetails(pe.Details)
	if err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	message := pe.Message
	if pe.Err != nil {
		message += ": " + pe.Err.Error()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write failure: begin: %w", err)
	}
	defer tx.Rollback()

	if err := ensureRoot(ctx, tx, pe.RootID); err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO passes (root_id, pass, status, code, message, fiber, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(root_id, pass) DO NOTHING
	`, pe.RootID, pe.Pass, StatusFailed, string(pe.Code), message, pe.Fiber, details)
	if err != nil {
		return fmt.Errorf("write failure: pass %d: %w", pe.Pass, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	return nil
}

func ensureRoot(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO roots (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, id)
	if err != nil {
		return fmt.Errorf("root %s: %w", id, err)
	}
	return nil
}
