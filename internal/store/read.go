package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/weft/internal/engine"
)

// Root is a registered render target.
type Root struct {
	ID    string
	Label string
}

// Pass is one journaled pass.
type Pass struct {
	RootID   string
	Seq      int64
	Status   string
	Units    int
	Code     engine.PassErrorCode
	Message  string
	Fiber    string
	Details  map[string]string
	Snapshot string
}

// Committed reports whether the pass reached the host.
func (p Pass) Committed() bool { return p.Status == StatusCommitted }

// ReadRoots returns every registered root ordered by id.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadRoots(ctx context.Context) ([]Root, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label FROM roots
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query roots: %w", err)
	}
	defer rows.Close()

	roots := []Root{}
	for rows.Next() {
		var r Root
		if err := rows.Scan(&r.ID, &r.Label); err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		roots = append(roots, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roots: %w", err)
	}
	return roots, nil
}

// ReadPasses returns the journaled passes of a root ordered by sequence.
func (s *Store) ReadPasses(ctx context.Context, rootID string) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT root_id, pass, status, units, code, message, fiber, details, snapshot
		FROM passes
		WHERE root_id = ?
		ORDER BY pass ASC
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

// LastPass returns the highest-sequence pass of a root. ok is false when the
// root has no passes.
func (s *Store) LastPass(ctx context.Context, rootID string) (p Pass, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT root_id, pass, status, units, code, message, fiber, details, snapshot
		FROM passes
		WHERE root_id = ?
		ORDER BY pass DESC
		LIMIT 1
	`, rootID)
	p, err = scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, false, nil
	}
	if err != nil {
		return Pass{}, false, err
	}
	return p, true, nil
}

// ReadEffects returns the effects of one pass in commit order.
func (s *Store) ReadEffects(ctx context.Context, rootID string, pass int64) ([]engine.EffectRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT effect, kind, path
		FROM effects
		WHERE root_id = ? AND pass = ?
		ORDER BY ord ASC
	`, rootID, pass)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	effects := []engine.EffectRecord{}
	for rows.Next() {
		var name string
		var rec engine.EffectRecord
		if err := rows.Scan(&name, &rec.Kind, &rec.Path); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		e, ok := engine.ParseEffect(name)
		if !ok {
			return nil, fmt.Errorf("scan effect: unknown effect %q", name)
		}
		rec.Effect = e
		effects = append(effects, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return effects, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPass(row scanner) (Pass, error) {
	var p Pass
	var code, details string
	err := row.Scan(&p.RootID, &p.Seq, &p.Status, &p.Units, &code, &p.Message, &p.Fiber, &details, &p.Snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, err
	}
	if err != nil {
		return Pass{}, fmt.Errorf("scan pass: %w", err)
	}
	p.Code = engine.PassErrorCode(code)
	p.Details, err = unmarshalDetails(details)
	if err != nil {
		return Pass{}, fmt.Errorf("scan pass %d: %w", p.Seq, err)
	}
	return p, nil
}
