package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/weft/internal/engine"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCommit builds a commit record with one effect per path, all
// placements.
func createTestCommit(rootID string, pass int64, paths ...string) engine.CommitRecord {
	rec := engine.CommitRecord{RootID: rootID, Pass: pass, Units: len(paths) + 1}
	for _, p := range paths {
		rec.Effects = append(rec.Effects, engine.EffectRecord{
			Effect: engine.EffectPlacement,
			Kind:   "li",
			Path:   p,
		})
	}
	return rec
}
