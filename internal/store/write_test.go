package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/engine"
)

func TestWriteRoot_FirstLabelWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRoot(ctx, "r1", "counter"))
	require.NoError(t, s.WriteRoot(ctx, "r1", "other"))

	roots, err := s.ReadRoots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Root{{ID: "r1", Label: "counter"}}, roots)
}

func TestWriteCommit_RegistersRootAndEffects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestCommit("r1", 1, "ul[0]/li[0]", "ul[0]/li[1]")
	require.NoError(t, s.WriteCommit(ctx, rec, `{"tag":"main"}`))

	roots, err := s.ReadRoots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "r1", roots[0].ID)

	passes, err := s.ReadPasses(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.True(t, passes[0].Committed())
	assert.Equal(t, 3, passes[0].Units)
	assert.Equal(t, `{"tag":"main"}`, passes[0].Snapshot)
	assert.Empty(t, passes[0].Details)

	effects, err := s.ReadEffects(ctx, "r1", 1)
	require.NoError(t, err)
	assert.Equal(t, rec.Effects, effects)
}

func TestWriteCommit_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestCommit("r1", 1, "p[0]")
	require.NoError(t, s.WriteCommit(ctx, rec, ""))
	require.NoError(t, s.WriteCommit(ctx, rec, ""))

	effects, err := s.ReadEffects(ctx, "r1", 1)
	require.NoError(t, err)
	assert.Len(t, effects, 1)
}

func TestWriteFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	pe := &engine.PassError{
		Code:    engine.ErrCodeHostFailure,
		Message: "appendChild failed",
		RootID:  "r1",
		Pass:    2,
		Fiber:   "div[0]/ul[1]/li[1]",
		Details: map[string]string{"op": "appendChild"},
		Err:     errors.New("boom"),
	}
	require.NoError(t, s.WriteFailure(ctx, pe))

	p, ok, err := s.LastPass(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, p.Committed())
	assert.Equal(t, engine.ErrCodeHostFailure, p.Code)
	assert.Equal(t, "appendChild failed: boom", p.Message)
	assert.Equal(t, "div[0]/ul[1]/li[1]", p.Fiber)
	assert.Equal(t, map[string]string{"op": "appendChild"}, p.Details)
}
