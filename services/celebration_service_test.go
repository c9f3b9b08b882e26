package services

import (
	"context"
	"testing"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/goal"
	"finquestAPI/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCelebrationFixture(t *testing.T) (*CelebrationService, *memory.CelebrationStore) {
	t.Helper()
	store := memory.NewCelebrationStore()
	svc := NewCelebrationService(store, memory.NewUserDirectory())
	t.Cleanup(svc.Stop)
	return svc, store
}

func TestCelebrateGoal_Deduplicates(t *testing.T) {
	svc, _ := newCelebrationFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	def, ok := goal.ByID(7)
	require.True(t, ok)
	b := badge.ForGoal(def)

	require.NoError(t, svc.CelebrateGoal(ctx, userID, def, b))
	// the second attempt hits the store conflict and is still success
	require.NoError(t, svc.CelebrateGoal(ctx, userID, def, b))

	pending, err := svc.GetPending(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Message, def.Title)
	assert.Contains(t, pending[0].Message, b.Name)
}

func TestCelebratePhase_Deduplicates(t *testing.T) {
	svc, _ := newCelebrationFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.CelebratePhase(ctx, userID, 1))
	require.NoError(t, svc.CelebratePhase(ctx, userID, 1))
	require.NoError(t, svc.CelebratePhase(ctx, userID, 2))

	pending, err := svc.GetPending(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMarkShown_RemovesFromPending(t *testing.T) {
	svc, _ := newCelebrationFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.CelebratePhase(ctx, userID, 1))
	pending, err := svc.GetPending(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, svc.MarkShown(ctx, pending[0].ID))
	// idempotent
	require.NoError(t, svc.MarkShown(ctx, pending[0].ID))

	pending, err = svc.GetPending(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
