package memory

import (
	"context"
	"testing"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/celebration"
	"finquestAPI/internal/credential"
	"finquestAPI/internal/progress"
	"finquestAPI/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressStore_CompletedRowsNeverRegress(t *testing.T) {
	store := NewProgressStore()
	userID := uuid.New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Upsert(ctx, &progress.GoalProgress{
		UserID: userID, GoalID: 7, Value: 5, Percentage: 100, IsCompleted: true, CompletedAt: &now,
	}))

	// a later, lower evaluation must not overwrite the completed row
	require.NoError(t, store.Upsert(ctx, &progress.GoalProgress{
		UserID: userID, GoalID: 7, Value: 2, Percentage: 40,
	}))

	row, err := store.Get(ctx, userID, 7)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
	assert.Equal(t, 100, row.Percentage)
	assert.Equal(t, float64(5), row.Value)
}

func TestBadgeLedger_AwardConflicts(t *testing.T) {
	ledger := NewBadgeLedger()
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, ledger.Award(ctx, &badge.UserBadge{UserID: userID, BadgeID: 7}))
	err := ledger.Award(ctx, &badge.UserBadge{UserID: userID, BadgeID: 7})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// same badge for a different user is fine
	assert.NoError(t, ledger.Award(ctx, &badge.UserBadge{UserID: uuid.New(), BadgeID: 7}))
}

func TestCredentialStore_UniquenessArbitration(t *testing.T) {
	store := NewCredentialStore()
	userID := uuid.New()
	goalID := 7
	ctx := context.Background()

	first := &credential.Credential{
		CredentialNumber: "FQ-2026-AAAAAA",
		UserID:           userID,
		GoalID:           &goalID,
		Status:           credential.StatusActive,
		IssuedAt:         time.Now(),
	}
	require.NoError(t, store.Insert(ctx, first))

	// duplicate number, any row
	dupNumber := &credential.Credential{
		CredentialNumber: "FQ-2026-AAAAAA",
		UserID:           uuid.New(),
		Status:           credential.StatusActive,
	}
	assert.ErrorIs(t, store.Insert(ctx, dupNumber), repository.ErrNumberTaken)

	// second ACTIVE credential for the same (user, goal)
	dupGoal := &credential.Credential{
		CredentialNumber: "FQ-2026-BBBBBB",
		UserID:           userID,
		GoalID:           &goalID,
		Status:           credential.StatusActive,
	}
	assert.ErrorIs(t, store.Insert(ctx, dupGoal), repository.ErrConflict)

	// after revocation a replacement may be issued
	require.NoError(t, store.Revoke(ctx, "FQ-2026-AAAAAA", "superseded", time.Now()))
	assert.NoError(t, store.Insert(ctx, dupGoal))
}

func TestCredentialStore_PhaseAndGoalDoNotCollide(t *testing.T) {
	store := NewCredentialStore()
	userID := uuid.New()
	goalID, phase := 7, 1
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &credential.Credential{
		CredentialNumber: "FQ-2026-AAAAAA", UserID: userID, GoalID: &goalID, Status: credential.StatusActive,
	}))
	require.NoError(t, store.Insert(ctx, &credential.Credential{
		CredentialNumber: "FQ-2026-BBBBBB", UserID: userID, PhaseNumber: &phase, Status: credential.StatusActive,
	}))

	byGoal, err := store.GetActiveByUserAndGoal(ctx, userID, goalID)
	require.NoError(t, err)
	assert.Equal(t, "FQ-2026-AAAAAA", byGoal.CredentialNumber)

	byPhase, err := store.GetActiveByUserAndPhase(ctx, userID, phase)
	require.NoError(t, err)
	assert.Equal(t, "FQ-2026-BBBBBB", byPhase.CredentialNumber)
}

func newGoalCelebration(userID uuid.UUID, goalID int) *celebration.Celebration {
	id := goalID
	return &celebration.Celebration{ID: uuid.New(), UserID: userID, GoalID: &id, Message: "badge earned"}
}

func newPhaseCelebration(userID uuid.UUID, phase int) *celebration.Celebration {
	p := phase
	return &celebration.Celebration{ID: uuid.New(), UserID: userID, PhaseNumber: &p, Message: "phase complete"}
}

func TestCelebrationStore_DedupPerGoalAndPhase(t *testing.T) {
	store := NewCelebrationStore()
	userID := uuid.New()
	ctx := context.Background()
	goalID, phase := 7, 1

	require.NoError(t, store.Create(ctx, newGoalCelebration(userID, goalID)))
	assert.ErrorIs(t, store.Create(ctx, newGoalCelebration(userID, goalID)), repository.ErrConflict)

	require.NoError(t, store.Create(ctx, newPhaseCelebration(userID, phase)))
	assert.ErrorIs(t, store.Create(ctx, newPhaseCelebration(userID, phase)), repository.ErrConflict)

	pending, err := store.ListPending(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
