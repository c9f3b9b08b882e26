package services

import (
	"context"
	"testing"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/repository"
	"finquestAPI/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairMissingCredentials(t *testing.T) {
	badges := memory.NewBadgeLedger()
	users := memory.NewUserDirectory()
	credentials, store := newCredentialFixture(t)
	repair := NewRepairService(badges, credentials, users)

	userID := uuid.New()
	users.AddUser("user_test_clerk", userID, "Jamie Lee")
	ctx := context.Background()

	// three badges, only the first has its credential
	for _, id := range []int{1, 2, 3} {
		require.NoError(t, badges.Award(ctx, &badge.UserBadge{UserID: userID, BadgeID: id, EarnedAt: time.Now()}))
	}
	goalID := 1
	_, err := credentials.Issue(ctx, IssueRequest{
		UserID: userID, GoalID: &goalID, BadgeName: "Curious Starter",
		GoalTitle: "First Look", RecipientDisplayName: "Jamie Lee",
	})
	require.NoError(t, err)

	created, err := repair.RepairMissingCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	for _, id := range []int{1, 2, 3} {
		_, err := store.GetActiveByUserAndGoal(ctx, userID, id)
		assert.NoError(t, err, "goal %d should have a credential after repair", id)
	}

	// a second run finds nothing to do
	created, err = repair.RepairMissingCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestRepairMissingCredentials_NoBadges(t *testing.T) {
	credentials, _ := newCredentialFixture(t)
	repair := NewRepairService(memory.NewBadgeLedger(), credentials, memory.NewUserDirectory())

	created, err := repair.RepairMissingCredentials(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestRepairMissingCredentials_SkipsUnknownBadge(t *testing.T) {
	badges := memory.NewBadgeLedger()
	users := memory.NewUserDirectory()
	credentials, store := newCredentialFixture(t)
	repair := NewRepairService(badges, credentials, users)

	userID := uuid.New()
	users.AddUser("user_test_clerk", userID, "Jamie Lee")
	ctx := context.Background()

	// a badge with no catalog goal is skipped, not fatal
	require.NoError(t, badges.Award(ctx, &badge.UserBadge{UserID: userID, BadgeID: 999, EarnedAt: time.Now()}))

	created, err := repair.RepairMissingCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	_, err = store.GetActiveByUserAndGoal(ctx, userID, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
