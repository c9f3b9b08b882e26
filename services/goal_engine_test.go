package services

import (
	"context"
	"testing"
	"time"

	"finquestAPI/internal/credential"
	"finquestAPI/internal/event"
	"finquestAPI/internal/goal"
	"finquestAPI/internal/progress"
	"finquestAPI/repository"
	"finquestAPI/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	events       *memory.EventLog
	progress     *memory.ProgressStore
	badges       *memory.BadgeLedger
	celebrations *memory.CelebrationStore
	credStore    *memory.CredentialStore
	users        *memory.UserDirectory
	finance      *memory.FinanceReader
	credentials  *CredentialService
	engine       *GoalEngine
	userID       uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		events:       memory.NewEventLog(),
		progress:     memory.NewProgressStore(),
		badges:       memory.NewBadgeLedger(),
		celebrations: memory.NewCelebrationStore(),
		credStore:    memory.NewCredentialStore(),
		users:        memory.NewUserDirectory(),
		finance:      memory.NewFinanceReader(),
		userID:       uuid.New(),
	}
	f.users.AddUser("user_test_clerk", f.userID, "Jamie Lee")

	credentials, err := NewCredentialService(f.credStore, CredentialConfig{
		SigningSecret: []byte("test-signing-secret"),
		NumberPrefix:  "FQ",
		IssuerName:    "FinQuest",
		IssuerURL:     "https://finquest.app/verify",
	})
	require.NoError(t, err)
	f.credentials = credentials

	celebrationSvc := NewCelebrationService(f.celebrations, f.users)
	t.Cleanup(celebrationSvc.Stop)

	evaluator := NewEvaluatorRegistry(f.events, f.finance, f.progress)
	require.NoError(t, goal.ValidateCatalog(goal.Catalog, evaluator.KnownKinds()))

	f.engine = NewGoalEngine(f.events, f.progress, f.badges, f.users, evaluator, credentials, celebrationSvc)
	return f
}

// completeGoalDirectly seeds a finished progress row, bypassing the engine.
func (f *engineFixture) completeGoalDirectly(t *testing.T, goalID int) {
	t.Helper()
	now := time.Now()
	err := f.progress.Upsert(context.Background(), &progress.GoalProgress{
		UserID:      f.userID,
		GoalID:      goalID,
		Value:       1,
		Percentage:  100,
		IsCompleted: true,
		CompletedAt: &now,
	})
	require.NoError(t, err)
}

func TestProcessEvent_UnknownType(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.ProcessEvent(context.Background(), f.userID, "made_up_event", nil)
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestProcessEvent_TracksPartialProgress(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// goal 7 needs 5 scans in 7 days; two scans is 40%
	for i := 0; i < 2; i++ {
		completed, err := f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
		assert.Empty(t, completed)
	}

	row, err := f.progress.Get(ctx, f.userID, 7)
	require.NoError(t, err)
	assert.Equal(t, float64(2), row.Value)
	assert.Equal(t, 40, row.Percentage)
	assert.False(t, row.IsCompleted)
}

func TestProcessEvent_CompletesGoal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	var completed []int
	for i := 0; i < 5; i++ {
		var err error
		completed, err = f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{7}, completed)

	row, err := f.progress.Get(ctx, f.userID, 7)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
	assert.Equal(t, 100, row.Percentage)
	require.NotNil(t, row.CompletedAt)

	badges, err := f.badges.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, 7, badges[0].BadgeID)

	pending, err := f.celebrations.ListPending(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].GoalID)
	assert.Equal(t, 7, *pending[0].GoalID)

	cred, err := f.credStore.GetActiveByUserAndGoal(ctx, f.userID, 7)
	require.NoError(t, err)
	assert.True(t, credential.ValidNumber(cred.CredentialNumber))
	assert.Equal(t, "Receipt Rookie", cred.BadgeName)
	assert.Equal(t, "Jamie Lee", cred.RecipientDisplayName)
	assert.Equal(t, credential.StatusActive, cred.Status)
}

func TestProcessEvent_CompletionIsMonotonic(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
	}

	// further events must not re-complete, re-award or re-issue
	completed, err := f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
	require.NoError(t, err)
	assert.Empty(t, completed)

	badges, err := f.badges.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	creds, err := f.credStore.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, creds, 1)

	pending, err := f.celebrations.ListPending(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestProcessEvent_IssuesPhaseCertificate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// nine of ten phase-1 goals already done; the receipt goal is the last
	for _, id := range []int{1, 2, 3, 4, 5, 6, 8, 9, 10} {
		f.completeGoalDirectly(t, id)
	}

	for i := 0; i < 5; i++ {
		_, err := f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
	}

	cert, err := f.credStore.GetActiveByUserAndPhase(ctx, f.userID, 1)
	require.NoError(t, err)
	assert.Nil(t, cert.GoalID)
	require.NotNil(t, cert.PhaseNumber)
	assert.Equal(t, 1, *cert.PhaseNumber)
	assert.Equal(t, "Phase 1 Certificate", cert.BadgeName)
	assert.True(t, credential.ValidNumber(cert.CredentialNumber))

	var phaseCelebrations int
	pending, err := f.celebrations.ListPending(ctx, f.userID)
	require.NoError(t, err)
	for _, c := range pending {
		if c.PhaseNumber != nil {
			phaseCelebrations++
		}
	}
	assert.Equal(t, 1, phaseCelebrations)

	// reprocessing must not duplicate the certificate
	_, err = f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
	require.NoError(t, err)
	creds, err := f.credStore.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	var certs int
	for _, c := range creds {
		if c.PhaseNumber != nil {
			certs++
		}
	}
	assert.Equal(t, 1, certs)
}

func TestProcessEvent_CapstoneCompletesLast(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// every goal except the receipt goal and the capstone is already done
	for _, d := range goal.Catalog {
		if d.ID == 7 || d.ID == goal.CapstoneGoalID {
			continue
		}
		f.completeGoalDirectly(t, d.ID)
	}

	var completed []int
	for i := 0; i < 5; i++ {
		var err error
		completed, err = f.engine.ProcessEvent(ctx, f.userID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
	}

	assert.Contains(t, completed, 7)
	assert.Contains(t, completed, goal.CapstoneGoalID)

	row, err := f.progress.Get(ctx, f.userID, goal.CapstoneGoalID)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)
}

func TestProcessEvent_CredentialFailureDoesNotBlockCompletion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// an unknown user has no display name, so issuance fails
	strangerID := uuid.New()
	for i := 0; i < 5; i++ {
		_, err := f.engine.ProcessEvent(ctx, strangerID, event.EventReceiptScanned, nil)
		require.NoError(t, err)
	}

	row, err := f.progress.Get(ctx, strangerID, 7)
	require.NoError(t, err)
	assert.True(t, row.IsCompleted)

	badges, err := f.badges.ListByUser(ctx, strangerID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	_, err = f.credStore.GetActiveByUserAndGoal(ctx, strangerID, 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
