package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/credential"
	"finquestAPI/internal/event"
	"finquestAPI/internal/goal"
	"finquestAPI/internal/progress"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// ErrUnknownEventType is returned for events outside the closed set.
var ErrUnknownEventType = errors.New("unknown event type")

// GoalEngine turns host-app events into progress updates, badge awards,
// celebrations and credentials. All writes go through explicit store
// handles; there is no ambient client.
type GoalEngine struct {
	events       repository.EventLog
	progress     repository.ProgressStore
	badges       repository.BadgeLedger
	users        repository.UserDirectory
	evaluator    *EvaluatorRegistry
	credentials  *CredentialService
	celebrations *CelebrationService
	now          func() time.Time
}

func NewGoalEngine(
	events repository.EventLog,
	progressStore repository.ProgressStore,
	badges repository.BadgeLedger,
	users repository.UserDirectory,
	evaluator *EvaluatorRegistry,
	credentials *CredentialService,
	celebrations *CelebrationService,
) *GoalEngine {
	return &GoalEngine{
		events:       events,
		progress:     progressStore,
		badges:       badges,
		users:        users,
		evaluator:    evaluator,
		credentials:  credentials,
		celebrations: celebrations,
		now:          time.Now,
	}
}

// ProcessEvent appends the event and re-evaluates every goal the event type
// can move. Returns the IDs of goals that completed on this call. Safe to
// run concurrently for the same user; badge, celebration and credential
// uniqueness lives in the stores.
func (e *GoalEngine) ProcessEvent(ctx context.Context, userID uuid.UUID, t event.EventType, metadata map[string]any) ([]int, error) {
	kind, ok := event.KindForEvent(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, t)
	}

	now := e.now()
	if err := e.events.Append(ctx, &event.UserEvent{
		UserID:     userID,
		Type:       t,
		Metadata:   metadata,
		OccurredAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	var completed []int
	for _, def := range goal.ByKind(kind) {
		done, err := e.evaluateGoal(ctx, userID, def, now)
		if err != nil {
			return completed, err
		}
		if done {
			completed = append(completed, def.ID)
		}
	}

	if len(completed) > 0 {
		// Any completion can tip the capstone; it has no event of its own.
		capstoneDone, err := e.checkCapstone(ctx, userID, now)
		if err != nil {
			log.Printf("GoalEngine: capstone re-check failed for user %s: %v", userID, err)
		} else if capstoneDone {
			completed = append(completed, goal.CapstoneGoalID)
		}

		if err := e.issuePhaseCertificates(ctx, userID); err != nil {
			log.Printf("GoalEngine: phase certificate check failed for user %s: %v", userID, err)
		}
	}

	return completed, nil
}

// evaluateGoal runs one goal's evaluator and persists the outcome. Reports
// true only on a first-time completion.
func (e *GoalEngine) evaluateGoal(ctx context.Context, userID uuid.UUID, def goal.GoalDefinition, now time.Time) (bool, error) {
	existing, err := e.progress.Get(ctx, userID, def.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to load progress for goal %d: %w", def.ID, err)
	}
	if existing != nil && existing.IsCompleted {
		// monotonic: completed goals are never re-evaluated
		return false, nil
	}

	result, err := e.evaluator.Evaluate(ctx, userID, def.Criteria, now)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate goal %d: %w", def.ID, err)
	}

	row := &progress.GoalProgress{
		UserID:      userID,
		GoalID:      def.ID,
		Value:       result.Value,
		Percentage:  result.Percentage,
		IsCompleted: result.Completed,
	}
	if result.Completed {
		completedAt := now
		row.CompletedAt = &completedAt
	}
	if err := e.progress.Upsert(ctx, row); err != nil {
		return false, fmt.Errorf("failed to upsert progress for goal %d: %w", def.ID, err)
	}

	if !result.Completed {
		return false, nil
	}

	e.completeGoal(ctx, userID, def, now)
	return true, nil
}

// completeGoal runs the first-time completion side effects. Badge and
// celebration writes treat conflicts as success; credential failures are
// logged loudly and left to the repair job, never rolled back into the
// completion itself.
func (e *GoalEngine) completeGoal(ctx context.Context, userID uuid.UUID, def goal.GoalDefinition, now time.Time) {
	goalsCompleted.Inc()

	b := badge.ForGoal(def)
	err := e.badges.Award(ctx, &badge.UserBadge{UserID: userID, BadgeID: b.ID, EarnedAt: now})
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		log.Printf("GoalEngine: failed to award badge %d to user %s: %v", b.ID, userID, err)
	}

	if err := e.celebrations.CelebrateGoal(ctx, userID, def, b); err != nil {
		log.Printf("GoalEngine: failed to create celebration for goal %d, user %s: %v", def.ID, userID, err)
	}

	if _, err := e.issueGoalCredential(ctx, userID, def); err != nil {
		credentialIssueFailures.Inc()
		log.Printf("ALERT: credential issuance failed for user %s, goal %d (repairable via backfill): %v", userID, def.ID, err)
	}
}

func (e *GoalEngine) issueGoalCredential(ctx context.Context, userID uuid.UUID, def goal.GoalDefinition) (*credential.Credential, error) {
	displayName, err := e.users.DisplayName(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve display name: %w", err)
	}
	goalID := def.ID
	return e.credentials.Issue(ctx, IssueRequest{
		UserID:               userID,
		GoalID:               &goalID,
		BadgeName:            def.BadgeName,
		BadgeDescription:     def.Description,
		BadgeLevel:           fmt.Sprintf("Rank %d", def.DifficultyRank),
		GoalTitle:            def.Title,
		CriteriaSummary:      def.CriteriaSummary(),
		RecipientDisplayName: displayName,
	})
}

// checkCapstone re-derives the capstone goal from progress rows. Reports
// true on first-time completion.
func (e *GoalEngine) checkCapstone(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	def, ok := goal.ByID(goal.CapstoneGoalID)
	if !ok {
		return false, nil
	}
	return e.evaluateGoal(ctx, userID, def, now)
}

// issuePhaseCertificates issues a certificate for every phase currently at
// 100%. Idempotent: the issuer returns the existing certificate unchanged.
func (e *GoalEngine) issuePhaseCertificates(ctx context.Context, userID uuid.UUID) error {
	rows, err := e.progress.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	completed := completedByPhase(rows)

	var displayName string
	for phase := 1; phase <= goal.PhaseCount; phase++ {
		if !phaseComplete(phase, completed) {
			continue
		}
		if displayName == "" {
			if displayName, err = e.users.DisplayName(ctx, userID); err != nil {
				return fmt.Errorf("failed to resolve display name: %w", err)
			}
		}

		p := phase
		_, err := e.credentials.Issue(ctx, IssueRequest{
			UserID:               userID,
			PhaseNumber:          &p,
			BadgeName:            fmt.Sprintf("Phase %d Certificate", p),
			BadgeDescription:     fmt.Sprintf("Completed all goals of phase %d", p),
			BadgeLevel:           fmt.Sprintf("Phase %d", p),
			GoalTitle:            fmt.Sprintf("Phase %d Completion", p),
			CriteriaSummary:      fmt.Sprintf("Complete all %d goals in phase %d", goal.GoalCountInPhase(p), p),
			RecipientDisplayName: displayName,
		})
		if err != nil {
			credentialIssueFailures.Inc()
			log.Printf("ALERT: phase certificate issuance failed for user %s, phase %d: %v", userID, p, err)
			continue
		}

		if err := e.celebrations.CelebratePhase(ctx, userID, p); err != nil {
			log.Printf("GoalEngine: failed to create phase celebration for user %s, phase %d: %v", userID, p, err)
		}
	}
	return nil
}
