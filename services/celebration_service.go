package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/celebration"
	"finquestAPI/internal/goal"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// PushProvider delivers celebration pushes. The real implementation is FCM;
// nil disables push entirely.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []celebration.DeviceToken, title, body string, data map[string]any) error
}

type pushJob struct {
	userID uuid.UUID
	title  string
	body   string
	data   map[string]any
}

// CelebrationService creates the one-shot completion notifications and
// pushes them out through a small worker pool. Creation is deduplicated per
// (user, goal) and (user, phase) by the store.
type CelebrationService struct {
	store        repository.CelebrationStore
	users        repository.UserDirectory
	pushProvider PushProvider
	jobQueue     chan pushJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewCelebrationService(store repository.CelebrationStore, users repository.UserDirectory) *CelebrationService {
	s := &CelebrationService{
		store:    store,
		users:    users,
		jobQueue: make(chan pushJob, 100),
		stopChan: make(chan struct{}),
	}
	for i := 0; i < 3; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// SetPushProvider injects the real push backend from main.go.
func (s *CelebrationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

// Stop drains the workers. Queued pushes already picked up still complete.
func (s *CelebrationService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *CelebrationService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobQueue:
			s.deliver(job)
		case <-s.stopChan:
			return
		}
	}
}

func (s *CelebrationService) deliver(job pushJob) {
	if s.pushProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := s.users.DeviceTokens(ctx, job.userID)
	if err != nil || len(tokens) == 0 {
		return
	}
	if err := s.pushProvider.SendPush(ctx, tokens, job.title, job.body, job.data); err != nil {
		log.Printf("CelebrationService: push failed for user %s: %v", job.userID, err)
	}
}

func (s *CelebrationService) enqueue(job pushJob) {
	select {
	case s.jobQueue <- job:
	default:
		log.Printf("CelebrationService: push queue full, dropping push for user %s", job.userID)
	}
}

// CelebrateGoal creates the goal-completion celebration. A conflict means
// the celebration already exists, which is success.
func (s *CelebrationService) CelebrateGoal(ctx context.Context, userID uuid.UUID, def goal.GoalDefinition, b badge.Badge) error {
	goalID := def.ID
	badgeID := b.ID
	c := &celebration.Celebration{
		ID:        uuid.New(),
		UserID:    userID,
		GoalID:    &goalID,
		BadgeID:   &badgeID,
		Message:   fmt.Sprintf("You earned the %q badge by completing %q!", b.Name, def.Title),
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create celebration: %w", err)
	}
	celebrationsCreated.Inc()

	s.enqueue(pushJob{
		userID: userID,
		title:  "Badge earned!",
		body:   c.Message,
		data:   map[string]any{"goal_id": def.ID, "badge_id": b.ID},
	})
	return nil
}

// CelebratePhase creates the phase-completion celebration, deduplicated per
// (user, phase).
func (s *CelebrationService) CelebratePhase(ctx context.Context, userID uuid.UUID, phase int) error {
	p := phase
	c := &celebration.Celebration{
		ID:          uuid.New(),
		UserID:      userID,
		PhaseNumber: &p,
		Message:     fmt.Sprintf("Phase %d complete! Your certificate is ready.", phase),
		CreatedAt:   time.Now(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create phase celebration: %w", err)
	}
	celebrationsCreated.Inc()

	s.enqueue(pushJob{
		userID: userID,
		title:  "Phase complete!",
		body:   c.Message,
		data:   map[string]any{"phase": phase},
	})
	return nil
}

func (s *CelebrationService) GetPending(ctx context.Context, userID uuid.UUID) ([]celebration.Celebration, error) {
	return s.store.ListPending(ctx, userID)
}

// MarkShown is idempotent; showing twice is a no-op.
func (s *CelebrationService) MarkShown(ctx context.Context, id uuid.UUID) error {
	return s.store.MarkShown(ctx, id)
}
