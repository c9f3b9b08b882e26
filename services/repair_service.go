package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"finquestAPI/internal/goal"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// RepairService re-issues credentials for badges that lost theirs to a
// partial failure. Running it repeatedly or concurrently is safe: the
// issuer's uniqueness check prevents duplicates.
type RepairService struct {
	badges      repository.BadgeLedger
	credentials *CredentialService
	users       repository.UserDirectory
}

func NewRepairService(badges repository.BadgeLedger, credentials *CredentialService, users repository.UserDirectory) *RepairService {
	return &RepairService{badges: badges, credentials: credentials, users: users}
}

// RepairMissingCredentials scans the user's badges, cross-references the
// ACTIVE credentials, and issues whatever is missing. Returns how many
// credentials were created.
func (s *RepairService) RepairMissingCredentials(ctx context.Context, userID uuid.UUID) (int, error) {
	earned, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list badges: %w", err)
	}
	if len(earned) == 0 {
		return 0, nil
	}

	displayName, err := s.users.DisplayName(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve display name: %w", err)
	}

	created := 0
	for _, ub := range earned {
		def, ok := goal.ByID(ub.BadgeID)
		if !ok {
			log.Printf("RepairService: badge %d has no catalog goal, skipping", ub.BadgeID)
			continue
		}

		_, err := s.credentials.GetByUserAndGoal(ctx, userID, def.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("failed to check credential for goal %d: %w", def.ID, err)
		}

		goalID := def.ID
		if _, err := s.credentials.Issue(ctx, IssueRequest{
			UserID:               userID,
			GoalID:               &goalID,
			BadgeName:            def.BadgeName,
			BadgeDescription:     def.Description,
			BadgeLevel:           fmt.Sprintf("Rank %d", def.DifficultyRank),
			GoalTitle:            def.Title,
			CriteriaSummary:      def.CriteriaSummary(),
			RecipientDisplayName: displayName,
		}); err != nil {
			return created, fmt.Errorf("failed to re-issue credential for goal %d: %w", def.ID, err)
		}
		created++
		log.Printf("RepairService: re-issued credential for user %s, goal %d", userID, def.ID)
	}
	return created, nil
}
