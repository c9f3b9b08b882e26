package badge

import (
	"time"

	"finquestAPI/internal/goal"

	"github.com/google/uuid"
)

// Badge is immutable catalog data mapping a goal to its award.
type Badge struct {
	ID          int    `json:"id" db:"id"`
	GoalID      int    `json:"goal_id" db:"goal_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// ForGoal derives the badge for a catalog goal. Badge IDs share the goal's
// numbering; the mapping has been 1:1 since launch.
func ForGoal(d goal.GoalDefinition) Badge {
	return Badge{
		ID:          d.ID,
		GoalID:      d.ID,
		Name:        d.BadgeName,
		Description: d.Description,
	}
}

// UserBadge is an append-only award row, unique on (user_id, badge_id).
type UserBadge struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  int       `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}
