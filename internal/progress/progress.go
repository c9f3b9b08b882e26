package progress

import (
	"time"

	"github.com/google/uuid"
)

// GoalProgress is the per-(user, goal) progress row. Once IsCompleted flips
// true the row is never re-evaluated or regressed.
type GoalProgress struct {
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	GoalID      int        `json:"goal_id" db:"goal_id"`
	Value       float64    `json:"value" db:"value"`
	Percentage  int        `json:"percentage" db:"percentage"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// PhaseStatus is the derived unlock state returned to the UI. Never stored.
type PhaseStatus struct {
	Phase          int  `json:"phase"`
	Unlocked       bool `json:"unlocked"`
	CompletedGoals int  `json:"completed_goals"`
	TotalGoals     int  `json:"total_goals"`
}
