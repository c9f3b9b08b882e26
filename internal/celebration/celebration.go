package celebration

import (
	"time"

	"github.com/google/uuid"
)

// Celebration is a one-time UI notification of a completion. Exactly one row
// per (user, goal) or (user, phase); ShownAt is set once by the UI.
type Celebration struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	GoalID      *int       `json:"goal_id,omitempty" db:"goal_id"`
	PhaseNumber *int       `json:"phase_number,omitempty" db:"phase_number"`
	BadgeID     *int       `json:"badge_id,omitempty" db:"badge_id"`
	Message     string     `json:"message" db:"message"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ShownAt     *time.Time `json:"shown_at,omitempty" db:"shown_at"`
}

// DeviceToken identifies a push target registered by the host app.
type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}
