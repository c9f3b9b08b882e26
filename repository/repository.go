package repository

import (
	"context"
	"errors"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/celebration"
	"finquestAPI/internal/credential"
	"finquestAPI/internal/event"
	"finquestAPI/internal/progress"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for lookup misses. Callers translate it to a
	// 404 or an ordinary "not found" verify outcome; it is not an error to log.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert hits a uniqueness constraint.
	// For badges, celebrations and credentials this means the row already
	// exists and the write is treated as success-via-idempotency.
	ErrConflict = errors.New("already exists")

	// ErrNumberTaken is the credential-number collision case, kept separate
	// from ErrConflict because the issuer retries with a fresh number.
	ErrNumberTaken = errors.New("credential number already taken")

	// ErrTransient marks storage failures worth a bounded retry.
	ErrTransient = errors.New("transient storage error")
)

// EventLog is the append-only record of user actions.
type EventLog interface {
	Append(ctx context.Context, ev *event.UserEvent) error
	// ListByUserAndType returns the user's events of one type occurring at or
	// after since, oldest first. A zero since means no lower bound.
	ListByUserAndType(ctx context.Context, userID uuid.UUID, t event.EventType, since time.Time) ([]event.UserEvent, error)
}

// ProgressStore holds per-(user, goal) progress rows.
type ProgressStore interface {
	Get(ctx context.Context, userID uuid.UUID, goalID int) (*progress.GoalProgress, error)
	// Upsert writes the row. Implementations must never overwrite a row whose
	// is_completed flag is already set.
	Upsert(ctx context.Context, p *progress.GoalProgress) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]progress.GoalProgress, error)
}

// BadgeLedger holds append-only award rows.
type BadgeLedger interface {
	// Award inserts the row, returning ErrConflict if the user already holds
	// the badge. The uniqueness constraint lives in storage, not here.
	Award(ctx context.Context, ub *badge.UserBadge) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]badge.UserBadge, error)
}

// CelebrationStore holds one-shot completion notifications.
type CelebrationStore interface {
	// Create inserts the celebration, returning ErrConflict when one already
	// exists for the same (user, goal) or (user, phase).
	Create(ctx context.Context, c *celebration.Celebration) error
	ListPending(ctx context.Context, userID uuid.UUID) ([]celebration.Celebration, error)
	// MarkShown sets shown_at once; repeated calls are no-ops.
	MarkShown(ctx context.Context, id uuid.UUID) error
}

// CredentialStore persists issued credentials and their audit trail.
type CredentialStore interface {
	// Insert writes the credential. ErrNumberTaken signals a credential-number
	// collision; ErrConflict signals an existing ACTIVE credential for the
	// same (user, goal) or (user, phase).
	Insert(ctx context.Context, c *credential.Credential) error
	GetByNumber(ctx context.Context, number string) (*credential.Credential, error)
	GetActiveByUserAndGoal(ctx context.Context, userID uuid.UUID, goalID int) (*credential.Credential, error)
	GetActiveByUserAndPhase(ctx context.Context, userID uuid.UUID, phase int) (*credential.Credential, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]credential.Credential, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	// Revoke applies the one-way ACTIVE -> REVOKED transition.
	Revoke(ctx context.Context, number string, reason string, at time.Time) error
	AppendEvent(ctx context.Context, ev *credential.AuditEvent) error
}

// UserDirectory resolves identities owned by the host app.
type UserDirectory interface {
	GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error)
	DisplayName(ctx context.Context, userID uuid.UUID) (string, error)
	DeviceTokens(ctx context.Context, userID uuid.UUID) ([]celebration.DeviceToken, error)
}

// FinanceReader is the read-only view of the host app's ledger used by
// state-based evaluators. The ledger itself is out of scope here.
type FinanceReader interface {
	NetWorth(ctx context.Context, userID uuid.UUID) (float64, error)
	// CategorySpend sums spending for a category inside [from, to).
	CategorySpend(ctx context.Context, userID uuid.UUID, category string, from, to time.Time) (float64, error)
	UncategorizedCount(ctx context.Context, userID uuid.UUID) (int, error)
}
