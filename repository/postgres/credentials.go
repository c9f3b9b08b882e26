package postgres

import (
	"context"
	"fmt"
	"time"

	"finquestAPI/internal/credential"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialStore struct {
	db *pgxpool.Pool
}

func NewCredentialStore(db *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{db: db}
}

const credentialColumns = `
	id, credential_number, user_id, recipient_display_name, badge_name,
	badge_description, badge_level, goal_id, phase_number, goal_title,
	criteria_summary, issuer_name, issuer_url, evidence_hash, signature,
	status, issued_at, revoked_at, revoked_reason
`

func scanCredential(row interface{ Scan(...any) error }) (*credential.Credential, error) {
	c := &credential.Credential{}
	err := row.Scan(
		&c.ID,
		&c.CredentialNumber,
		&c.UserID,
		&c.RecipientDisplayName,
		&c.BadgeName,
		&c.BadgeDescription,
		&c.BadgeLevel,
		&c.GoalID,
		&c.PhaseNumber,
		&c.GoalTitle,
		&c.CriteriaSummary,
		&c.IssuerName,
		&c.IssuerURL,
		&c.EvidenceHash,
		&c.Signature,
		&c.Status,
		&c.IssuedAt,
		&c.RevokedAt,
		&c.RevokedReason,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Insert depends on three schema constraints: the unique credential_number
// index, and partial unique indexes on (user_id, goal_id) and
// (user_id, phase_number) filtered to status = 'ACTIVE'. translate() turns
// their violations into ErrNumberTaken and ErrConflict respectively.
func (s *CredentialStore) Insert(ctx context.Context, c *credential.Credential) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `
	INSERT INTO credentials (` + credentialColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := s.db.Exec(ctx, query,
		c.ID, c.CredentialNumber, c.UserID, c.RecipientDisplayName, c.BadgeName,
		c.BadgeDescription, c.BadgeLevel, c.GoalID, c.PhaseNumber, c.GoalTitle,
		c.CriteriaSummary, c.IssuerName, c.IssuerURL, c.EvidenceHash, c.Signature,
		c.Status, c.IssuedAt, c.RevokedAt, c.RevokedReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", translate(err))
	}
	return nil
}

func (s *CredentialStore) GetByNumber(ctx context.Context, number string) (*credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE credential_number = $1`

	c, err := scanCredential(s.db.QueryRow(ctx, query, number))
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", translate(err))
	}
	return c, nil
}

func (s *CredentialStore) GetActiveByUserAndGoal(ctx context.Context, userID uuid.UUID, goalID int) (*credential.Credential, error) {
	query := `
	SELECT ` + credentialColumns + `
	FROM credentials
	WHERE user_id = $1 AND goal_id = $2 AND status = 'ACTIVE'
	`

	c, err := scanCredential(s.db.QueryRow(ctx, query, userID, goalID))
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", translate(err))
	}
	return c, nil
}

func (s *CredentialStore) GetActiveByUserAndPhase(ctx context.Context, userID uuid.UUID, phase int) (*credential.Credential, error) {
	query := `
	SELECT ` + credentialColumns + `
	FROM credentials
	WHERE user_id = $1 AND goal_id IS NULL AND phase_number = $2 AND status = 'ACTIVE'
	`

	c, err := scanCredential(s.db.QueryRow(ctx, query, userID, phase))
	if err != nil {
		return nil, fmt.Errorf("failed to get phase certificate: %w", translate(err))
	}
	return c, nil
}

func (s *CredentialStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]credential.Credential, error) {
	query := `
	SELECT ` + credentialColumns + `
	FROM credentials
	WHERE user_id = $1
	ORDER BY issued_at ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", translate(err))
	}
	defer rows.Close()

	var out []credential.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *CredentialStore) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM credentials WHERE credential_number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check credential number: %w", translate(err))
	}
	return exists, nil
}

func (s *CredentialStore) Revoke(ctx context.Context, number string, reason string, at time.Time) error {
	query := `
	UPDATE credentials
	SET status = 'REVOKED', revoked_at = $2, revoked_reason = $3
	WHERE credential_number = $1 AND status = 'ACTIVE'
	`

	_, err := s.db.Exec(ctx, query, number, at, reason)
	if err != nil {
		return fmt.Errorf("failed to revoke credential: %w", translate(err))
	}
	return nil
}

func (s *CredentialStore) AppendEvent(ctx context.Context, ev *credential.AuditEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	query := `
	INSERT INTO credential_events (id, credential_id, event_type, metadata, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query, ev.ID, ev.CredentialID, ev.Type, ev.Metadata, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to append credential event: %w", translate(err))
	}
	return nil
}
