package postgres

import (
	"context"
	"fmt"
	"time"

	"finquestAPI/internal/celebration"
	"finquestAPI/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CelebrationStore struct {
	db *pgxpool.Pool
}

func NewCelebrationStore(db *pgxpool.Pool) *CelebrationStore {
	return &CelebrationStore{db: db}
}

// Create depends on partial unique indexes over (user_id, goal_id) and
// (user_id, phase_number) so two concurrent completions yield one row.
func (s *CelebrationStore) Create(ctx context.Context, c *celebration.Celebration) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO celebrations (id, user_id, goal_id, phase_number, badge_id, message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query, c.ID, c.UserID, c.GoalID, c.PhaseNumber, c.BadgeID, c.Message, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create celebration: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (s *CelebrationStore) ListPending(ctx context.Context, userID uuid.UUID) ([]celebration.Celebration, error) {
	query := `
	SELECT id, user_id, goal_id, phase_number, badge_id, message, created_at, shown_at
	FROM celebrations
	WHERE user_id = $1 AND shown_at IS NULL
	ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list celebrations: %w", translate(err))
	}
	defer rows.Close()

	var out []celebration.Celebration
	for rows.Next() {
		var c celebration.Celebration
		if err := rows.Scan(&c.ID, &c.UserID, &c.GoalID, &c.PhaseNumber, &c.BadgeID, &c.Message, &c.CreatedAt, &c.ShownAt); err != nil {
			return nil, fmt.Errorf("failed to scan celebration: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkShown sets shown_at exactly once; later calls leave the first
// timestamp in place.
func (s *CelebrationStore) MarkShown(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE celebrations
	SET shown_at = NOW()
	WHERE id = $1 AND shown_at IS NULL
	`

	_, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark celebration shown: %w", translate(err))
	}
	return nil
}
