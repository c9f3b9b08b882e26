package postgres

import (
	"context"
	"fmt"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BadgeLedger struct {
	db *pgxpool.Pool
}

func NewBadgeLedger(db *pgxpool.Pool) *BadgeLedger {
	return &BadgeLedger{db: db}
}

// Award relies on the (user_id, badge_id) unique constraint to close the
// check-then-insert race: a zero-row insert means the badge already exists.
func (s *BadgeLedger) Award(ctx context.Context, ub *badge.UserBadge) error {
	if ub.EarnedAt.IsZero() {
		ub.EarnedAt = time.Now()
	}

	query := `
	INSERT INTO user_badges (user_id, badge_id, earned_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query, ub.UserID, ub.BadgeID, ub.EarnedAt)
	if err != nil {
		return fmt.Errorf("failed to award badge: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (s *BadgeLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]badge.UserBadge, error) {
	query := `
	SELECT user_id, badge_id, earned_at
	FROM user_badges
	WHERE user_id = $1
	ORDER BY earned_at ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", translate(err))
	}
	defer rows.Close()

	var out []badge.UserBadge
	for rows.Next() {
		var ub badge.UserBadge
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		out = append(out, ub)
	}
	return out, rows.Err()
}
