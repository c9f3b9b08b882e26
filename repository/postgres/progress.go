package postgres

import (
	"context"
	"fmt"

	"finquestAPI/internal/progress"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressStore struct {
	db *pgxpool.Pool
}

func NewProgressStore(db *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) Get(ctx context.Context, userID uuid.UUID, goalID int) (*progress.GoalProgress, error) {
	query := `
	SELECT user_id, goal_id, value, percentage, is_completed, completed_at, updated_at
	FROM goal_progress
	WHERE user_id = $1 AND goal_id = $2
	`

	p := &progress.GoalProgress{}
	err := s.db.QueryRow(ctx, query, userID, goalID).Scan(
		&p.UserID,
		&p.GoalID,
		&p.Value,
		&p.Percentage,
		&p.IsCompleted,
		&p.CompletedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", translate(err))
	}
	return p, nil
}

// Upsert writes the row. The WHERE clause on the conflict update keeps
// completed rows immutable even when two evaluations race.
func (s *ProgressStore) Upsert(ctx context.Context, p *progress.GoalProgress) error {
	query := `
	INSERT INTO goal_progress (user_id, goal_id, value, percentage, is_completed, completed_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (user_id, goal_id)
	DO UPDATE SET
		value = $3,
		percentage = $4,
		is_completed = $5,
		completed_at = $6,
		updated_at = NOW()
	WHERE goal_progress.is_completed = false
	`

	_, err := s.db.Exec(ctx, query, p.UserID, p.GoalID, p.Value, p.Percentage, p.IsCompleted, p.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", translate(err))
	}
	return nil
}

func (s *ProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]progress.GoalProgress, error) {
	query := `
	SELECT user_id, goal_id, value, percentage, is_completed, completed_at, updated_at
	FROM goal_progress
	WHERE user_id = $1
	ORDER BY goal_id ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", translate(err))
	}
	defer rows.Close()

	var out []progress.GoalProgress
	for rows.Next() {
		var p progress.GoalProgress
		if err := rows.Scan(&p.UserID, &p.GoalID, &p.Value, &p.Percentage, &p.IsCompleted, &p.CompletedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
