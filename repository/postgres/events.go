package postgres

import (
	"context"
	"fmt"
	"time"

	"finquestAPI/internal/event"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventLog struct {
	db *pgxpool.Pool
}

func NewEventLog(db *pgxpool.Pool) *EventLog {
	return &EventLog{db: db}
}

func (l *EventLog) Append(ctx context.Context, ev *event.UserEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	query := `
	INSERT INTO user_events (id, user_id, event_type, metadata, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := l.db.Exec(ctx, query, ev.ID, ev.UserID, ev.Type, ev.Metadata, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", translate(err))
	}
	return nil
}

func (l *EventLog) ListByUserAndType(ctx context.Context, userID uuid.UUID, t event.EventType, since time.Time) ([]event.UserEvent, error) {
	query := `
	SELECT id, user_id, event_type, metadata, occurred_at
	FROM user_events
	WHERE user_id = $1 AND event_type = $2 AND ($3::timestamptz IS NULL OR occurred_at >= $3)
	ORDER BY occurred_at ASC
	`

	var sinceArg *time.Time
	if !since.IsZero() {
		sinceArg = &since
	}

	rows, err := l.db.Query(ctx, query, userID, t, sinceArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", translate(err))
	}
	defer rows.Close()

	var out []event.UserEvent
	for rows.Next() {
		var ev event.UserEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Type, &ev.Metadata, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
