package postgres

import (
	"context"
	"fmt"
	"strings"

	"finquestAPI/internal/celebration"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDirectory reads the host app's users table. This service never writes
// user rows; identity is owned by the host.
type UserDirectory struct {
	db *pgxpool.Pool
}

func NewUserDirectory(db *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := d.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", translate(err))
	}
	return userID, nil
}

func (d *UserDirectory) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	var first, last, username string
	query := `
	SELECT COALESCE(first_name, ''), COALESCE(last_name, ''), username
	FROM users
	WHERE id = $1
	`
	err := d.db.QueryRow(ctx, query, userID).Scan(&first, &last, &username)
	if err != nil {
		return "", fmt.Errorf("user not found: %w", translate(err))
	}

	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = username
	}
	return name, nil
}

func (d *UserDirectory) DeviceTokens(ctx context.Context, userID uuid.UUID) ([]celebration.DeviceToken, error) {
	query := `
	SELECT token, platform
	FROM device_tokens
	WHERE user_id = $1
	`

	rows, err := d.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", translate(err))
	}
	defer rows.Close()

	var out []celebration.DeviceToken
	for rows.Next() {
		var t celebration.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
