package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FinanceReader queries the host app's ledger tables read-only. The tables
// themselves belong to the host; only these three aggregates are consumed
// by evaluators.
type FinanceReader struct {
	db *pgxpool.Pool
}

func NewFinanceReader(db *pgxpool.Pool) *FinanceReader {
	return &FinanceReader{db: db}
}

func (f *FinanceReader) NetWorth(ctx context.Context, userID uuid.UUID) (float64, error) {
	var worth float64
	query := `
	SELECT COALESCE(SUM(balance), 0)
	FROM accounts
	WHERE user_id = $1
	`
	if err := f.db.QueryRow(ctx, query, userID).Scan(&worth); err != nil {
		return 0, fmt.Errorf("failed to compute net worth: %w", translate(err))
	}
	return worth, nil
}

func (f *FinanceReader) CategorySpend(ctx context.Context, userID uuid.UUID, category string, from, to time.Time) (float64, error) {
	var total float64
	query := `
	SELECT COALESCE(SUM(amount), 0)
	FROM transactions
	WHERE user_id = $1
		AND category = $2
		AND amount > 0
		AND occurred_at >= $3
		AND occurred_at < $4
	`
	if err := f.db.QueryRow(ctx, query, userID, category, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to compute category spend: %w", translate(err))
	}
	return total, nil
}

func (f *FinanceReader) UncategorizedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `
	SELECT COUNT(*)
	FROM transactions
	WHERE user_id = $1 AND category IS NULL
	`
	if err := f.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count uncategorized transactions: %w", translate(err))
	}
	return count, nil
}
