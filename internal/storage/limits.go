package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cashwise/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (q *Queries) GetLimit(ctx context.Context, userID string) (*models.ExpenseLimit, error) {
	var (
		limit      models.ExpenseLimit
		categories []byte
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT user_id, categories, max_limit, status, updated_at
		FROM expense_limits
		WHERE user_id = $1`, userID).Scan(&limit.UserID, &categories, &limit.MaxLimit, &limit.Status, &limit.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	limit.Categories = map[string]decimal.Decimal{}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &limit.Categories); err != nil {
			return nil, fmt.Errorf("decode limit categories: %w", err)
		}
	}
	return &limit, nil
}

// UpsertLimit replaces the user's limit configuration.
func (q *Queries) UpsertLimit(ctx context.Context, limit *models.ExpenseLimit) error {
	if limit.Categories == nil {
		limit.Categories = map[string]decimal.Decimal{}
	}
	categories, err := json.Marshal(limit.Categories)
	if err != nil {
		return fmt.Errorf("encode limit categories: %w", err)
	}
	limit.UpdatedAt = q.now()

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO expense_limits (user_id, categories, max_limit, status, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET categories = EXCLUDED.categories,
		              max_limit = EXCLUDED.max_limit,
		              status = EXCLUDED.status,
		              updated_at = EXCLUDED.updated_at`,
		limit.UserID, categories, limit.MaxLimit, limit.Status, limit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert limit: %w", err)
	}
	return nil
}
