package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FactsRepo struct {
	pool *pgxpool.Pool
}

func NewFactsRepo(pool *pgxpool.Pool) *FactsRepo {
	return &FactsRepo{pool: pool}
}

func (r *FactsRepo) GetFacts(ctx context.Context, userID int64) (string, error) {
	var facts string
	err := r.pool.QueryRow(ctx, `SELECT facts FROM facts WHERE user_id = $1`, userID).Scan(&facts)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query facts: %w", err)
	}
	return facts, nil
}

func (r *FactsRepo) SetFacts(ctx context.Context, userID int64, facts string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO facts (user_id, facts, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET facts = EXCLUDED.facts, updated_at = EXCLUDED.updated_at`,
		userID, facts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert facts: %w", err)
	}
	return nil
}
