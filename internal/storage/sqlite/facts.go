package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) GetFacts(ctx context.Context, userID int64) (string, error) {
	var facts string
	err := r.db.QueryRowContext(ctx, `SELECT facts FROM facts WHERE user_id = ?`, userID).Scan(&facts)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query facts: %w", err)
	}
	return facts, nil
}

func (r *FactsRepo) SetFacts(ctx context.Context, userID int64, facts string) error {
	query := `
		INSERT INTO facts (user_id, facts, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET facts = excluded.facts, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, userID, facts, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to upsert facts: %w", err)
	}
	return nil
}
