package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/dusha/pkg/log"
	"github.com/sandevgo/dusha/pkg/retry"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS facts (
		user_id    BIGINT PRIMARY KEY,
		facts      TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		role       TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user_id ON messages (user_id, id)`,
}

// NewPool connects with backoff and creates the schema.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := waitReady(ctx, retry.NewDefaultRetrier(), pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func waitReady(ctx context.Context, r *retry.Retrier, db pinger) error {
	logger := log.FromCtx(ctx)
	return r.Do(ctx, func() error {
		err := db.Ping(ctx)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return retry.Permanent(err)
		}
		logger.Warn().Err(err).Msg("postgres is not reachable yet")
		return err
	})
}

// isTransient reports whether a ping error may go away on its own. A server
// that answered with an error (bad password, missing database) will not.
// Startup states are the exception.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return true
	}
	switch pgErr.Code {
	case "57P03", "53300": // cannot_connect_now, too_many_connections
		return true
	}
	return false
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}
