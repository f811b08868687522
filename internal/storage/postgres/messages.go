package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/pkg/log"
)

const (
	// The subquery picks the newest rows; the outer ORDER BY restores chronology.
	recentMessagesQuery = `
		SELECT role, content FROM (
			SELECT id, role, content FROM messages WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		) recent ORDER BY id ASC`

	trimHistoryQuery = `
		DELETE FROM messages
		WHERE user_id = $1
		  AND id NOT IN (SELECT id FROM messages WHERE user_id = $1 ORDER BY id DESC LIMIT $2)`
)

type MessagesRepo struct {
	pool *pgxpool.Pool
}

func NewMessagesRepo(pool *pgxpool.Pool) *MessagesRepo {
	return &MessagesRepo{pool: pool}
}

func (r *MessagesRepo) AddMessage(ctx context.Context, userID int64, role, content string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (user_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
		userID, role, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MessagesRepo) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]core.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, recentMessagesQuery, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (r *MessagesRepo) TrimHistory(ctx context.Context, userID int64, keep int) error {
	if keep < 0 {
		keep = 0
	}

	tag, err := r.pool.Exec(ctx, trimHistoryQuery, userID, keep)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		log.FromCtx(ctx).Debug().Int64("deleted", n).Int("keep", keep).Msg("trimmed history")
	}
	return nil
}

func (r *MessagesRepo) CountMessages(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
