package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (h *MessagesRepo) AddMessage(ctx context.Context, userID int64, role, content string) error {
	query := `INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	_, err := h.db.ExecContext(ctx, query, userID, role, content, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (h *MessagesRepo) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]core.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Fetch the LAST 'limit' messages by ordering DESC
	query := `SELECT role, content FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, userID, limit)
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

	// Newest -> Oldest back to Oldest -> Newest for the prompt.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (h *MessagesRepo) TrimHistory(ctx context.Context, userID int64, keep int) error {
	// A negative LIMIT means "no limit" in SQLite.
	if keep < 0 {
		keep = 0
	}

	query := `
		DELETE FROM messages
		WHERE user_id = ?
		  AND id NOT IN (SELECT id FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?)`

	res, err := h.db.ExecContext(ctx, query, userID, userID, keep)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.FromCtx(ctx).Debug().Int64("deleted", n).Int("keep", keep).Msg("trimmed history")
	}
	return nil
}

func (h *MessagesRepo) CountMessages(ctx context.Context, userID int64) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
