package core

import "context"

// FactRepository keeps one long-term facts blob per user.
type FactRepository interface {
	// GetFacts returns "" when the user has no record.
	GetFacts(ctx context.Context, userID int64) (string, error)
	SetFacts(ctx context.Context, userID int64, facts string) error
}

// MessagesRepository is the append-only short-term history log.
type MessagesRepository interface {
	AddMessage(ctx context.Context, userID int64, role, content string) error
	// GetRecentMessages returns up to limit newest records, oldest first.
	GetRecentMessages(ctx context.Context, userID int64, limit int) ([]Message, error)
	// TrimHistory deletes everything but the keep newest records.
	TrimHistory(ctx context.Context, userID int64, keep int) error
	CountMessages(ctx context.Context, userID int64) (int, error)
}
