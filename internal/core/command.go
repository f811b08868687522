package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, userID int64, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	// Execute receives everything after "/name" with surrounding whitespace trimmed.
	Execute(ctx context.Context, userID int64, args string) (string, error)
}

// Replier runs one conversation turn for plain text input.
type Replier interface {
	Reply(ctx context.Context, userID int64, text string) (string, error)
}
