package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/dusha/internal/core"
)

const defaultRecentLimit = 20

func userIDParam() mcp.ToolOption {
	return mcp.WithNumber("user_id",
		mcp.Required(),
		mcp.Description("Telegram user id (or the console user id)"),
	)
}

// userID reads the required user_id argument; JSON numbers arrive as float64.
func userID(req mcp.CallToolRequest) (int64, error) {
	v := req.GetFloat("user_id", 0)
	if v <= 0 || v != float64(int64(v)) {
		return 0, fmt.Errorf("user_id must be a positive integer")
	}
	return int64(v), nil
}

// GetFactsTool handles memory_get_facts.
type GetFactsTool struct {
	facts core.FactRepository
}

func NewGetFactsTool(facts core.FactRepository) *GetFactsTool {
	return &GetFactsTool{facts: facts}
}

func (t *GetFactsTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_get_facts",
		mcp.WithDescription("Return the long-term facts stored for a user."),
		userIDParam(),
	)
}

func (t *GetFactsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := userID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	facts, err := t.facts.GetFacts(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get facts: %v", err)), nil
	}
	if strings.TrimSpace(facts) == "" {
		return mcp.NewToolResultText("(no facts stored)"), nil
	}
	return mcp.NewToolResultText(facts), nil
}

// SetFactsTool handles memory_set_facts.
type SetFactsTool struct {
	facts core.FactRepository
}

func NewSetFactsTool(facts core.FactRepository) *SetFactsTool {
	return &SetFactsTool{facts: facts}
}

func (t *SetFactsTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_set_facts",
		mcp.WithDescription("Replace the long-term facts of a user. One fact per line."),
		userIDParam(),
		mcp.WithString("facts",
			mcp.Required(),
			mcp.Description("New facts text; an empty string clears them"),
		),
	)
}

func (t *SetFactsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := userID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	facts := strings.TrimSpace(req.GetString("facts", ""))
	if err := t.facts.SetFacts(ctx, id, facts); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set facts: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("facts for user %d updated", id)), nil
}

// ClearTool handles memory_clear.
type ClearTool struct {
	facts core.FactRepository
}

func NewClearTool(facts core.FactRepository) *ClearTool {
	return &ClearTool{facts: facts}
}

func (t *ClearTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_clear",
		mcp.WithDescription("Forget all long-term facts of a user. History is kept."),
		userIDParam(),
	)
}

func (t *ClearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := userID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.facts.SetFacts(ctx, id, ""); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear facts: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("facts for user %d cleared", id)), nil
}

// RecentMessagesTool handles memory_recent_messages.
type RecentMessagesTool struct {
	messages core.MessagesRepository
}

func NewRecentMessagesTool(messages core.MessagesRepository) *RecentMessagesTool {
	return &RecentMessagesTool{messages: messages}
}

func (t *RecentMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_recent_messages",
		mcp.WithDescription("List the most recent retained messages of a user, oldest first."),
		userIDParam(),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("How many messages to return (default %d)", defaultRecentLimit)),
		),
	)
}

func (t *RecentMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := userID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := int(req.GetFloat("limit", defaultRecentLimit))
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	msgs, err := t.messages.GetRecentMessages(ctx, id, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get messages: %v", err)), nil
	}
	if len(msgs) == 0 {
		return mcp.NewToolResultText("(no messages)"), nil
	}
	return mcp.NewToolResultText(FormatHistory(msgs)), nil
}

// FormatHistory renders messages as "role: content" blocks.
func FormatHistory(msgs []core.Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
	}
	return sb.String()
}
