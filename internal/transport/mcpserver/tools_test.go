package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestDefinitions(t *testing.T) {
	store := test.NewStore()
	defs := []mcp.Tool{
		NewGetFactsTool(store).Definition(),
		NewSetFactsTool(store).Definition(),
		NewClearTool(store).Definition(),
		NewRecentMessagesTool(store).Definition(),
	}

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.Contains(t, def.InputSchema.Properties, "user_id", def.Name)
		assert.Contains(t, def.InputSchema.Required, "user_id", def.Name)
	}
	assert.Equal(t, []string{"memory_get_facts", "memory_set_facts", "memory_clear", "memory_recent_messages"}, names)
}

func TestFactsTools(t *testing.T) {
	ctx := context.Background()
	store := test.NewStore()

	res, err := NewGetFactsTool(store).Handle(ctx, makeReq(map[string]interface{}{"user_id": float64(5)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "(no facts stored)", resultText(res))

	res, err = NewSetFactsTool(store).Handle(ctx, makeReq(map[string]interface{}{
		"user_id": float64(5),
		"facts":   "  - любит кофе\n",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	facts, _ := store.GetFacts(ctx, 5)
	assert.Equal(t, "- любит кофе", facts)

	res, _ = NewGetFactsTool(store).Handle(ctx, makeReq(map[string]interface{}{"user_id": float64(5)}))
	assert.Equal(t, "- любит кофе", resultText(res))

	res, _ = NewClearTool(store).Handle(ctx, makeReq(map[string]interface{}{"user_id": float64(5)}))
	assert.False(t, res.IsError)
	facts, _ = store.GetFacts(ctx, 5)
	assert.Equal(t, "", facts)
}

func TestInvalidUserID(t *testing.T) {
	ctx := context.Background()
	tool := NewGetFactsTool(test.NewStore())

	for _, args := range []map[string]interface{}{
		{},
		{"user_id": float64(0)},
		{"user_id": float64(-3)},
		{"user_id": 1.5},
	} {
		res, err := tool.Handle(ctx, makeReq(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}
}

func TestStoreErrorIsToolError(t *testing.T) {
	store := test.NewStore()
	store.GetFactsErr = errors.New("no such table: facts")

	res, err := NewGetFactsTool(store).Handle(context.Background(), makeReq(map[string]interface{}{"user_id": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "no such table")
}

func TestRecentMessagesTool(t *testing.T) {
	ctx := context.Background()
	store := test.NewStore()
	tool := NewRecentMessagesTool(store)

	res, _ := tool.Handle(ctx, makeReq(map[string]interface{}{"user_id": float64(3)}))
	assert.Equal(t, "(no messages)", resultText(res))

	require.NoError(t, store.AddMessage(ctx, 3, core.RoleUser, "Привет"))
	require.NoError(t, store.AddMessage(ctx, 3, core.RoleAssistant, "Здравствуй"))
	require.NoError(t, store.AddMessage(ctx, 3, core.RoleUser, "Как ты?"))

	res, _ = tool.Handle(ctx, makeReq(map[string]interface{}{"user_id": float64(3), "limit": float64(2)}))
	assert.Equal(t, "assistant: Здравствуй\n\nuser: Как ты?\n", resultText(res))
}

func TestNewServerRegistersTools(t *testing.T) {
	store := test.NewStore()
	s := New(store, store)
	assert.NotNil(t, s)
}
