package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/dusha/internal/core"
)

// New builds an MCP server exposing the memory stores for inspection and
// manual correction.
func New(facts core.FactRepository, messages core.MessagesRepository) *server.MCPServer {
	s := server.NewMCPServer(
		"dusha-memory",
		core.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	getFacts := NewGetFactsTool(facts)
	s.AddTool(getFacts.Definition(), getFacts.Handle)

	setFacts := NewSetFactsTool(facts)
	s.AddTool(setFacts.Definition(), setFacts.Handle)

	clearTool := NewClearTool(facts)
	s.AddTool(clearTool.Definition(), clearTool.Handle)

	recent := NewRecentMessagesTool(messages)
	s.AddTool(recent.Definition(), recent.Handle)

	return s
}
