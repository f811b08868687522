package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/dusha/internal/transport/mcpserver"
	"github.com/sandevgo/dusha/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the memory stores over MCP (stdio)",
	Long:  `Runs an MCP server on stdin/stdout so an MCP client can read and correct users' facts and history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		store, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		log.FromCtx(ctx).Info().Msg("serving memory over MCP stdio")
		return server.ServeStdio(mcpserver.New(store.Facts, store.Messages))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
