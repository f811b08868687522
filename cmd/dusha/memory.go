package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	memoryUserID int64
	historyLimit int
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or reset stored memory of a user",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the long-term facts of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		store, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		facts, err := store.Facts.GetFacts(ctx, memoryUserID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render(fmt.Sprintf("Facts of user %d", memoryUserID)))
		if strings.TrimSpace(facts) == "" {
			fmt.Fprintln(out, ui.DescStyle.Render("(empty)"))
			return nil
		}
		fmt.Fprintln(out, facts)
		return nil
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the long-term facts of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		store, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Facts.SetFacts(ctx, memoryUserID, ""); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "facts of user %d cleared\n", memoryUserID)
		return nil
	},
}

var memoryHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the retained conversation of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		store, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		msgs, err := store.Messages.GetRecentMessages(ctx, memoryUserID, historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(msgs) == 0 {
			fmt.Fprintln(out, ui.DescStyle.Render("(no messages)"))
			return nil
		}
		for _, m := range msgs {
			label := ui.UserStyle.Render(m.Role)
			if m.Role == core.RoleAssistant {
				label = ui.AssistantStyle.Render(m.Role)
			}
			fmt.Fprintf(out, "%s: %s\n\n", label, m.Content)
		}
		return nil
	},
}

func init() {
	memoryCmd.PersistentFlags().Int64VarP(&memoryUserID, "user", "u", 0, "Telegram user id (required)")
	_ = memoryCmd.MarkPersistentFlagRequired("user")
	memoryHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of messages to print")

	memoryCmd.AddCommand(memoryShowCmd, memoryClearCmd, memoryHistoryCmd)
	rootCmd.AddCommand(memoryCmd)
}
