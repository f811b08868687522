package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/service/chat"
)

// StartCommand greets the user and opens the history.
type StartCommand struct {
	chat *chat.Handler
}

func NewStartCommand(h *chat.Handler) *StartCommand {
	return &StartCommand{chat: h}
}

func (c *StartCommand) Name() string        { return "start" }
func (c *StartCommand) Description() string { return "Поздороваться" }

func (c *StartCommand) Execute(ctx context.Context, userID int64, _ string) (string, error) {
	return c.chat.Start(ctx, userID)
}

type RememberCommand struct {
	chat *chat.Handler
}

func NewRememberCommand(h *chat.Handler) *RememberCommand {
	return &RememberCommand{chat: h}
}

func (c *RememberCommand) Name() string        { return "remember" }
func (c *RememberCommand) Description() string { return "Запомнить факт о себе: /remember <текст>" }

func (c *RememberCommand) Execute(ctx context.Context, userID int64, args string) (string, error) {
	return c.chat.Remember(ctx, userID, args)
}

type MemoryCommand struct {
	chat *chat.Handler
}

func NewMemoryCommand(h *chat.Handler) *MemoryCommand {
	return &MemoryCommand{chat: h}
}

func (c *MemoryCommand) Name() string        { return "memory" }
func (c *MemoryCommand) Description() string { return "Показать, что я о тебе помню" }

func (c *MemoryCommand) Execute(ctx context.Context, userID int64, _ string) (string, error) {
	return c.chat.Memory(ctx, userID)
}

type ClearMemoryCommand struct {
	chat *chat.Handler
}

func NewClearMemoryCommand(h *chat.Handler) *ClearMemoryCommand {
	return &ClearMemoryCommand{chat: h}
}

func (c *ClearMemoryCommand) Name() string        { return "clear_memory" }
func (c *ClearMemoryCommand) Description() string { return "Забыть все факты" }

func (c *ClearMemoryCommand) Execute(ctx context.Context, userID int64, _ string) (string, error) {
	return c.chat.ClearMemory(ctx, userID)
}

type HelpCommand struct {
	router    core.CmdRouter
	formatter *ResponseFormatter
}

func NewHelpCommand(router core.CmdRouter) *HelpCommand {
	return &HelpCommand{
		router:    router,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Список команд" }

func (c *HelpCommand) Execute(_ context.Context, _ int64, _ string) (string, error) {
	cmds := c.router.ListCommands()
	items := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		items = append(items, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Команды"),
		c.formatter.List(items),
	), nil
}
