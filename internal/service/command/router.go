package command

import (
	"context"
	"strings"
	"unicode"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/pkg/log"
)

type Router struct {
	commands  map[string]core.Command
	order     []core.Command
	formatter *ResponseFormatter
	metrics   *observability.Metrics
}

func New(commands []core.Command, metrics *observability.Metrics) *Router {
	c := &Router{
		commands:  make(map[string]core.Command),
		formatter: NewResponseFormatter(),
		metrics:   metrics,
	}

	for _, cmd := range commands {
		c.Register(cmd)
	}
	return c
}

// Register adds cmd, replacing any command with the same name.
func (c *Router) Register(cmd core.Command) {
	if _, exists := c.commands[cmd.Name()]; !exists {
		c.order = append(c.order, cmd)
	} else {
		for i, existing := range c.order {
			if existing.Name() == cmd.Name() {
				c.order[i] = cmd
			}
		}
	}
	c.commands[cmd.Name()] = cmd
}

// Execute handles "/name[@bot] payload". It reports false when input is not a command.
func (c *Router) Execute(ctx context.Context, userID int64, input string) (string, bool) {
	name, args, ok := Parse(input)
	if !ok {
		return "", false
	}

	cmd, found := c.commands[name]
	if !found {
		c.metrics.ObserveCommand("unknown")
		return c.formatter.Unknown(name), true
	}
	c.metrics.ObserveCommand(name)

	result, err := cmd.Execute(ctx, userID, args)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("command", name).Msg("command failed")
		return c.formatter.Error(name, err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, len(c.order))
	copy(res, c.order)
	return res
}

// Parse splits "/name@bot payload" into the lower-cased name and the trimmed
// payload.
func Parse(input string) (name, args string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) == 1 {
		return "", "", false
	}

	head, rest := input[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]
	}
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}
