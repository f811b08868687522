package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/pkg/log"
)

type ReadLine struct {
	cfg     *config.AppConfig
	chat    core.Replier
	router  core.CmdRouter
	metrics *observability.Metrics
	rl      *readline.Instance
}

func NewReadLine(
	cfg *config.AppConfig,
	chat core.Replier,
	router core.CmdRouter,
	metrics *observability.Metrics,
) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "душа> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		AutoComplete:    completer(router),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:     cfg,
		chat:    chat,
		router:  router,
		metrics: metrics,
		rl:      rl,
	}, nil
}

func completer(router core.CmdRouter) readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range router.ListCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name()))
	}
	return readline.NewPrefixCompleter(items...)
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Int64("user_id", r.cfg.CLIUserID).Msg("console chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		fmt.Fprintln(r.rl.Stdout(), r.respond(ctx, line))
	}
}

func (r *ReadLine) respond(ctx context.Context, line string) string {
	if out, handled := r.router.Execute(ctx, r.cfg.CLIUserID, line); handled {
		return out
	}

	reply, err := r.chat.Reply(ctx, r.cfg.CLIUserID, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("conversation turn failed")
		r.metrics.ObserveTurn("cli", "error")
		return fmt.Sprintf("Error: %v", err)
	}
	r.metrics.ObserveTurn("cli", "ok")
	return reply
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
