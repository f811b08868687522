package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const apology = "Прости, Душа, сейчас я не могу ответить. Попробуй, пожалуйста, чуть позже."

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	chat    core.Replier
	router  core.CmdRouter
	metrics *observability.Metrics
	sender  *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chat core.Replier,
	router core.CmdRouter,
	metrics *observability.Metrics,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.FromCtx(ctx).Error().Err(err).Msg("telegram handler error")
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		chat:    chat,
		router:  router,
		metrics: metrics,
		sender:  newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !cfg.IsAllowed(c.Sender().ID) {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	if err := b.bot.SetCommands(b.botCommands()); err != nil {
		logger.Warn().Err(err).Msg("failed to publish command list")
	}
	logger.Info().Str("username", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) botCommands() []tele.Command {
	cmds := b.router.ListCommands()
	res := make([]tele.Command, 0, len(cmds))
	for _, cmd := range cmds {
		res = append(res, tele.Command{Text: cmd.Name(), Description: cmd.Description()})
	}
	return res
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	ctx = log.WithFields(ctx, map[string]any{"chat_id": c.Chat().ID})
	userID := c.Sender().ID

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply := respond(ctx, b.router, b.chat, b.metrics, userID, c.Text())
	if reply == "" {
		return nil
	}
	return b.sender.sendMarkdown(ctx, c.Recipient(), reply)
}

// respond routes commands to the router and everything else to the
// conversation. A failed turn yields an apology instead of an error so the
// poller keeps running.
func respond(
	ctx context.Context,
	router core.CmdRouter,
	chat core.Replier,
	metrics *observability.Metrics,
	userID int64,
	text string,
) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if out, handled := router.Execute(ctx, userID, text); handled {
		return out
	}

	reply, err := chat.Reply(ctx, userID, text)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Int64("user_id", userID).Msg("conversation turn failed")
		metrics.ObserveTurn("telegram", "error")
		return apology
	}
	metrics.ObserveTurn("telegram", "ok")

	if strings.TrimSpace(reply) == "" {
		return "…"
	}
	return reply
}
