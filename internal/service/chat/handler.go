package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/internal/service/memory"
	"github.com/sandevgo/dusha/pkg/log"
)

const ReplyTemperature = 0.7

const (
	Greeting = "Привет, Душа. Я рядом: можешь рассказать, что у тебя на сердце, " +
		"или просто спросить о чём угодно. Чтобы я что-то запомнила, напиши /remember <текст>."

	RememberUsage = "Напиши, что запомнить: /remember <текст>"
	RememberDone  = "Запомнила."
	MemoryEmpty   = "Пока я ничего о тебе не помню."
	MemoryCleared = "Память очищена."
)

type turnState string

const (
	stateReceived          turnState = "received"
	statePersistedInbound  turnState = "persisted_inbound"
	stateCompleted         turnState = "completed"
	statePersistedOutbound turnState = "persisted_outbound"
	stateTrimmed           turnState = "trimmed"
	stateMaybeExtracted    turnState = "maybe_extracted"
	stateReplied           turnState = "replied"
)

// Handler runs one conversation turn at a time per call. Turns of the same
// user are not serialised.
type Handler struct {
	cfg       core.MemoryConfig
	facts     core.FactRepository
	messages  core.MessagesRepository
	ai        core.AIProvider
	assembler *memory.Assembler
	extractor *memory.Extractor
	metrics   *observability.Metrics
}

func NewHandler(
	cfg core.MemoryConfig,
	facts core.FactRepository,
	messages core.MessagesRepository,
	ai core.AIProvider,
	assembler *memory.Assembler,
	extractor *memory.Extractor,
	metrics *observability.Metrics,
) *Handler {
	return &Handler{
		cfg:       cfg,
		facts:     facts,
		messages:  messages,
		ai:        ai,
		assembler: assembler,
		extractor: extractor,
		metrics:   metrics,
	}
}

// Ask assembles the prompt for text and returns the model answer without
// touching history.
func (h *Handler) Ask(ctx context.Context, userID int64, text string) (string, error) {
	msgs, err := h.assembler.Build(ctx, userID, text)
	if err != nil {
		return "", err
	}
	return h.complete(ctx, msgs)
}

func (h *Handler) complete(ctx context.Context, msgs []core.Message) (string, error) {
	start := time.Now()
	reply, err := h.ai.Complete(ctx, core.CompletionRequest{
		Messages:    msgs,
		Temperature: ReplyTemperature,
	})
	h.metrics.ObserveCompletion("reply", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to get completion: %w", err)
	}
	return reply, nil
}

// Reply runs a full turn: persist inbound, complete, persist outbound,
// trim, and refresh facts when the cadence hits.
func (h *Handler) Reply(ctx context.Context, userID int64, text string) (string, error) {
	ctx = log.WithFields(ctx, map[string]any{
		"turn_id": uuid.NewString(),
		"user_id": userID,
	})
	logger := log.FromCtx(ctx)

	state := stateReceived
	advance := func(next turnState) {
		logger.Debug().Str("from", string(state)).Str("to", string(next)).Msg("turn state")
		state = next
	}

	if err := h.messages.AddMessage(ctx, userID, core.RoleUser, text); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}
	advance(statePersistedInbound)

	msgs, err := h.assembler.BuildPersisted(ctx, userID, text)
	if err != nil {
		return "", err
	}

	reply, err := h.complete(ctx, msgs)
	if err != nil {
		return "", err
	}
	advance(stateCompleted)

	if err := h.messages.AddMessage(ctx, userID, core.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("failed to save assistant message: %w", err)
	}
	advance(statePersistedOutbound)

	if err := h.messages.TrimHistory(ctx, userID, h.cfg.GetHistoryKeep()); err != nil {
		return "", fmt.Errorf("failed to trim history: %w", err)
	}
	advance(stateTrimmed)

	h.maybeExtract(ctx, userID, text, reply)
	advance(stateMaybeExtracted)

	advance(stateReplied)
	return reply, nil
}

func (h *Handler) maybeExtract(ctx context.Context, userID int64, userText, reply string) {
	logger := log.FromCtx(ctx)

	count, err := h.messages.CountMessages(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to count history, skipping extraction")
		return
	}
	if !memory.ShouldExtract(count, h.cfg.GetExtractEvery()) {
		return
	}

	start := time.Now()
	res := h.extractor.Update(ctx, userID, userText, reply)
	h.metrics.ObserveCompletion("extraction", time.Since(start))
	h.metrics.ObserveExtraction(string(res.Outcome))
}

// Start records the greeting as the first assistant message.
func (h *Handler) Start(ctx context.Context, userID int64) (string, error) {
	if err := h.messages.AddMessage(ctx, userID, core.RoleAssistant, Greeting); err != nil {
		return "", fmt.Errorf("failed to save greeting: %w", err)
	}
	return Greeting, nil
}

func (h *Handler) Remember(ctx context.Context, userID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return RememberUsage, nil
	}

	current, err := h.facts.GetFacts(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get facts: %w", err)
	}

	updated := text
	if strings.TrimSpace(current) != "" {
		updated = strings.TrimRight(current, "\n") + "\n" + text
	}

	if err := h.facts.SetFacts(ctx, userID, updated); err != nil {
		return "", fmt.Errorf("failed to save facts: %w", err)
	}
	return RememberDone, nil
}

func (h *Handler) Memory(ctx context.Context, userID int64) (string, error) {
	facts, err := h.facts.GetFacts(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get facts: %w", err)
	}
	if strings.TrimSpace(facts) == "" {
		return MemoryEmpty, nil
	}
	return facts, nil
}

func (h *Handler) ClearMemory(ctx context.Context, userID int64) (string, error) {
	if err := h.facts.SetFacts(ctx, userID, ""); err != nil {
		return "", fmt.Errorf("failed to clear facts: %w", err)
	}
	return MemoryCleared, nil
}
