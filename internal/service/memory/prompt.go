package memory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/pkg/log"
)

const DefaultSystemPrompt = "Ты — личный ИИ пользователя по имени «Душа». " +
	"Ты говоришь на русском языке, тёпло, мудро, поддерживающе. " +
	"Помогаешь с мышлением, подсознанием, анализом жизни, " +
	"эмоциональной поддержкой и иногда трейдингом для удовольствия. " +
	"Обращайся к пользователю: «Душа»."

const memoryBlockLabel = "Долговременная память о пользователе:"

// SysPrompt resolves the persona instruction. A non-empty SYSTEM.md in the
// runtime directory replaces the built-in text.
type SysPrompt struct {
	cfg core.PromptConfig
}

func NewSysPrompt(cfg core.PromptConfig) *SysPrompt {
	return &SysPrompt{
		cfg: cfg,
	}
}

func (p *SysPrompt) Base() string {
	if p.cfg == nil {
		return DefaultSystemPrompt
	}
	content, err := os.ReadFile(p.cfg.GetSystemPath())
	if err != nil {
		return DefaultSystemPrompt
	}
	if text := strings.TrimSpace(string(content)); text != "" {
		return text
	}
	return DefaultSystemPrompt
}

// Build returns the system message, with the facts block appended when
// facts are present.
func (p *SysPrompt) Build(facts string) core.Message {
	content := p.Base()
	if facts = strings.TrimSpace(facts); facts != "" {
		content = fmt.Sprintf("%s\n\n%s\n%s", content, memoryBlockLabel, facts)
	}
	return core.Message{Role: core.RoleSystem, Content: content}
}

// Assembler composes the completion prompt for one turn:
// system instruction, recent history, then the new user message.
type Assembler struct {
	cfg      core.MemoryConfig
	prompter *SysPrompt
	facts    core.FactRepository
	messages core.MessagesRepository
}

func NewAssembler(
	cfg core.MemoryConfig,
	prompter *SysPrompt,
	facts core.FactRepository,
	messages core.MessagesRepository,
) *Assembler {
	return &Assembler{
		cfg:      cfg,
		prompter: prompter,
		facts:    facts,
		messages: messages,
	}
}

// Build composes the prompt for a message that is not in history yet.
func (a *Assembler) Build(ctx context.Context, userID int64, newText string) ([]core.Message, error) {
	return a.build(ctx, userID, newText, false)
}

// BuildPersisted composes the prompt for a message the caller has just
// appended to history. That record is left out of the window, which still
// holds up to the configured number of earlier records.
func (a *Assembler) BuildPersisted(ctx context.Context, userID int64, newText string) ([]core.Message, error) {
	return a.build(ctx, userID, newText, true)
}

func (a *Assembler) build(ctx context.Context, userID int64, newText string, persisted bool) ([]core.Message, error) {
	facts, err := a.facts.GetFacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get facts: %w", err)
	}

	window := max(a.cfg.GetShortHistoryLimit(), 0)
	limit := window
	if persisted && window > 0 {
		limit++
	}

	history, err := a.messages.GetRecentMessages(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	if persisted {
		if n := len(history); n > 0 && history[n-1].Role == core.RoleUser && history[n-1].Content == newText {
			history = history[:n-1]
		}
		if len(history) > window {
			history = history[len(history)-window:]
		}
	}

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, a.prompter.Build(facts))
	messages = append(messages, history...)
	messages = append(messages, core.Message{Role: core.RoleUser, Content: newText})

	log.FromCtx(ctx).Debug().
		Int("history", len(history)).
		Bool("has_facts", strings.TrimSpace(facts) != "").
		Msg("prompt assembled")

	return messages, nil
}
