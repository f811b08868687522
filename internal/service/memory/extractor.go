package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/pkg/log"
)

const ExtractionTemperature = 0.2

type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// ExtractionResult reports a background fact refresh. It is never turned
// into a turn error.
type ExtractionResult struct {
	Outcome Outcome
	Facts   string
	Err     error
}

var errEmptyExtraction = errors.New("model returned no facts")

const extractionSystemPrompt = "Ты ведёшь краткий список долговременных фактов о пользователе. " +
	"Отвечай только списком, без пояснений."

const extractionPrompt = `Текущие факты о пользователе:
%s

Новый обмен сообщениями:
Пользователь: %s
Ассистент: %s

Верни обновлённый список фактов, по одному на строку, каждая строка начинается с "- ".
Правила:
1. Сохраняй существующие факты, если новые сведения им не противоречат.
2. Добавляй только устойчивые сведения: предпочтения, цели, личные обстоятельства, привычки.
3. Не сохраняй пароли, токены, ключи доступа, номера карт и другие секреты.
4. Не сохраняй разовые детали и мелочи из текущего разговора.`

// ShouldExtract reports whether the retained history count hits the cadence.
func ShouldExtract(count, every int) bool {
	return every > 0 && count > 0 && count%every == 0
}

type Extractor struct {
	facts core.FactRepository
	ai    core.AIProvider
}

func NewExtractor(facts core.FactRepository, ai core.AIProvider) *Extractor {
	return &Extractor{
		facts: facts,
		ai:    ai,
	}
}

// Update asks the model to merge one exchange into the stored facts and
// overwrites them with the answer. Stored facts are untouched on failure.
func (e *Extractor) Update(ctx context.Context, userID int64, userText, assistantText string) ExtractionResult {
	logger := log.FromCtx(ctx)

	current, err := e.facts.GetFacts(ctx, userID)
	if err != nil {
		return e.failed(ctx, fmt.Errorf("failed to get facts: %w", err))
	}

	resp, err := e.ai.Complete(ctx, core.CompletionRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: extractionSystemPrompt},
			{Role: core.RoleUser, Content: buildExtractionPrompt(current, userText, assistantText)},
		},
		Temperature: ExtractionTemperature,
	})
	if err != nil {
		return e.failed(ctx, fmt.Errorf("extraction completion: %w", err))
	}

	updated := cleanExtraction(resp)
	if updated == "" {
		return e.failed(ctx, errEmptyExtraction)
	}

	if err := e.facts.SetFacts(ctx, userID, updated); err != nil {
		return e.failed(ctx, fmt.Errorf("failed to save facts: %w", err))
	}

	logger.Info().Int("lines", strings.Count(updated, "\n")+1).Msg("facts updated")
	return ExtractionResult{Outcome: OutcomeUpdated, Facts: updated}
}

func (e *Extractor) failed(ctx context.Context, err error) ExtractionResult {
	log.FromCtx(ctx).Warn().Err(err).Msg("fact extraction failed")
	return ExtractionResult{Outcome: OutcomeFailed, Err: err}
}

func buildExtractionPrompt(current, userText, assistantText string) string {
	if strings.TrimSpace(current) == "" {
		current = "(пока ничего)"
	}
	return fmt.Sprintf(extractionPrompt, current, userText, assistantText)
}

// cleanExtraction drops a surrounding markdown fence some models add.
func cleanExtraction(resp string) string {
	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, "```") {
		resp = strings.TrimPrefix(resp, "```")
		if i := strings.IndexByte(resp, '\n'); i >= 0 {
			resp = resp[i+1:]
		} else {
			resp = ""
		}
		resp = strings.TrimSuffix(strings.TrimSpace(resp), "```")
	}
	return strings.TrimSpace(resp)
}
