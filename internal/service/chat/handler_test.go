package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/internal/service/memory"
	"github.com/sandevgo/dusha/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user int64 = 42

type fixture struct {
	store   *test.Store
	ai      *test.Provider
	metrics *observability.Metrics
	handler *Handler
}

func newFixture(t *testing.T, cfg test.MemoryConfig) *fixture {
	t.Helper()
	store := test.NewStore()
	ai := &test.Provider{}
	metrics := observability.NewMetrics("dusha_test")

	prompter := memory.NewSysPrompt(test.PromptConfig{Path: filepath.Join(t.TempDir(), "SYSTEM.md")})
	assembler := memory.NewAssembler(cfg, prompter, store, store)
	extractor := memory.NewExtractor(store, ai)

	return &fixture{
		store:   store,
		ai:      ai,
		metrics: metrics,
		handler: NewHandler(cfg, store, store, ai, assembler, extractor, metrics),
	}
}

func extractions(f *fixture) int {
	return f.ai.CountTemperature(memory.ExtractionTemperature)
}

func TestReplyFirstTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())
	f.ai.Respond = func(req core.CompletionRequest) (string, error) {
		return "Здравствуй, Душа", nil
	}

	reply, err := f.handler.Reply(ctx, user, "Привет")
	require.NoError(t, err)
	assert.Equal(t, "Здравствуй, Душа", reply)

	reqs := f.ai.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, ReplyTemperature, reqs[0].Temperature)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, core.Message{Role: core.RoleSystem, Content: memory.DefaultSystemPrompt}, reqs[0].Messages[0])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "Привет"}, reqs[0].Messages[1])

	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "Привет"},
		{Role: core.RoleAssistant, Content: "Здравствуй, Душа"},
	}, f.store.Messages(user))
}

func TestReplyCarriesHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	_, err := f.handler.Reply(ctx, user, "первое")
	require.NoError(t, err)
	_, err = f.handler.Reply(ctx, user, "второе")
	require.NoError(t, err)

	reqs := f.ai.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "первое"},
		{Role: core.RoleAssistant, Content: "ok"},
		{Role: core.RoleUser, Content: "второе"},
	}, reqs[1].Messages[1:])
}

func TestExtractionCadence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	want := []int{0, 0, 1, 1, 1, 2}
	for i, n := range want {
		_, err := f.handler.Reply(ctx, user, fmt.Sprintf("сообщение %d", i+1))
		require.NoError(t, err)
		assert.Equal(t, n, extractions(f), "after turn %d", i+1)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Extractions.WithLabelValues(string(memory.OutcomeUpdated))))
}

// Once the retained count sits at the cap (40 is not a multiple of 6)
// extraction no longer fires.
func TestExtractionStopsAtCappedHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	for i := 0; i < 25; i++ {
		_, err := f.handler.Reply(ctx, user, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	n, _ := f.store.CountMessages(ctx, user)
	assert.Equal(t, 40, n)
	assert.Equal(t, 6, extractions(f))
}

// The greeting makes every retained count odd until the cap, and 40 is not
// a multiple of 6, so a user who opened with /start never reaches extraction.
func TestExtractionAfterStartGreeting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	_, err := f.handler.Start(ctx, user)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := f.handler.Reply(ctx, user, fmt.Sprintf("m%d", i))
		require.NoError(t, err)

		n, err := f.store.CountMessages(ctx, user)
		require.NoError(t, err)
		assert.False(t, memory.ShouldExtract(n, 6), "count %d after turn %d", n, i+1)
	}

	n, _ := f.store.CountMessages(ctx, user)
	assert.Equal(t, 40, n)
	assert.Equal(t, 0, extractions(f))
}

func TestReplyTrimsHistory(t *testing.T) {
	ctx := context.Background()
	cfg := test.MemoryConfig{ShortHistoryLimit: 4, HistoryKeep: 5, ExtractEvery: 6}
	f := newFixture(t, cfg)

	for i := 0; i < 4; i++ {
		_, err := f.handler.Reply(ctx, user, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	msgs := f.store.Messages(user)
	require.Len(t, msgs, 5)
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "ok"}, msgs[4])
	assert.Equal(t, "m3", msgs[3].Content)

	// Four earlier records, then the inbound once.
	last := f.ai.Requests()[3]
	require.Len(t, last.Messages, 1+4+1)
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "m1"},
		{Role: core.RoleAssistant, Content: "ok"},
		{Role: core.RoleUser, Content: "m2"},
		{Role: core.RoleAssistant, Content: "ok"},
		{Role: core.RoleUser, Content: "m3"},
	}, last.Messages[1:])
}

func TestExtractorFailureDoesNotFailTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.MemoryConfig{ShortHistoryLimit: 20, HistoryKeep: 40, ExtractEvery: 2})
	require.NoError(t, f.store.SetFacts(ctx, user, "X"))

	f.ai.Respond = func(req core.CompletionRequest) (string, error) {
		if req.Temperature == memory.ExtractionTemperature {
			return "", errors.New("http 503: overloaded")
		}
		return "ответ", nil
	}

	reply, err := f.handler.Reply(ctx, user, "расскажи что-нибудь")
	require.NoError(t, err)
	assert.Equal(t, "ответ", reply)
	assert.Equal(t, 1, extractions(f))

	facts, _ := f.store.GetFacts(ctx, user)
	assert.Equal(t, "X", facts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Extractions.WithLabelValues(string(memory.OutcomeFailed))))
}

func TestMainCompletionErrorPropagates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())
	f.ai.Respond = func(req core.CompletionRequest) (string, error) {
		return "", errors.New("http 401: bad key")
	}

	_, err := f.handler.Reply(ctx, user, "Привет")
	assert.ErrorContains(t, err, "http 401")

	assert.Equal(t, []core.Message{{Role: core.RoleUser, Content: "Привет"}}, f.store.Messages(user))
}

func TestReplyStoreError(t *testing.T) {
	f := newFixture(t, test.DefaultMemoryConfig())
	f.store.AddMessageErr = errors.New("database is locked")

	_, err := f.handler.Reply(context.Background(), user, "Привет")
	assert.ErrorContains(t, err, "database is locked")
	assert.Empty(t, f.ai.Requests())
}

// A failed turn leaves its inbound behind; Ask treats it as history.
func TestAskKeepsOrphanedInbound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())
	f.ai.Respond = func(req core.CompletionRequest) (string, error) {
		return "", errors.New("http 502: bad gateway")
	}
	_, err := f.handler.Reply(ctx, user, "Привет")
	require.Error(t, err)

	f.ai.Respond = nil
	_, err = f.handler.Ask(ctx, user, "Привет")
	require.NoError(t, err)

	reqs := f.ai.Requests()
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "Привет"},
		{Role: core.RoleUser, Content: "Привет"},
	}, reqs[len(reqs)-1].Messages[1:])
}

func TestAskDoesNotPersist(t *testing.T) {
	f := newFixture(t, test.DefaultMemoryConfig())

	reply, err := f.handler.Ask(context.Background(), user, "сколько будет 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Empty(t, f.store.Messages(user))
}

func TestStart(t *testing.T) {
	f := newFixture(t, test.DefaultMemoryConfig())

	got, err := f.handler.Start(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, Greeting, got)
	assert.Equal(t, []core.Message{{Role: core.RoleAssistant, Content: Greeting}}, f.store.Messages(user))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	got, err := f.handler.Remember(ctx, user, "   ")
	require.NoError(t, err)
	assert.Equal(t, RememberUsage, got)
	assert.Equal(t, 0, f.store.SetFactsCalls)

	got, err = f.handler.Remember(ctx, user, "любит кофе")
	require.NoError(t, err)
	assert.Equal(t, RememberDone, got)
	facts, _ := f.store.GetFacts(ctx, user)
	assert.Equal(t, "любит кофе", facts)

	_, err = f.handler.Remember(ctx, user, "  играет гитару\n")
	require.NoError(t, err)
	facts, _ = f.store.GetFacts(ctx, user)
	assert.Equal(t, "любит кофе\nиграет гитару", facts)
}

func TestMemoryAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, test.DefaultMemoryConfig())

	got, err := f.handler.Memory(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, MemoryEmpty, got)

	require.NoError(t, f.store.SetFacts(ctx, user, "- любит кофе\n- играет гитару"))
	got, err = f.handler.Memory(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "- любит кофе\n- играет гитару", got)

	got, err = f.handler.ClearMemory(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, MemoryCleared, got)

	facts, _ := f.store.GetFacts(ctx, user)
	assert.Equal(t, "", facts)

	// Clearing an empty record is fine too.
	_, err = f.handler.ClearMemory(ctx, 7)
	require.NoError(t, err)
	facts, _ = f.store.GetFacts(ctx, 7)
	assert.Equal(t, "", facts)
}
