package command

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/internal/service/chat"
	"github.com/sandevgo/dusha/internal/service/memory"
	"github.com/sandevgo/dusha/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{"/start", "start", "", true},
		{"  /memory  ", "memory", "", true},
		{"/remember любит кофе", "remember", "любит кофе", true},
		{"/remember   любит   кофе  ", "remember", "любит   кофе", true},
		{"/remember\nиграет на гитаре", "remember", "играет на гитаре", true},
		{"/Clear_Memory@dusha_bot", "clear_memory", "", true},
		{"/remember@dusha_bot пьёт чай", "remember", "пьёт чай", true},
		{"привет", "", "", false},
		{"", "", "", false},
		{"/", "", "", false},
		{"/@bot", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, args, ok := Parse(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

type failingCommand struct{}

func (failingCommand) Name() string        { return "boom" }
func (failingCommand) Description() string { return "always fails" }
func (failingCommand) Execute(context.Context, int64, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func newTestRouter(t *testing.T) (*Router, *test.Store, *observability.Metrics) {
	t.Helper()
	store := test.NewStore()
	ai := &test.Provider{}
	cfg := test.DefaultMemoryConfig()
	prompter := memory.NewSysPrompt(test.PromptConfig{Path: filepath.Join(t.TempDir(), "SYSTEM.md")})
	h := chat.NewHandler(cfg, store, store, ai,
		memory.NewAssembler(cfg, prompter, store, store),
		memory.NewExtractor(store, ai),
		nil,
	)
	metrics := observability.NewMetrics("dusha_test")
	return NewRouter(h, metrics), store, metrics
}

func TestRouterCommands(t *testing.T) {
	ctx := context.Background()
	r, store, metrics := newTestRouter(t)

	out, handled := r.Execute(ctx, 1, "просто текст")
	assert.False(t, handled)
	assert.Empty(t, out)

	out, handled = r.Execute(ctx, 1, "/start")
	assert.True(t, handled)
	assert.Equal(t, chat.Greeting, out)

	out, _ = r.Execute(ctx, 1, "/remember")
	assert.Equal(t, chat.RememberUsage, out)

	out, _ = r.Execute(ctx, 1, "/remember любит кофе")
	assert.Equal(t, chat.RememberDone, out)
	_, _ = r.Execute(ctx, 1, "/remember@dusha_bot играет гитару")

	facts, err := store.GetFacts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "любит кофе\nиграет гитару", facts)

	out, _ = r.Execute(ctx, 1, "/memory")
	assert.Equal(t, "любит кофе\nиграет гитару", out)

	out, _ = r.Execute(ctx, 1, "/clear_memory")
	assert.Equal(t, chat.MemoryCleared, out)

	out, _ = r.Execute(ctx, 1, "/memory")
	assert.Equal(t, chat.MemoryEmpty, out)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("memory")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("remember")))
}

func TestRouterUnknownAndErrors(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRouter(t)
	r.Register(failingCommand{})

	out, handled := r.Execute(ctx, 1, "/weather")
	assert.True(t, handled)
	assert.Contains(t, out, "Неизвестная команда: /weather")

	out, handled = r.Execute(ctx, 1, "/boom")
	assert.True(t, handled)
	assert.Contains(t, out, "/boom")
	assert.Contains(t, out, "storage unavailable")
}

func TestHelpListsCommandsInOrder(t *testing.T) {
	r, _, _ := newTestRouter(t)

	out, handled := r.Execute(context.Background(), 1, "/help")
	require.True(t, handled)

	var names []string
	for _, cmd := range r.ListCommands() {
		names = append(names, cmd.Name())
		assert.Contains(t, out, "/"+cmd.Name())
	}
	assert.Equal(t, []string{"start", "remember", "memory", "clear_memory", "help"}, names)
	assert.Less(t, strings.Index(out, "/start"), strings.Index(out, "/help"))
}

func TestRegisterReplaces(t *testing.T) {
	r := New([]core.Command{failingCommand{}}, nil)
	r.Register(failingCommand{})
	assert.Len(t, r.ListCommands(), 1)
}
