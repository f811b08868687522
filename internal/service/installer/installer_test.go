package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEnv(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *InstallState)
		want  string
	}{
		{
			name: "telegram with allowlist",
			setup: func(s *InstallState) {
				s.LLM.APIKey = "sk-test"
				s.LLM.Model = "gpt-4.1-mini"
				s.Telegram.Token = "123:ABC"
				s.Telegram.AllowedUsers = []int64{11, 22}
			},
			want: "DUSHA_ENABLE_TELEGRAM=true\n" +
				"DUSHA_LLM_PROVIDER=openai\n" +
				"OPENAI_API_KEY=sk-test\n" +
				"DUSHA_LLM_MODEL=gpt-4.1-mini\n" +
				"TELEGRAM_BOT_TOKEN=123:ABC\n" +
				"TELEGRAM_ALLOWED_USERS=11,22\n",
		},
		{
			name: "console only with custom endpoint",
			setup: func(s *InstallState) {
				s.App.EnableTelegram = false
				s.App.EnableCLI = true
				s.LLM.Provider = config.ProviderCustom
				s.LLM.BaseURL = "http://localhost:8080"
				s.LLM.APIKey = "local"
				s.LLM.Model = "qwen"
			},
			want: "DUSHA_ENABLE_CLI=true\n" +
				"DUSHA_LLM_PROVIDER=custom\n" +
				"OPENAI_API_KEY=local\n" +
				"DUSHA_LLM_MODEL=qwen\n" +
				"DUSHA_LLM_BASE_URL=http://localhost:8080\n" +
				"DUSHA_ENABLE_TELEGRAM=false\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewInstallState()
			tt.setup(s)
			got, err := s.RenderEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserIDs(t *testing.T) {
	ids, err := parseUserIDs(" 11, 22 ;33 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 22, 33}, ids)

	ids, err = parseUserIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseUserIDs("11,abc")
	assert.Error(t, err)

	_, err = parseUserIDs("-5")
	assert.Error(t, err)
}

func TestSaveEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	s := NewInstallState()
	s.LLM.APIKey = "sk-test"
	s.Telegram.Token = "123:ABC"

	require.NoError(t, SaveEnv(dir, s))

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "OPENAI_API_KEY=sk-test\n")

	info, err := os.Stat(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.ErrorContains(t, SaveEnv(dir, s), "already exists")
}

func TestWriteSystemPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SYSTEM.md")

	require.NoError(t, WriteSystemPrompt(dir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultSystemPrompt+"\n", string(data))

	require.NoError(t, os.WriteFile(path, []byte("свой промпт"), 0644))
	require.NoError(t, WriteSystemPrompt(dir))
	data, _ = os.ReadFile(path)
	assert.Equal(t, "свой промпт", string(data))
}

func TestProviderStep(t *testing.T) {
	state := NewInstallState()
	step := NewProviderStep()

	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyDown}, state, 80, 24)
	require.NotNil(t, next)
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown}, state, 80, 24)
	require.NotNil(t, next)
	assert.Contains(t, next.View(state), "❯ Custom")

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, config.ProviderCustom, state.LLM.Provider)
}

func TestSkippedSteps(t *testing.T) {
	state := NewInstallState()

	next, _ := NewCustomURLStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, next, "custom url is skipped for openai")

	state.App.EnableTelegram = false
	next, _ = NewTelegramTokenStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, next)
	next, _ = NewTelegramAllowedStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, next)
}

func TestChannelStepConsole(t *testing.T) {
	state := NewInstallState()
	step := NewChannelStep()

	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyDown}, state, 80, 24)
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)
	assert.Nil(t, next)
	assert.False(t, state.App.EnableTelegram)
	assert.True(t, state.App.EnableCLI)
}
