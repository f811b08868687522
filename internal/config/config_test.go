package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DUSHA_RUNTIME_PATH", dir)
	t.Setenv("DUSHA_STORAGE_DRIVER", "")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 20, cfg.GetShortHistoryLimit())
	assert.Equal(t, 40, cfg.GetHistoryKeep())
	assert.Equal(t, 6, cfg.GetExtractEvery())
	assert.Equal(t, filepath.Join(dir, "dusha.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, "SYSTEM.md"), cfg.GetSystemPath())
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DUSHA_STORAGE_DRIVER": "mysql"}},
		{name: "postgres without url", env: map[string]string{"DUSHA_STORAGE_DRIVER": "postgres", "DUSHA_DATABASE_URL": ""}},
		{name: "zero cadence", env: map[string]string{"DUSHA_EXTRACT_EVERY": "0"}},
		{name: "negative keep", env: map[string]string{"DUSHA_HISTORY_KEEP": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DUSHA_RUNTIME_PATH", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadAppConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadLLMConfig_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadLLMConfig()
	assert.Error(t, err)
}

func TestLoadLLMConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DUSHA_LLM_MODEL", "")
	t.Setenv("DUSHA_LLM_PROVIDER", "")

	cfg, err := LoadLLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.GetAPIKey())
	assert.Equal(t, "gpt-4.1-mini", cfg.GetModel())
	assert.Equal(t, ProviderOpenAI, cfg.GetProvider())
}

func TestLoadTelegramConfig(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		_, err := LoadTelegramConfig()
		assert.Error(t, err)
	})

	t.Run("allowlist", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_ALLOWED_USERS", "10,20")

		cfg, err := LoadTelegramConfig()
		require.NoError(t, err)
		assert.True(t, cfg.IsAllowed(10))
		assert.False(t, cfg.IsAllowed(30))
	})

	t.Run("empty allowlist allows everyone", func(t *testing.T) {
		cfg := TelegramConfig{Token: "x"}
		assert.True(t, cfg.IsAllowed(12345))
	})
}
