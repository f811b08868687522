package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/pkg/env"
)

// InstallState collects answers as the config structs the bot parses on
// start, so the .env file is rendered from the same env tags.
type InstallState struct {
	App      config.AppConfig
	LLM      config.LLMConfig
	Telegram config.TelegramConfig
}

func NewInstallState() *InstallState {
	return &InstallState{
		App: config.AppConfig{EnableTelegram: true},
		LLM: config.LLMConfig{Provider: config.ProviderOpenAI},
	}
}

// RenderEnv returns the .env file content for the collected answers.
func (s *InstallState) RenderEnv() (string, error) {
	content, err := env.MarshalEnv(&s.App, &s.LLM, &s.Telegram)
	if err != nil {
		return "", err
	}
	// false is a zero value and would be dropped, leaving the default (true) in effect.
	if !s.App.EnableTelegram {
		content += "DUSHA_ENABLE_TELEGRAM=false\n"
	}
	return content, nil
}

// parseUserIDs reads a comma or space separated list of Telegram user ids.
func parseUserIDs(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
