package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/dusha/pkg/log"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderCustom     = "custom"
)

type LLMConfig struct {
	Provider string `env:"DUSHA_LLM_PROVIDER" envDefault:"openai"`
	APIKey   string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model    string `env:"DUSHA_LLM_MODEL" envDefault:"gpt-4.1-mini"`
	// BaseURL is only read by the custom provider.
	BaseURL string `env:"DUSHA_LLM_BASE_URL"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c, err := LoadLLMConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func LoadLLMConfig() (*LLMConfig, error) {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c LLMConfig) GetProvider() string { return c.Provider }
func (c LLMConfig) GetModel() string    { return c.Model }
func (c LLMConfig) GetAPIKey() string   { return c.APIKey }
func (c LLMConfig) GetBaseURL() string  { return c.BaseURL }
