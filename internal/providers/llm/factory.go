package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg core.ProviderConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetProvider()).
		Str("model", cfg.GetModel()).
		Msg("starting llm provider")

	switch cfg.GetProvider() {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.GetAPIKey(), cfg.GetModel()), nil
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.GetAPIKey(), cfg.GetModel()), nil
	case config.ProviderCustom:
		if cfg.GetBaseURL() == "" {
			return nil, fmt.Errorf("DUSHA_LLM_BASE_URL is required for the %s provider", config.ProviderCustom)
		}
		return NewCustomOpenAI(cfg.GetBaseURL(), cfg.GetAPIKey(), cfg.GetModel()), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.GetProvider())
	}
}
