package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/internal/providers/llm"
	"github.com/sandevgo/dusha/internal/service/chat"
	"github.com/sandevgo/dusha/internal/service/command"
	"github.com/sandevgo/dusha/internal/service/memory"
	"github.com/sandevgo/dusha/internal/storage"
	"github.com/sandevgo/dusha/internal/transport/cli"
	"github.com/sandevgo/dusha/internal/transport/telegram"
	"github.com/sandevgo/dusha/pkg/log"
	"github.com/sandevgo/dusha/pkg/srv"
)

const metricsNamespace = "dusha"

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetEnvPath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)

	// 2. Storage
	store, err := storage.Open(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(store.Close))

	// 3. AI Provider
	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	metrics := observability.NewMetrics(metricsNamespace)
	if appCfg.MetricsAddr != "" {
		services = append(services, observability.NewServer(appCfg.MetricsAddr, metrics))
	}

	// 4. Memory and conversation
	assembler := memory.NewAssembler(appCfg, memory.NewSysPrompt(appCfg), store.Facts, store.Messages)
	extractor := memory.NewExtractor(store.Facts, aiProvider)
	handler := chat.NewHandler(appCfg, store.Facts, store.Messages, aiProvider, assembler, extractor, metrics)
	router := command.NewRouter(handler, metrics)

	// 5. Transports
	transports, err := initTransports(ctx, appCfg, handler, router, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Msg("no transport enabled: set DUSHA_ENABLE_TELEGRAM or DUSHA_ENABLE_CLI")
	}
	services = append(services, transports...)

	logger.Info().
		Str("provider", llmCfg.GetProvider()).
		Str("model", llmCfg.GetModel()).
		Str("storage", appCfg.StorageDriver).
		Msg("services configured")

	return services
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	handler core.Replier,
	router core.CmdRouter,
	metrics *observability.Metrics,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, handler, router, metrics)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(cfg, handler, router, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to init console: %w", err)
		}
		services = append(services, rl)
	}

	return services, nil
}

// initEnv loads <runtime>/.env when it exists. Real environment variables win.
func initEnv(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

// openStorage is the storage-only setup used by the maintenance commands,
// which must work without LLM or Telegram credentials.
func openStorage(ctx context.Context) (*storage.Storage, error) {
	if err := initEnv(ctx, config.GetEnvPath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse App config: %w", err)
	}
	return storage.Open(ctx, appCfg)
}
