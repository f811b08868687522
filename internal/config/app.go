package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/dusha/pkg/log"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type AppConfig struct {
	// RuntimePath is resolved by GetRuntimePath, not parsed from a tag.
	RuntimePath string

	StorageDriver string `env:"DUSHA_STORAGE_DRIVER" envDefault:"sqlite"`
	DatabaseURL   string `env:"DUSHA_DATABASE_URL"`

	// Transport Flags
	EnableTelegram bool  `env:"DUSHA_ENABLE_TELEGRAM" envDefault:"true"`
	EnableCLI      bool  `env:"DUSHA_ENABLE_CLI" envDefault:"false"`
	CLIUserID      int64 `env:"DUSHA_CLI_USER_ID" envDefault:"1"`

	// Memory
	ShortHistoryLimit int `env:"DUSHA_SHORT_HISTORY_LIMIT" envDefault:"20"`
	HistoryKeep       int `env:"DUSHA_HISTORY_KEEP" envDefault:"40"`
	ExtractEvery      int `env:"DUSHA_EXTRACT_EVERY" envDefault:"6"`

	// Empty disables the ops HTTP server.
	MetricsAddr string `env:"DUSHA_METRICS_ADDR"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = GetRuntimePath()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c AppConfig) validate() error {
	switch c.StorageDriver {
	case StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DUSHA_DATABASE_URL is required for the %s storage driver", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.StorageDriver)
	}
	if c.ShortHistoryLimit <= 0 {
		return fmt.Errorf("DUSHA_SHORT_HISTORY_LIMIT must be positive, got %d", c.ShortHistoryLimit)
	}
	if c.HistoryKeep <= 0 {
		return fmt.Errorf("DUSHA_HISTORY_KEEP must be positive, got %d", c.HistoryKeep)
	}
	if c.ExtractEvery <= 0 {
		return fmt.Errorf("DUSHA_EXTRACT_EVERY must be positive, got %d", c.ExtractEvery)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "dusha.db")
}

func (c AppConfig) GetShortHistoryLimit() int {
	return c.ShortHistoryLimit
}

func (c AppConfig) GetHistoryKeep() int {
	return c.HistoryKeep
}

func (c AppConfig) GetExtractEvery() int {
	return c.ExtractEvery
}
