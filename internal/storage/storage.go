package storage

import (
	"context"
	"fmt"

	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/core"
	"github.com/sandevgo/dusha/internal/storage/postgres"
	"github.com/sandevgo/dusha/internal/storage/sqlite"
	"github.com/sandevgo/dusha/pkg/log"
)

// Storage bundles both memory tiers over one database handle.
type Storage struct {
	Facts    core.FactRepository
	Messages core.MessagesRepository
	close    func() error
}

func Open(ctx context.Context, cfg *config.AppConfig) (*Storage, error) {
	logger := log.FromCtx(ctx)

	switch cfg.StorageDriver {
	case config.StorageSQLite:
		path := cfg.GetDatabasePath()
		db, err := sqlite.NewDB(ctx, path)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", path).Msg("sqlite storage ready")
		return &Storage{
			Facts:    sqlite.NewFactsRepo(db),
			Messages: sqlite.NewMessagesRepo(db),
			close:    db.Close,
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("postgres storage ready")
		return &Storage{
			Facts:    postgres.NewFactsRepo(pool),
			Messages: postgres.NewMessagesRepo(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
