package backend

import (
	"context"
	"fmt"

	"melodybot/internal/config"
	"melodybot/internal/storage"
	"melodybot/internal/storage/memory"
	"melodybot/internal/storage/postgres"
	"melodybot/internal/storage/redis"
	"melodybot/internal/storage/sqlite"

	"go.uber.org/zap"
)

// MigrationsSource is where postgres schema migrations are read from
const MigrationsSource = "file://migrations"

// Open creates the store selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	logger.Info("Opening store", zap.String("driver", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db, MigrationsSource, logger); err != nil {
			db.Close()
			return nil, err
		}
		return postgres.NewStore(db), nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path, cfg.SQLite.PoolSize, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverRedis:
		store, err := redis.NewStore(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data will be lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
