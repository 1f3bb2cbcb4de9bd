package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gastroshop/storefront/internal/infrastructure/config"
)

// Backend is an opened storage driver
type Backend struct {
	Store KeyValueStore
	// Redis is set when the redis driver is selected; the cross-tab lock shares it
	Redis   *redis.Client
	closers []func() error
}

// Open builds the key-value store selected by storage.driver
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		db, err := OpenDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		b.closers = append(b.closers, sqlDB.Close)

		store := NewGormStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = store

	case config.StorageDriverRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		b.Redis = client
		b.Store = NewRedisStore(client, cfg.Storage.KeyPrefix)

	case config.StorageDriverS3:
		store, err := NewS3Store(ctx, cfg.Storage.S3, cfg.Storage.KeyPrefix, WithS3Logger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		b.Store = store

	case config.StorageDriverMemory:
		b.Store = NewMemoryStore()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	logger.Info("Storage opened", zap.String("driver", cfg.Storage.Driver))
	return b, nil
}

// Close releases the driver's connections
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
