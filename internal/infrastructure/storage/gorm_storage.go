package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gastroshop/storefront/internal/infrastructure/config"
	"github.com/gastroshop/storefront/internal/infrastructure/logger"
	"github.com/gastroshop/storefront/internal/infrastructure/telemetry"
)

var _ KeyValueStore = (*GormStore)(nil)

// kvEntry is one row of the key-value table
type kvEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:191"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (kvEntry) TableName() string {
	return "storefront_kv"
}

// GormStore keeps values in a SQL table through GORM (sqlite on a device, postgres when shared)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an open database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the key-value table if it does not exist
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
		return fmt.Errorf("failed to migrate key-value table: %w", err)
	}
	return nil
}

// Get reads a value by key
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrKeyRequired
	}

	var e kvEntry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Set upserts a value
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyRequired
	}
	if value == nil {
		value = []byte{}
	}

	e := kvEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *GormStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// OpenDatabase opens the sqlite or postgres database selected by storage.driver,
// with the zap-backed GORM logger and optional query tracing.
func OpenDatabase(cfg *config.Config, zapLogger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		dialector = sqlite.Open(cfg.Storage.SQLitePath)
	case config.StorageDriverPostgres:
		dialector = postgres.Open(cfg.Database.DSN())
	default:
		return nil, fmt.Errorf("storage driver %q is not a SQL driver", cfg.Storage.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(
			zapLogger,
			logger.MapGormLogLevel(cfg.Log.Level),
			cfg.Telemetry.DBSlowQueryThresh,
		),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Storage.Driver == config.StorageDriverSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Storage.Driver,
	}, zapLogger); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	return db, nil
}
