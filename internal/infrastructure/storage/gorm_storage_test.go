package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gastroshop/storefront/internal/infrastructure/config"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newMockGormStore(t *testing.T) (*GormStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormStore(gormDB), mock, mockDB
}

func TestGormStore_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("should report missing key", func(t *testing.T) {
		store := newSQLiteStore(t)
		_, found, err := store.Get(ctx, "nothing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should upsert and read back", func(t *testing.T) {
		store := newSQLiteStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v1")))
		require.NoError(t, store.Set(ctx, "k", []byte("v2")))

		v, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v2", string(v))

		var count int64
		require.NoError(t, store.db.Model(&kvEntry{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("should delete", func(t *testing.T) {
		store := newSQLiteStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))

		_, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should store empty value", func(t *testing.T) {
		store := newSQLiteStore(t)
		require.NoError(t, store.Set(ctx, "k", nil))

		v, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, v)
	})

	t.Run("should reject empty key", func(t *testing.T) {
		store := newSQLiteStore(t)
		assert.ErrorIs(t, store.Set(ctx, "", []byte("v")), ErrKeyRequired)
		_, _, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, ErrKeyRequired)
		assert.ErrorIs(t, store.Delete(ctx, ""), ErrKeyRequired)
	})
}

func TestGormStore_Postgres_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("should wrap read errors", func(t *testing.T) {
		store, mock, mockDB := newMockGormStore(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "storefront_kv" WHERE storage_key = \$1`).
			WithArgs("k", 1).
			WillReturnError(errors.New("connection reset"))

		_, found, err := store.Get(ctx, "k")
		require.Error(t, err)
		assert.False(t, found)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should read value", func(t *testing.T) {
		store, mock, mockDB := newMockGormStore(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"storage_key", "value", "updated_at"}).
			AddRow("k", []byte("v"), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "storefront_kv" WHERE storage_key = \$1`).
			WithArgs("k", 1).
			WillReturnRows(rows)

		v, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v", string(v))
	})

	t.Run("should upsert on conflict", func(t *testing.T) {
		store, mock, mockDB := newMockGormStore(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "storefront_kv" .* ON CONFLICT \("storage_key"\) DO UPDATE SET "value"="excluded"."value","updated_at"="excluded"."updated_at"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should wrap write errors", func(t *testing.T) {
		store, mock, mockDB := newMockGormStore(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "storefront_kv"`).
			WillReturnError(errors.New("disk full"))

		err := store.Set(ctx, "k", []byte("v"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("should wrap delete errors", func(t *testing.T) {
		store, mock, mockDB := newMockGormStore(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "storefront_kv" WHERE storage_key = \$1`).
			WithArgs("k").
			WillReturnError(errors.New("read only"))

		err := store.Delete(ctx, "k")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read only")
	})
}

func TestOpenDatabase(t *testing.T) {
	t.Run("should open sqlite and migrate", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = config.StorageDriverSQLite
		cfg.Storage.SQLitePath = ":memory:"
		cfg.Log.Level = "silent"

		db, err := OpenDatabase(cfg, zap.NewNop())
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()

		store := NewGormStore(db)
		require.NoError(t, store.Migrate(context.Background()))
		require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	})

	t.Run("should reject non-sql driver", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = config.StorageDriverRedis

		_, err := OpenDatabase(cfg, zap.NewNop())
		require.Error(t, err)
	})
}

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMemory

	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b.Store)
	assert.Nil(t, b.Redis)
	assert.NoError(t, b.Close())
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverSQLite
	cfg.Storage.SQLitePath = ":memory:"
	cfg.Log.Level = "silent"

	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Store.Set(context.Background(), "k", []byte("v")))
	v, found, err := b.Store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(v))
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "floppy"

	_, err := Open(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}
