package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/storage"
)

// kvEntry rows are never removed; Delete marks them as tombstones and bumps the
// version so that a re-created key continues the same version sequence.
type kvEntry struct {
	EntryKey  string `gorm:"column:entry_key;primaryKey"`
	Value     []byte
	Version   int64 `gorm:"not null"`
	Deleted   bool  `gorm:"not null;default:false"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// Store is a storage.KeyValueStore on a gorm database, used with SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) a SQLite database file and migrates the schema.
// ":memory:" gives a throwaway database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" to one database.
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New wraps an open gorm database and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Entry, error) {
	logger.StorageCall("get", key)
	var e kvEntry
	err := s.db.WithContext(ctx).
		Where("entry_key = ? AND deleted = ?", key, false).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.StorageResult("get", key, 0, storage.ErrNotFound)
		return nil, storage.ErrNotFound
	}
	if err != nil {
		logger.StorageResult("get", key, 0, err)
		return nil, err
	}
	logger.StorageResult("get", key, e.Version, nil)
	return &storage.Entry{Key: e.EntryKey, Value: e.Value, Version: e.Version}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	logger.StorageCall("put", key, "expected_version", expectedVersion)

	var newVersion int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e kvEntry
		err := tx.Where("entry_key = ?", key).First(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if expectedVersion != 0 {
				return storage.ErrVersionConflict
			}
			newVersion = 1
			return tx.Create(&kvEntry{EntryKey: key, Value: value, Version: newVersion}).Error
		}
		if err != nil {
			return err
		}

		current := e.Version
		if e.Deleted {
			current = 0
		}
		if current != expectedVersion {
			return storage.ErrVersionConflict
		}

		newVersion = e.Version + 1
		res := tx.Model(&kvEntry{}).
			Where("entry_key = ? AND version = ?", key, e.Version).
			Updates(map[string]any{"value": value, "version": newVersion, "deleted": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrVersionConflict
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = storage.ErrVersionConflict
	}

	logger.StorageResult("put", key, newVersion, err)
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	logger.StorageCall("delete", key)
	err := s.db.WithContext(ctx).Model(&kvEntry{}).
		Where("entry_key = ? AND deleted = ?", key, false).
		Updates(map[string]any{"deleted": true, "value": []byte{}, "version": gorm.Expr("version + 1")}).Error
	logger.StorageResult("delete", key, 0, err)
	return err
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	logger.StorageCall("keys", prefix)
	keys := []string{}
	err := s.db.WithContext(ctx).Model(&kvEntry{}).
		Where("entry_key LIKE ? ESCAPE '\\' AND deleted = ?", escapeLike(prefix)+"%", false).
		Order("entry_key").
		Pluck("entry_key", &keys).Error
	logger.StorageResult("keys", prefix, 0, err, "count", len(keys))
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
