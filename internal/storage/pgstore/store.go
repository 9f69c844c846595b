package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/storage"
)

// Schema creates the entry table and the sequence every version is drawn from.
// A shared sequence keeps versions unique across deletes and re-creates.
const Schema = `
CREATE SEQUENCE IF NOT EXISTS kv_entry_version_seq;
CREATE TABLE IF NOT EXISTS kv_entries (
	entry_key  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	version    BIGINT NOT NULL,
	updated_on TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type entryRow struct {
	Key     string `db:"entry_key"`
	Value   string `db:"value"`
	Version int64  `db:"version"`
}

// Store is a storage.KeyValueStore on PostgreSQL.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db), nil
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	logger.StorageCall("migrate", "kv_entries")
	_, err := s.db.ExecContext(ctx, Schema)
	logger.StorageResult("migrate", "kv_entries", 0, err)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Entry, error) {
	logger.StorageCall("get", key)
	var row entryRow
	err := s.db.GetContext(ctx, &row, `SELECT entry_key, value, version FROM kv_entries WHERE entry_key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		logger.StorageResult("get", key, 0, storage.ErrNotFound)
		return nil, storage.ErrNotFound
	}
	if err != nil {
		logger.StorageResult("get", key, 0, err)
		return nil, err
	}
	logger.StorageResult("get", key, row.Version, nil)
	return &storage.Entry{Key: row.Key, Value: []byte(row.Value), Version: row.Version}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	logger.StorageCall("put", key, "expected_version", expectedVersion)

	var (
		version int64
		err     error
	)
	if expectedVersion == 0 {
		err = s.db.QueryRowxContext(ctx,
			`INSERT INTO kv_entries (entry_key, value, version)
			 VALUES ($1, $2, nextval('kv_entry_version_seq'))
			 ON CONFLICT (entry_key) DO NOTHING
			 RETURNING version`,
			key, string(value),
		).Scan(&version)
	} else {
		err = s.db.QueryRowxContext(ctx,
			`UPDATE kv_entries
			 SET value = $2, version = nextval('kv_entry_version_seq'), updated_on = now()
			 WHERE entry_key = $1 AND version = $3
			 RETURNING version`,
			key, string(value), expectedVersion,
		).Scan(&version)
	}

	if errors.Is(err, sql.ErrNoRows) {
		err = storage.ErrVersionConflict
	}
	logger.StorageResult("put", key, version, err)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	logger.StorageCall("delete", key)
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = $1`, key)
	logger.StorageResult("delete", key, 0, err)
	return err
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	logger.StorageCall("keys", prefix)
	keys := []string{}
	err := s.db.SelectContext(ctx, &keys,
		`SELECT entry_key FROM kv_entries WHERE entry_key LIKE $1 ESCAPE '\' ORDER BY entry_key`,
		escapeLike(prefix)+"%",
	)
	logger.StorageResult("keys", prefix, 0, err, "count", len(keys))
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
