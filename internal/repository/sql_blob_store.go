package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLDialect selects DDL for the collections table.
type SQLDialect string

const (
	DialectPostgres SQLDialect = "postgres"
	DialectSQLite   SQLDialect = "sqlite"
)

// QueryObserver receives the duration of each store query.
type QueryObserver func(label string, d time.Duration)

// SQLBlobStore keeps each collection as one row of the collections table.
type SQLBlobStore struct {
	db      *sqlx.DB
	dialect SQLDialect
	observe QueryObserver
}

// NewSQLBlobStore constructs a SQL-backed store. observe may be nil.
func NewSQLBlobStore(db *sqlx.DB, dialect SQLDialect, observe QueryObserver) *SQLBlobStore {
	return &SQLBlobStore{db: db, dialect: dialect, observe: observe}
}

// Migrate creates the collections table when missing.
func (s *SQLBlobStore) Migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    version BIGINT NOT NULL,
    payload TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`
	if s.dialect == DialectPostgres {
		ddl = `CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    version BIGINT NOT NULL,
    payload JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

type collectionRow struct {
	Version int64  `db:"version"`
	Payload string `db:"payload"`
}

// Get implements BlobStore.
func (s *SQLBlobStore) Get(ctx context.Context, key string) (Blob, error) {
	defer s.track("collections_get", time.Now())

	var row collectionRow
	query := s.db.Rebind("SELECT version, payload FROM collections WHERE name = ?")
	if err := s.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Blob{}, nil
		}
		return Blob{}, fmt.Errorf("get collection %s: %w", key, err)
	}
	return Blob{Payload: []byte(row.Payload), Version: row.Version}, nil
}

// CompareAndSwap implements BlobStore.
func (s *SQLBlobStore) CompareAndSwap(ctx context.Context, key string, expected int64, payload []byte) error {
	defer s.track("collections_cas", time.Now())

	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		query := s.db.Rebind("INSERT INTO collections (name, version, payload, updated_at) VALUES (?, 1, ?, ?) ON CONFLICT (name) DO NOTHING")
		res, err = s.db.ExecContext(ctx, query, key, string(payload), now)
	} else {
		query := s.db.Rebind("UPDATE collections SET version = version + 1, payload = ?, updated_at = ? WHERE name = ? AND version = ?")
		res, err = s.db.ExecContext(ctx, query, string(payload), now, key, expected)
	}
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", key, err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *SQLBlobStore) track(label string, start time.Time) {
	if s.observe != nil {
		s.observe(label, time.Since(start))
	}
}
