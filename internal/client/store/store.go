// Package store is the client's persistent state: the adopted credential
// token and identity, the per-install client id, and the cached "today"
// attendance record. It is a small key/value table in a local sqlite file,
// which is what gives sessions their survive-reload lifecycle.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/store/migrations"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/dbx"

	_ "modernc.org/sqlite"
)

// Well-known metadata keys.
const (
	KeyToken    = "token"
	KeyIdentity = "identity"
	KeyClientID = "client_id"
	KeyToday    = "today"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state db: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or nil when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, s.db, key, value)
}

func (s *Store) set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// SetAll writes every pair in one transaction so a crash mid-write cannot
// leave a token without its identity.
func (s *Store) SetAll(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for key, value := range values {
			if err := s.set(ctx, tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the given keys. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
			}
		}
		return nil
	})
}

// ClientID returns the per-install id, generating and persisting one on
// first use.
func (s *Store) ClientID(ctx context.Context) (string, error) {
	value, err := s.Get(ctx, KeyClientID)
	if err != nil {
		return "", err
	}
	if len(value) > 0 {
		return string(value), nil
	}
	id := uuid.NewString()
	if err := s.Set(ctx, KeyClientID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
