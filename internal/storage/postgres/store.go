package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"melodybot/internal/storage"
)

// Store implements storage.Store on a single PostgreSQL table
type Store struct {
	db *sql.DB
}

// NewStore creates a new key-value store over db
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM kv WHERE key = $1`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Put upserts value under key. The write is committed before Put returns.
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key []byte) error {
	query := `DELETE FROM kv WHERE key = $1`
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// Take deletes key and returns its value in a single statement, so two
// concurrent Takes cannot both see the row
func (s *Store) Take(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	query := `DELETE FROM kv WHERE key = $1 RETURNING value`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Sweep deletes keys under prefix last written before olderThan
func (s *Store) Sweep(ctx context.Context, prefix []byte, olderThan time.Time) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if end := storage.PrefixEnd(prefix); end != nil {
		query := `
			DELETE FROM kv
			WHERE key >= $1 AND key < $2 AND updated_at < $3
		`
		result, err = s.db.ExecContext(ctx, query, prefix, end, olderThan)
	} else {
		query := `
			DELETE FROM kv
			WHERE key >= $1 AND updated_at < $2
		`
		result, err = s.db.ExecContext(ctx, query, prefix, olderThan)
	}
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
