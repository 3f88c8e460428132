// Package sqlite implements storage.Store on an embedded SQLite database.
//
// It is the single-binary deployment option: one file on local disk, no
// server. Every connection runs in WAL mode with synchronous=FULL, so a
// committed Put or Delete survives a process or OS crash.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"melodybot/internal/storage"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        BLOB PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv (updated_at);
`

// Store implements storage.Store over a sqlitex connection pool
type Store struct {
	pool   *sqlitex.Pool
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path
func Open(path string, poolSize int, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}

	logger.Info("SQLite store opened",
		zap.String("path", path),
		zap.Int("pool_size", poolSize),
	)

	return &Store{
		pool:   pool,
		path:   path,
		now:    time.Now,
		logger: logger,
	}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, schema, nil)
}

func (s *Store) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: take connection: %w", err)
	}
	return conn, nil
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	return s.queryValue(conn, `SELECT value FROM kv WHERE key = ?`, key)
}

// Put upserts value under key
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{key, value, s.now().UnixNano()}},
	)
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key []byte) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn, `DELETE FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{Args: []any{key}},
	)
}

// Take deletes key and returns its value with DELETE ... RETURNING, which
// SQLite runs as one write transaction
func (s *Store) Take(ctx context.Context, key []byte) ([]byte, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	return s.queryValue(conn, `DELETE FROM kv WHERE key = ? RETURNING value`, key)
}

func (s *Store) queryValue(conn *sqlite.Conn, query string, key []byte) ([]byte, error) {
	var (
		value []byte
		found bool
	)

	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storage.ErrNotFound
	}

	return value, nil
}

// Sweep deletes keys under prefix last written before olderThan
func (s *Store) Sweep(ctx context.Context, prefix []byte, olderThan time.Time) (int64, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	query := `DELETE FROM kv WHERE key >= ? AND updated_at < ?`
	args := []any{prefix, olderThan.UnixNano()}
	if end := storage.PrefixEnd(prefix); end != nil {
		query = `DELETE FROM kv WHERE key >= ? AND key < ? AND updated_at < ?`
		args = []any{prefix, end, olderThan.UnixNano()}
	}

	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		return 0, err
	}

	return int64(conn.Changes()), nil
}

// Ping borrows a connection and runs a trivial query
func (s *Store) Ping(ctx context.Context) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
}

// Close closes every pooled connection
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("sqlite: closing %s: %w", s.path, err)
	}
	s.logger.Info("SQLite store closed", zap.String("path", s.path))
	return nil
}
