package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
)

// PostgresStore implements ports.KVStore on a single kv_entries table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates and returns a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`

	var value []byte
	errRow := s.db.QueryRowContext(ctx, query, namespace, key).Scan(&value)
	if errors.Is(errRow, sql.ErrNoRows) {
		metrics.StoreOperations.WithLabelValues("postgres", "miss").Inc()
		return nil, nil
	}
	if errRow != nil {
		metrics.StoreOperations.WithLabelValues("postgres", "error").Inc()
		return nil, fmt.Errorf("postgres get %s:%s: %w", namespace, key, errRow)
	}
	metrics.StoreOperations.WithLabelValues("postgres", "hit").Inc()
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	query := `INSERT INTO kv_entries (namespace, key, value, updated_at) VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("postgres set %s:%s: %w", namespace, key, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
