package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
)

// PebbleStore implements ports.KVStore on an embedded Pebble database,
// keyed "<namespace>:<key>".
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the database at path. opts may be nil.
func NewPebbleStore(path string, opts *pebble.Options) (*PebbleStore, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	if opts.FS == nil {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, closer, err := s.db.Get([]byte(namespace + ":" + key))
	if errors.Is(err, pebble.ErrNotFound) {
		metrics.StoreOperations.WithLabelValues("pebble", "miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.StoreOperations.WithLabelValues("pebble", "error").Inc()
		return nil, fmt.Errorf("pebble get %s:%s: %w", namespace, key, err)
	}
	defer closer.Close()

	// v is only valid until closer is closed
	out := make([]byte, len(v))
	copy(out, v)
	metrics.StoreOperations.WithLabelValues("pebble", "hit").Inc()
	return out, nil
}

func (s *PebbleStore) Set(_ context.Context, namespace, key string, value []byte) error {
	return s.db.Set([]byte(namespace+":"+key), value, pebble.Sync)
}

func (s *PebbleStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, closer, err := s.db.Get([]byte("\x00ping"))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return closer.Close()
}

func (s *PebbleStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
