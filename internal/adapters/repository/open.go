package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/linkgate/internal/config"
	"github.com/poyrazK/linkgate/internal/core/ports"
)

// Store is a backend that can be read by the lookup path and written by tooling.
type Store interface {
	ports.KVStore
	ports.KVWriter
}

// OpenStore connects to the backend selected by cfg.Store and checks it is reachable.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	var store Store
	switch cfg.Store {
	case config.StoreRedis:
		store = NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		store = NewPostgresStore(db)
	case config.StorePebble:
		s, err := NewPebbleStore(cfg.PebblePath, nil)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s store unreachable: %w", cfg.Store, err)
	}
	return store, nil
}
