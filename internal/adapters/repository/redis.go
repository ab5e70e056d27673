package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements ports.KVStore with one Redis string per entry,
// keyed "<namespace>:<key>".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

func (r *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, namespace+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.StoreOperations.WithLabelValues("redis", "miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.StoreOperations.WithLabelValues("redis", "error").Inc()
		return nil, fmt.Errorf("redis get %s:%s: %w", namespace, key, err)
	}
	metrics.StoreOperations.WithLabelValues("redis", "hit").Inc()
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	return r.client.Set(ctx, namespace+":"+key, value, 0).Err()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
