package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
)

// shardCount determines the number of internal shards to reduce lock contention.
const shardCount = 256

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

type cacheShard struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
}

// CachedStore is a read-through L1 cache in front of another ports.KVStore.
// Only present values are cached; misses and errors always reach the backend.
// Reads may be up to ttl stale, which the lookup path tolerates.
type CachedStore struct {
	next   ports.KVStore
	ttl    time.Duration
	shards [shardCount]*cacheShard
	stop   chan struct{}
	once   sync.Once
}

// NewCachedStore wraps next and starts the background expiration loop.
func NewCachedStore(next ports.KVStore, ttl time.Duration) *CachedStore {
	c := &CachedStore{
		next: next,
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	for i := 0; i < shardCount; i++ {
		c.shards[i] = &cacheShard{
			items: make(map[string]cacheEntry),
		}
	}
	go c.cleanupLoop(5 * time.Minute)
	return c
}

// getShard returns the specific cacheShard responsible for the given key based on its hash.
func (c *CachedStore) getShard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key)) // #nosec G104
	return c.shards[h.Sum32()%shardCount]
}

func (c *CachedStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	ck := namespace + ":" + key
	if data, ok := c.lookup(ck); ok {
		metrics.CacheOperations.WithLabelValues(namespace, "hit").Inc()
		return copyBytes(data), nil
	}
	metrics.CacheOperations.WithLabelValues(namespace, "miss").Inc()

	data, err := c.next.Get(ctx, namespace, key)
	if err != nil || data == nil {
		return data, err
	}
	c.store(ck, copyBytes(data))
	return data, nil
}

func (c *CachedStore) lookup(key string) ([]byte, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	item, found := shard.items[key]
	if !found {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.data, true
}

func (c *CachedStore) store(key string, data []byte) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.items[key] = cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Flush removes all items from all shards in the cache.
func (c *CachedStore) Flush() {
	for i := 0; i < shardCount; i++ {
		shard := c.shards[i]
		shard.mu.Lock()
		shard.items = make(map[string]cacheEntry)
		shard.mu.Unlock()
	}
}

func (c *CachedStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stop:
			return
		}
	}
}

// Cleanup scans all shards and deletes items that have passed their expiration time.
func (c *CachedStore) Cleanup() {
	now := time.Now()
	for i := 0; i < shardCount; i++ {
		shard := c.shards[i]
		shard.mu.Lock()
		for k, v := range shard.items {
			if now.After(v.expiresAt) {
				delete(shard.items, k)
			}
		}
		shard.mu.Unlock()
	}
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedStore) Len() int {
	n := 0
	for i := 0; i < shardCount; i++ {
		shard := c.shards[i]
		shard.mu.RLock()
		n += len(shard.items)
		shard.mu.RUnlock()
	}
	return n
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Close stops the expiration loop and closes the wrapped store.
func (c *CachedStore) Close() error {
	c.once.Do(func() { close(c.stop) })
	return c.next.Close()
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
