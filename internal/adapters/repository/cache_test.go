package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/poyrazK/linkgate/internal/testutil"
)

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	cache := NewCachedStore(backend, time.Minute)
	defer cache.Close()

	for i := 0; i < 3; i++ {
		v, err := cache.Get(ctx, ports.NamespaceVerifications, "900")
		if err != nil || string(v) != `["1"]` {
			t.Fatalf("unexpected read %q, %v", v, err)
		}
	}
	if backend.Gets != 1 {
		t.Errorf("expected 1 backend read, got %d", backend.Gets)
	}
}

func TestCachedStore_MissesNotCached(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	cache := NewCachedStore(backend, time.Minute)
	defer cache.Close()

	v, err := cache.Get(ctx, ports.NamespaceVerifications, "404")
	if v != nil || err != nil {
		t.Errorf("expected nil, nil, got %q, %v", v, err)
	}
	backend.PutLinks(t, "404", "1")
	v, _ = cache.Get(ctx, ports.NamespaceVerifications, "404")
	if v == nil {
		t.Errorf("expected value written after a miss to be visible")
	}
}

func TestCachedStore_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	backend.Fail = true
	cache := NewCachedStore(backend, time.Minute)
	defer cache.Close()

	if _, err := cache.Get(ctx, ports.NamespaceVerifications, "900"); err == nil {
		t.Fatal("expected backend error")
	}
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after error, got %d entries", cache.Len())
	}
}

func TestCachedStore_Expiration(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	cache := NewCachedStore(backend, time.Millisecond)
	defer cache.Close()

	_, _ = cache.Get(ctx, ports.NamespaceVerifications, "900")
	time.Sleep(10 * time.Millisecond)
	_, _ = cache.Get(ctx, ports.NamespaceVerifications, "900")
	if backend.Gets != 2 {
		t.Errorf("expected expired entry to be re-read, got %d backend reads", backend.Gets)
	}

	cache.Cleanup()
	time.Sleep(5 * time.Millisecond)
	cache.Cleanup()
	if cache.Len() != 0 {
		t.Errorf("expected cleanup to drop expired entries, got %d", cache.Len())
	}
}

func TestCachedStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	cache := NewCachedStore(backend, time.Minute)
	defer cache.Close()

	v, _ := cache.Get(ctx, ports.NamespaceVerifications, "900")
	v[0] = 'X'
	again, _ := cache.Get(ctx, ports.NamespaceVerifications, "900")
	if string(again) != `["1"]` {
		t.Errorf("cached value was mutated through a returned slice: %q", again)
	}
}

func TestCachedStore_NamespacesIsolated(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "1", "2")
	cache := NewCachedStore(backend, time.Minute)
	defer cache.Close()

	_, _ = cache.Get(ctx, ports.NamespaceVerifications, "1")
	if v, _ := cache.Get(ctx, ports.NamespaceAPIKeys, "1"); v != nil {
		t.Errorf("expected api_keys miss, got %q", v)
	}
}

func TestCachedStore_Flush(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	cache := NewCachedStore(backend, time.Hour)
	defer cache.Close()

	_, _ = cache.Get(ctx, ports.NamespaceVerifications, "900")
	cache.Flush()
	if cache.Len() != 0 {
		t.Errorf("expected cache to be empty after flush")
	}
}

func TestCachedStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemStore()
	backend.PutLinks(t, "900", "1")
	cache := NewCachedStore(backend, time.Hour)
	defer cache.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(ctx, ports.NamespaceVerifications, "900"); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
