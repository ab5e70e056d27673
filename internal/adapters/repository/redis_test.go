package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/poyrazK/linkgate/internal/core/ports"
)

func TestRedisStore(t *testing.T) {
	// 1. Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to run miniredis: %v", err)
	}
	defer mr.Close()

	// 2. Initialize RedisStore
	store := NewRedisStore(mr.Addr(), "", 0)
	defer store.Close()
	ctx := context.Background()

	// 3. Test Set and Get
	data := []byte(`{"id":1,"username":"a"}`)
	if err := store.Set(ctx, ports.NamespaceVerifications, "1", data); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := store.Get(ctx, ports.NamespaceVerifications, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != string(data) {
		t.Errorf("Expected %s, got %s", data, val)
	}

	// 4. Keys are namespaced
	if !mr.Exists("verifications:1") {
		t.Errorf("Expected key verifications:1 in redis, keys: %v", mr.Keys())
	}

	// 5. Test Get Missing Key
	val, err = store.Get(ctx, ports.NamespaceAPIKeys, "1")
	if err != nil || val != nil {
		t.Errorf("Expected nil, nil for missing key, got %s, %v", val, err)
	}
}

func TestRedisStore_ErrorIsNotMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to run miniredis: %v", err)
	}
	store := NewRedisStore(mr.Addr(), "", 0)
	defer store.Close()

	mr.Close()

	val, err := store.Get(context.Background(), ports.NamespaceVerifications, "1")
	if err == nil {
		t.Errorf("Expected an error from a stopped server, got value %s", val)
	}
}

func TestRedisStore_Ping(t *testing.T) {
	mr, _ := miniredis.Run()
	defer mr.Close()
	store := NewRedisStore(mr.Addr(), "", 0)
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisStore_ReadsExternallyWrittenBlobs(t *testing.T) {
	mr, _ := miniredis.Run()
	defer mr.Close()
	store := NewRedisStore(mr.Addr(), "", 0)
	defer store.Close()

	if err := mr.Set("verifications:900", `["1","2"]`); err != nil {
		t.Fatal(err)
	}
	repo := NewKVRepository(store)
	ids, err := repo.GetLinkedAccountIDs(context.Background(), "900")
	if err != nil || len(ids) != 2 {
		t.Errorf("unexpected ids %v, %v", ids, err)
	}
}
