package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
)

// ErrStoreDown is returned by MemStore when Fail is set.
var ErrStoreDown = errors.New("store unavailable")

// MemStore implements ports.KVStore and ports.KVWriter in memory for testing.
type MemStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	Gets  int
	Fail  bool
}

func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string][]byte)}
}

func (m *MemStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.Fail {
		return nil, ErrStoreDown
	}
	v, ok := m.items[namespace+":"+key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemStore) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStoreDown
	}
	m.items[namespace+":"+key] = append([]byte(nil), value...)
	return nil
}

func (m *MemStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail {
		return ErrStoreDown
	}
	return nil
}

func (m *MemStore) Close() error { return nil }

// PutAccount stores a verified account and returns its parsed form.
func (m *MemStore) PutAccount(t testing.TB, id int64, name string, privacy *domain.Privacy) *domain.Account {
	t.Helper()
	acc, doc, err := domain.NewAccount(id, name, privacy)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	if err := m.Set(context.Background(), ports.NamespaceVerifications, strconv.FormatInt(id, 10), doc); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return acc
}

// PutLinks stores a reverse index entry for secondaryID.
func (m *MemStore) PutLinks(t testing.TB, secondaryID string, primaryIDs ...string) {
	t.Helper()
	doc, err := domain.LinkedIDsDocument(primaryIDs)
	if err != nil {
		t.Fatalf("marshal links: %v", err)
	}
	if err := m.Set(context.Background(), ports.NamespaceVerifications, secondaryID, doc); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

// PutAPIKey stores a credential record under the hash of raw.
func (m *MemStore) PutAPIKey(t testing.TB, raw string, level int) {
	t.Helper()
	doc, err := (&domain.APIKey{AccessLevel: level, Issuer: "test"}).Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if err := m.Set(context.Background(), ports.NamespaceAPIKeys, domain.HashAPIKey(raw), doc); err != nil {
		t.Fatalf("Set: %v", err)
	}
}
