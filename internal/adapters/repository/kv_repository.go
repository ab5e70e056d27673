package repository

import (
	"context"
	"fmt"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/tidwall/gjson"
)

// KVRepository implements ports.AccountRepository and ports.CredentialRepository
// by decoding JSON blobs from a ports.KVStore.
type KVRepository struct {
	store ports.KVStore
}

// NewKVRepository creates and returns a new KVRepository instance.
func NewKVRepository(store ports.KVStore) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	data, err := r.store.Get(ctx, ports.NamespaceVerifications, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	// Accounts and reverse index entries share a namespace, so an id may
	// only hold the other directory's entry.
	if gjson.ParseBytes(data).IsArray() {
		return nil, nil
	}

	acc, err := domain.ParseAccount(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, err)
	}
	return acc, nil
}

func (r *KVRepository) GetLinkedAccountIDs(ctx context.Context, secondaryID string) ([]string, error) {
	data, err := r.store.Get(ctx, ports.NamespaceVerifications, secondaryID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	if gjson.ParseBytes(data).IsObject() {
		return nil, nil
	}

	ids, err := domain.ParseLinkedIDs(data)
	if err != nil {
		return nil, fmt.Errorf("reverse index %s: %w", secondaryID, err)
	}
	return ids, nil
}

func (r *KVRepository) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	data, err := r.store.Get(ctx, ports.NamespaceAPIKeys, keyHash)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	key, err := domain.ParseAPIKey(data)
	if err != nil {
		// The raw credential is never known here; the hash prefix is enough to find the row.
		return nil, fmt.Errorf("api key %.12s…: %w", keyHash, err)
	}
	return key, nil
}

func (r *KVRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
