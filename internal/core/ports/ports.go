package ports

import (
	"context"

	"github.com/poyrazK/linkgate/internal/core/domain"
)

// Storage namespaces shared by every backend.
const (
	NamespaceVerifications = "verifications" // Accounts and reverse index entries
	NamespaceAPIKeys       = "api_keys"      // Credential records keyed by hash
)

// KVStore is a point-lookup JSON blob store. Get returns nil, nil when the key
// does not exist; any non-nil error is a backend fault.
type KVStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// KVWriter is implemented by backends that can be seeded. The lookup path
// never writes.
type KVWriter interface {
	Set(ctx context.Context, namespace, key string, value []byte) error
}

type AccountRepository interface {
	// GetAccount returns nil, nil when no account is stored under id.
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	// GetLinkedAccountIDs returns the primary ids linked to a secondary id,
	// nil when there is no reverse index entry.
	GetLinkedAccountIDs(ctx context.Context, secondaryID string) ([]string, error)
	Ping(ctx context.Context) error
}

type CredentialRepository interface {
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
}

type CredentialResolver interface {
	// Resolve maps a raw credential to an access level. An empty credential
	// resolves to domain.NoCredential.
	Resolve(ctx context.Context, credential string) (domain.Access, error)
}

type LookupService interface {
	LookupPrimary(ctx context.Context, id string, credential string) (domain.Outcome, error)
	LookupSecondary(ctx context.Context, id string, credential string) (domain.Outcome, error)
	HealthCheck(ctx context.Context) map[string]error
}
