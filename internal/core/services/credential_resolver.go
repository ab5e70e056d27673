package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
)

type credentialResolver struct {
	repo        ports.CredentialRepository
	internalKey string
}

// NewCredentialResolver returns a resolver backed by repo. internalKey is the
// override credential; an empty value disables the override.
func NewCredentialResolver(repo ports.CredentialRepository, internalKey string) ports.CredentialResolver {
	return &credentialResolver{repo: repo, internalKey: internalKey}
}

func (r *credentialResolver) Resolve(ctx context.Context, credential string) (domain.Access, error) {
	if credential == "" {
		return domain.NoCredential(), nil
	}

	if r.isInternal(credential) {
		metrics.CredentialResolutions.WithLabelValues(domain.AccessUnrestricted.String()).Inc()
		return domain.Unrestricted(), nil
	}

	key, err := r.repo.GetAPIKeyByHash(ctx, domain.HashAPIKey(credential))
	if err != nil {
		metrics.CredentialResolutions.WithLabelValues("error").Inc()
		return domain.Access{}, fmt.Errorf("resolve credential: %w", err)
	}
	if key == nil {
		metrics.CredentialResolutions.WithLabelValues(domain.AccessInvalid.String()).Inc()
		return domain.InvalidCredential(), nil
	}

	metrics.CredentialResolutions.WithLabelValues(domain.AccessAuthorized.String()).Inc()
	return domain.Authorized(key.AccessLevel), nil
}

func (r *credentialResolver) isInternal(credential string) bool {
	if r.internalKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(r.internalKey)) == 1
}
