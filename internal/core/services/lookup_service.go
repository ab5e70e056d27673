package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds the parallel account reads of one reverse lookup.
const DefaultFetchConcurrency = 8

type lookupService struct {
	accounts         ports.AccountRepository
	resolver         ports.CredentialResolver
	fetchConcurrency int
	logger           *slog.Logger
}

// NewLookupService wires the account repository and credential resolver into
// the two lookup operations. A non-positive fetchConcurrency uses the default.
func NewLookupService(accounts ports.AccountRepository, resolver ports.CredentialResolver, fetchConcurrency int, logger *slog.Logger) ports.LookupService {
	if fetchConcurrency <= 0 {
		fetchConcurrency = DefaultFetchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &lookupService{
		accounts:         accounts,
		resolver:         resolver,
		fetchConcurrency: fetchConcurrency,
		logger:           logger,
	}
}

func (s *lookupService) LookupPrimary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	start := time.Now()
	out, err := s.lookupPrimary(ctx, id, credential)
	s.observe(domain.DirectoryPrimary, out, err, start)
	return out, err
}

func (s *lookupService) lookupPrimary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	if err := domain.ValidateAccountID(domain.DirectoryPrimary, id); err != nil {
		return domain.Outcome{}, err
	}

	acc, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("get account %s: %w", id, err)
	}

	access := domain.NoCredential()
	if acc != nil && !acc.Visibility(domain.DirectoryPrimary).IsPublic() {
		if access, err = s.resolver.Resolve(ctx, credential); err != nil {
			return domain.Outcome{}, err
		}
	}

	return AuthorizeSingle(acc, domain.DirectoryPrimary, access), nil
}

func (s *lookupService) LookupSecondary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	start := time.Now()
	out, err := s.lookupSecondary(ctx, id, credential)
	s.observe(domain.DirectorySecondary, out, err, start)
	return out, err
}

func (s *lookupService) lookupSecondary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	if err := domain.ValidateAccountID(domain.DirectorySecondary, id); err != nil {
		return domain.Outcome{}, err
	}

	ids, err := s.accounts.GetLinkedAccountIDs(ctx, id)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("get linked accounts of %s: %w", id, err)
	}
	if len(ids) == 0 {
		return domain.NotFound(), nil
	}

	accounts, err := s.fetchAccounts(ctx, ids)
	if err != nil {
		return domain.Outcome{}, err
	}

	// Only public candidates: the credential is never consulted.
	access := domain.NoCredential()
	if hasGated(accounts, domain.DirectorySecondary) {
		if access, err = s.resolver.Resolve(ctx, credential); err != nil {
			return domain.Outcome{}, err
		}
	}

	return AuthorizeMany(accounts, access), nil
}

// fetchAccounts reads every candidate concurrently. The result is indexed
// like ids; dangling links leave a nil slot.
func (s *lookupService) fetchAccounts(ctx context.Context, ids []string) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			acc, err := s.accounts.GetAccount(gctx, id)
			if err != nil {
				return fmt.Errorf("get linked account %s: %w", id, err)
			}
			if acc == nil {
				s.logger.DebugContext(gctx, "dangling reverse index link", "account_id", id)
			}
			accounts[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *lookupService) observe(dir domain.Directory, out domain.Outcome, err error, start time.Time) {
	metrics.LookupDuration.WithLabelValues(string(dir)).Observe(time.Since(start).Seconds())

	label := out.Kind.String()
	if err != nil {
		label = "error"
	}
	metrics.LookupsTotal.WithLabelValues(string(dir), label).Inc()
}

func (s *lookupService) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{
		"store": s.accounts.Ping(ctx),
	}
}
