package testutil

import (
	"context"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) GetLinkedAccountIDs(ctx context.Context, secondaryID string) ([]string, error) {
	args := m.Called(secondaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAccountRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

type MockCredentialRepo struct {
	mock.Mock
}

func (m *MockCredentialRepo) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, credential string) (domain.Access, error) {
	args := m.Called(credential)
	return args.Get(0).(domain.Access), args.Error(1)
}

type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) LookupPrimary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	args := m.Called(id, credential)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

func (m *MockLookupService) LookupSecondary(ctx context.Context, id string, credential string) (domain.Outcome, error) {
	args := m.Called(id, credential)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

func (m *MockLookupService) HealthCheck(ctx context.Context) map[string]error {
	args := m.Called()
	return args.Get(0).(map[string]error)
}
