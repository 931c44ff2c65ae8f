package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockAccountService is a testify mock of service.AccountService.
type MockAccountService struct {
	mock.Mock
}

var _ service.AccountService = (*MockAccountService)(nil)

func (m *MockAccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, username, email, password)
	if account, ok := args.Get(0).(*domain.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, username, password string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockAccountService) UpdateUsername(ctx context.Context, id uuid.UUID, newUsername string) (bool, error) {
	args := m.Called(ctx, id, newUsername)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) (bool, error) {
	args := m.Called(ctx, id, current, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error) {
	args := m.Called(ctx, id, firstName, lastName)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*domain.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) FindAll(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if accounts, ok := args.Get(0).([]*domain.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
