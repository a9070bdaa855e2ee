package commission

import (
	"context"

	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCommissionRepository is a mock implementation of CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commission), args.Error(1)
}

func (m *MockCommissionRepository) FindByOrigin(ctx context.Context, origin domain.OriginRef) (*domain.Commission, error) {
	args := m.Called(ctx, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commission), args.Error(1)
}

func (m *MockCommissionRepository) ExistsByOrigin(ctx context.Context, origin domain.OriginRef) (bool, error) {
	args := m.Called(ctx, origin)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommissionRepository) FindByOriginLines(ctx context.Context, kind domain.OriginKind, lineIDs []uuid.UUID) ([]domain.Commission, error) {
	args := m.Called(ctx, kind, lineIDs)
	return args.Get(0).([]domain.Commission), args.Error(1)
}

func (m *MockCommissionRepository) FindAll(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Commission), args.Error(1)
}

func (m *MockCommissionRepository) Count(ctx context.Context, filter domain.CommissionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommissionRepository) SaveBatch(ctx context.Context, commissions []*domain.Commission) error {
	args := m.Called(ctx, commissions)
	return args.Error(0)
}

func (m *MockCommissionRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// WithinTransaction runs fn against the mock itself; transactional
// behavior is exercised in the repository integration tests.
func (m *MockCommissionRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repo domain.CommissionRepository) error) error {
	return fn(ctx, m)
}

// MockAgentRepository is a mock implementation of AgentRepository
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Agent, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*domain.Agent), args.Error(1)
}

// MockInvoiceReader is a mock implementation of InvoiceReader
type MockInvoiceReader struct {
	mock.Mock
}

func (m *MockInvoiceReader) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceReader) FindByMoveID(ctx context.Context, moveID uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, moveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
