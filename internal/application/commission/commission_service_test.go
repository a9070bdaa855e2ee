package commission

import (
	"context"
	"testing"

	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStandardCommissionFlow is a mock implementation of StandardCommissionFlow
type MockStandardCommissionFlow struct {
	mock.Mock
}

func (m *MockStandardCommissionFlow) CreateCommissions(ctx context.Context, invoices []ledger.Invoice) ([]domain.Commission, error) {
	args := m.Called(ctx, invoices)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commission), args.Error(1)
}

type serviceFixture struct {
	repo     *MockCommissionRepository
	agents   *MockAgentRepository
	invoices *MockInvoiceReader
	standard *MockStandardCommissionFlow
	service  *CommissionService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     new(MockCommissionRepository),
		agents:   new(MockAgentRepository),
		invoices: new(MockInvoiceReader),
		standard: new(MockStandardCommissionFlow),
	}
	f.service = NewCommissionService(f.repo, f.agents, f.invoices, f.standard, zap.NewNop())
	return f
}

func TestCreateCommissions(t *testing.T) {
	ctx := context.Background()
	agent := partialPaymentAgent("0.05")

	t.Run("forwards standard invoices to the external flow", func(t *testing.T) {
		f := newServiceFixture()
		standardAgent := &domain.Agent{
			ID:   uuid.New(),
			Name: "Standard Agent",
			Plan: &domain.CommissionPlan{
				ID:      uuid.New(),
				Method:  domain.MethodStandard,
				Formula: domain.PercentageFormula{Rate: decimal.RequireFromString("0.03")},
			},
		}
		inv, _, _ := twoInstallmentInvoice(standardAgent)

		f.agents.On("FindByIDs", mock.Anything, []uuid.UUID{standardAgent.ID}).
			Return(map[uuid.UUID]*domain.Agent{standardAgent.ID: standardAgent}, nil)
		f.standard.On("CreateCommissions", mock.Anything, mock.Anything).
			Return([]domain.Commission{}, nil)

		records, err := f.service.CreateCommissions(ctx, []ledger.Invoice{*inv})
		require.NoError(t, err)
		assert.Empty(t, records)

		f.standard.AssertCalled(t, "CreateCommissions", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("accrues commissions for installments settled before posting", func(t *testing.T) {
		f := newServiceFixture()
		inv, first, _ := twoInstallmentInvoice(agent)

		f.agents.On("FindByIDs", mock.Anything, []uuid.UUID{agent.ID}).
			Return(map[uuid.UUID]*domain.Agent{agent.ID: agent}, nil)
		f.repo.On("ExistsByOrigin", mock.Anything, mock.Anything).Return(false, nil)
		f.repo.On("FindByOriginLines", mock.Anything, domain.OriginKindLedgerLine, mock.Anything).
			Return([]domain.Commission{}, nil)

		var saved []*domain.Commission
		f.repo.On("SaveBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).([]*domain.Commission)
			}).Return(nil)

		records, err := f.service.CreateCommissions(ctx, []ledger.Invoice{*inv})
		require.NoError(t, err)

		// Only the first installment is reconciled at posting time.
		require.Len(t, saved, 1)
		assert.Equal(t, "25.00", saved[0].Amount.StringFixed(2))
		assert.Equal(t, domain.NewLedgerLineOrigin(first.ID), saved[0].Origin)
		require.True(t, saved[0].IsFinalized())
		assert.Equal(t, first.Date, *saved[0].Date)

		require.Len(t, records, 1)
		assert.Equal(t, saved[0].ID, records[0].ID)

		f.standard.AssertNotCalled(t, "CreateCommissions", mock.Anything, mock.Anything)
	})

	t.Run("skips settled installments that already carry a commission", func(t *testing.T) {
		f := newServiceFixture()
		inv, first, _ := twoInstallmentInvoice(agent)

		f.agents.On("FindByIDs", mock.Anything, mock.Anything).
			Return(map[uuid.UUID]*domain.Agent{agent.ID: agent}, nil)
		f.repo.On("ExistsByOrigin", mock.Anything, domain.NewLedgerLineOrigin(first.ID)).
			Return(true, nil)

		records, err := f.service.CreateCommissions(ctx, []ledger.Invoice{*inv})
		require.NoError(t, err)
		assert.Empty(t, records)

		f.repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("works without an external standard flow", func(t *testing.T) {
		f := newServiceFixture()
		f.service = NewCommissionService(f.repo, f.agents, f.invoices, nil, zap.NewNop())

		inv, _, _ := twoInstallmentInvoice(agent)
		inv.AgentID = nil

		records, err := f.service.CreateCommissions(ctx, []ledger.Invoice{*inv})
		require.NoError(t, err)
		assert.Empty(t, records)

		f.agents.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})
}

func TestCommissionsOf(t *testing.T) {
	ctx := context.Background()
	agent := partialPaymentAgent("0.05")

	t.Run("returns commissions of the invoice's settlement lines", func(t *testing.T) {
		f := newServiceFixture()
		inv, first, _ := twoInstallmentInvoice(agent)

		c, err := domain.NewCommission(domain.NewLedgerLineOrigin(first.ID), agent.ID, uuid.New(),
			decimal.RequireFromString("25"))
		require.NoError(t, err)

		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.repo.On("FindByOriginLines", mock.Anything, domain.OriginKindLedgerLine, inv.LineToPayIDs()).
			Return([]domain.Commission{*c}, nil)

		records, err := f.service.CommissionsOf(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, c.ID, records[0].ID)
	})

	t.Run("returns nil for unknown invoices", func(t *testing.T) {
		f := newServiceFixture()
		invoiceID := uuid.New()
		f.invoices.On("FindByID", mock.Anything, invoiceID).Return(nil, nil)

		records, err := f.service.CommissionsOf(ctx, invoiceID)
		require.NoError(t, err)
		assert.Nil(t, records)
	})
}

func TestListCommissions(t *testing.T) {
	ctx := context.Background()

	f := newServiceFixture()
	filter := domain.CommissionFilter{}
	f.repo.On("FindAll", mock.Anything, filter).Return([]domain.Commission{}, nil)
	f.repo.On("Count", mock.Anything, filter).Return(int64(7), nil)

	items, total, err := f.service.ListCommissions(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(7), total)
}
