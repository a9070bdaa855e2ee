package commission

import (
	"context"
	"fmt"

	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StandardCommissionFlow is the external commission path for invoices
// whose plan is not partial-payment. This subsystem filters partial
// payment invoices out and forwards the rest to it unchanged.
type StandardCommissionFlow interface {
	CreateCommissions(ctx context.Context, invoices []ledger.Invoice) ([]domain.Commission, error)
}

// CommissionService is the entry point used by the invoice creation flow.
// It routes invoices through the eligibility gate, delegates standard
// invoices to the external flow, and immediately accrues any partial
// payment commission already computable from settled installments.
// It also exposes the read-only commission view used by invoice
// presentation layers.
type CommissionService struct {
	commissions domain.CommissionRepository
	agents      domain.AgentRepository
	invoices    ledger.InvoiceReader
	standard    StandardCommissionFlow
	gate        *domain.EligibilityGate
	extractor   *domain.PaidAmountExtractor
	engine      *domain.DeltaEngine
	logger      *zap.Logger
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	commissions domain.CommissionRepository,
	agents domain.AgentRepository,
	invoices ledger.InvoiceReader,
	standard StandardCommissionFlow,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		commissions: commissions,
		agents:      agents,
		invoices:    invoices,
		standard:    standard,
		gate:        domain.NewEligibilityGate(),
		extractor:   domain.NewPaidAmountExtractor(),
		engine:      domain.NewDeltaEngine(),
		logger:      logger,
	}
}

// CreateCommissions partitions the invoices by commission method,
// forwards standard invoices to the external flow, and accrues the
// partial-payment commissions already computable from installments that
// were settled before invoice finalization.
func (s *CommissionService) CreateCommissions(ctx context.Context, invoices []ledger.Invoice) ([]domain.Commission, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "create",
		telemetry.WithAttribute("invoice.count", len(invoices)))
	defer span.End()

	agents, err := s.loadAgents(ctx, invoices)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	partition := s.gate.Partition(invoices, agents)

	var records []domain.Commission
	if s.standard != nil && len(partition.Standard) > 0 {
		records, err = s.standard.CreateCommissions(ctx, partition.Standard)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("standard commission flow failed: %w", err)
		}
	}

	if len(partition.PartialPayment) == 0 {
		return records, nil
	}

	var accrued []*domain.Commission
	err = s.commissions.WithinTransaction(ctx, func(ctx context.Context, repo domain.CommissionRepository) error {
		for i := range partition.PartialPayment {
			inv := &partition.PartialPayment[i]
			created, err := s.accrueSettledInstallments(ctx, repo, inv, agents)
			if err != nil {
				return err
			}
			accrued = append(accrued, created...)
		}
		if len(accrued) == 0 {
			return nil
		}
		return repo.SaveBatch(ctx, accrued)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("partial-payment commission creation failed", zap.Error(err))
		return nil, err
	}

	for _, c := range accrued {
		records = append(records, *c)
	}
	return records, nil
}

// accrueSettledInstallments runs the accrual path for every settlement
// line of the invoice that already belongs to a reconciliation, e.g. a
// pre-existing payment schedule settled at invoice-finalization time.
func (s *CommissionService) accrueSettledInstallments(
	ctx context.Context,
	repo domain.CommissionRepository,
	inv *ledger.Invoice,
	agents map[uuid.UUID]*domain.Agent,
) ([]*domain.Commission, error) {
	var created []*domain.Commission
	for _, line := range inv.LinesToPay {
		if !line.IsReconciled() {
			continue
		}

		origin := domain.NewLedgerLineOrigin(line.ID)
		exists, err := repo.ExistsByOrigin(ctx, origin)
		if err != nil {
			return nil, fmt.Errorf("origin lookup failed for %s: %w", origin, err)
		}
		if exists {
			continue
		}

		paid, err := s.extractor.UntaxedPaidAmount(inv, line)
		if err != nil {
			return nil, err
		}
		existing, err := repo.FindByOriginLines(ctx, domain.OriginKindLedgerLine, inv.LineToPayIDs())
		if err != nil {
			return nil, fmt.Errorf("failed to load commissions of invoice %s: %w", inv.Number, err)
		}
		existing = appendPendingForInvoice(existing, created, inv)

		record, err := s.engine.Compute(domain.DeltaInput{
			Invoice:    inv,
			PaidAmount: paid,
			Agent:      agents[*inv.AgentID],
			Existing:   existing,
			Origin:     origin,
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		record.Finalize(line.Date)
		created = append(created, record)
	}
	return created, nil
}

// CommissionsOf returns the commission records originating from the
// invoice's settlement lines. Read-only; used by presentation layers.
func (s *CommissionService) CommissionsOf(ctx context.Context, invoiceID uuid.UUID) ([]domain.Commission, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %s: %w", invoiceID, err)
	}
	if inv == nil {
		return nil, nil
	}
	lineIDs := inv.LineToPayIDs()
	if len(lineIDs) == 0 {
		return []domain.Commission{}, nil
	}
	return s.commissions.FindByOriginLines(ctx, domain.OriginKindLedgerLine, lineIDs)
}

// ListCommissions returns commissions matching the filter
func (s *CommissionService) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, int64, error) {
	items, err := s.commissions.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commissions.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// loadAgents resolves the distinct agents referenced by the invoices
func (s *CommissionService) loadAgents(ctx context.Context, invoices []ledger.Invoice) (map[uuid.UUID]*domain.Agent, error) {
	ids := make([]uuid.UUID, 0, len(invoices))
	seen := make(map[uuid.UUID]struct{})
	for i := range invoices {
		if !invoices[i].HasAgent() {
			continue
		}
		id := *invoices[i].AgentID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Agent{}, nil
	}
	agents, err := s.agents.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	return agents, nil
}
