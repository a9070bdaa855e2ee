package commission

import (
	"context"
	"fmt"

	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared"
	"github.com/erp/commission/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationLifecycleService drives commission accrual from the two
// lifecycle events of a reconciliation: creation and deletion.
//
// On creation it runs the paid-amount extractor and the delta engine per
// affected partial-payment invoice and persists the resulting records,
// dated at the reconciliation's settlement date. On deletion it removes
// records that were never consumed downstream and compensates the rest
// with equal-and-opposite entries.
//
// Each invocation is one atomic unit of work: any extraction or formula
// failure aborts the whole batch with no partial commit, matching the
// atomicity of the reconciliation operation itself.
type ReconciliationLifecycleService struct {
	commissions domain.CommissionRepository
	agents      domain.AgentRepository
	invoices    ledger.InvoiceReader
	gate        *domain.EligibilityGate
	extractor   *domain.PaidAmountExtractor
	engine      *domain.DeltaEngine
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewReconciliationLifecycleService creates a new lifecycle service
func NewReconciliationLifecycleService(
	commissions domain.CommissionRepository,
	agents domain.AgentRepository,
	invoices ledger.InvoiceReader,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ReconciliationLifecycleService {
	return &ReconciliationLifecycleService{
		commissions: commissions,
		agents:      agents,
		invoices:    invoices,
		gate:        domain.NewEligibilityGate(),
		extractor:   domain.NewPaidAmountExtractor(),
		engine:      domain.NewDeltaEngine(),
		events:      events,
		logger:      logger,
	}
}

// invoiceLine pairs a reconciled ledger line with its owning invoice
type invoiceLine struct {
	invoice *ledger.Invoice
	line    ledger.LedgerLine
}

// OnReconciliationCreated accrues incremental commissions for every
// partial-payment invoice touched by the given reconciliations.
// Lines whose origin already carries a commission are skipped silently.
func (s *ReconciliationLifecycleService) OnReconciliationCreated(ctx context.Context, reconciliations []ledger.Reconciliation) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "created",
		telemetry.WithAttribute("reconciliation.count", len(reconciliations)))
	defer span.End()

	err := s.commissions.WithinTransaction(ctx, func(ctx context.Context, repo domain.CommissionRepository) error {
		var batch []*domain.Commission
		for _, rec := range reconciliations {
			created, err := s.accrueForReconciliation(ctx, repo, rec, batch)
			if err != nil {
				return err
			}
			batch = append(batch, created...)
		}
		if len(batch) == 0 {
			return nil
		}
		// Bulk create, bypassing document-level access checks: finalized
		// commission creation is a system-triggered side effect, not a
		// user action.
		if err := repo.SaveBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to persist commission batch: %w", err)
		}
		s.publishEvents(ctx, batch)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("reconciliation-created commission accrual failed",
			zap.Int("reconciliations", len(reconciliations)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// accrueForReconciliation computes the commission records owed for one
// reconciliation. pending carries records accrued earlier in the same
// batch so that a later reconciliation of the same invoice sees them as
// recognized.
func (s *ReconciliationLifecycleService) accrueForReconciliation(
	ctx context.Context,
	repo domain.CommissionRepository,
	rec ledger.Reconciliation,
	pending []*domain.Commission,
) ([]*domain.Commission, error) {
	pairs, err := s.affectedInvoiceLines(ctx, rec)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	agents, err := s.resolveAgents(ctx, pairs)
	if err != nil {
		return nil, err
	}

	settlementDate := rec.SettlementDate()
	var created []*domain.Commission
	for _, pair := range pairs {
		inv := pair.invoice
		if !s.gate.IsPartialPayment(inv, agents) {
			continue
		}

		origin := domain.NewLedgerLineOrigin(pair.line.ID)
		exists, err := repo.ExistsByOrigin(ctx, origin)
		if err != nil {
			return nil, fmt.Errorf("origin lookup failed for %s: %w", origin, err)
		}
		if exists {
			s.logger.Debug("commission already accrued for origin, skipping",
				zap.String("origin", origin.String()),
				zap.String("invoice", inv.Number),
			)
			continue
		}

		if s.linePrematurelyAccrues(inv, pair.line) {
			s.logger.Debug("line nets to zero against a pending installment, deferring accrual",
				zap.String("origin", origin.String()),
				zap.String("invoice", inv.Number),
			)
			continue
		}

		paid, err := s.extractor.UntaxedPaidAmount(inv, pair.line)
		if err != nil {
			return nil, err
		}

		existing, err := repo.FindByOriginLines(ctx, domain.OriginKindLedgerLine, inv.LineToPayIDs())
		if err != nil {
			return nil, fmt.Errorf("failed to load commissions of invoice %s: %w", inv.Number, err)
		}
		existing = appendPendingForInvoice(existing, append(pending, created...), inv)

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

		record.Finalize(settlementDate)
		created = append(created, record)
		s.logger.Info("incremental commission accrued",
			zap.String("invoice", inv.Number),
			zap.String("origin", origin.String()),
			zap.String("amount", record.Amount.String()),
			zap.Time("date", settlementDate),
		)
	}
	return created, nil
}

// OnReconciliationDeleted cancels or compensates the commissions accrued
// for the given reconciliations' member lines. Records never consumed
// downstream are removed outright; consumed ones are neutralized with a
// sign-inverted copy, leaving the original untouched.
func (s *ReconciliationLifecycleService) OnReconciliationDeleted(ctx context.Context, reconciliations []ledger.Reconciliation) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "deleted",
		telemetry.WithAttribute("reconciliation.count", len(reconciliations)))
	defer span.End()

	lineIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, rec := range reconciliations {
		for _, id := range rec.LineIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			lineIDs = append(lineIDs, id)
		}
	}
	if len(lineIDs) == 0 {
		return nil
	}

	err := s.commissions.WithinTransaction(ctx, func(ctx context.Context, repo domain.CommissionRepository) error {
		affected, err := repo.FindByOriginLines(ctx, domain.OriginKindLedgerLine, lineIDs)
		if err != nil {
			return fmt.Errorf("failed to load commissions for deleted reconciliations: %w", err)
		}

		var toDelete []uuid.UUID
		var compensations []*domain.Commission
		var cancelled []*domain.Commission
		for i := range affected {
			c := affected[i]
			if c.IsDownstreamConsumed() {
				compensations = append(compensations, c.CompensatingCopy())
				continue
			}
			if err := c.EnsureDeletable(); err != nil {
				return err
			}
			toDelete = append(toDelete, c.ID)
			removed := c
			removed.AddDomainEvent(domain.NewCommissionCancelledEvent(&removed))
			cancelled = append(cancelled, &removed)
		}

		if len(toDelete) > 0 {
			if err := repo.DeleteBatch(ctx, toDelete); err != nil {
				return fmt.Errorf("failed to delete provisional commissions: %w", err)
			}
		}
		if len(compensations) > 0 {
			if err := repo.SaveBatch(ctx, compensations); err != nil {
				return fmt.Errorf("failed to persist compensating commissions: %w", err)
			}
		}
		s.publishEvents(ctx, cancelled)
		s.publishEvents(ctx, compensations)
		s.logger.Info("reconciliation deletion processed",
			zap.Int("deleted_commissions", len(toDelete)),
			zap.Int("compensations", len(compensations)),
		)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("reconciliation-deleted commission cleanup failed", zap.Error(err))
		return err
	}
	return nil
}

// affectedInvoiceLines resolves, for each member line, the invoice owning
// the line's ledger entry. Lines whose entry belongs to no invoice are
// outside this subsystem's scope.
func (s *ReconciliationLifecycleService) affectedInvoiceLines(ctx context.Context, rec ledger.Reconciliation) ([]invoiceLine, error) {
	pairs := make([]invoiceLine, 0, len(rec.Lines))
	invoiceCache := make(map[uuid.UUID]*ledger.Invoice)
	for _, line := range rec.Lines {
		inv, ok := invoiceCache[line.MoveID]
		if !ok {
			var err error
			inv, err = s.invoices.FindByMoveID(ctx, line.MoveID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve invoice for move %s: %w", line.MoveID, err)
			}
			invoiceCache[line.MoveID] = inv
		}
		if inv == nil {
			continue
		}
		pairs = append(pairs, invoiceLine{invoice: inv, line: line})
	}
	return pairs, nil
}

// resolveAgents loads the agents referenced by the affected invoices
func (s *ReconciliationLifecycleService) resolveAgents(ctx context.Context, pairs []invoiceLine) (map[uuid.UUID]*domain.Agent, error) {
	ids := make([]uuid.UUID, 0, len(pairs))
	seen := make(map[uuid.UUID]struct{})
	for _, pair := range pairs {
		if !pair.invoice.HasAgent() {
			continue
		}
		id := *pair.invoice.AgentID
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

// linePrematurelyAccrues reports whether accrual must be deferred because
// the reconciled line nets to zero economic effect: its signed amount
// matches a scheduled installment and another unreconciled settlement
// line of the same invoice carries the exact opposite amount.
func (s *ReconciliationLifecycleService) linePrematurelyAccrues(inv *ledger.Invoice, line ledger.LedgerLine) bool {
	amount := line.SignedAmount()
	if inv.ScheduledInstallment(amount.Abs()) == nil {
		return false
	}
	for _, other := range inv.LinesToPay {
		if other.ID == line.ID || other.IsReconciled() {
			continue
		}
		if other.SignedAmount().Equal(amount.Neg()) {
			return true
		}
	}
	return false
}

// publishEvents drains and publishes the domain events of the given
// records to in-process observers. It runs inside the accrual
// transaction, before commit; a publish failure is logged but never
// aborts the batch.
func (s *ReconciliationLifecycleService) publishEvents(ctx context.Context, records []*domain.Commission) {
	if s.events == nil {
		return
	}
	for _, record := range records {
		events := record.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish commission events", zap.Error(err))
		}
		record.ClearDomainEvents()
	}
}

// appendPendingForInvoice adds batch records belonging to the invoice to
// the recognized set, so multiple reconciliations of one invoice inside a
// single batch accrue against each other rather than double-count.
func appendPendingForInvoice(existing []domain.Commission, pending []*domain.Commission, inv *ledger.Invoice) []domain.Commission {
	for _, p := range pending {
		if p.Origin.Kind == domain.OriginKindLedgerLine && inv.OwnsLine(p.Origin.EntityID) {
			existing = append(existing, *p)
		}
	}
	return existing
}
