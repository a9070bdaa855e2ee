package commission

import (
	"fmt"

	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared"
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DeltaInput carries everything the delta engine needs to decide whether
// a new commission record is owed for a settlement event.
type DeltaInput struct {
	// Invoice is the invoice whose payment state changed
	Invoice *ledger.Invoice
	// PaidAmount is the cumulative untaxed-equivalent paid amount
	PaidAmount decimal.Decimal
	// Agent is the invoice's agent; its plan provides the formula
	Agent *Agent
	// Existing holds the invoice's commission records accrued so far
	Existing []Commission
	// Origin identifies the ledger line triggering this computation
	Origin OriginRef
}

// DeltaEngine computes the incremental commission still owed for an
// invoice given its cumulative paid amount, and emits a new provisional
// record only when the delta survives currency-precision rounding.
type DeltaEngine struct{}

// NewDeltaEngine creates a new delta engine
func NewDeltaEngine() *DeltaEngine {
	return &DeltaEngine{}
}

// Compute returns the provisional commission for the increment since the
// last recognized amount, or nil when nothing new is owed.
//
// Only finalized (dated) records count toward the already recognized sum;
// provisional records are not yet settled and must not suppress accrual.
func (e *DeltaEngine) Compute(in DeltaInput) (*Commission, error) {
	if in.Agent == nil || in.Agent.Plan == nil {
		return nil, shared.NewDomainError("COMPUTATION_ERROR", "invoice agent has no commission plan")
	}
	plan := in.Agent.Plan

	basis := BasisAmount
	merited, err := plan.Compute(in.PaidAmount, &basis, nil)
	if err != nil {
		return nil, fmt.Errorf("commission formula failed for origin %s: %w", in.Origin, err)
	}

	recognized := decimal.Zero
	for i := range in.Existing {
		if in.Existing[i].IsFinalized() {
			recognized = recognized.Add(in.Existing[i].Amount)
		}
	}

	meritedMoney, err := valueobject.NewMoney(merited, in.Invoice.Currency)
	if err != nil {
		return nil, shared.NewDomainError("COMPUTATION_ERROR", "invoice has no currency")
	}
	recognizedMoney, err := valueobject.NewMoney(recognized, in.Invoice.Currency)
	if err != nil {
		return nil, shared.NewDomainError("COMPUTATION_ERROR", "invoice has no currency")
	}

	deltaMoney, err := meritedMoney.Quantize().Sub(recognizedMoney.Quantize())
	if err != nil {
		return nil, err
	}
	if deltaMoney.IsZero() {
		return nil, nil
	}
	delta := deltaMoney.Amount()

	return NewCommission(in.Origin, in.Agent.ID, plan.CommissionProductID, delta)
}
