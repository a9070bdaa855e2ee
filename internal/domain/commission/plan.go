package commission

import (
	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionMethod determines when an agent's commission is accrued
type CommissionMethod string

const (
	// MethodStandard accrues the full commission when the invoice is posted
	MethodStandard CommissionMethod = "STANDARD"
	// MethodPartialPayment accrues commission incrementally as the invoice
	// is paid in installments
	MethodPartialPayment CommissionMethod = "PARTIAL_PAYMENT"
)

// IsValid checks if the commission method is valid
func (m CommissionMethod) IsValid() bool {
	return m == MethodStandard || m == MethodPartialPayment
}

// String returns the string representation of CommissionMethod
func (m CommissionMethod) String() string {
	return string(m)
}

// Pattern carries optional context for formula evaluation
type Pattern map[string]string

// Basis selects the base quantity a formula is evaluated over; nil means
// the formula's own default
type Basis string

const (
	// BasisAmount evaluates the formula over a monetary amount
	BasisAmount Basis = "AMOUNT"
	// BasisQuantity evaluates the formula over a unit quantity
	BasisQuantity Basis = "QUANTITY"
)

// Formula computes the commission owed for a base amount.
// Implementations must be pure: no state, no side effects.
type Formula interface {
	Compute(amount decimal.Decimal, basis *Basis, pattern Pattern) (decimal.Decimal, error)
}

// PercentageFormula is the default linear formula: commission = amount * rate
type PercentageFormula struct {
	// Rate is the commission fraction, e.g. 0.05 for 5%
	Rate decimal.Decimal
}

// Compute returns amount * rate regardless of basis
func (f PercentageFormula) Compute(amount decimal.Decimal, _ *Basis, _ Pattern) (decimal.Decimal, error) {
	return amount.Mul(f.Rate), nil
}

// CommissionPlan identifies a commission method, a commission product and
// a formula. Immutable per invoice once assigned.
type CommissionPlan struct {
	ID                  uuid.UUID
	Name                string
	Method              CommissionMethod
	CommissionProductID uuid.UUID
	Formula             Formula
}

// IsPartialPayment returns true if the plan accrues on partial payments
func (p *CommissionPlan) IsPartialPayment() bool {
	return p.Method == MethodPartialPayment
}

// Compute evaluates the plan's formula for the given base amount
func (p *CommissionPlan) Compute(amount decimal.Decimal, basis *Basis, pattern Pattern) (decimal.Decimal, error) {
	if p.Formula == nil {
		return decimal.Zero, shared.NewDomainError("COMPUTATION_ERROR", "commission plan has no formula")
	}
	return p.Formula.Compute(amount, basis, pattern)
}
