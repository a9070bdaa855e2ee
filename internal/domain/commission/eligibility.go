package commission

import (
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/google/uuid"
)

// PartitionResult groups invoices by the commission path they follow
type PartitionResult struct {
	// PartialPayment holds invoices routed through the reconciliation
	// driven accrual path
	PartialPayment []ledger.Invoice
	// Standard holds invoices forwarded unchanged to the standard
	// commission flow
	Standard []ledger.Invoice
}

// EligibilityGate classifies invoices by their agent's commission method.
// An invoice is partial-payment eligible when an agent is assigned, the
// agent carries a plan, and the plan's method is PARTIAL_PAYMENT.
// The gate has no side effects beyond routing.
type EligibilityGate struct{}

// NewEligibilityGate creates a new eligibility gate
func NewEligibilityGate() *EligibilityGate {
	return &EligibilityGate{}
}

// Partition splits invoices into partial-payment and standard. Agents are
// passed in keyed by ID; invoices whose agent cannot be resolved follow
// the standard path.
func (g *EligibilityGate) Partition(invoices []ledger.Invoice, agents map[uuid.UUID]*Agent) PartitionResult {
	result := PartitionResult{
		PartialPayment: make([]ledger.Invoice, 0, len(invoices)),
		Standard:       make([]ledger.Invoice, 0, len(invoices)),
	}
	for _, inv := range invoices {
		if g.IsPartialPayment(&inv, agents) {
			result.PartialPayment = append(result.PartialPayment, inv)
		} else {
			result.Standard = append(result.Standard, inv)
		}
	}
	return result
}

// IsPartialPayment reports whether a single invoice belongs to the
// partial-payment path
func (g *EligibilityGate) IsPartialPayment(inv *ledger.Invoice, agents map[uuid.UUID]*Agent) bool {
	if !inv.HasAgent() {
		return false
	}
	return agents[*inv.AgentID].HasPartialPaymentPlan()
}
