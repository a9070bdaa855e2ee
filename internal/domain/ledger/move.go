package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKind classifies a ledger line relative to its invoice.
type LineKind string

const (
	LineKindToPay   LineKind = "TO_PAY"  // the invoice's own settlement line
	LineKindPayment LineKind = "PAYMENT" // a payment applied against the invoice
)

// IsValid checks if the line kind is valid
func (k LineKind) IsValid() bool {
	return k == LineKindToPay || k == LineKindPayment
}

// LedgerLine is a read model over a line of an account move in the
// external ledger. Lines are append-only and never created or mutated
// by this subsystem.
type LedgerLine struct {
	ID               uuid.UUID
	MoveID           uuid.UUID // owning ledger entry
	Kind             LineKind
	Debit            decimal.Decimal
	Credit           decimal.Decimal
	Date             time.Time
	ReconciliationID *uuid.UUID
}

// SignedAmount returns debit - credit
func (l LedgerLine) SignedAmount() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// IsReconciled returns true if the line belongs to a reconciliation
func (l LedgerLine) IsReconciled() bool {
	return l.ReconciliationID != nil
}

// Reconciliation is an immutable grouping of ledger lines marking them
// as mutually settled. It is only ever created or deleted, never updated.
type Reconciliation struct {
	ID    uuid.UUID
	Lines []LedgerLine
}

// SettlementDate returns the maximum date among the member lines
func (r *Reconciliation) SettlementDate() time.Time {
	var max time.Time
	for _, line := range r.Lines {
		if line.Date.After(max) {
			max = line.Date
		}
	}
	return max
}

// LineIDs returns the identities of the member lines
func (r *Reconciliation) LineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Lines))
	for i, line := range r.Lines {
		ids[i] = line.ID
	}
	return ids
}
