package ledger

import (
	"time"

	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType represents the kind of customer invoice
type InvoiceType string

const (
	InvoiceTypeInvoice    InvoiceType = "OUT_INVOICE"     // ordinary customer invoice
	InvoiceTypeCreditNote InvoiceType = "OUT_CREDIT_NOTE" // sign-flipping credit instrument
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeInvoice || t == InvoiceTypeCreditNote
}

// FlipsSign returns true for credit-note-like instruments
func (t InvoiceType) FlipsSign() bool {
	return t == InvoiceTypeCreditNote
}

// Installment is one (due date, amount) entry of an invoice's payment schedule
type Installment struct {
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// Invoice is a read model over a posted customer invoice in the external
// ledger. This subsystem never creates or mutates invoices; it only reads
// them and reacts to reconciliation events touching their lines.
//
// Invariant: UntaxedAmount / TotalAmount is the tax-exclusion ratio applied
// uniformly to any paid amount.
type Invoice struct {
	ID              uuid.UUID
	Number          string
	Type            InvoiceType
	AgentID         *uuid.UUID
	Currency        valueobject.Currency
	UntaxedAmount   decimal.Decimal
	TotalAmount     decimal.Decimal
	MoveID          uuid.UUID
	PaymentSchedule []Installment
	LinesToPay      []LedgerLine // the invoice's own settlement lines
	PaymentLines    []LedgerLine // payment lines applied against it
}

// HasAgent returns true if a sales agent is assigned
func (i *Invoice) HasAgent() bool {
	return i.AgentID != nil && *i.AgentID != uuid.Nil
}

// LineToPayIDs returns the identities of the invoice's settlement lines
func (i *Invoice) LineToPayIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(i.LinesToPay))
	for n, line := range i.LinesToPay {
		ids[n] = line.ID
	}
	return ids
}

// OwnsLine returns true if the given line is one of the invoice's
// settlement lines
func (i *Invoice) OwnsLine(lineID uuid.UUID) bool {
	for _, line := range i.LinesToPay {
		if line.ID == lineID {
			return true
		}
	}
	return false
}

// ScheduledInstallment returns the first pending installment whose amount
// equals the given absolute amount, or nil if there is none
func (i *Invoice) ScheduledInstallment(amount decimal.Decimal) *Installment {
	for n := range i.PaymentSchedule {
		if i.PaymentSchedule[n].Amount.Equal(amount) {
			return &i.PaymentSchedule[n]
		}
	}
	return nil
}
