package commission

import (
	"fmt"

	"github.com/google/uuid"
)

// OriginKind discriminates the kind of record a commission originated from
type OriginKind string

const (
	OriginKindLedgerLine  OriginKind = "LEDGER_LINE"
	OriginKindInvoiceLine OriginKind = "INVOICE_LINE"
	OriginKindPaymentLine OriginKind = "PAYMENT_LINE"
)

// IsValid checks if the origin kind is valid
func (k OriginKind) IsValid() bool {
	switch k {
	case OriginKindLedgerLine, OriginKindInvoiceLine, OriginKindPaymentLine:
		return true
	}
	return false
}

// OriginRef is a typed reference to the record that triggered a
// commission. It acts as the natural idempotency key of the accrual
// path: at most one commission is accrued per distinct origin.
// The discriminant is resolved once at commission-creation time and
// never re-inspected through runtime type checks.
type OriginRef struct {
	Kind     OriginKind
	EntityID uuid.UUID
}

// NewLedgerLineOrigin creates an origin reference for a ledger line
func NewLedgerLineOrigin(lineID uuid.UUID) OriginRef {
	return OriginRef{Kind: OriginKindLedgerLine, EntityID: lineID}
}

// NewInvoiceLineOrigin creates an origin reference for an invoice line
func NewInvoiceLineOrigin(lineID uuid.UUID) OriginRef {
	return OriginRef{Kind: OriginKindInvoiceLine, EntityID: lineID}
}

// IsZero returns true for the zero reference
func (o OriginRef) IsZero() bool {
	return o.Kind == "" && o.EntityID == uuid.Nil
}

// String returns a display form, e.g. "LEDGER_LINE:<uuid>".
// It is never parsed back; lookups always go through Kind and EntityID.
func (o OriginRef) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.EntityID)
}
