package commission

import (
	"time"

	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountDigits is the precision of the Commission amount field itself,
// which may differ from the invoice currency's precision.
const AmountDigits int32 = 4

// Commission represents one accrual record: the incremental commission
// recognized for an agent when part of an invoice was settled.
//
// A commission with a nil Date is provisional: not yet tied to a dated
// settlement event and safely deletable. A non-nil Date means the record
// is finalized at that settlement date. A non-nil InvoiceLineID means the
// record was consumed downstream (invoiced to the agent) and must never
// be deleted or mutated; it can only be neutralized by a compensating
// copy.
type Commission struct {
	shared.BaseAggregateRoot
	Origin        OriginRef
	AgentID       uuid.UUID
	ProductID     uuid.UUID
	Amount        decimal.Decimal
	Date          *time.Time
	InvoiceLineID *uuid.UUID
}

// NewCommission creates a provisional commission record. The amount is
// quantized to the commission's own precision.
func NewCommission(origin OriginRef, agentID, productID uuid.UUID, amount decimal.Decimal) (*Commission, error) {
	if !origin.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "commission origin kind is invalid")
	}
	if agentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "commission agent is required")
	}
	return &Commission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Origin:            origin,
		AgentID:           agentID,
		ProductID:         productID,
		Amount:            amount.Round(AmountDigits),
	}, nil
}

// IsProvisional returns true if the commission has no settlement date yet
func (c *Commission) IsProvisional() bool {
	return c.Date == nil
}

// IsFinalized returns true if the commission carries a settlement date
func (c *Commission) IsFinalized() bool {
	return c.Date != nil
}

// IsDownstreamConsumed returns true if the commission was already picked
// up by a downstream invoice line
func (c *Commission) IsDownstreamConsumed() bool {
	return c.InvoiceLineID != nil
}

// Finalize stamps the commission with its settlement date
func (c *Commission) Finalize(date time.Time) {
	d := date
	c.Date = &d
	c.AddDomainEvent(NewCommissionAccruedEvent(c))
}

// AttachInvoiceLine marks the commission as consumed by a downstream
// invoice line
func (c *Commission) AttachInvoiceLine(lineID uuid.UUID) error {
	if c.IsProvisional() {
		return shared.NewDomainError("INVALID_STATE", "cannot invoice a provisional commission")
	}
	if c.InvoiceLineID != nil {
		return shared.NewDomainError("INVALID_STATE", "commission is already attached to an invoice line")
	}
	id := lineID
	c.InvoiceLineID = &id
	return nil
}

// EnsureDeletable returns a ConsistencyViolation when the commission may
// not be removed outright. A finalized, downstream-consumed record must
// be compensated instead of deleted.
func (c *Commission) EnsureDeletable() error {
	if c.IsFinalized() && c.IsDownstreamConsumed() {
		return shared.ErrConsistencyViolation
	}
	return nil
}

// CompensatingCopy returns a new record whose amount is the exact
// negation of this one. The original is left untouched: it is assumed
// already consumed downstream. The copy keeps the origin and settlement
// date but is not attached to any downstream document.
func (c *Commission) CompensatingCopy() *Commission {
	copy := &Commission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Origin:            c.Origin,
		AgentID:           c.AgentID,
		ProductID:         c.ProductID,
		Amount:            c.Amount.Neg(),
	}
	if c.Date != nil {
		d := *c.Date
		copy.Date = &d
	}
	copy.AddDomainEvent(NewCommissionCompensatedEvent(c, copy))
	return copy
}
