package commission

import (
	"time"

	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate and event type identifiers
const (
	AggregateTypeCommission = "Commission"

	EventTypeCommissionAccrued     = "commission.accrued"
	EventTypeCommissionCompensated = "commission.compensated"
	EventTypeCommissionCancelled   = "commission.cancelled"
)

// CommissionAccruedEvent is raised when an incremental commission is
// recognized for a settlement event
type CommissionAccruedEvent struct {
	shared.BaseDomainEvent
	CommissionID uuid.UUID       `json:"commission_id"`
	Origin       OriginRef       `json:"origin"`
	AgentID      uuid.UUID       `json:"agent_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         *time.Time      `json:"date"`
}

// NewCommissionAccruedEvent creates a CommissionAccruedEvent
func NewCommissionAccruedEvent(c *Commission) *CommissionAccruedEvent {
	return &CommissionAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionAccrued, AggregateTypeCommission, c.ID),
		CommissionID:    c.ID,
		Origin:          c.Origin,
		AgentID:         c.AgentID,
		Amount:          c.Amount,
		Date:            c.Date,
	}
}

// CommissionCompensatedEvent is raised when a finalized commission is
// neutralized by an equal-and-opposite record
type CommissionCompensatedEvent struct {
	shared.BaseDomainEvent
	OriginalID     uuid.UUID       `json:"original_id"`
	CompensationID uuid.UUID       `json:"compensation_id"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewCommissionCompensatedEvent creates a CommissionCompensatedEvent
func NewCommissionCompensatedEvent(original, compensation *Commission) *CommissionCompensatedEvent {
	return &CommissionCompensatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionCompensated, AggregateTypeCommission, compensation.ID),
		OriginalID:      original.ID,
		CompensationID:  compensation.ID,
		Amount:          compensation.Amount,
	}
}

// CommissionCancelledEvent is raised when a provisional commission is
// removed because its triggering reconciliation was deleted
type CommissionCancelledEvent struct {
	shared.BaseDomainEvent
	CommissionID uuid.UUID `json:"commission_id"`
	Origin       OriginRef `json:"origin"`
}

// NewCommissionCancelledEvent creates a CommissionCancelledEvent
func NewCommissionCancelledEvent(c *Commission) *CommissionCancelledEvent {
	return &CommissionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionCancelled, AggregateTypeCommission, c.ID),
		CommissionID:    c.ID,
		Origin:          c.Origin,
	}
}
