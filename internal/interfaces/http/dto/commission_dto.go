package dto

import (
	"time"

	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/google/uuid"
)

// CommissionResponse is the API representation of a commission record
type CommissionResponse struct {
	ID            uuid.UUID  `json:"id"`
	OriginKind    string     `json:"origin_kind"`
	OriginID      uuid.UUID  `json:"origin_id"`
	AgentID       uuid.UUID  `json:"agent_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Amount        string     `json:"amount"`
	Date          *time.Time `json:"date"`
	InvoiceLineID *uuid.UUID `json:"invoice_line_id,omitempty"`
	Provisional   bool       `json:"provisional"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewCommissionResponse maps a domain commission to its API shape
func NewCommissionResponse(c *domain.Commission) CommissionResponse {
	return CommissionResponse{
		ID:            c.ID,
		OriginKind:    string(c.Origin.Kind),
		OriginID:      c.Origin.EntityID,
		AgentID:       c.AgentID,
		ProductID:     c.ProductID,
		Amount:        c.Amount.StringFixed(2),
		Date:          c.Date,
		InvoiceLineID: c.InvoiceLineID,
		Provisional:   c.IsProvisional(),
		CreatedAt:     c.CreatedAt,
	}
}

// NewCommissionResponses maps a slice of domain commissions
func NewCommissionResponses(commissions []domain.Commission) []CommissionResponse {
	out := make([]CommissionResponse, len(commissions))
	for i := range commissions {
		out[i] = NewCommissionResponse(&commissions[i])
	}
	return out
}

// ReconciliationEventRequest is the payload the ledger system posts when
// reconciliations are created or about to be deleted
type ReconciliationEventRequest struct {
	ReconciliationIDs []uuid.UUID `json:"reconciliation_ids" binding:"required,min=1"`
}

// ListCommissionsRequest carries the query parameters of the commission
// list endpoint
type ListCommissionsRequest struct {
	Page      int        `form:"page,default=1" binding:"min=1"`
	PageSize  int        `form:"page_size,default=20" binding:"min=1,max=100"`
	AgentID   *uuid.UUID `form:"agent_id"`
	Finalized *bool      `form:"finalized"`
}
