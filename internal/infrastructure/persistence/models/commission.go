package models

import (
	"time"

	"github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionModel is the persistence model for the Commission aggregate.
// Origin is stored as a discriminated (kind, id) pair, never as an
// encoded string, so lookups stay plain indexed equality.
type CommissionModel struct {
	AggregateModel
	OriginKind    commission.OriginKind `gorm:"type:varchar(20);not null;index:idx_commission_origin,priority:1"`
	OriginID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_commission_origin,priority:2"`
	AgentID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID             `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Date          *time.Time            `gorm:"index"`
	InvoiceLineID *uuid.UUID            `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission
func (m *CommissionModel) ToDomain() *commission.Commission {
	return &commission.Commission{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Origin: commission.OriginRef{
			Kind:     m.OriginKind,
			EntityID: m.OriginID,
		},
		AgentID:       m.AgentID,
		ProductID:     m.ProductID,
		Amount:        m.Amount,
		Date:          m.Date,
		InvoiceLineID: m.InvoiceLineID,
	}
}

// FromDomain populates the persistence model from a domain Commission
func (m *CommissionModel) FromDomain(c *commission.Commission) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OriginKind = c.Origin.Kind
	m.OriginID = c.Origin.EntityID
	m.AgentID = c.AgentID
	m.ProductID = c.ProductID
	m.Amount = c.Amount
	m.Date = c.Date
	m.InvoiceLineID = c.InvoiceLineID
}

// CommissionModelFromDomain creates a new persistence model from a
// domain Commission
func CommissionModelFromDomain(c *commission.Commission) *CommissionModel {
	m := &CommissionModel{}
	m.FromDomain(c)
	return m
}

// CommissionPlanModel is the persistence model for commission plans.
// The formula is stored as a rate; plans are configuration data and
// rarely change.
type CommissionPlanModel struct {
	BaseModel
	Name                string                      `gorm:"type:varchar(100);not null"`
	Method              commission.CommissionMethod `gorm:"type:varchar(30);not null"`
	CommissionProductID uuid.UUID                   `gorm:"type:uuid;not null"`
	Rate                decimal.Decimal             `gorm:"type:decimal(9,6);not null"`
}

// TableName returns the table name for GORM
func (CommissionPlanModel) TableName() string {
	return "commission_plans"
}

// ToDomain converts the persistence model to a domain CommissionPlan
func (m *CommissionPlanModel) ToDomain() *commission.CommissionPlan {
	return &commission.CommissionPlan{
		ID:                  m.ID,
		Name:                m.Name,
		Method:              m.Method,
		CommissionProductID: m.CommissionProductID,
		Formula:             commission.PercentageFormula{Rate: m.Rate},
	}
}

// AgentModel is the persistence model for sales agents
type AgentModel struct {
	BaseModel
	Name     string               `gorm:"type:varchar(200);not null"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null"`
	PlanID   *uuid.UUID           `gorm:"type:uuid;index"`
	Plan     *CommissionPlanModel `gorm:"foreignKey:PlanID"`
}

// TableName returns the table name for GORM
func (AgentModel) TableName() string {
	return "agents"
}

// ToDomain converts the persistence model to a domain Agent
func (m *AgentModel) ToDomain() *commission.Agent {
	agent := &commission.Agent{
		ID:       m.ID,
		Name:     m.Name,
		Currency: m.Currency,
	}
	if m.Plan != nil {
		agent.Plan = m.Plan.ToDomain()
	}
	return agent
}
