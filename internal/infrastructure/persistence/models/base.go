// Package models contains the GORM persistence models. They are kept
// separate from the domain entities and mapped explicitly through
// ToDomain/FromDomain conversions.
package models

import (
	"time"

	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides the identity and bookkeeping columns shared by all
// persistence models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-locking version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates the model from an aggregate root
func (m *AggregateModel) FromDomainAggregateRoot(root shared.BaseAggregateRoot) {
	m.ID = root.ID
	m.CreatedAt = root.CreatedAt
	m.UpdatedAt = root.UpdatedAt
	m.Version = root.Version
}

// ToDomainAggregateRoot converts the model's base columns to an
// aggregate root
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}
