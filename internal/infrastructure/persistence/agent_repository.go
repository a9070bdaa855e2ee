package persistence

import (
	"context"
	"errors"

	"github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAgentRepository implements commission.AgentRepository using GORM
type GormAgentRepository struct {
	db *gorm.DB
}

// NewGormAgentRepository creates a new GormAgentRepository
func NewGormAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

var _ commission.AgentRepository = (*GormAgentRepository)(nil)

// FindByID finds an agent with its plan loaded
func (r *GormAgentRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.Agent, error) {
	var model models.AgentModel
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds agents by ID, keyed by ID, with plans loaded
func (r *GormAgentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*commission.Agent, error) {
	result := make(map[uuid.UUID]*commission.Agent, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var agentModels []models.AgentModel
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("id IN ?", ids).
		Find(&agentModels).Error; err != nil {
		return nil, err
	}
	for i := range agentModels {
		result[agentModels[i].ID] = agentModels[i].ToDomain()
	}
	return result, nil
}
