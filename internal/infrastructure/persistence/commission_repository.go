package persistence

import (
	"context"
	"errors"

	"github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionRepository implements commission.CommissionRepository
// using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

var _ commission.CommissionRepository = (*GormCommissionRepository)(nil)

// FindByID finds a commission by ID
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrigin finds the commission accrued for the given origin
func (r *GormCommissionRepository) FindByOrigin(ctx context.Context, origin commission.OriginRef) (*commission.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).
		First(&model, "origin_kind = ? AND origin_id = ?", origin.Kind, origin.EntityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByOrigin reports whether a commission already carries the origin
func (r *GormCommissionRepository) ExistsByOrigin(ctx context.Context, origin commission.OriginRef) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Where("origin_kind = ? AND origin_id = ?", origin.Kind, origin.EntityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOriginLines finds all commissions whose origin is one of the
// given lines of the given kind
func (r *GormCommissionRepository) FindByOriginLines(ctx context.Context, kind commission.OriginKind, lineIDs []uuid.UUID) ([]commission.Commission, error) {
	if len(lineIDs) == 0 {
		return []commission.Commission{}, nil
	}
	var commissionModels []models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("origin_kind = ? AND origin_id IN ?", kind, lineIDs).
		Order("created_at asc").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(commissionModels), nil
}

// FindAll finds commissions with filtering
func (r *GormCommissionRepository) FindAll(ctx context.Context, filter commission.CommissionFilter) ([]commission.Commission, error) {
	var commissionModels []models.CommissionModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}
	if err := query.Order("created_at desc").Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(commissionModels), nil
}

// Count counts commissions with filtering
func (r *GormCommissionRepository) Count(ctx context.Context, filter commission.CommissionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CommissionModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveBatch persists a batch of commissions in one bulk operation
func (r *GormCommissionRepository) SaveBatch(ctx context.Context, commissions []*commission.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	batch := make([]*models.CommissionModel, len(commissions))
	for i, c := range commissions {
		batch[i] = models.CommissionModelFromDomain(c)
	}
	return r.db.WithContext(ctx).Save(batch).Error
}

// DeleteBatch removes a batch of commissions by ID
func (r *GormCommissionRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CommissionModel{}).Error
}

// WithinTransaction runs fn against a repository bound to one transaction
func (r *GormCommissionRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repo commission.CommissionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormCommissionRepository(tx))
	})
}

// applyFilter translates a CommissionFilter into query conditions
func (r *GormCommissionRepository) applyFilter(query *gorm.DB, filter commission.CommissionFilter) *gorm.DB {
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Finalized != nil {
		if *filter.Finalized {
			query = query.Where("date IS NOT NULL")
		} else {
			query = query.Where("date IS NULL")
		}
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

func toDomainSlice(commissionModels []models.CommissionModel) []commission.Commission {
	out := make([]commission.Commission, len(commissionModels))
	for i := range commissionModels {
		out[i] = *commissionModels[i].ToDomain()
	}
	return out
}
