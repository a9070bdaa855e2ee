package persistence

import (
	"context"
	"errors"

	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerReader implements the read-only ledger access interfaces.
// The ledger tables are owned by the external ledger system; this module
// only reads them, so state is re-read fresh on every call and never
// cached.
type GormLedgerReader struct {
	db *gorm.DB
}

// NewGormLedgerReader creates a new GormLedgerReader
func NewGormLedgerReader(db *gorm.DB) *GormLedgerReader {
	return &GormLedgerReader{db: db}
}

var (
	_ ledger.InvoiceReader        = (*GormLedgerReader)(nil)
	_ ledger.ReconciliationReader = (*GormLedgerReader)(nil)
)

// FindByID finds an invoice by ID with its lines
func (r *GormLedgerReader) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMoveID finds the invoice owning the given ledger entry
func (r *GormLedgerReader) FindByMoveID(ctx context.Context, moveID uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "move_id = ?", moveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindReconciliationByID finds a reconciliation with its member lines
func (r *GormLedgerReader) FindReconciliationByID(ctx context.Context, id uuid.UUID) (*ledger.Reconciliation, error) {
	var model models.ReconciliationModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
