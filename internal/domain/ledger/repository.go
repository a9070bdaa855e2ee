package ledger

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceReader provides read-only access to invoices in the external
// ledger. The ledger owns this data; this subsystem only queries it.
type InvoiceReader interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByMoveID finds the invoice owning the given ledger entry
	FindByMoveID(ctx context.Context, moveID uuid.UUID) (*Invoice, error)
}

// ReconciliationReader provides read-only access to reconciliations
type ReconciliationReader interface {
	// FindReconciliationByID finds a reconciliation with its member lines
	FindReconciliationByID(ctx context.Context, id uuid.UUID) (*Reconciliation, error)
}
