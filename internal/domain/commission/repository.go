package commission

import (
	"context"
	"time"

	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
)

// CommissionFilter defines filtering options for commission queries
type CommissionFilter struct {
	shared.Filter
	AgentID   *uuid.UUID // Filter by agent
	Finalized *bool      // Filter by settlement state (dated vs provisional)
	FromDate  *time.Time // Filter by settlement date range start
	ToDate    *time.Time // Filter by settlement date range end
}

// CommissionRepository defines the interface for commission persistence.
// Batch operations group all writes of one reconciliation event; callers
// wrap them in WithinTransaction to keep the event all-or-nothing.
type CommissionRepository interface {
	// FindByID finds a commission by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Commission, error)

	// FindByOrigin finds the commission accrued for the given origin,
	// or nil when none exists
	FindByOrigin(ctx context.Context, origin OriginRef) (*Commission, error)

	// ExistsByOrigin reports whether a commission already carries the
	// given origin (the accrual idempotency check)
	ExistsByOrigin(ctx context.Context, origin OriginRef) (bool, error)

	// FindByOriginLines finds all commissions whose origin points at one
	// of the given lines of the given kind
	FindByOriginLines(ctx context.Context, kind OriginKind, lineIDs []uuid.UUID) ([]Commission, error)

	// FindAll finds commissions with filtering
	FindAll(ctx context.Context, filter CommissionFilter) ([]Commission, error)

	// Count counts commissions with filtering
	Count(ctx context.Context, filter CommissionFilter) (int64, error)

	// SaveBatch persists a batch of commissions in one bulk operation
	SaveBatch(ctx context.Context, commissions []*Commission) error

	// DeleteBatch removes a batch of commissions by ID
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error

	// WithinTransaction runs fn against a repository bound to one
	// transaction; fn returning an error rolls everything back
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repo CommissionRepository) error) error
}

// AgentRepository defines read access to agents and their plans
type AgentRepository interface {
	// FindByID finds an agent with its plan loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Agent, error)

	// FindByIDs finds agents by ID, keyed by ID, with plans loaded
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Agent, error)
}
