package commission

import (
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Agent is a sales agent with an assigned commission plan and a
// settlement currency. Referenced by invoices; owned by business
// configuration.
type Agent struct {
	ID       uuid.UUID
	Name     string
	Plan     *CommissionPlan
	Currency valueobject.Currency
}

// HasPartialPaymentPlan returns true if the agent's plan accrues
// commission on partial payments
func (a *Agent) HasPartialPaymentPlan() bool {
	return a != nil && a.Plan != nil && a.Plan.IsPartialPayment()
}
