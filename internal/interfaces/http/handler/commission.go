package handler

import (
	commissionapp "github.com/erp/commission/internal/application/commission"
	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared"
	"github.com/erp/commission/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionHandler handles the commission API endpoints
type CommissionHandler struct {
	BaseHandler
	commissionService *commissionapp.CommissionService
	lifecycleService  *commissionapp.ReconciliationLifecycleService
	reconciliations   ledger.ReconciliationReader
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(
	commissionService *commissionapp.CommissionService,
	lifecycleService *commissionapp.ReconciliationLifecycleService,
	reconciliations ledger.ReconciliationReader,
) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		lifecycleService:  lifecycleService,
		reconciliations:   reconciliations,
	}
}

// RegisterRoutes registers the commission routes
func (h *CommissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	commissions := rg.Group("/commissions")
	{
		commissions.GET("", h.List)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET(":id/commissions", h.ListByInvoice)
	}

	reconciliations := rg.Group("/reconciliations")
	{
		reconciliations.POST("", h.ReconciliationsCreated)
		reconciliations.DELETE(":id", h.ReconciliationDeleted)
	}
}

// ListByInvoice returns all commissions accrued against an invoice's
// settlement lines
func (h *CommissionHandler) ListByInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	commissions, err := h.commissionService.CommissionsOf(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewCommissionResponses(commissions))
}

// List returns commissions matching the query filter
func (h *CommissionHandler) List(c *gin.Context) {
	var req dto.ListCommissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := domain.CommissionFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
		},
		AgentID:   req.AgentID,
		Finalized: req.Finalized,
	}

	commissions, total, err := h.commissionService.ListCommissions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewCommissionResponses(commissions), total, req.Page, req.PageSize)
}

// ReconciliationsCreated is the webhook the ledger calls after posting a
// batch of reconciliations; it triggers commission accrual
func (h *CommissionHandler) ReconciliationsCreated(c *gin.Context) {
	var req dto.ReconciliationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reconciliations, err := h.loadReconciliations(c, req.ReconciliationIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if reconciliations == nil {
		return
	}

	if err := h.lifecycleService.OnReconciliationCreated(c.Request.Context(), reconciliations); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ReconciliationDeleted is the webhook the ledger calls before removing a
// reconciliation; it cleans up or compensates the dependent commissions
func (h *CommissionHandler) ReconciliationDeleted(c *gin.Context) {
	reconciliationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reconciliation ID")
		return
	}

	reconciliations, err := h.loadReconciliations(c, []uuid.UUID{reconciliationID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if reconciliations == nil {
		return
	}

	if err := h.lifecycleService.OnReconciliationDeleted(c.Request.Context(), reconciliations); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// loadReconciliations resolves reconciliation IDs, writing a 404 response
// and returning a nil slice when any ID is unknown
func (h *CommissionHandler) loadReconciliations(c *gin.Context, ids []uuid.UUID) ([]ledger.Reconciliation, error) {
	reconciliations := make([]ledger.Reconciliation, 0, len(ids))
	for _, id := range ids {
		rec, err := h.reconciliations.FindReconciliationByID(c.Request.Context(), id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			h.NotFound(c, "Reconciliation not found: "+id.String())
			return nil, nil
		}
		reconciliations = append(reconciliations, *rec)
	}
	return reconciliations, nil
}
