package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commissionapp "github.com/erp/commission/internal/application/commission"
	domain "github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/erp/commission/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory fakes backing the handler tests

type stubCommissionRepo struct {
	records map[uuid.UUID]*domain.Commission
}

func newStubCommissionRepo() *stubCommissionRepo {
	return &stubCommissionRepo{records: make(map[uuid.UUID]*domain.Commission)}
}

func (s *stubCommissionRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	return s.records[id], nil
}

func (s *stubCommissionRepo) FindByOrigin(_ context.Context, origin domain.OriginRef) (*domain.Commission, error) {
	for _, c := range s.records {
		if c.Origin == origin {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubCommissionRepo) ExistsByOrigin(ctx context.Context, origin domain.OriginRef) (bool, error) {
	c, _ := s.FindByOrigin(ctx, origin)
	return c != nil, nil
}

func (s *stubCommissionRepo) FindByOriginLines(_ context.Context, kind domain.OriginKind, lineIDs []uuid.UUID) ([]domain.Commission, error) {
	var out []domain.Commission
	for _, c := range s.records {
		if c.Origin.Kind != kind {
			continue
		}
		for _, id := range lineIDs {
			if c.Origin.EntityID == id {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (s *stubCommissionRepo) FindAll(_ context.Context, _ domain.CommissionFilter) ([]domain.Commission, error) {
	out := make([]domain.Commission, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCommissionRepo) Count(_ context.Context, _ domain.CommissionFilter) (int64, error) {
	return int64(len(s.records)), nil
}

func (s *stubCommissionRepo) SaveBatch(_ context.Context, commissions []*domain.Commission) error {
	for _, c := range commissions {
		s.records[c.ID] = c
	}
	return nil
}

func (s *stubCommissionRepo) DeleteBatch(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *stubCommissionRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repo domain.CommissionRepository) error) error {
	return fn(ctx, s)
}

type stubAgentRepo struct {
	agents map[uuid.UUID]*domain.Agent
}

func (s *stubAgentRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Agent, error) {
	return s.agents[id], nil
}

func (s *stubAgentRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Agent, error) {
	out := make(map[uuid.UUID]*domain.Agent)
	for _, id := range ids {
		if a, ok := s.agents[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type stubLedgerReader struct {
	invoices        map[uuid.UUID]*ledger.Invoice
	reconciliations map[uuid.UUID]*ledger.Reconciliation
}

func (s *stubLedgerReader) FindByID(_ context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	return s.invoices[id], nil
}

func (s *stubLedgerReader) FindByMoveID(_ context.Context, moveID uuid.UUID) (*ledger.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.MoveID == moveID {
			return inv, nil
		}
	}
	return nil, nil
}

func (s *stubLedgerReader) FindReconciliationByID(_ context.Context, id uuid.UUID) (*ledger.Reconciliation, error) {
	return s.reconciliations[id], nil
}

type handlerFixture struct {
	repo   *stubCommissionRepo
	ledger *stubLedgerReader
	engine *gin.Engine
}

func newHandlerFixture(agents map[uuid.UUID]*domain.Agent) *handlerFixture {
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		repo: newStubCommissionRepo(),
		ledger: &stubLedgerReader{
			invoices:        make(map[uuid.UUID]*ledger.Invoice),
			reconciliations: make(map[uuid.UUID]*ledger.Reconciliation),
		},
	}

	log := zap.NewNop()
	agentRepo := &stubAgentRepo{agents: agents}
	commissionService := commissionapp.NewCommissionService(f.repo, agentRepo, f.ledger, nil, log)
	lifecycleService := commissionapp.NewReconciliationLifecycleService(f.repo, agentRepo, f.ledger, nil, log)

	f.engine = gin.New()
	api := f.engine.Group("/api/v1")
	NewCommissionHandler(commissionService, lifecycleService, f.ledger).RegisterRoutes(api)
	return f
}

func (f *handlerFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func testAgent() *domain.Agent {
	return &domain.Agent{
		ID:   uuid.New(),
		Name: "Agent",
		Plan: &domain.CommissionPlan{
			ID:                  uuid.New(),
			Name:                "Partial 5%",
			Method:              domain.MethodPartialPayment,
			CommissionProductID: uuid.New(),
			Formula:             domain.PercentageFormula{Rate: decimal.RequireFromString("0.05")},
		},
		Currency: valueobject.EUR,
	}
}

func seedInvoice(f *handlerFixture, agent *domain.Agent) (*ledger.Invoice, ledger.LedgerLine) {
	moveID := uuid.New()
	recID := uuid.New()
	line := ledger.LedgerLine{
		ID:               uuid.New(),
		MoveID:           moveID,
		Kind:             ledger.LineKindToPay,
		Debit:            decimal.RequireFromString("550"),
		Credit:           decimal.Zero,
		Date:             time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ReconciliationID: &recID,
	}
	inv := &ledger.Invoice{
		ID:            uuid.New(),
		Number:        "INV-2026-001",
		Type:          ledger.InvoiceTypeInvoice,
		AgentID:       &agent.ID,
		Currency:      valueobject.EUR,
		UntaxedAmount: decimal.RequireFromString("1000"),
		TotalAmount:   decimal.RequireFromString("1100"),
		MoveID:        moveID,
		LinesToPay:    []ledger.LedgerLine{line},
	}
	f.ledger.invoices[inv.ID] = inv
	f.ledger.reconciliations[recID] = &ledger.Reconciliation{ID: recID, Lines: []ledger.LedgerLine{line}}
	return inv, line
}

func TestReconciliationWebhooks(t *testing.T) {
	agent := testAgent()

	t.Run("created webhook accrues commissions", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})
		_, line := seedInvoice(f, agent)
		recID := *line.ReconciliationID

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{ReconciliationIDs: []uuid.UUID{recID}})

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, f.repo.records, 1)
		for _, c := range f.repo.records {
			assert.Equal(t, "25.00", c.Amount.StringFixed(2))
			assert.True(t, c.IsFinalized())
		}
	})

	t.Run("created webhook rejects unknown reconciliations", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{ReconciliationIDs: []uuid.UUID{uuid.New()}})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("created webhook rejects empty payloads", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deleted webhook removes provisional accruals", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})
		_, line := seedInvoice(f, agent)
		recID := *line.ReconciliationID

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{ReconciliationIDs: []uuid.UUID{recID}})
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, f.repo.records, 1)

		w = f.request(t, http.MethodDelete, "/api/v1/reconciliations/"+recID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, f.repo.records)
	})

	t.Run("deleted webhook rejects malformed IDs", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})

		w := f.request(t, http.MethodDelete, "/api/v1/reconciliations/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCommissionQueries(t *testing.T) {
	agent := testAgent()

	t.Run("lists commissions of an invoice", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})
		inv, line := seedInvoice(f, agent)

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{ReconciliationIDs: []uuid.UUID{*line.ReconciliationID}})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodGet, "/api/v1/invoices/"+inv.ID.String()+"/commissions", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    []dto.CommissionResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "25.00", resp.Data[0].Amount)
		assert.False(t, resp.Data[0].Provisional)
	})

	t.Run("rejects malformed invoice IDs", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})

		w := f.request(t, http.MethodGet, "/api/v1/invoices/nope/commissions", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists commissions with pagination meta", func(t *testing.T) {
		f := newHandlerFixture(map[uuid.UUID]*domain.Agent{agent.ID: agent})
		_, line := seedInvoice(f, agent)

		w := f.request(t, http.MethodPost, "/api/v1/reconciliations",
			dto.ReconciliationEventRequest{ReconciliationIDs: []uuid.UUID{*line.ReconciliationID}})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodGet, "/api/v1/commissions?page=1&page_size=10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    []dto.CommissionResponse `json:"data"`
			Meta    *dto.Meta                `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Len(t, resp.Data, 1)
	})
}
