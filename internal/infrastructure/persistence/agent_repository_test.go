package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/commission/internal/domain/commission"
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/erp/commission/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAgentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.CommissionPlanModel{}, &models.AgentModel{}))
	return db
}

func seedAgent(t *testing.T, db *gorm.DB, method commission.CommissionMethod) *models.AgentModel {
	t.Helper()
	now := time.Now()

	plan := &models.CommissionPlanModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      "Plan " + string(method),
		Method:    method,
		Rate:      decimal.RequireFromString("0.05"),
	}
	plan.CommissionProductID = uuid.New()
	require.NoError(t, db.Create(plan).Error)

	agent := &models.AgentModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      "Agent " + string(method),
		Currency:  valueobject.EUR,
		PlanID:    &plan.ID,
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func TestGormAgentRepository(t *testing.T) {
	ctx := context.Background()
	db := setupAgentTestDB(t)
	repo := NewGormAgentRepository(db)

	partial := seedAgent(t, db, commission.MethodPartialPayment)
	standard := seedAgent(t, db, commission.MethodStandard)

	t.Run("FindByID loads the agent with its plan", func(t *testing.T) {
		agent, err := repo.FindByID(ctx, partial.ID)
		require.NoError(t, err)
		require.NotNil(t, agent)
		assert.Equal(t, partial.Name, agent.Name)
		require.NotNil(t, agent.Plan)
		assert.True(t, agent.HasPartialPaymentPlan())
	})

	t.Run("FindByID returns nil for unknown agents", func(t *testing.T) {
		agent, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, agent)
	})

	t.Run("FindByIDs keys agents by ID and skips misses", func(t *testing.T) {
		agents, err := repo.FindByIDs(ctx, []uuid.UUID{partial.ID, standard.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, agents, 2)

		assert.True(t, agents[partial.ID].HasPartialPaymentPlan())
		assert.False(t, agents[standard.ID].HasPartialPaymentPlan())
	})

	t.Run("FindByIDs with no IDs returns an empty map", func(t *testing.T) {
		agents, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, agents)
	})

	t.Run("plan formula evaluates the stored rate", func(t *testing.T) {
		agent, err := repo.FindByID(ctx, partial.ID)
		require.NoError(t, err)
		require.NotNil(t, agent.Plan)

		owed, err := agent.Plan.Compute(decimal.NewFromInt(1000), nil, nil)
		require.NoError(t, err)
		assert.True(t, owed.Equal(decimal.NewFromInt(50)))
	})
}
