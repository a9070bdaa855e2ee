package commission

import (
	"testing"
	"time"

	"github.com/erp/commission/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginKind(t *testing.T) {
	t.Run("IsValid returns true for valid kinds", func(t *testing.T) {
		validKinds := []OriginKind{
			OriginKindLedgerLine,
			OriginKindInvoiceLine,
			OriginKindPaymentLine,
		}
		for _, k := range validKinds {
			assert.True(t, k.IsValid(), "expected %s to be valid", k)
		}
	})

	t.Run("IsValid returns false for invalid kinds", func(t *testing.T) {
		assert.False(t, OriginKind("invalid").IsValid())
		assert.False(t, OriginKind("").IsValid())
	})
}

func TestNewCommission(t *testing.T) {
	origin := NewLedgerLineOrigin(uuid.New())
	agentID := uuid.New()
	productID := uuid.New()

	t.Run("creates a provisional record", func(t *testing.T) {
		c, err := NewCommission(origin, agentID, productID, decimal.NewFromInt(25))
		require.NoError(t, err)
		assert.True(t, c.IsProvisional())
		assert.False(t, c.IsFinalized())
		assert.False(t, c.IsDownstreamConsumed())
		assert.Equal(t, origin, c.Origin)
		assert.NotEqual(t, uuid.Nil, c.ID)
	})

	t.Run("quantizes amount to commission precision", func(t *testing.T) {
		c, err := NewCommission(origin, agentID, productID, decimal.RequireFromString("25.000049"))
		require.NoError(t, err)
		assert.Equal(t, "25", c.Amount.String())

		c, err = NewCommission(origin, agentID, productID, decimal.RequireFromString("25.00005"))
		require.NoError(t, err)
		assert.Equal(t, "25.0001", c.Amount.String())
	})

	t.Run("rejects invalid origin kind", func(t *testing.T) {
		_, err := NewCommission(OriginRef{}, agentID, productID, decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("rejects missing agent", func(t *testing.T) {
		_, err := NewCommission(origin, uuid.Nil, productID, decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestCommissionFinalize(t *testing.T) {
	c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
	require.NoError(t, err)

	settled := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	c.Finalize(settled)

	assert.True(t, c.IsFinalized())
	require.NotNil(t, c.Date)
	assert.Equal(t, settled, *c.Date)

	events := c.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeCommissionAccrued, events[0].EventType())
}

func TestCommissionAttachInvoiceLine(t *testing.T) {
	newFinalized := func(t *testing.T) *Commission {
		c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		c.Finalize(time.Now())
		return c
	}

	t.Run("attaches a line to a finalized record", func(t *testing.T) {
		c := newFinalized(t)
		lineID := uuid.New()
		require.NoError(t, c.AttachInvoiceLine(lineID))
		assert.True(t, c.IsDownstreamConsumed())
		assert.Equal(t, lineID, *c.InvoiceLineID)
	})

	t.Run("rejects provisional records", func(t *testing.T) {
		c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Error(t, c.AttachInvoiceLine(uuid.New()))
	})

	t.Run("rejects double attachment", func(t *testing.T) {
		c := newFinalized(t)
		require.NoError(t, c.AttachInvoiceLine(uuid.New()))
		assert.Error(t, c.AttachInvoiceLine(uuid.New()))
	})
}

func TestCommissionEnsureDeletable(t *testing.T) {
	t.Run("provisional records are deletable", func(t *testing.T) {
		c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.NoError(t, c.EnsureDeletable())
	})

	t.Run("finalized but unconsumed records are deletable", func(t *testing.T) {
		c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		c.Finalize(time.Now())
		assert.NoError(t, c.EnsureDeletable())
	})

	t.Run("consumed records must not be deleted", func(t *testing.T) {
		c, err := NewCommission(NewLedgerLineOrigin(uuid.New()), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)
		c.Finalize(time.Now())
		require.NoError(t, c.AttachInvoiceLine(uuid.New()))
		assert.ErrorIs(t, c.EnsureDeletable(), shared.ErrConsistencyViolation)
	})
}

func TestCommissionCompensatingCopy(t *testing.T) {
	origin := NewLedgerLineOrigin(uuid.New())
	c, err := NewCommission(origin, uuid.New(), uuid.New(), decimal.RequireFromString("42.50"))
	require.NoError(t, err)
	settled := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c.Finalize(settled)
	require.NoError(t, c.AttachInvoiceLine(uuid.New()))

	comp := c.CompensatingCopy()

	t.Run("negates the amount exactly", func(t *testing.T) {
		assert.True(t, comp.Amount.Equal(c.Amount.Neg()))
	})

	t.Run("keeps origin and settlement date", func(t *testing.T) {
		assert.Equal(t, origin, comp.Origin)
		require.NotNil(t, comp.Date)
		assert.Equal(t, settled, *comp.Date)
	})

	t.Run("gets a fresh identity and no downstream attachment", func(t *testing.T) {
		assert.NotEqual(t, c.ID, comp.ID)
		assert.Nil(t, comp.InvoiceLineID)
	})

	t.Run("leaves the original untouched", func(t *testing.T) {
		assert.True(t, c.Amount.Equal(decimal.RequireFromString("42.50")))
		assert.True(t, c.IsDownstreamConsumed())
	})

	t.Run("records a compensation event", func(t *testing.T) {
		events := comp.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, EventTypeCommissionCompensated, events[len(events)-1].EventType())
	})
}
