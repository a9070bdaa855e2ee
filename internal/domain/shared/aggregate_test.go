package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct{ BaseDomainEvent }

func TestNewBaseAggregateRoot(t *testing.T) {
	root := NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, root.ID)
	assert.Equal(t, 1, root.Version)
	assert.False(t, root.CreatedAt.IsZero())
	assert.Equal(t, root.CreatedAt, root.UpdatedAt)
	assert.Empty(t, root.GetDomainEvents())
}

func TestDomainEventAccumulation(t *testing.T) {
	root := NewBaseAggregateRoot()

	root.AddDomainEvent(&stubEvent{})
	root.AddDomainEvent(&stubEvent{})
	require.Len(t, root.GetDomainEvents(), 2)

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
