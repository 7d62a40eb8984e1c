package idempotency

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	orderID := uuid.New()

	seen, err := store.Seen(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Mark(ctx, orderID))

	seen, err = store.Seen(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Seen(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, seen)
}
