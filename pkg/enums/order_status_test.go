package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusForwardPath(t *testing.T) {
	path := []OrderStatus{OrderStatusPending}
	current := OrderStatusPending
	for {
		next, ok := current.Next()
		if !ok {
			break
		}
		path = append(path, next)
		current = next
	}
	assert.Equal(t, []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusDelivered,
	}, path)
}

func TestOrderStatusCancellation(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady} {
		assert.True(t, s.CanCancel(), s)
	}
	assert.False(t, OrderStatusDelivered.CanCancel())
	assert.False(t, OrderStatusCancelled.CanCancel())
	_, ok := OrderStatusCancelled.Next()
	assert.False(t, ok)
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("ready")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReady, got)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
	assert.Len(t, OrderStatuses(), 6)
}
