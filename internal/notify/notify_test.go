package notify

import (
	"context"
	"testing"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewOrderEvent(t *testing.T) {
	order := &models.Order{
		ID:          7,
		UserID:      3,
		OrderNumber: "ORD-20260828-0007",
		TotalAmount: decimal.NewFromInt(120),
		Items:       []models.OrderItem{{ProductID: 1}, {ProductID: 2}},
	}

	event := NewOrderEvent(EventOrderConfirmation, order)

	assert.Equal(t, EventOrderConfirmation, event.Type)
	assert.Equal(t, int64(7), event.OrderID)
	assert.Equal(t, "ORD-20260828-0007", event.OrderNumber)
	assert.Equal(t, int64(3), event.UserID)
	assert.True(t, event.TotalAmount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 2, event.ItemsCount)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestLogDispatcher(t *testing.T) {
	dispatcher := NewLogDispatcher(zap.NewNop())

	dispatcher.Enqueue(context.Background(), NewOrderEvent(EventOrderCancelled, &models.Order{ID: 1}))
	assert.NoError(t, dispatcher.Close())
}
