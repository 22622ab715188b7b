// Package notify dispatches order lifecycle events to interested consumers
// (mailer, analytics). Dispatch is fire-and-forget: a delivery failure is
// logged and never propagated to the request that produced the event.
package notify

import (
	"context"
	"time"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventOrderConfirmation = "order.confirmation"
	EventOrderCancelled    = "order.cancelled"
)

type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemsCount  int             `json:"items_count"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemsCount:  len(order.Items),
		OccurredAt:  time.Now().UTC(),
	}
}

type Dispatcher interface {
	Enqueue(ctx context.Context, event OrderEvent)
	Close() error
}

// LogDispatcher is the fallback when no broker is configured; events go to
// the log and nowhere else.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Enqueue(_ context.Context, event OrderEvent) {
	d.logger.Info("order event (no broker configured)",
		zap.String("type", event.Type),
		zap.Int64("order_id", event.OrderID),
		zap.String("total_amount", event.TotalAmount.String()),
	)
}

func (d *LogDispatcher) Close() error {
	return nil
}
