package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		assert.True(t, ValidOrderStatus(status), status)
	}

	assert.False(t, ValidOrderStatus("processing"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("PENDING"))
}

func TestOrderCanBeCancelled(t *testing.T) {
	cases := map[string]bool{
		OrderStatusPending:   true,
		OrderStatusConfirmed: true,
		OrderStatusShipped:   false,
		OrderStatusDelivered: false,
		OrderStatusCancelled: false,
	}

	for status, want := range cases {
		order := Order{Status: status}
		assert.Equal(t, want, order.CanBeCancelled(), status)
	}
}

func TestProductIsInStock(t *testing.T) {
	product := Product{StockQuantity: 5}

	assert.True(t, product.IsInStock(5))
	assert.True(t, product.IsInStock(1))
	assert.False(t, product.IsInStock(6))
}

func TestCartItemTotalPrice(t *testing.T) {
	item := CartItem{
		Quantity: 3,
		Product:  &Product{Price: decimal.NewFromFloat(19.99)},
	}

	assert.True(t, item.TotalPrice().Equal(decimal.NewFromFloat(59.97)))

	orphan := CartItem{Quantity: 3}
	assert.True(t, orphan.TotalPrice().IsZero())
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsAdmin())
}

func TestPaymentIsSuccessful(t *testing.T) {
	assert.True(t, (&Payment{Status: PaymentStatusSuccess}).IsSuccessful())
	assert.False(t, (&Payment{Status: PaymentStatusFailed}).IsSuccessful())
	assert.False(t, (&Payment{Status: PaymentStatusRefunded}).IsSuccessful())
}
