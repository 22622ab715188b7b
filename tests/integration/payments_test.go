package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

func TestRecordPaymentSuccessConfirmsOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "payer@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "PAY-001", 75, 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: user.ID,
		Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	payment, err := store.RecordPayment(ctx, db, order.ID, models.PaymentStatusSuccess)
	if err != nil {
		t.Fatalf("Record payment: %v", err)
	}

	if !payment.Amount.Equal(order.TotalAmount) {
		t.Errorf("Expected payment amount %s, got %s", order.TotalAmount, payment.Amount)
	}
	if !payment.IsSuccessful() {
		t.Error("Expected payment to report successful")
	}

	after, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if after.Status != models.OrderStatusConfirmed {
		t.Errorf("Expected order confirmed after successful payment, got %s", after.Status)
	}
}

func TestRecordPaymentFailureLeavesOrderPending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "payer2@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "PAY-002", 75, 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: user.ID,
		Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	payment, err := store.RecordPayment(ctx, db, order.ID, models.PaymentStatusFailed)
	if err != nil {
		t.Fatalf("Record payment: %v", err)
	}
	if payment.IsSuccessful() {
		t.Error("Failed payment should not report successful")
	}

	after, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if after.Status != models.OrderStatusPending {
		t.Errorf("Expected order still pending after failed payment, got %s", after.Status)
	}
}

func TestRecordPaymentSuccessOnShippedOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "payer3@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "PAY-003", 75, 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: user.ID,
		Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusShipped); err != nil {
		t.Fatalf("Ship order: %v", err)
	}

	if _, err := store.RecordPayment(ctx, db, order.ID, models.PaymentStatusSuccess); err != nil {
		t.Fatalf("Record payment: %v", err)
	}

	after, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if after.Status != models.OrderStatusShipped {
		t.Errorf("Payment should only confirm pending orders, got status %s", after.Status)
	}
}

func TestPaymentUserScoping(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner := createTestUser(t, db, "payowner@example.com")
	other := createTestUser(t, db, "payother@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "PAY-004", 75, 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: owner.ID,
		Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	payment, err := store.RecordPayment(ctx, db, order.ID, models.PaymentStatusSuccess)
	if err != nil {
		t.Fatalf("Record payment: %v", err)
	}

	if _, err := store.GetPayment(ctx, db, owner.ID, payment.ID); err != nil {
		t.Fatalf("Owner read: %v", err)
	}

	if _, err := store.GetPayment(ctx, db, other.ID, payment.ID); !errors.Is(err, database.ErrPaymentNotFound) {
		t.Errorf("Expected not found for foreign user, got: %v", err)
	}

	ownerPayments, err := store.ListPayments(ctx, db, owner.ID)
	if err != nil {
		t.Fatalf("List owner payments: %v", err)
	}
	if len(ownerPayments) != 1 {
		t.Errorf("Expected 1 payment for owner, got %d", len(ownerPayments))
	}

	otherPayments, err := store.ListPayments(ctx, db, other.ID)
	if err != nil {
		t.Fatalf("List other payments: %v", err)
	}
	if len(otherPayments) != 0 {
		t.Errorf("Expected 0 payments for other user, got %d", len(otherPayments))
	}
}

func TestPaymentNonexistentOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.RecordPayment(context.Background(), db, 424242, models.PaymentStatusSuccess)
	if !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found, got: %v", err)
	}
}
