package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

func TestAddCartItemIncrements(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "cart@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "CART-001", 50, 10)

	first, err := store.AddCartItem(ctx, db, user.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("Add cart item: %v", err)
	}
	if first.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", first.Quantity)
	}

	second, err := store.AddCartItem(ctx, db, user.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("Add same product again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same cart line, got a new row %d", second.ID)
	}
	if second.Quantity != 5 {
		t.Errorf("Expected quantity 5 after increment, got %d", second.Quantity)
	}

	items, err := store.ListCartItems(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("List cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 cart line, got %d", len(items))
	}
	if items[0].Product == nil || items[0].Product.SKU != "CART-001" {
		t.Error("Expected product joined onto cart line")
	}
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := createTestUser(t, db, "cart2@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "CART-002", 50, 10)

	item, err := store.AddCartItem(ctx, db, user.ID, product.ID, 1)
	if err != nil {
		t.Fatalf("Add cart item: %v", err)
	}

	updated, err := store.UpdateCartItemQuantity(ctx, db, user.ID, item.ID, 4)
	if err != nil {
		t.Fatalf("Update quantity: %v", err)
	}
	if updated.Quantity != 4 {
		t.Errorf("Expected quantity 4, got %d", updated.Quantity)
	}

	if err := store.RemoveCartItem(ctx, db, user.ID, item.ID); err != nil {
		t.Fatalf("Remove cart item: %v", err)
	}

	_, err = store.GetCartItem(ctx, db, user.ID, item.ID)
	if !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected cart item not found, got: %v", err)
	}
}

func TestCartUserScoping(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "CART-003", 50, 10)

	item, err := store.AddCartItem(ctx, db, owner.ID, product.ID, 1)
	if err != nil {
		t.Fatalf("Add cart item: %v", err)
	}

	if _, err := store.GetCartItem(ctx, db, other.ID, item.ID); !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected not found for foreign user read, got: %v", err)
	}

	if _, err := store.UpdateCartItemQuantity(ctx, db, other.ID, item.ID, 9); !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected not found for foreign user update, got: %v", err)
	}

	if err := store.RemoveCartItem(ctx, db, other.ID, item.ID); !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected not found for foreign user remove, got: %v", err)
	}

	got, err := store.GetCartItem(ctx, db, owner.ID, item.ID)
	if err != nil {
		t.Fatalf("Owner read after foreign attempts: %v", err)
	}
	if got.Quantity != 1 {
		t.Errorf("Expected quantity untouched at 1, got %d", got.Quantity)
	}
}
