package integration

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
	"github.com/shopspring/decimal"
)

func TestConcurrentStockReservation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "TEST-001", 100, 10)

	concurrency := 5
	var wg sync.WaitGroup
	failures := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
				_, err := store.ReserveStock(ctx, tx, product.ID, 2)
				if err != nil {
					return err
				}

				return store.DecrementStock(ctx, tx, product.ID, 2)
			})

			if err != nil {
				failures <- err
			}
		}()
	}

	wg.Wait()
	close(failures)

	successCount := concurrency
	for range failures {
		successCount--
	}

	finalProduct, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}

	expectedStock := 10 - (successCount * 2)
	if finalProduct.StockQuantity != expectedStock {
		t.Errorf("Expected stock %d, got %d", expectedStock, finalProduct.StockQuantity)
	}
}

func TestReserveStockInsufficient(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "TEST-001B", 100, 3)

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, err := store.ReserveStock(ctx, tx, product.ID, 4)
		return err
	})

	var stockErr *database.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected *database.StockError, got %v", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 4 {
		t.Errorf("Unexpected payload: %+v", stockErr)
	}
}

func TestRestoreStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "TEST-001C", 100, 5)

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := store.DecrementStock(ctx, tx, product.ID, 5); err != nil {
			return err
		}
		return store.RestoreStock(ctx, tx, product.ID, 3)
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 3 {
		t.Errorf("Expected stock 3, got %d", after.StockQuantity)
	}
}

func TestOptimisticLocking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "TEST-002", 100, 50)

	err := store.UpdateStockOptimistic(ctx, db, product.ID, 40, product.Version)
	if err != nil {
		t.Fatalf("First update should succeed: %v", err)
	}

	err = store.UpdateStockOptimistic(ctx, db, product.ID, 30, product.Version)
	if !errors.Is(err, database.ErrOptimisticLockFailed) {
		t.Errorf("Expected optimistic lock failure, got: %v", err)
	}
}

func TestReserveStockNoWait(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category := createTestCategory(t, db)
	product := createTestProduct(t, db, category.ID, "TEST-003", 100, 20)

	tx1, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = store.ReserveStock(ctx, tx1, product.ID, 5)
	if err != nil {
		t.Fatalf("Reserve stock in tx1: %v", err)
	}

	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Begin tx2: %v", err)
	}
	defer func() { _ = tx2.Rollback() }()

	_, err = store.ReserveStockNoWait(ctx, tx2, product.ID, 3)
	if !errors.Is(err, database.ErrLockTimeout) {
		t.Errorf("Expected lock timeout, got: %v", err)
	}
}

func TestListProductsFiltered(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	electronics := createTestCategory(t, db)
	books, err := store.CreateCategory(ctx, db, "Books", "Paper")
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	createTestProduct(t, db, electronics.ID, "FLT-001", 500, 5)
	createTestProduct(t, db, electronics.ID, "FLT-002", 1500, 0)
	createTestProduct(t, db, books.ID, "FLT-003", 20, 10)

	byCategory, err := store.ListProducts(ctx, db, store.ProductFilter{CategoryID: books.ID}, 1, 20)
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if byCategory.Total != 1 {
		t.Errorf("Expected 1 book, got %d", byCategory.Total)
	}

	maxPrice := decimal.NewFromInt(1000)
	byPrice, err := store.ListProducts(ctx, db, store.ProductFilter{MaxPrice: &maxPrice}, 1, 20)
	if err != nil {
		t.Fatalf("List by price: %v", err)
	}
	if byPrice.Total != 2 {
		t.Errorf("Expected 2 products under 1000, got %d", byPrice.Total)
	}

	inStock, err := store.ListProducts(ctx, db, store.ProductFilter{InStock: true}, 1, 20)
	if err != nil {
		t.Fatalf("List in stock: %v", err)
	}
	if inStock.Total != 2 {
		t.Errorf("Expected 2 in-stock products, got %d", inStock.Total)
	}

	products, ok := inStock.Items.([]models.Product)
	if !ok {
		t.Fatalf("Unexpected items type %T", inStock.Items)
	}
	for _, p := range products {
		if p.StockQuantity == 0 {
			t.Errorf("In-stock filter returned product %s with zero stock", p.SKU)
		}
	}
}
