package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
)

// AddCartItem inserts a cart line or, if the user already has one for the
// product, increments its quantity.
func AddCartItem(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{}

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, user_id, product_id, quantity, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, userID, productID, quantity).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return item, nil
}

func GetCartItem(ctx context.Context, db *sql.DB, userID, id int64) (*models.CartItem, error) {
	item := &models.CartItem{Product: &models.Product{}}

	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.sku, p.name, p.description, p.price, p.stock_quantity, p.category_id,
		       p.created_at, p.updated_at, p.version
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.id = $1 AND c.user_id = $2`

	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Product.ID,
		&item.Product.SKU,
		&item.Product.Name,
		&item.Product.Description,
		&item.Product.Price,
		&item.Product.StockQuantity,
		&item.Product.CategoryID,
		&item.Product.CreatedAt,
		&item.Product.UpdatedAt,
		&item.Product.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &database.NotFoundError{Entity: "cart item", ID: id}
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}

	return item, nil
}

func UpdateCartItemQuantity(ctx context.Context, db *sql.DB, userID, id int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{}

	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, product_id, quantity, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, quantity, id, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &database.NotFoundError{Entity: "cart item", ID: id}
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	return item, nil
}

func RemoveCartItem(ctx context.Context, db *sql.DB, userID, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &database.NotFoundError{Entity: "cart item", ID: id}
	}

	return nil
}

func ListCartItems(ctx context.Context, db *sql.DB, userID int64) ([]models.CartItem, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.sku, p.name, p.description, p.price, p.stock_quantity, p.category_id,
		       p.created_at, p.updated_at, p.version
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		item := models.CartItem{Product: &models.Product{}}
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Product.ID,
			&item.Product.SKU,
			&item.Product.Name,
			&item.Product.Description,
			&item.Product.Price,
			&item.Product.StockQuantity,
			&item.Product.CategoryID,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
			&item.Product.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// ClearCart runs inside the order placement transaction so the cart empties
// together with the order becoming visible.
func ClearCart(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
