package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, order_id, amount, status, created_at, updated_at`

// RecordPayment persists a payment attempt against an order. The amount is
// always the order's frozen total. A successful payment confirms a pending
// order in the same transaction.
func RecordPayment(ctx context.Context, db *sql.DB, orderID int64, status string) (*models.Payment, error) {
	payment := &models.Payment{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var orderStatus string
		var totalAmount decimal.Decimal

		err := tx.QueryRowContext(ctx,
			`SELECT status, total_amount FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&orderStatus, &totalAmount)
		if err != nil {
			if err == sql.ErrNoRows {
				return &database.NotFoundError{Entity: "order", ID: orderID}
			}
			return fmt.Errorf("lock order: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO payments (order_id, amount, status, created_at, updated_at)
			 VALUES ($1, $2, $3, NOW(), NOW())
			 RETURNING `+paymentColumns,
			orderID, totalAmount, status).Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.Amount,
			&payment.Status,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if status == models.PaymentStatusSuccess && orderStatus == models.OrderStatusPending {
			_, err = tx.ExecContext(ctx,
				`UPDATE orders
				 SET status = $1, version = version + 1, updated_at = NOW()
				 WHERE id = $2`,
				models.OrderStatusConfirmed, orderID)
			if err != nil {
				return fmt.Errorf("confirm order: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPayment returns a payment only if the order it belongs to is owned by
// userID.
func GetPayment(ctx context.Context, db *sql.DB, userID, id int64) (*models.Payment, error) {
	payment := &models.Payment{}

	query := `
		SELECT p.id, p.order_id, p.amount, p.status, p.created_at, p.updated_at
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE p.id = $1 AND o.user_id = $2`

	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Amount,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &database.NotFoundError{Entity: "payment", ID: id}
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return payment, nil
}

func ListPayments(ctx context.Context, db *sql.DB, userID int64) ([]models.Payment, error) {
	query := `
		SELECT p.id, p.order_id, p.amount, p.status, p.created_at, p.updated_at
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.user_id = $1
		ORDER BY p.created_at DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.Amount,
			&payment.Status,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}
