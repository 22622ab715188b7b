package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique violation", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"lock timeout sentinel", fmt.Errorf("reserve: %w", ErrLockTimeout), ErrorClassTransient},
		{"no rows", sql.ErrNoRows, ErrorClassPermanent},
		{"wrapped serialization", fmt.Errorf("tx: %w", &pq.Error{Code: "40001"}), ErrorClassSerialization},
		{"plain error", errors.New("boom"), ErrorClassPermanent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "55P03"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("boom")))
}

func TestStockErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("place order: %w", &StockError{ProductID: 7, Available: 2, Requested: 5})

	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(7), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	assert.NotErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionErrorMatchesSentinel(t *testing.T) {
	err := &TransitionError{Current: "shipped", Requested: "cancelled"}

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "shipped")
	assert.Contains(t, err.Error(), "cancelled")
}

func TestNotFoundErrorMatchesEntitySentinel(t *testing.T) {
	cases := map[string]error{
		"user":      ErrUserNotFound,
		"product":   ErrProductNotFound,
		"category":  ErrCategoryNotFound,
		"cart item": ErrCartItemNotFound,
		"order":     ErrOrderNotFound,
		"payment":   ErrPaymentNotFound,
	}

	for entity, sentinel := range cases {
		err := &NotFoundError{Entity: entity, ID: 42}
		assert.ErrorIs(t, err, sentinel, entity)
	}

	assert.NotErrorIs(t, &NotFoundError{Entity: "order", ID: 1}, ErrProductNotFound)
	assert.NotErrorIs(t, &NotFoundError{Entity: "widget", ID: 1}, ErrProductNotFound)
}
