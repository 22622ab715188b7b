package api

import (
	"encoding/json"
	"net/http"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
	"github.com/shopspring/decimal"
)

type addToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (s *Server) handleListCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	items, err := store.ListCartItems(r.Context(), s.db, claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice())
	}

	s.respond(w, http.StatusOK, "Cart retrieved successfully", map[string]interface{}{
		"cart_items":  items,
		"total":       total,
		"items_count": len(items),
	})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	// Advisory pre-check; the authoritative stock check runs under a row
	// lock at checkout.
	product, err := store.GetProduct(r.Context(), s.db, req.ProductID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if !product.IsInStock(req.Quantity) {
		s.respondStoreError(w, &database.StockError{
			ProductID: product.ID,
			Available: product.StockQuantity,
			Requested: req.Quantity,
		})
		return
	}

	item, err := store.AddCartItem(r.Context(), s.db, claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	item.Product = product

	s.respond(w, http.StatusCreated, "Product added to cart successfully", map[string]interface{}{
		"cart_item": item,
	})
}

func (s *Server) handleGetCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid cart item ID", nil)
		return
	}

	item, err := store.GetCartItem(r.Context(), s.db, claims.UserID, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Cart item retrieved successfully", map[string]interface{}{
		"cart_item": item,
	})
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid cart item ID", nil)
		return
	}

	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	item, err := store.UpdateCartItemQuantity(r.Context(), s.db, claims.UserID, id, req.Quantity)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Cart item updated successfully", map[string]interface{}{
		"cart_item": item,
	})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid cart item ID", nil)
		return
	}

	if err := store.RemoveCartItem(r.Context(), s.db, claims.UserID, id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Cart item removed successfully", nil)
}
