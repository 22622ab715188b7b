package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/notify"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

type orderItemPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type createOrderRequest struct {
	CartItems []orderItemPayload `json:"cart_items" validate:"required,min=1,dive"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := store.ListOrdersCursor(r.Context(), s.db, claims.UserID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Orders retrieved successfully", result)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	items := make([]store.OrderItemRequest, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		items = append(items, store.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := store.CreateOrder(r.Context(), s.db, store.CreateOrderRequest{
		UserID:    claims.UserID,
		Items:     items,
		ClearCart: true,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.metrics.OrdersCreated.Inc()
	s.invalidateOrderProducts(r.Context(), order)

	// Enqueue happens after the transaction committed; a dispatch failure
	// never rolls the order back.
	go s.dispatcher.Enqueue(context.WithoutCancel(r.Context()),
		notify.NewOrderEvent(notify.EventOrderConfirmation, order))

	s.respond(w, http.StatusCreated, "Order created successfully", map[string]interface{}{
		"order": order,
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	order, err := s.getOwnedOrder(r.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Order retrieved successfully", map[string]interface{}{
		"order": order,
	})
}

func (s *Server) handleGetOrderSummary(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	if _, err := s.getOwnedOrder(r.Context(), claims.UserID, claims.Role, id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	summary, err := store.GetOrderSummary(r.Context(), s.db, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Order summary retrieved successfully", summary)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	var order *models.Order
	if req.Status == models.OrderStatusCancelled {
		order, err = store.CancelOrder(r.Context(), s.db, id)
		if err == nil {
			s.metrics.OrdersCancelled.Inc()
			s.invalidateOrderProducts(r.Context(), order)
			go s.dispatcher.Enqueue(context.WithoutCancel(r.Context()),
				notify.NewOrderEvent(notify.EventOrderCancelled, order))
		}
	} else {
		order, err = store.UpdateOrderStatus(r.Context(), s.db, id, req.Status)
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Order status updated successfully", map[string]interface{}{
		"order": order,
	})
}

// getOwnedOrder hides other users' orders from non-admins behind a 404.
func (s *Server) getOwnedOrder(ctx context.Context, userID int64, role string, orderID int64) (*models.Order, error) {
	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	if role != models.RoleAdmin && order.UserID != userID {
		return nil, &database.NotFoundError{Entity: "order", ID: orderID}
	}

	return order, nil
}

// Stock changed for every product on the order, so cached product entries
// and list pages are stale.
func (s *Server) invalidateOrderProducts(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		s.cache.InvalidateProduct(ctx, item.ProductID)
	}
	s.cache.InvalidateLists(ctx)
}
