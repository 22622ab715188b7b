package api

import (
	"math/rand"
	"net/http"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	payments, err := store.ListPayments(r.Context(), s.db, claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Payments retrieved successfully", map[string]interface{}{
		"payments":    payments,
		"total_count": len(payments),
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid payment ID", nil)
		return
	}

	payment, err := store.GetPayment(r.Context(), s.db, claims.UserID, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Payment retrieved successfully", map[string]interface{}{
		"payment": payment,
	})
}

func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	orderID, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	if _, err := s.getOwnedOrder(r.Context(), claims.UserID, claims.Role, orderID); err != nil {
		s.respondStoreError(w, err)
		return
	}

	payment, err := store.RecordPayment(r.Context(), s.db, orderID, processMockPayment())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.metrics.Payments.WithLabelValues(payment.Status).Inc()

	s.respond(w, http.StatusCreated, "Payment processed successfully", map[string]interface{}{
		"payment": payment,
	})
}

// processMockPayment simulates a payment gateway with a 90% success rate.
func processMockPayment() string {
	if rand.Intn(10) < 9 {
		return models.PaymentStatusSuccess
	}
	return models.PaymentStatusFailed
}
