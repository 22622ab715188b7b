package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"go.uber.org/zap"
)

const apiVersion = "1.0"

type meta struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    meta        `json:"meta"`
}

func newMeta() meta {
	return meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   apiVersion,
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, data interface{}) {
	s.writeJSON(w, status, envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(),
	})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, errs interface{}) {
	s.writeJSON(w, status, envelope{
		Success: false,
		Message: message,
		Errors:  errs,
		Meta:    newMeta(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// respondStoreError translates the storage error taxonomy into HTTP
// failures. Anything unrecognized is a 500 with no internals leaked.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	var notFound *database.NotFoundError
	if errors.As(err, &notFound) {
		s.respondError(w, http.StatusNotFound, notFound.Error(), map[string]string{
			notFound.Entity: "not found",
		})
		return
	}

	var stockErr *database.StockError
	if errors.As(err, &stockErr) {
		s.metrics.StockConflicts.Inc()
		s.respondError(w, http.StatusUnprocessableEntity, "Insufficient stock", map[string]interface{}{
			"product_id":         stockErr.ProductID,
			"available_stock":    stockErr.Available,
			"requested_quantity": stockErr.Requested,
		})
		return
	}

	var transitionErr *database.TransitionError
	if errors.As(err, &transitionErr) {
		s.respondError(w, http.StatusUnprocessableEntity, "Invalid status transition", map[string]string{
			"status": transitionErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound):
		s.respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, database.ErrDuplicateEmail):
		s.respondError(w, http.StatusUnprocessableEntity, "Email already registered", map[string]string{
			"email": "already registered",
		})
	case errors.Is(err, database.ErrOptimisticLockFailed):
		s.respondError(w, http.StatusConflict, "Order was modified concurrently, retry", nil)
	default:
		s.logger.Error("storage error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}
