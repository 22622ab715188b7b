package api

import (
	"database/sql"
	"net/http"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/auth"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/cache"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/notify"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	db         *sql.DB
	logger     *zap.Logger
	validate   *validator.Validate
	tokens     *auth.TokenManager
	cache      *cache.ProductCache
	dispatcher notify.Dispatcher
	metrics    *Metrics
	registry   *prometheus.Registry
}

func NewServer(
	db *sql.DB,
	logger *zap.Logger,
	tokens *auth.TokenManager,
	productCache *cache.ProductCache,
	dispatcher notify.Dispatcher,
) *Server {
	registry := prometheus.NewRegistry()

	return &Server{
		db:         db,
		logger:     logger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		tokens:     tokens,
		cache:      productCache,
		dispatcher: dispatcher,
		metrics:    NewMetrics(registry),
		registry:   registry,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.authenticate(s.handleLogout))
	mux.HandleFunc("GET /me", s.authenticate(s.handleMe))

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)
	mux.HandleFunc("POST /categories", s.requireRole(models.RoleAdmin, s.handleCreateCategory))
	mux.HandleFunc("PUT /categories/{id}", s.requireRole(models.RoleAdmin, s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.requireRole(models.RoleAdmin, s.handleDeleteCategory))

	mux.HandleFunc("GET /products", s.handleListProducts)
	mux.HandleFunc("GET /products/{id}", s.handleGetProduct)
	mux.HandleFunc("POST /products", s.requireRole(models.RoleAdmin, s.handleCreateProduct))
	mux.HandleFunc("PUT /products/{id}", s.requireRole(models.RoleAdmin, s.handleUpdateProduct))
	mux.HandleFunc("PUT /products/{id}/stock", s.requireRole(models.RoleAdmin, s.handleUpdateProductStock))
	mux.HandleFunc("DELETE /products/{id}", s.requireRole(models.RoleAdmin, s.handleDeleteProduct))

	mux.HandleFunc("GET /cart", s.requireRole(models.RoleCustomer, s.handleListCart))
	mux.HandleFunc("POST /cart", s.requireRole(models.RoleCustomer, s.handleAddToCart))
	mux.HandleFunc("GET /cart/{id}", s.requireRole(models.RoleCustomer, s.handleGetCartItem))
	mux.HandleFunc("PUT /cart/{id}", s.requireRole(models.RoleCustomer, s.handleUpdateCartItem))
	mux.HandleFunc("DELETE /cart/{id}", s.requireRole(models.RoleCustomer, s.handleRemoveCartItem))

	mux.HandleFunc("GET /orders", s.authenticate(s.handleListOrders))
	mux.HandleFunc("POST /orders", s.authenticate(s.handleCreateOrder))
	mux.HandleFunc("GET /orders/{id}", s.authenticate(s.handleGetOrder))
	mux.HandleFunc("GET /orders/{id}/summary", s.authenticate(s.handleGetOrderSummary))
	mux.HandleFunc("PUT /orders/{id}/status", s.requireRole(models.RoleAdmin, s.handleUpdateOrderStatus))

	mux.HandleFunc("GET /payments", s.authenticate(s.handleListPayments))
	mux.HandleFunc("GET /payments/{id}", s.authenticate(s.handleGetPayment))
	mux.HandleFunc("POST /orders/{id}/payment", s.authenticate(s.handleProcessPayment))

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withLogging(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "Database unreachable", nil)
		return
	}
	s.respond(w, http.StatusOK, "OK", nil)
}
