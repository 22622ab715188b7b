package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/cache"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Name        string  `json:"name" validate:"required,min=2"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
}

type updateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
}

type updateStockRequest struct {
	Stock   int `json:"stock" validate:"gte=0"`
	Version int `json:"version" validate:"required,gt=0"`
}

func productFilterFromQuery(r *http.Request) store.ProductFilter {
	query := r.URL.Query()

	filter := store.ProductFilter{
		Search:  query.Get("search"),
		InStock: query.Get("in_stock") == "true",
	}

	if categoryID, err := strconv.ParseInt(query.Get("category_id"), 10, 64); err == nil {
		filter.CategoryID = categoryID
	}
	if minPrice, err := decimal.NewFromString(query.Get("min_price")); err == nil {
		filter.MinPrice = &minPrice
	}
	if maxPrice, err := decimal.NewFromString(query.Get("max_price")); err == nil {
		filter.MaxPrice = &maxPrice
	}

	return filter
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filter := productFilterFromQuery(r)

	signature := cache.ListSignature(filter, page, pageSize)
	if cached, ok := s.cache.GetListJSON(r.Context(), signature); ok {
		s.respond(w, http.StatusOK, "Products retrieved successfully", json.RawMessage(cached))
		return
	}

	result, err := store.ListProducts(r.Context(), s.db, filter, page, pageSize)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if data, err := json.Marshal(result); err == nil {
		s.cache.SetListJSON(r.Context(), signature, data)
	}

	s.respond(w, http.StatusOK, "Products retrieved successfully", result)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	if product, ok := s.cache.GetProduct(r.Context(), id); ok {
		s.respond(w, http.StatusOK, "Product retrieved successfully", map[string]interface{}{
			"product": product,
		})
		return
	}

	product, err := store.GetProduct(r.Context(), s.db, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.cache.SetProduct(r.Context(), product)

	s.respond(w, http.StatusOK, "Product retrieved successfully", map[string]interface{}{
		"product": product,
	})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	product, err := store.CreateProduct(r.Context(), s.db,
		req.SKU, req.Name, req.Description, decimal.NewFromFloat(req.Price), req.Stock, req.CategoryID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.cache.InvalidateLists(r.Context())

	s.respond(w, http.StatusCreated, "Product created successfully", map[string]interface{}{
		"product": product,
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	product, err := store.UpdateProduct(r.Context(), s.db,
		id, req.Name, req.Description, decimal.NewFromFloat(req.Price), req.CategoryID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.cache.InvalidateProduct(r.Context(), id)
	s.cache.InvalidateLists(r.Context())

	s.respond(w, http.StatusOK, "Product updated successfully", map[string]interface{}{
		"product": product,
	})
}

func (s *Server) handleUpdateProductStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	if err := store.UpdateStockOptimistic(r.Context(), s.db, id, req.Stock, req.Version); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.cache.InvalidateProduct(r.Context(), id)
	s.cache.InvalidateLists(r.Context())

	product, err := store.GetProduct(r.Context(), s.db, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Stock updated successfully", map[string]interface{}{
		"product": product,
	})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	if err := store.DeleteProduct(r.Context(), s.db, id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.cache.InvalidateProduct(r.Context(), id)
	s.cache.InvalidateLists(r.Context())

	s.respond(w, http.StatusOK, "Product deleted successfully", nil)
}
