package api

import (
	"encoding/json"
	"net/http"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := store.ListCategories(r.Context(), s.db, page, pageSize)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Categories retrieved successfully", result)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	category, err := store.GetCategory(r.Context(), s.db, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Category retrieved successfully", map[string]interface{}{
		"category": category,
	})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	category, err := store.CreateCategory(r.Context(), s.db, req.Name, req.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusCreated, "Category created successfully", map[string]interface{}{
		"category": category,
	})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	category, err := store.UpdateCategory(r.Context(), s.db, id, req.Name, req.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Category updated successfully", map[string]interface{}{
		"category": category,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	if err := store.DeleteCategory(r.Context(), s.db, id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "Category deleted successfully", nil)
}
