package api

import (
	"encoding/json"
	"net/http"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/auth"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/store"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=customer admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", map[string]string{
			"password": err.Error(),
		})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	user, err := store.CreateUser(r.Context(), s.db, req.Email, req.Name, hash, role)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	s.respond(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "Validation failed", formatValidationErrors(err))
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.db, req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnprocessableEntity, "The provided credentials are incorrect", map[string]string{
			"email": "invalid credentials",
		})
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	s.respond(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Tokens are stateless; logout succeeds so clients can drop the token
// uniformly.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, "Logout successful", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	user, err := store.GetUser(r.Context(), s.db, claims.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "User profile retrieved successfully", map[string]interface{}{
		"user": user,
	})
}
