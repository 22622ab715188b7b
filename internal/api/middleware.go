package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/auth"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// authenticate rejects requests without a valid bearer token and stores the
// token claims on the request context.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "Invalid authorization header", nil)
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// requireRole gates a handler on the authenticated user's role.
func (s *Server) requireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok || claims.Role != role {
			s.respondError(w, http.StatusForbidden, "Insufficient permissions", nil)
			return
		}

		next(w, r)
	})
}
