package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserIDContextKey carries the authenticated user's id
const UserIDContextKey ContextKey = "user_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth *service.AuthService
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth *service.AuthService) *Middleware {
	return &Middleware{auth: auth}
}

// RequireAuth resolves the Bearer token and puts the caller's user id on
// the request context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, apperr.Forbidden("missing bearer token"))
			return
		}

		userID, err := m.auth.VerifyToken(token)
		if err != nil {
			respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// userID extracts the authenticated user id from the request context
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(UserIDContextKey).(int64)
	return id
}

// pathID parses a numeric path segment
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}
