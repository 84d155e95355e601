// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token and returns the subject (user ID)
// it was issued to.
type TokenValidator interface {
	Subject(token string) (string, error)
}

// RequireAuth is a middleware that rejects requests without a valid
// Authorization: Bearer token. On success the user ID is stored in the
// request context for logging and rate limiting.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			unauthorized := func(msg string) {
				// Set error code for logging middleware
				r = r.WithContext(SetErrorCode(r.Context(), "unauthorized"))
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, msg, http.StatusUnauthorized)
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized("missing Authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized("Authorization header must use Bearer scheme")
				return
			}

			userID, err := validator.Subject(token)
			if err != nil {
				unauthorized("invalid or expired token")
				return
			}

			ctx := SetUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
