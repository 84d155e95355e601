// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Default CORS values. The API surface is read plus JSON writes, so the
// method list stays short.
var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	AllowedOrigins   []string // List of allowed origins (no wildcards)
	AllowedMethods   []string // HTTP methods to allow; defaults to GET, POST, OPTIONS
	AllowedHeaders   []string // Headers to allow; defaults to Content-Type, Authorization, X-Request-ID
	AllowCredentials bool     // Whether to allow credentials
	MaxAge           int      // Preflight cache duration in seconds
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Only explicitly listed origins are allowed, never wildcards: the dashboard
// origins are known ahead of time and a stray origin holding a bearer token
// must not be able to call the ledger-writing endpoints. If AllowedOrigins
// is empty, CORS processing is disabled entirely.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool)
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}
	allowedMethodsStr := strings.Join(methods, ", ")
	allowedHeadersStr := strings.Join(headers, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedOrigins) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			// No Origin header means a same-origin request.
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Responses differ by Origin, so caches must key on it.
			w.Header().Add("Vary", "Origin")

			if !allowedOrigins[origin] {
				http.Error(w, "Origin not allowed", http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Preflight requests terminate here. Method and header lists
			// only matter to the preflight check, so they are not sent on
			// actual requests.
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethodsStr)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeadersStr)
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
