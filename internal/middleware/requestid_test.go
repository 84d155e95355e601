package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Error("expected a generated request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("response header %q != context value %q", got, captured)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != "client-supplied-id" {
		t.Errorf("request ID = %q, want client-supplied-id", captured)
	}
}

func TestRequestID_ReplacesMalformed(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"control characters", "abc\x00def"},
		{"spaces", "not a valid id"},
		{"log injection attempt", "id\nlevel=ERROR"},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if captured == tt.id {
				t.Errorf("malformed request ID %q was preserved", tt.id)
			}
			if captured == "" {
				t.Error("expected a replacement request ID")
			}
		})
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}
