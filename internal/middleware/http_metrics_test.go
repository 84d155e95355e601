package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root", "/", "/"},
		{"analyze", "/analyze", "/analyze"},
		{"command", "/command", "/command"},
		{"status", "/status", "/status"},
		{"products collection", "/products", "/products"},
		{"product by id", "/products/12345", "/products/{id}"},
		{"product by alphanumeric id", "/products/ABC-99", "/products/{id}"},
		{"audit records", "/audit/records", "/audit/records"},
		{"audit record by id", "/audit/records/rec-1", "/audit/records/{id}"},
		{"unknown route passthrough", "/nonexistent", "/nonexistent"},
		{"trailing slash not collapsed", "/products/", "/products/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestHTTPMetrics_RecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/products/12345", strings.NewReader("body"))
	req.Header.Set("Content-Length", "4")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("POST", "/products/{id}", "201"))
	if count != 1 {
		t.Errorf("http_requests_total = %v, want 1", count)
	}
}

func TestHTTPMetrics_SkipsHealthEndpoints(t *testing.T) {
	metrics := NewMetrics()
	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if count != 0 {
		t.Errorf("health endpoint was recorded in metrics: %v", count)
	}
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := metrics.Register(reg); err == nil {
		t.Error("expected duplicate registration error")
	}
}
