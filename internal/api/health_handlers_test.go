package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealth(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestReady_AllHealthy(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{
		LedgerChecker: &stubChecker{},
		DBChecker:     &stubChecker{},
		RedisChecker:  &stubChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"database", "redis", "ledger"} {
		if resp.Checks[name] != "ok" {
			t.Errorf("check %s = %q", name, resp.Checks[name])
		}
	}
}

func TestReady_LedgerDown(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{
		LedgerChecker: &stubChecker{err: errors.New("grpc timeout")},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "not_ready" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["ledger"] != "error" {
		t.Errorf("ledger check = %q", resp.Checks["ledger"])
	}
}

func TestReady_UnconfiguredCheckersAreOK(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, nil checkers should not fail readiness", rec.Code)
	}
}
