package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zubeidhendricks/africhain/internal/audit"
)

func seedAuditRepo(t *testing.T) *audit.InMemoryRepository {
	t.Helper()
	repo := audit.NewInMemoryRepository()
	builder := audit.NewBuilder("0.0.12345", "testnet")
	for i := 0; i < 3; i++ {
		if err := repo.Append(builder.Build("product_analysis", nil, nil, 0.9, "analysis")); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Append(builder.Build("nft_mint", nil, nil, 0.8, "mint")); err != nil {
		t.Fatal(err)
	}
	return repo
}

func getAuditRecords(t *testing.T, h *AuditHandlers, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/audit/records"+query, nil)
	rec := httptest.NewRecorder()
	h.Records(rec, req)
	return rec
}

func TestAuditRecords_All(t *testing.T) {
	h := NewAuditHandlers(seedAuditRepo(t))

	rec := getAuditRecords(t, h, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp AuditRecordsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 4 {
		t.Errorf("count = %d, want 4", resp.Count)
	}
	// Newest first: the mint was appended last.
	if resp.Records[0].Action != "nft_mint" {
		t.Errorf("first record action = %q, want nft_mint", resp.Records[0].Action)
	}
}

func TestAuditRecords_FilterByAction(t *testing.T) {
	h := NewAuditHandlers(seedAuditRepo(t))

	rec := getAuditRecords(t, h, "?action=product_analysis")
	var resp AuditRecordsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	for _, r := range resp.Records {
		if r.Action != "product_analysis" {
			t.Errorf("unexpected action %q", r.Action)
		}
	}
}

func TestAuditRecords_Limit(t *testing.T) {
	h := NewAuditHandlers(seedAuditRepo(t))

	rec := getAuditRecords(t, h, "?limit=2")
	var resp AuditRecordsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestAuditRecords_UnknownActionEmptyList(t *testing.T) {
	h := NewAuditHandlers(seedAuditRepo(t))

	rec := getAuditRecords(t, h, "?action=nonexistent")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown action", rec.Code)
	}

	var resp AuditRecordsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || resp.Records == nil {
		t.Errorf("expected empty list, got %+v", resp)
	}
}

func TestAuditRecords_InvalidLimit(t *testing.T) {
	h := NewAuditHandlers(seedAuditRepo(t))

	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=-5"} {
		rec := getAuditRecords(t, h, q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}
