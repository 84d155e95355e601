package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zubeidhendricks/africhain/internal/product"
)

func newProductHandlers() *ProductHandlers {
	return NewProductHandlers(product.NewInMemoryRepository())
}

func TestProducts_RegisterAndGet(t *testing.T) {
	h := newProductHandlers()

	body := `{"id":"12345","name":"Shweshwe Fabric Roll","price":850,"seller_verified":true}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Collection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	var registered product.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if registered.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}

	req = httptest.NewRequest(http.MethodGet, "/products/12345", nil)
	rec = httptest.NewRecorder()
	h.GetByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var fetched product.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fetched.Name != "Shweshwe Fabric Roll" || fetched.Price != 850 {
		t.Errorf("unexpected product: %+v", fetched)
	}
}

func TestProducts_DuplicateIs409(t *testing.T) {
	h := newProductHandlers()
	body := `{"id":"p1","name":"First","price":10}`

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	h.Collection(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Collection(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error.Code != ErrCodeDuplicateProduct {
		t.Errorf("error code = %q", errResp.Error.Code)
	}
}

func TestProducts_ValidationErrors(t *testing.T) {
	h := newProductHandlers()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing id", `{"name":"X","price":1}`},
		{"missing name", `{"id":"p","price":1}`},
		{"negative price", `{"id":"p","name":"X","price":-2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Collection(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestProducts_GetMissingIs404(t *testing.T) {
	h := newProductHandlers()

	req := httptest.NewRequest(http.MethodGet, "/products/nope", nil)
	rec := httptest.NewRecorder()
	h.GetByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProducts_List(t *testing.T) {
	h := newProductHandlers()

	for _, id := range []string{"a", "b", "c"} {
		body := `{"id":"` + id + `","name":"Item ` + id + `","price":5}`
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		h.Collection(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/products?limit=2", nil)
	rec := httptest.NewRecorder()
	h.Collection(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var products []product.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 2 || products[0].ID != "c" {
		t.Errorf("unexpected list: %+v", products)
	}
}
