package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/zubeidhendricks/africhain/internal/middleware"
	"github.com/zubeidhendricks/africhain/internal/product"
)

// ProductHandlers serves the registered product catalog.
type ProductHandlers struct {
	repo product.Repository
}

// NewProductHandlers creates product catalog handlers.
func NewProductHandlers(repo product.Repository) *ProductHandlers {
	return &ProductHandlers{repo: repo}
}

// RegisterRequest is the input for POST /products.
type RegisterRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	SellerVerified bool    `json:"seller_verified"`
}

// Collection handles /products: POST registers a product, GET lists them.
func (h *ProductHandlers) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.register(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

func (h *ProductHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Request body must be valid JSON")
		return
	}

	registered, err := h.repo.Register(r.Context(), product.Product{
		ID:             req.ID,
		Name:           req.Name,
		Price:          req.Price,
		SellerVerified: req.SellerVerified,
	})
	switch {
	case errors.Is(err, product.ErrDuplicateID):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeDuplicateProduct)
		WriteError(w, ctx, http.StatusConflict, ErrCodeDuplicateProduct, "A product with this ID is already registered")
		return
	case errors.Is(err, product.ErrMissingID), errors.Is(err, product.ErrMissingName), errors.Is(err, product.ErrInvalidPrice):
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	case err != nil:
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to register product")
		return
	}

	WriteJSON(w, r.Context(), http.StatusCreated, registered)
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	products, err := h.repo.List(r.Context(), limit)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list products")
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	WriteJSON(w, r.Context(), http.StatusOK, products)
}

// GetByID handles GET /products/{id}.
func (h *ProductHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/products/")
	if id == "" || strings.Contains(id, "/") {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, product.ErrNotFound) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Product not found")
		return
	}
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to fetch product")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, p)
}
