package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zubeidhendricks/africhain/internal/analysis"
	"github.com/zubeidhendricks/africhain/internal/audit"
	"github.com/zubeidhendricks/africhain/internal/command"
	"github.com/zubeidhendricks/africhain/internal/ledger"
	"github.com/zubeidhendricks/africhain/internal/middleware"
	"github.com/zubeidhendricks/africhain/internal/product"
)

// AnalyzeHandlers exposes the structured product analysis endpoint. Unlike
// the command endpoint it takes typed input rather than natural language.
type AnalyzeHandlers struct {
	gateway       command.Gateway
	builder       *audit.Builder
	registry      product.Repository // optional
	mintThreshold float64
}

// NewAnalyzeHandlers creates the analysis handlers. mintThreshold is the
// minimum authenticity score that triggers certificate minting.
func NewAnalyzeHandlers(gateway command.Gateway, builder *audit.Builder, mintThreshold float64) *AnalyzeHandlers {
	return &AnalyzeHandlers{
		gateway:       gateway,
		builder:       builder,
		mintThreshold: mintThreshold,
	}
}

// WithRegistry lets analyze requests reference registered products by id
// instead of repeating the product fields.
func (h *AnalyzeHandlers) WithRegistry(repo product.Repository) *AnalyzeHandlers {
	h.registry = repo
	return h
}

// AnalyzeRequest is the input for POST /analyze.
type AnalyzeRequest struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"product_name"`
	Price          float64 `json:"price"`
	SellerVerified bool    `json:"seller_verified"`
}

// AnalyzeResponse is the output of POST /analyze.
type AnalyzeResponse struct {
	Analysis  analysis.Result `json:"analysis"`
	AuditedAt time.Time       `json:"audited_at"`

	// Audit trail linkage. Empty when the ledger append failed.
	AuditTransactionID string `json:"audit_transaction_id,omitempty"`
	VerificationURL    string `json:"verification_url,omitempty"`

	// Certificate minting, performed only when the score clears the
	// mint threshold. MintError carries the failure message when an
	// eligible product could not be minted; without it a failed mint
	// would be indistinguishable from an ineligible score.
	Minted      bool               `json:"minted"`
	MintReceipt *ledger.MintResult `json:"mint,omitempty"`
	MintError   string             `json:"mint_error,omitempty"`
}

// Analyze handles POST /analyze.
//
// The flow is: score the product, append the analysis to the audit trail,
// and mint an authenticity certificate when the score clears the threshold.
// A failed audit append fails the request; a failed mint is reported in the
// response but does not undo the audit record.
func (h *AnalyzeHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Request body must be valid JSON")
		return
	}
	// A bare product_id resolves the rest of the fields from the registry.
	if h.registry != nil && req.ProductID != "" && strings.TrimSpace(req.Name) == "" {
		p, err := h.registry.GetByID(r.Context(), req.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Product not found")
			return
		}
		if err != nil {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to look up product")
			return
		}
		req.Name = p.Name
		req.Price = p.Price
		req.SellerVerified = p.SellerVerified
	}

	if strings.TrimSpace(req.Name) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "product_name is required")
		return
	}
	if req.Price < 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "price must not be negative")
		return
	}

	product := analysis.Product{
		Name:           req.Name,
		Price:          req.Price,
		SellerVerified: req.SellerVerified,
	}
	result := analysis.Analyze(product)

	rec := h.builder.Build("product_analysis", req, result, result.Confidence, result.Reasoning)
	receipt, err := h.gateway.AppendLogMessage(r.Context(), rec)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeLedgerUnavailable)
		WriteError(w, ctx, http.StatusBadGateway, ErrCodeLedgerUnavailable, "Failed to record analysis on the ledger")
		return
	}

	resp := AnalyzeResponse{
		Analysis:           result,
		AuditedAt:          rec.Timestamp,
		AuditTransactionID: receipt.TransactionID,
		VerificationURL:    ledger.VerificationURL(h.gateway.Network(), receipt.TransactionID),
	}

	if result.AuthenticityScore > h.mintThreshold {
		productID := req.ProductID
		if productID == "" {
			productID = req.Name
		}
		mint, mintErr := h.gateway.MintCertificate(r.Context(), ledger.CertificateMetadata{
			ProductID:         productID,
			ProductName:       req.Name,
			AuthenticityScore: result.AuthenticityScore,
		})
		if mintErr != nil {
			// The analysis is already on the ledger; the mint failure is
			// reported, not rolled back.
			slog.WarnContext(r.Context(), "certificate mint failed",
				"product_id", productID, "score", result.AuthenticityScore, "error", mintErr)
			resp.MintError = mintErr.Error()
		} else {
			resp.Minted = true
			resp.MintReceipt = &mint
		}
	}

	WriteJSON(w, r.Context(), http.StatusOK, resp)
}
