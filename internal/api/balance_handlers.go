package api

import (
	"net/http"

	"github.com/zubeidhendricks/africhain/internal/command"
	"github.com/zubeidhendricks/africhain/internal/ledger"
	"github.com/zubeidhendricks/africhain/internal/middleware"
)

// BalanceHandlers serves the operator account balance.
type BalanceHandlers struct {
	gateway command.Gateway
}

// NewBalanceHandlers creates a new balance handler.
func NewBalanceHandlers(gateway command.Gateway) *BalanceHandlers {
	return &BalanceHandlers{gateway: gateway}
}

// BalanceResponse is the payload for GET /balance.
type BalanceResponse struct {
	Balance ledger.Balance `json:"balance"`
	Network string         `json:"network"`
}

// Balance handles GET /balance.
func (h *BalanceHandlers) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	bal, err := h.gateway.Balance(r.Context())
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeLedgerUnavailable)
		WriteError(w, ctx, http.StatusBadGateway, ErrCodeLedgerUnavailable, "Balance query failed")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, BalanceResponse{
		Balance: bal,
		Network: h.gateway.Network(),
	})
}
