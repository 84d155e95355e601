package api

import (
	"net/http"

	"github.com/zubeidhendricks/africhain/internal/middleware"
	"github.com/zubeidhendricks/africhain/internal/status"
)

// StatusHandlers serves the human-facing service status report.
type StatusHandlers struct {
	reporter *status.Reporter
}

// NewStatusHandlers creates status handlers around a reporter.
func NewStatusHandlers(reporter *status.Reporter) *StatusHandlers {
	return &StatusHandlers{reporter: reporter}
}

// Status handles GET /status. The endpoint itself always returns 200; a
// degraded ledger connection shows up in the report body, not the HTTP
// status. Kubernetes probes use /health and /ready instead.
func (h *StatusHandlers) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	report := h.reporter.Report(r.Context())
	WriteJSON(w, r.Context(), http.StatusOK, report)
}
