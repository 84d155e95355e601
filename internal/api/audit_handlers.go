package api

import (
	"net/http"
	"strconv"

	"github.com/zubeidhendricks/africhain/internal/audit"
	"github.com/zubeidhendricks/africhain/internal/middleware"
)

// defaultAuditLimit caps how many records an unbounded query returns.
const defaultAuditLimit = 50

// AuditHandlers serves the locally mirrored audit trail. The ledger log
// channel remains the source of truth; this endpoint reads the in-process
// mirror so dashboards do not hit the mirror node on every refresh.
type AuditHandlers struct {
	repo audit.Repository
}

// NewAuditHandlers creates audit trail handlers over a record repository.
func NewAuditHandlers(repo audit.Repository) *AuditHandlers {
	return &AuditHandlers{repo: repo}
}

// AuditRecordsResponse is the output of GET /audit/records.
type AuditRecordsResponse struct {
	Records []audit.Record `json:"records"`
	Count   int            `json:"count"`
}

// Records handles GET /audit/records?action=&limit=.
// Records are returned newest first. An unknown action yields an empty list,
// not an error.
func (h *AuditHandlers) Records(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var (
		records []audit.Record
		err     error
	)
	if action := r.URL.Query().Get("action"); action != "" {
		records, err = h.repo.QueryByAction(action, limit)
	} else {
		records, err = h.repo.Recent(limit)
	}
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to query audit records")
		return
	}
	if records == nil {
		records = []audit.Record{}
	}

	WriteJSON(w, r.Context(), http.StatusOK, AuditRecordsResponse{
		Records: records,
		Count:   len(records),
	})
}
