// Package api provides HTTP API handlers for the AfriChain API.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zubeidhendricks/africhain/internal/command"
	"github.com/zubeidhendricks/africhain/internal/middleware"
)

// maxCommandBytes bounds the request body for command dispatch.
const maxCommandBytes = 16 << 10

// CommandHandlers exposes natural-language command dispatch over HTTP.
type CommandHandlers struct {
	dispatcher *command.Dispatcher
}

// NewCommandHandlers creates command handlers around a dispatcher.
func NewCommandHandlers(dispatcher *command.Dispatcher) *CommandHandlers {
	return &CommandHandlers{dispatcher: dispatcher}
}

// Dispatch handles POST /command.
//
// Request body: {"command": "...", "context": {...}}
//
// The response is always 200 with a command result: dispatch failures,
// including ledger errors, are reported inside the result with success=false
// rather than as HTTP errors. Only malformed requests get 4xx.
func (h *CommandHandlers) Dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var cmd command.Command
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err := decoder.Decode(&cmd); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Request body must be valid JSON")
		return
	}

	if strings.TrimSpace(cmd.Text) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "command text is required")
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), cmd)
	WriteJSON(w, r.Context(), http.StatusOK, result)
}
