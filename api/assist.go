package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/supervisionhq/jarvis/internal/assistant"
	"github.com/supervisionhq/jarvis/internal/contacts"
)

// maxAssistBody bounds the request body size.
const maxAssistBody = 64 << 10

// Assistant routes one request and returns the categorized answer.
// Satisfied by *assistant.Assistant.
type Assistant interface {
	Handle(ctx context.Context, request, convContext string) (assistant.Reply, error)
}

// AssistRequest is the body of POST /api/assist. Context carries the
// caller's rolling conversation context and may be empty.
type AssistRequest struct {
	Request string `json:"request"`
	Context string `json:"context,omitempty"`
}

// AssistHandler handles the assist endpoint.
type AssistHandler struct {
	router Assistant
	logger *slog.Logger
}

// NewAssistHandler creates an assist handler.
func NewAssistHandler(router Assistant, logger *slog.Logger) *AssistHandler {
	return &AssistHandler{router: router, logger: logger}
}

// RegisterRoutes registers assist routes on the given mux.
func (h *AssistHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assist", h.handleAssist)
}

func (h *AssistHandler) handleAssist(w http.ResponseWriter, r *http.Request) {
	if h.router == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "assistant not configured")
		return
	}

	var req AssistRequest
	body := io.LimitReader(r.Body, maxAssistBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "request must not be empty")
		return
	}

	reply, err := h.router.Handle(r.Context(), req.Request, req.Context)
	if err != nil {
		h.writeAssistError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *AssistHandler) writeAssistError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contacts.ErrContactNotFound):
		writeError(w, http.StatusUnprocessableEntity, "unknown_contact",
			"couldn't identify who you mean")
	case errors.Is(err, assistant.ErrGeneration):
		h.logger.Error("generation failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "generation_failed",
			"the model could not produce an answer")
	default:
		h.logger.Error("assist failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
