package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/supervisionhq/jarvis/internal/contacts"
)

// ContactStore is the registry surface the API exposes.
// Satisfied by *contacts.Store.
type ContactStore interface {
	Create(ctx context.Context, firstName, lastName, phone string) (contacts.Contact, error)
	Get(ctx context.Context, key string) (contacts.Contact, error)
	List(ctx context.Context) ([]contacts.Contact, error)
	Delete(ctx context.Context, key string) error
}

// CollectionDeleter removes a corpus collection. Deleting a contact also
// deletes their conversation collection; the contact owns it.
// Satisfied by *corpus.Store.
type CollectionDeleter interface {
	DeleteCollection(ctx context.Context, collection string) error
}

// CreateContactRequest is the body of POST /api/contacts.
type CreateContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// ContactsHandler handles contact management endpoints.
type ContactsHandler struct {
	store       ContactStore
	collections CollectionDeleter
	logger      *slog.Logger
}

// NewContactsHandler creates a contacts handler.
func NewContactsHandler(store ContactStore, collections CollectionDeleter, logger *slog.Logger) *ContactsHandler {
	return &ContactsHandler{store: store, collections: collections, logger: logger}
}

// RegisterRoutes registers contact routes on the given mux.
func (h *ContactsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/contacts", h.handleList)
	mux.HandleFunc("POST /api/contacts", h.handleCreate)
	mux.HandleFunc("GET /api/contacts/{key}", h.handleGet)
	mux.HandleFunc("DELETE /api/contacts/{key}", h.handleDelete)
}

func (h *ContactsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "contact store not configured")
		return
	}
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContactsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "contact store not configured")
		return
	}

	var req CreateContactRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAssistBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	contact, err := h.store.Create(r.Context(), req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_contact", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "contact store not configured")
		return
	}

	contact, err := h.store.Get(r.Context(), r.PathValue("key"))
	if errors.Is(err, contacts.ErrContactNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such contact")
		return
	}
	if err != nil {
		h.logger.Error("fetching contact failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "contact store not configured")
		return
	}
	key := r.PathValue("key")

	if err := h.store.Delete(r.Context(), key); err != nil {
		if errors.Is(err, contacts.ErrContactNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no such contact")
			return
		}
		h.logger.Error("deleting contact failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	// The contact's conversation collection goes with them.
	if h.collections != nil {
		if err := h.collections.DeleteCollection(r.Context(), key); err != nil {
			h.logger.Error("deleting conversation collection failed", "error", err, "key", key)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
