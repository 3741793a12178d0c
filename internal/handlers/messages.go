package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/api/middleware"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// MessageRequest represents the send and update request bodies.
type MessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// SendMessage handles posting a message from the identity in the User
// header.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	msg, err := h.engine.Messages.Send(r.Context(), user, req.To, req.Text, req.Type)
	if err != nil {
		h.EngineError(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, msg)
}

// ListMessages handles fetching the messages visible to the caller.
// An optional positive limit keeps only the most recent entries.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			h.Error(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return
		}
		limit = n
	}

	messages, err := h.engine.Messages.ListFor(r.Context(), user, limit)
	if err != nil {
		h.EngineError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	h.JSON(w, http.StatusOK, messages)
}

// UpdateMessage handles overwriting a message owned by the caller.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	if err := h.engine.Messages.Update(r.Context(), id, user, req.To, req.Text, req.Type); err != nil {
		h.EngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteMessage handles removing a message owned by the caller.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.engine.Messages.Delete(r.Context(), id, user); err != nil {
		h.EngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
