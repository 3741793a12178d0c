package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/api/middleware"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name string `json:"name"`
}

// Register handles participant registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	p, err := h.engine.Registry.Register(r.Context(), req.Name)
	if err != nil {
		h.EngineError(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, p)
}

// ListParticipants handles listing every registered participant.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.engine.Registry.ListAll(r.Context())
	if err != nil {
		h.EngineError(w, err)
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}

	h.JSON(w, http.StatusOK, participants)
}

// Status handles a heartbeat from the identity in the User header.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())

	if err := h.engine.Registry.Heartbeat(r.Context(), user); err != nil {
		h.EngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
