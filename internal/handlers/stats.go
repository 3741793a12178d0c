package handlers

import "net/http"

// StatsResponse represents the room statistics response.
type StatsResponse struct {
	Participants int64 `json:"participants"`
	Messages     int64 `json:"messages"`
}

// Stats handles the room statistics endpoint.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	participants, err := h.store.CountParticipants(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("stats: participant count failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	messages, err := h.store.CountMessages(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("stats: message count failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		Participants: participants,
		Messages:     messages,
	})
}
