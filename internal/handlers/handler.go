package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/chat"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	engine *chat.Engine
	store  store.DataStore
	redis  *redis.Client // may be nil
	log    zerolog.Logger
}

// NewHandler creates a new Handler. redisClient may be nil when Redis is
// not configured.
func NewHandler(engine *chat.Engine, st store.DataStore, redisClient *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{engine: engine, store: st, redis: redisClient, log: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// EngineError translates a tagged engine error into a response. Store
// failures are logged with full detail and reported generically.
func (h *Handler) EngineError(w http.ResponseWriter, err error) {
	switch chat.KindOf(err) {
	case chat.KindValidation:
		h.Error(w, http.StatusUnprocessableEntity, err.Error())
	case chat.KindConflict:
		h.Error(w, http.StatusConflict, err.Error())
	case chat.KindNotFound:
		h.Error(w, http.StatusNotFound, err.Error())
	case chat.KindUnauthorized:
		h.Error(w, http.StatusUnauthorized, err.Error())
	default:
		h.log.Error().Err(err).Msg("data store failure")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}
