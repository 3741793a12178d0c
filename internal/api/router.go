package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/api/middleware"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/chat"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/handlers"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient may be
// nil; rate limiting is skipped when Redis is not configured.
func NewRouter(logger zerolog.Logger, engine *chat.Engine, st store.DataStore, redisClient *redis.Client, whitelist []string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins (browser clients call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "User"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Identity must run before rate limiting so per-user limits see the
	// repaired User header.
	r.Use(middleware.Identity)

	// Rate limiting (requires Redis)
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, logger, whitelist)
		r.Use(limiter.Middleware)
	}

	h := handlers.NewHandler(engine, st, redisClient, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Operational endpoints
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)

	// Room endpoints
	r.Post("/participants", h.Register)
	r.Get("/participants", h.ListParticipants)
	r.Post("/status", h.Status)
	r.Post("/messages", h.SendMessage)
	r.Get("/messages", h.ListMessages)
	r.Put("/messages/{id}", h.UpdateMessage)
	r.Delete("/messages/{id}", h.DeleteMessage)

	return r
}
