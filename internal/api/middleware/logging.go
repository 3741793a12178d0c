package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger returns a request logging middleware using zerolog. The caller's
// repaired identity is attached when present, so room activity can be
// traced per participant.
func Logger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				evt := logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context()))

				// This middleware sits upstream of Identity, so read the
				// header directly rather than the request context.
				if user := RepairEncoding(r.Header.Get(identityHeader)); user != "" {
					evt = evt.Str("user", user)
				}

				evt.Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
