package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/metrics"
)

// Reaper evicts participants whose last heartbeat is older than the
// inactivity threshold and posts their departure notices.
type Reaper struct {
	registry  *Registry
	messages  *Messages
	interval  time.Duration
	threshold time.Duration
	log       zerolog.Logger
}

// NewReaper creates a reaper. interval is how often it fires; threshold
// is the inactivity window after which a participant is considered gone.
func NewReaper(e *Engine, interval, threshold time.Duration, logger zerolog.Logger) *Reaper {
	return &Reaper{
		registry:  e.Registry,
		messages:  e.Messages,
		interval:  interval,
		threshold: threshold,
		log:       logger,
	}
}

// Run fires Sweep on every tick until ctx is cancelled. A single
// goroutine drives a single ticker, so firings never overlap; when a
// sweep outlasts the interval the missed ticks are dropped.
func (r *Reaper) Run(ctx context.Context) {
	r.log.Info().
		Dur("interval", r.interval).
		Dur("threshold", r.threshold).
		Msg("presence reaper started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("presence reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep evicts every expired participant. Per-item failures are logged
// and do not abort the rest of the batch; Sweep itself never fails, so
// one bad iteration cannot break the schedule.
func (r *Reaper) Sweep(ctx context.Context) {
	metrics.ReaperSweeps.Inc()

	names, err := r.registry.ExpireOlderThan(ctx, r.threshold)
	if err != nil {
		metrics.ReaperErrors.Inc()
		r.log.Error().Err(err).Msg("reaper scan failed")
		return
	}

	for _, name := range names {
		if err := r.registry.Remove(ctx, name); err != nil {
			// Someone else removed it first; nothing to announce.
			metrics.ReaperErrors.Inc()
			r.log.Warn().Err(err).Str("participant", name).Msg("eviction failed")
			continue
		}
		metrics.ParticipantsReaped.Inc()

		if err := r.messages.EmitStatus(ctx, name, LeaveNotice); err != nil {
			metrics.ReaperErrors.Inc()
			r.log.Error().Err(err).Str("participant", name).Msg("departure notice failed")
			continue
		}

		r.log.Info().Str("participant", name).Msg("participant evicted for inactivity")
	}
}
