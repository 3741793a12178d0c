package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/metrics"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/sanitize"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/store"
)

// System notices posted on join and on eviction.
const (
	JoinNotice  = "entra na sala..."
	LeaveNotice = "sai da sala..."
)

// Registry owns the set of active participants and their liveness
// timestamps.
type Registry struct {
	store   store.DataStore
	notices statusNotifier
	log     zerolog.Logger
	now     func() time.Time
}

// Register creates a participant under the sanitized name and posts the
// join notice.
//
// Creation and notice are not transactional: when the notice fails the
// participant stays registered and the failure is surfaced to the
// caller alongside the created record.
func (r *Registry) Register(ctx context.Context, rawName string) (*models.Participant, error) {
	const op = "registry.register"

	name := sanitize.Clean(rawName)
	if name == "" {
		return nil, errf(KindValidation, op, "name is required")
	}

	existing, err := r.store.FindParticipant(ctx, name)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if existing != nil {
		return nil, errf(KindConflict, op, "name %q is taken", name)
	}

	p, err := r.store.InsertParticipant(ctx, name, r.now())
	if err != nil {
		// The unique constraint closes the window between the check
		// above and this insert.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errf(KindConflict, op, "name %q is taken", name)
		}
		return nil, storeErr(op, err)
	}
	metrics.ParticipantsRegistered.Inc()

	if err := r.notices.EmitStatus(ctx, name, JoinNotice); err != nil {
		r.log.Error().Err(err).Str("participant", name).Msg("join notice failed")
		return p, storeErr(op, err)
	}

	return p, nil
}

// ListAll returns every registered participant in the store's native
// order.
func (r *Registry) ListAll(ctx context.Context) ([]models.Participant, error) {
	participants, err := r.store.ListParticipants(ctx)
	if err != nil {
		return nil, storeErr("registry.list", err)
	}
	return participants, nil
}

// Heartbeat refreshes the liveness timestamp of the named participant.
func (r *Registry) Heartbeat(ctx context.Context, rawName string) error {
	const op = "registry.heartbeat"

	name := sanitize.Clean(rawName)
	if name == "" {
		return errf(KindValidation, op, "name is required")
	}

	if err := r.store.TouchParticipant(ctx, name, r.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errf(KindNotFound, op, "participant %q not found", name)
		}
		return storeErr(op, err)
	}
	metrics.Heartbeats.Inc()
	return nil
}

// Exists reports whether a live participant with the given (already
// sanitized) name is registered.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	p, err := r.store.FindParticipant(ctx, name)
	if err != nil {
		return false, storeErr("registry.exists", err)
	}
	return p != nil, nil
}

// ExpireOlderThan returns the names of participants whose last heartbeat
// is older than threshold. Removal is the caller's responsibility.
func (r *Registry) ExpireOlderThan(ctx context.Context, threshold time.Duration) ([]string, error) {
	cutoff := r.now().Add(-threshold)
	expired, err := r.store.ListParticipantsSeenBefore(ctx, cutoff)
	if err != nil {
		return nil, storeErr("registry.expire", err)
	}

	names := make([]string, len(expired))
	for i, p := range expired {
		names[i] = p.Name
	}
	return names, nil
}

// Remove deletes a participant by name.
func (r *Registry) Remove(ctx context.Context, name string) error {
	const op = "registry.remove"

	if err := r.store.DeleteParticipant(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errf(KindNotFound, op, "participant %q not found", name)
		}
		return storeErr(op, err)
	}
	return nil
}
