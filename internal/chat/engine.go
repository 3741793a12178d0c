// Package chat implements the presence and messaging engine: the
// participant registry, the message store service and the presence
// reaper. It is transport-free; the HTTP layer translates its tagged
// errors into responses.
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/store"
)

// presence is the registry surface the message service needs to validate
// sender identity.
type presence interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// statusNotifier is the message-store surface the registry and the
// reaper need to emit system notices.
type statusNotifier interface {
	EmitStatus(ctx context.Context, name, text string) error
}

// Engine composes the registry and the message service over one data
// store.
type Engine struct {
	Registry *Registry
	Messages *Messages
}

// NewEngine wires a registry and a message service together.
func NewEngine(st store.DataStore, logger zerolog.Logger) *Engine {
	m := &Messages{store: st, log: logger, now: time.Now}
	r := &Registry{store: st, notices: m, log: logger, now: time.Now}
	m.presence = r
	return &Engine{Registry: r, Messages: m}
}
