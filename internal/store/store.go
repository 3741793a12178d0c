package store

import (
	"context"
	"errors"
	"time"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// Sentinel errors shared by every DataStore implementation. Callers
// classify them; the stores never wrap them with extra meaning.
var (
	// ErrDuplicate reports a unique-constraint violation on insert.
	ErrDuplicate = errors.New("store: duplicate record")

	// ErrNotFound reports that a targeted update or delete matched nothing.
	ErrNotFound = errors.New("store: record not found")
)

// DataStore defines the interface for persistent storage of participants
// and messages. PostgresStore, SQLiteStore and MemoryStore implement it.
//
// Lookups return (nil, nil) when the record is absent; only targeted
// mutations report ErrNotFound.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Participant operations. Name is unique; InsertParticipant returns
	// ErrDuplicate when the constraint trips, closing the find-then-act
	// race left open by callers' pre-checks.
	InsertParticipant(ctx context.Context, name string, lastSeen time.Time) (*models.Participant, error)
	FindParticipant(ctx context.Context, name string) (*models.Participant, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	TouchParticipant(ctx context.Context, name string, at time.Time) error
	DeleteParticipant(ctx context.Context, name string) error
	ListParticipantsSeenBefore(ctx context.Context, cutoff time.Time) ([]models.Participant, error)
	CountParticipants(ctx context.Context) (int64, error)

	// Message operations. InsertMessage assigns the ID and the insertion
	// sequence; ListMessagesFor applies the visibility predicate
	// (from == user OR to == user OR to == broadcast) in insertion order
	// and, when limit > 0, keeps only the last limit entries.
	InsertMessage(ctx context.Context, msg *models.Message) error
	FindMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessagesFor(ctx context.Context, user string, limit int) ([]models.Message, error)
	UpdateMessage(ctx context.Context, msg *models.Message) error
	DeleteMessage(ctx context.Context, id string) error
	CountMessages(ctx context.Context) (int64, error)
}
