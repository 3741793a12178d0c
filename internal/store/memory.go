package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// MemoryStore is an in-memory DataStore. It backs the engine and handler
// tests and keeps the same contract as the SQL stores, including the
// unique-name constraint.
type MemoryStore struct {
	mu           sync.Mutex
	participants []models.Participant
	messages     []models.Message
	nextSeq      int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextSeq: 1}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// InsertParticipant creates a participant, enforcing name uniqueness.
func (s *MemoryStore) InsertParticipant(ctx context.Context, name string, lastSeen time.Time) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.Name == name {
			return nil, ErrDuplicate
		}
	}

	p := models.Participant{ID: uuid.New(), Name: name, LastSeen: lastSeen}
	s.participants = append(s.participants, p)
	return &p, nil
}

// FindParticipant retrieves a participant by exact name.
func (s *MemoryStore) FindParticipant(ctx context.Context, name string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// ListParticipants retrieves every participant in insertion order.
func (s *MemoryStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out, nil
}

// TouchParticipant refreshes a participant's last-seen timestamp.
func (s *MemoryStore) TouchParticipant(ctx context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			s.participants[i].LastSeen = at
			return nil
		}
	}
	return ErrNotFound
}

// DeleteParticipant removes a participant by name.
func (s *MemoryStore) DeleteParticipant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListParticipantsSeenBefore retrieves participants last seen strictly
// before cutoff.
func (s *MemoryStore) ListParticipantsSeenBefore(ctx context.Context, cutoff time.Time) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Participant
	for _, p := range s.participants {
		if p.LastSeen.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CountParticipants returns the number of registered participants.
func (s *MemoryStore) CountParticipants(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.participants)), nil
}

// InsertMessage persists a message, assigning its ULID and sequence.
func (s *MemoryStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	msg.Seq = s.nextSeq
	s.nextSeq++
	s.messages = append(s.messages, *msg)
	return nil
}

// FindMessage retrieves a message by ID.
func (s *MemoryStore) FindMessage(ctx context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

// ListMessagesFor retrieves messages visible to user in insertion order,
// keeping only the last limit entries when limit > 0.
func (s *MemoryStore) ListMessagesFor(ctx context.Context, user string, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.From == user || m.To == user || m.To == models.BroadcastTarget {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// UpdateMessage overwrites the mutable fields of a message by ID.
func (s *MemoryStore) UpdateMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.messages[i].From = msg.From
			s.messages[i].To = msg.To
			s.messages[i].Text = msg.Text
			s.messages[i].Type = msg.Type
			return nil
		}
	}
	return ErrNotFound
}

// DeleteMessage removes a message by ID.
func (s *MemoryStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// CountMessages returns the total number of stored messages.
func (s *MemoryStore) CountMessages(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.messages)), nil
}
