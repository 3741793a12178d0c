package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents a registered chat identity. Name is the primary
// key from the client's point of view; there is at most one live
// participant per distinct name.
type Participant struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	LastSeen time.Time `json:"lastStatus"`
}
