package models

// Message types accepted from clients, plus the system-only status type.
const (
	TypeMessage = "message"
	TypePrivate = "private_message"
	TypeStatus  = "status"
)

// BroadcastTarget is the reserved recipient meaning "all participants".
const BroadcastTarget = "Todos"

// Message represents a chat message.
type Message struct {
	ID   string `json:"id"`   // ULID, assigned by the store
	Seq  int64  `json:"-"`    // insertion order, assigned by the store
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"` // HH:mm:ss, captured at creation
}

// ClientType reports whether t is a type clients may supply.
func ClientType(t string) bool {
	return t == TypeMessage || t == TypePrivate
}
