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

// timeLayout is the human-readable timestamp stamped on every message.
const timeLayout = "15:04:05"

// Messages owns creation, retrieval, update and deletion of messages.
// A message is mutable only by the identity matching its From field;
// that is the sole access-control rule in the system.
type Messages struct {
	store    store.DataStore
	presence presence
	log      zerolog.Logger
	now      func() time.Time
}

// Send persists a client message. The sender must reference a live
// participant at write time; whether it never registered or just
// expired, the result is the same validation failure.
func (m *Messages) Send(ctx context.Context, from, to, text, msgType string) (*models.Message, error) {
	const op = "messages.send"

	from = sanitize.Clean(from)
	to = sanitize.Clean(to)
	text = sanitize.Clean(text)

	if from == "" || to == "" || text == "" {
		return nil, errf(KindValidation, op, "from, to and text are required")
	}
	if !models.ClientType(msgType) {
		return nil, errf(KindValidation, op, "type must be %q or %q", models.TypeMessage, models.TypePrivate)
	}

	live, err := m.presence.Exists(ctx, from)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, errf(KindValidation, op, "sender %q is not in the room", from)
	}

	msg := &models.Message{
		From: from,
		To:   to,
		Text: text,
		Type: msgType,
		Time: m.now().Format(timeLayout),
	}
	if err := m.store.InsertMessage(ctx, msg); err != nil {
		return nil, storeErr(op, err)
	}
	metrics.MessagesSent.WithLabelValues(msgType).Inc()
	return msg, nil
}

// ListFor returns every message visible to user (sent by them, addressed
// to them, or broadcast) in creation order. A positive limit keeps only
// the most recent limit entries of that sequence; fewer is not an error.
func (m *Messages) ListFor(ctx context.Context, user string, limit int) ([]models.Message, error) {
	const op = "messages.list"

	user = sanitize.Clean(user)
	if user == "" {
		return nil, errf(KindValidation, op, "user is required")
	}
	if limit < 0 {
		return nil, errf(KindValidation, op, "limit must be positive")
	}

	messages, err := m.store.ListMessagesFor(ctx, user, limit)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return messages, nil
}

// Update overwrites to, text and type of an existing message. Only the
// identity matching the message's From may update it; From is
// re-stamped to the requester, which the ownership check has already
// proven equal.
func (m *Messages) Update(ctx context.Context, id, requester, to, text, msgType string) error {
	const op = "messages.update"

	requester = sanitize.Clean(requester)

	msg, err := m.store.FindMessage(ctx, id)
	if err != nil {
		return storeErr(op, err)
	}
	if msg == nil {
		return errf(KindNotFound, op, "message %q not found", id)
	}
	if msg.From != requester {
		return errf(KindUnauthorized, op, "message %q does not belong to %q", id, requester)
	}

	to = sanitize.Clean(to)
	text = sanitize.Clean(text)
	if to == "" || text == "" {
		return errf(KindValidation, op, "to and text are required")
	}
	if !models.ClientType(msgType) {
		return errf(KindValidation, op, "type must be %q or %q", models.TypeMessage, models.TypePrivate)
	}

	msg.From = requester
	msg.To = to
	msg.Text = text
	msg.Type = msgType

	if err := m.store.UpdateMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errf(KindNotFound, op, "message %q not found", id)
		}
		return storeErr(op, err)
	}
	return nil
}

// Delete permanently removes a message owned by requester.
func (m *Messages) Delete(ctx context.Context, id, requester string) error {
	const op = "messages.delete"

	requester = sanitize.Clean(requester)

	msg, err := m.store.FindMessage(ctx, id)
	if err != nil {
		return storeErr(op, err)
	}
	if msg == nil {
		return errf(KindNotFound, op, "message %q not found", id)
	}
	if msg.From != requester {
		return errf(KindUnauthorized, op, "message %q does not belong to %q", id, requester)
	}

	if err := m.store.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errf(KindNotFound, op, "message %q not found", id)
		}
		return storeErr(op, err)
	}
	return nil
}

// EmitStatus creates a system status message addressed to everyone.
// It bypasses sender-liveness validation: the actor is joining the room
// or has just been removed from it.
func (m *Messages) EmitStatus(ctx context.Context, name, text string) error {
	msg := &models.Message{
		From: name,
		To:   models.BroadcastTarget,
		Text: text,
		Type: models.TypeStatus,
		Time: m.now().Format(timeLayout),
	}
	if err := m.store.InsertMessage(ctx, msg); err != nil {
		return storeErr("messages.status", err)
	}
	metrics.MessagesSent.WithLabelValues(models.TypeStatus).Inc()
	return nil
}
