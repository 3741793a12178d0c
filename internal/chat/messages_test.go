package chat

import (
	"context"
	"testing"
	"time"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

func TestSendBroadcast(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 28, 21, 4, 37, 0, time.UTC)
	setClock(e, at)
	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}

	msg, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi pessoal", models.TypeMessage)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" {
		t.Fatal("expected message ID to be assigned")
	}
	if msg.Time != "21:04:37" {
		t.Fatalf("expected time '21:04:37', got %q", msg.Time)
	}
}

func TestSendSanitizesFields(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}

	msg, err := e.Messages.Send(ctx, " ana ", " bia ", " <b>oi</b> ", models.TypePrivate)
	if err != nil {
		t.Fatal(err)
	}
	if msg.From != "ana" || msg.To != "bia" || msg.Text != "oi" {
		t.Fatalf("expected sanitized fields, got %+v", msg)
	}
}

func TestSendValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}

	// Missing fields, including fields that sanitize to empty.
	for _, c := range []struct{ from, to, text string }{
		{"", "Todos", "oi"},
		{"ana", "", "oi"},
		{"ana", "Todos", ""},
		{"ana", "Todos", " <br> "},
	} {
		_, err := e.Messages.Send(ctx, c.from, c.to, c.text, models.TypeMessage)
		if !IsKind(err, KindValidation) {
			t.Fatalf("Send(%q,%q,%q): expected validation error, got %v", c.from, c.to, c.text, err)
		}
	}

	// Clients cannot forge the system status type.
	for _, msgType := range []string{"", "status", "dm", "MESSAGE"} {
		_, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", msgType)
		if !IsKind(err, KindValidation) {
			t.Fatalf("Send type %q: expected validation error, got %v", msgType, err)
		}
	}
}

func TestSendRequiresLiveSender(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// Never registered.
	_, err := e.Messages.Send(ctx, "ghost", models.BroadcastTarget, "oi", models.TypeMessage)
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error for unknown sender, got %v", err)
	}

	// Registered then evicted; same failure.
	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	if err := e.Registry.Remove(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	_, err = e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", models.TypeMessage)
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error for evicted sender, got %v", err)
	}
}

func TestListForVisibility(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	for _, name := range []string{"ana", "bia", "caio"} {
		if _, err := e.Registry.Register(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	send := func(from, to, text, msgType string) {
		t.Helper()
		if _, err := e.Messages.Send(ctx, from, to, text, msgType); err != nil {
			t.Fatal(err)
		}
	}
	send("ana", models.BroadcastTarget, "oi todos", models.TypeMessage)
	send("ana", "bia", "so para bia", models.TypePrivate)
	send("bia", "caio", "so para caio", models.TypePrivate)

	// Three join notices are broadcast, so everyone sees those.
	visible, err := e.Messages.ListFor(ctx, "ana", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range visible {
		if m.Text == "so para caio" {
			t.Fatal("ana should not see bia->caio private message")
		}
	}

	visible, err = e.Messages.ListFor(ctx, "caio", 0)
	if err != nil {
		t.Fatal(err)
	}
	var sawPrivate bool
	for _, m := range visible {
		if m.Text == "so para bia" {
			t.Fatal("caio should not see ana->bia private message")
		}
		if m.Text == "so para caio" {
			sawPrivate = true
		}
	}
	if !sawPrivate {
		t.Fatal("caio should see the private message addressed to them")
	}
}

func TestListForTailLimit(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"um", "dois", "tres"} {
		if _, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, text, models.TypeMessage); err != nil {
			t.Fatal(err)
		}
	}

	// 1 join notice + 3 broadcasts; limit keeps the most recent two.
	tail, err := e.Messages.ListFor(ctx, "ana", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tail))
	}
	if tail[0].Text != "dois" || tail[1].Text != "tres" {
		t.Fatalf("expected tail in creation order, got %q then %q", tail[0].Text, tail[1].Text)
	}

	// A limit beyond what exists returns everything, not an error.
	all, err := e.Messages.ListFor(ctx, "ana", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected all 4 messages for oversized limit, got %d", len(all))
	}

	if _, err := e.Messages.ListFor(ctx, "ana", -1); !IsKind(err, KindValidation) {
		t.Fatal("expected validation error for negative limit")
	}
}

func TestUpdateMessage(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	msg, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", models.TypeMessage)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Messages.Update(ctx, msg.ID, "ana", "bia", "corrigido", models.TypePrivate); err != nil {
		t.Fatal(err)
	}

	got, err := st.FindMessage(ctx, msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.To != "bia" || got.Text != "corrigido" || got.Type != models.TypePrivate {
		t.Fatalf("unexpected updated message: %+v", got)
	}
	if got.Time != msg.Time {
		t.Fatalf("expected original timestamp preserved, got %q", got.Time)
	}
}

func TestUpdateMessageOwnership(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	msg, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", models.TypeMessage)
	if err != nil {
		t.Fatal(err)
	}

	err = e.Messages.Update(ctx, msg.ID, "bia", "ana", "hackeado", models.TypeMessage)
	if !IsKind(err, KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestUpdateMessageNotFound(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Messages.Update(context.Background(), "nope", "ana", "bia", "oi", models.TypeMessage)
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateCheckOrderOwnershipBeforeValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	msg, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", models.TypeMessage)
	if err != nil {
		t.Fatal(err)
	}

	// Wrong owner and bad payload together: ownership wins.
	err = e.Messages.Update(ctx, msg.ID, "bia", "", "", "bogus")
	if !IsKind(err, KindUnauthorized) {
		t.Fatalf("expected unauthorized before validation, got %v", err)
	}
}

func TestDeleteMessage(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Registry.Register(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	msg, err := e.Messages.Send(ctx, "ana", models.BroadcastTarget, "oi", models.TypeMessage)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Messages.Delete(ctx, msg.ID, "bia"); !IsKind(err, KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	if err := e.Messages.Delete(ctx, msg.ID, "ana"); err != nil {
		t.Fatal(err)
	}

	got, err := st.FindMessage(ctx, msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected message gone")
	}

	if err := e.Messages.Delete(ctx, msg.ID, "ana"); !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}

func TestEmitStatusBypassesLiveness(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	// "gone" is not registered; status notices post anyway.
	if err := e.Messages.EmitStatus(ctx, "gone", LeaveNotice); err != nil {
		t.Fatal(err)
	}

	messages, err := st.ListMessagesFor(ctx, "qualquer", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	notice := messages[0]
	if notice.From != "gone" || notice.Type != models.TypeStatus || notice.To != models.BroadcastTarget {
		t.Fatalf("unexpected status notice: %+v", notice)
	}
}
