package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/chat"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/store"
)

func newTestRouter(t *testing.T) (*chi.Mux, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	engine := chat.NewEngine(st, zerolog.Nop())
	return NewRouter(zerolog.Nop(), engine, st, nil, nil), st
}

func doJSON(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("User", user)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func join(t *testing.T, router http.Handler, name string) {
	t.Helper()
	rec := doJSON(t, router, "POST", "/participants", "", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join %q: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
	}
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/participants", "", map[string]string{"name": "  ana  "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var p models.Participant
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "ana" {
		t.Fatalf("expected sanitized name 'ana', got %q", p.Name)
	}
	if p.LastSeen.IsZero() {
		t.Fatal("expected lastStatus to be set")
	}
}

func TestRegisterEndpointConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "POST", "/participants", "", map[string]string{"name": "ana"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/participants", "", map[string]string{"name": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestListParticipantsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	// Empty room yields an empty array, not null.
	rec := doJSON(t, router, "GET", "/participants", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}

	join(t, router, "ana")
	join(t, router, "bia")

	rec = doJSON(t, router, "GET", "/participants", "", nil)
	var participants []models.Participant
	if err := json.Unmarshal(rec.Body.Bytes(), &participants); err != nil {
		t.Fatal(err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}
}

func TestStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "POST", "/status", "ana", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/status", "ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown participant, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/status", "", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing identity, got %d", rec.Code)
	}
}

func TestStatusEndpointRepairsLatin1Header(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "José")

	// A raw Latin-1 header value must match the UTF-8 registration.
	req := httptest.NewRequest("POST", "/status", nil)
	req.Header.Set("User", "Jos\xe9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "POST", "/messages", "ana", map[string]string{
		"to": "Todos", "text": "oi pessoal", "type": "message",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" || msg.From != "ana" || msg.Time == "" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestSendMessageEndpointUnknownSender(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/messages", "ghost", map[string]string{
		"to": "Todos", "text": "oi", "type": "message",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestListMessagesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")
	join(t, router, "bia")

	for _, body := range []map[string]string{
		{"to": "Todos", "text": "oi todos", "type": "message"},
		{"to": "bia", "text": "segredo", "type": "private_message"},
	} {
		rec := doJSON(t, router, "POST", "/messages", "ana", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("send failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	// A third party sees the broadcasts and join notices but not the
	// private message.
	join(t, router, "caio")
	rec := doJSON(t, router, "GET", "/messages", "caio", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var messages []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatal(err)
	}
	for _, m := range messages {
		if m.Text == "segredo" {
			t.Fatal("private message leaked to a third party")
		}
	}
}

func TestListMessagesEndpointLimit(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	for _, text := range []string{"um", "dois", "tres"} {
		rec := doJSON(t, router, "POST", "/messages", "ana", map[string]string{
			"to": "Todos", "text": text, "type": "message",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("send failed: %d", rec.Code)
		}
	}

	rec := doJSON(t, router, "GET", "/messages?limit=2", "ana", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var messages []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "dois" || messages[1].Text != "tres" {
		t.Fatalf("expected most recent two in order, got %+v", messages)
	}

	for _, limit := range []string{"0", "-1", "abc", "1.5"} {
		rec := doJSON(t, router, "GET", "/messages?limit="+limit, "ana", nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("limit=%s: expected 422, got %d", limit, rec.Code)
		}
	}
}

func TestUpdateMessageEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "POST", "/messages", "ana", map[string]string{
		"to": "Todos", "text": "oi", "type": "message",
	})
	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, router, "PUT", "/messages/"+msg.ID, "ana", map[string]string{
		"to": "Todos", "text": "corrigido", "type": "message",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, err := st.FindMessage(context.Background(), msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "corrigido" {
		t.Fatalf("expected updated text, got %q", got.Text)
	}

	// Another identity cannot touch it.
	rec = doJSON(t, router, "PUT", "/messages/"+msg.ID, "bia", map[string]string{
		"to": "Todos", "text": "hackeado", "type": "message",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, "PUT", "/messages/nope", "ana", map[string]string{
		"to": "Todos", "text": "oi", "type": "message",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteMessageEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "POST", "/messages", "ana", map[string]string{
		"to": "Todos", "text": "oi", "type": "message",
	})
	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, router, "DELETE", "/messages/"+msg.ID, "bia", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, "DELETE", "/messages/"+msg.ID, "ana", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, "DELETE", "/messages/"+msg.ID, "ana", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", resp.Status)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	join(t, router, "ana")

	rec := doJSON(t, router, "GET", "/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Participants int64 `json:"participants"`
		Messages     int64 `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// Registration also posts the join notice.
	if resp.Participants != 1 || resp.Messages != 1 {
		t.Fatalf("expected 1 participant and 1 message, got %d/%d", resp.Participants, resp.Messages)
	}
}

func TestSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/participants", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff header, got %q", got)
	}
}

func TestRejectsNonJSONBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/participants", bytes.NewBufferString("name=ana"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}
