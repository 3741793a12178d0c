// Package batepapo provides a client for the bate-papo room API.
package batepapo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Broadcast is the recipient name that addresses the whole room.
const Broadcast = "Todos"

// Client is a bate-papo API client. Name identifies the caller on every
// request after Register succeeds.
type Client struct {
	BaseURL    string
	Name       string
	HTTPClient *http.Client
}

// NewClient creates a new client for the given server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request, attaching the User header when a
// name is set.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Name != "" {
		req.Header.Set("User", c.Name)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("bate-papo error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// Participant represents a registered room member.
type Participant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastStatus time.Time `json:"lastStatus"`
}

// Message represents a chat message.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// Register joins the room under the given name. The client remembers
// the name for subsequent requests.
func (c *Client) Register(name string) (*Participant, error) {
	body, _ := json.Marshal(map[string]string{"name": name})
	respBody, err := c.doRequest("POST", "/participants", body)
	if err != nil {
		return nil, err
	}

	var p Participant
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, err
	}

	c.Name = p.Name
	return &p, nil
}

// ListParticipants lists everyone currently in the room.
func (c *Client) ListParticipants() ([]Participant, error) {
	respBody, err := c.doRequest("GET", "/participants", nil)
	if err != nil {
		return nil, err
	}

	var participants []Participant
	if err := json.Unmarshal(respBody, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// Heartbeat refreshes the caller's presence.
func (c *Client) Heartbeat() error {
	_, err := c.doRequest("POST", "/status", nil)
	return err
}

// KeepAlive sends heartbeats at the given interval until ctx is
// cancelled. The server evicts participants whose heartbeats stop.
func (c *Client) KeepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Heartbeat(); err != nil {
				return err
			}
		}
	}
}

// Send posts a message. Use Broadcast as the recipient to address the
// whole room, and msgType "message" or "private_message".
func (c *Client) Send(to, text, msgType string) (*Message, error) {
	body, _ := json.Marshal(map[string]string{"to": to, "text": text, "type": msgType})
	respBody, err := c.doRequest("POST", "/messages", body)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Messages retrieves the messages visible to the caller. A positive
// limit keeps only the most recent entries.
func (c *Client) Messages(limit int) ([]Message, error) {
	path := "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(respBody, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Update overwrites a message the caller owns.
func (c *Client) Update(id, to, text, msgType string) error {
	body, _ := json.Marshal(map[string]string{"to": to, "text": text, "type": msgType})
	_, err := c.doRequest("PUT", "/messages/"+id, body)
	return err
}

// Delete removes a message the caller owns.
func (c *Client) Delete(id string) error {
	_, err := c.doRequest("DELETE", "/messages/"+id, nil)
	return err
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
