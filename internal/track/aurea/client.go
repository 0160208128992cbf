// Package aurea sends funnel tracking events to the Aurea CRM. All sends are
// best-effort: a lost event must never affect webhook handling.
package aurea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomstradingroom/funnel-server/internal/logger"
)

// ContextIDs identify the visitor an event belongs to.
type ContextIDs struct {
	AnonymousID string
	SessionID   string
	UserID      string
}

// Client posts tracking events to the Aurea events endpoint.
type Client struct {
	apiURL   string
	apiKey   string
	funnelID string
	http     *http.Client
	logger   *logger.Logger
}

func NewClient(apiURL, apiKey, funnelID string, logger *logger.Logger) *Client {
	return &Client{
		apiURL:   apiURL,
		apiKey:   apiKey,
		funnelID: funnelID,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type event struct {
	EventID    string         `json:"eventId"`
	EventName  string         `json:"eventName"`
	Properties map[string]any `json:"properties"`
	Context    eventContext   `json:"context"`
	Timestamp  int64          `json:"timestamp"`
}

type eventContext struct {
	User    eventUser    `json:"user"`
	Session eventSession `json:"session"`
}

type eventUser struct {
	UserID      string `json:"userId,omitempty"`
	AnonymousID string `json:"anonymousId"`
}

type eventSession struct {
	SessionID string `json:"sessionId"`
}

type batch struct {
	Events []event `json:"events"`
	Batch  bool    `json:"batch"`
}

// Track records a named funnel event for the given visitor.
func (c *Client) Track(ctx context.Context, name string, properties map[string]any, ids ContextIDs) error {
	return c.send(ctx, event{
		EventID:    newEventID(),
		EventName:  name,
		Properties: properties,
		Context: eventContext{
			User:    eventUser{UserID: ids.UserID, AnonymousID: ids.AnonymousID},
			Session: eventSession{SessionID: ids.SessionID},
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

// Identify links an anonymous visitor to a known user by email.
func (c *Client) Identify(ctx context.Context, email, anonymousID string, traits map[string]any) error {
	return c.send(ctx, event{
		EventID:   newEventID(),
		EventName: "user_identified",
		Properties: map[string]any{
			"userId":      email,
			"anonymousId": anonymousID,
			"traits":      traits,
		},
		Context: eventContext{
			User:    eventUser{UserID: email, AnonymousID: anonymousID},
			Session: eventSession{SessionID: anonymousID},
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

func (c *Client) send(ctx context.Context, ev event) error {
	payload, err := json.Marshal(batch{Events: []event{ev}, Batch: true})
	if err != nil {
		return fmt.Errorf("failed to marshal tracking event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/track/events", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Aurea-API-Key", c.apiKey)
	req.Header.Set("X-Aurea-Funnel-ID", c.funnelID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send tracking event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tracking endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("Aurea client: event tracked",
		"event", ev.EventName,
		"session_id", ev.Context.Session.SessionID)

	return nil
}

func newEventID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("evt_%d_%s", time.Now().UnixMilli(), id[:9])
}
