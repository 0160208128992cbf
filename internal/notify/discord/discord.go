// Package discord posts fire-and-forget notifications to Discord channel
// webhooks.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
)

// Color names accepted by NewEmbed.
type Color string

const (
	ColorSuccess Color = "success"
	ColorError   Color = "error"
	ColorWarning Color = "warning"
	ColorInfo    Color = "info"
	ColorPending Color = "pending"
)

var colorValues = map[Color]int{
	ColorSuccess: 0x10b981,
	ColorError:   0xef4444,
	ColorWarning: 0xf59e0b,
	ColorInfo:    0x3b82f6,
	ColorPending: 0x8b5cf6,
}

const footerText = "Tom's Trading Room"

// Message is the webhook request body.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Footer struct {
	Text string `json:"text"`
}

// NewEmbed builds a single-embed message with the standard footer and a
// current timestamp.
func NewEmbed(title, description string, color Color, fields ...Field) Message {
	return Message{
		Embeds: []Embed{
			{
				Title:       title,
				Description: description,
				Color:       colorValues[color],
				Fields:      fields,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
				Footer:      &Footer{Text: footerText},
			},
		},
	}
}

// Client sends messages to Discord webhooks.
type Client struct {
	http   *http.Client
	logger *logger.Logger
}

func NewClient(logger *logger.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send posts a message to the given webhook URL. A missing URL is logged and
// ignored so a misconfigured channel never breaks event handling.
func (c *Client) Send(ctx context.Context, webhookURL string, msg Message) error {
	if webhookURL == "" {
		c.logger.Warn("Discord client: webhook URL not configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
