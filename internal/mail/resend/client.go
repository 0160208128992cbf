// Package resend is a small REST client for the Resend email API, covering
// the operations the funnel needs: sending transactional emails (raw HTML or
// stored template) and maintaining the mailing-list contacts.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
)

const defaultBaseURL = "https://api.resend.com"

// ErrContactExists reports that a contact with the given email already
// exists. Callers treat it as success.
var ErrContactExists = errors.New("contact already exists")

// Client talks to the Resend API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func NewClient(apiKey string, logger *logger.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Template references a stored email template and its variables.
type Template struct {
	ID        string            `json:"id"`
	Variables map[string]string `json:"variables,omitempty"`
}

// SendEmailRequest describes a single outbound email. Either HTML+Subject or
// Template must be set.
type SendEmailRequest struct {
	From     string    `json:"from"`
	To       []string  `json:"to"`
	Subject  string    `json:"subject,omitempty"`
	HTML     string    `json:"html,omitempty"`
	Template *Template `json:"template,omitempty"`
}

// SendEmail delivers one email to a single recipient.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("missing recipient")
	}
	if c.apiKey == "" {
		return fmt.Errorf("missing resend api key")
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/emails", req, &resp); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info("Resend client: email sent",
		"to", req.To[0],
		"subject", req.Subject,
		"id", resp.ID)

	return nil
}

// Contact is a mailing-list entry.
type Contact struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// CreateContact adds a contact to the mailing list and returns its id.
// Returns ErrContactExists when the address is already registered.
func (c *Client) CreateContact(ctx context.Context, contact Contact) (string, error) {
	if contact.Email == "" {
		return "", fmt.Errorf("missing email")
	}

	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/contacts", contact, &resp)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.isAlreadyExists() {
			return "", ErrContactExists
		}
		return "", fmt.Errorf("failed to create contact: %w", err)
	}

	return resp.ID, nil
}

// AddToAudience attaches an existing contact to an audience.
func (c *Client) AddToAudience(ctx context.Context, contactID, audienceID string) error {
	body := map[string]string{"audience_id": audienceID}
	path := fmt.Sprintf("/contacts/%s", contactID)
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("failed to add contact to audience: %w", err)
	}
	return nil
}

type apiError struct {
	StatusCode int
	Message    string `json:"message"`
	Name       string `json:"name"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("resend api error (status %d): %s", e.StatusCode, e.Message)
}

func (e *apiError) isAlreadyExists() bool {
	return e.StatusCode == http.StatusConflict ||
		strings.Contains(strings.ToLower(e.Message), "already exists")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = string(data)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
