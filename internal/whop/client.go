package whop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// Client calls the provider REST API. It is used as a last resort to look up
// an email when neither the event nor the store carries one.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logger.Logger
}

func NewClient(baseURL, apiKey string, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// GetUserEmail fetches a user's email from the provider API. Membership
// events do not include email, only payment events do.
func (c *Client) GetUserEmail(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", model.ErrNotFound
	}

	c.logger.Debug("Whop client: fetching user email",
		"user_id", userID)

	url := fmt.Sprintf("%s/api/v5/app/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", model.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch user: unexpected status %d", resp.StatusCode)
	}

	var user struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("failed to decode user response: %w", err)
	}

	if user.Email == "" {
		return "", model.ErrNotFound
	}

	c.logger.Debug("Whop client: retrieved user email",
		"user_id", userID)

	return user.Email, nil
}
