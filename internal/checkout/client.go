package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Session is the provider-created checkout session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client wraps interactions with the payment provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateSession opens a checkout session for a subscription plan and returns
// the redirect URL.
func (c *Client) CreateSession(ctx context.Context, plan, email string, userID int64) (Session, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"plan":      plan,
		"email":     email,
		"reference": fmt.Sprintf("user-%d", userID),
	})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Session{}, fmt.Errorf("checkout session returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("decode checkout session response: %w", err)
	}
	if session.URL == "" {
		return Session{}, fmt.Errorf("checkout session missing redirect url")
	}
	return session, nil
}
