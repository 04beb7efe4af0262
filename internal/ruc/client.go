package ruc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/panafact/panafact/internal/platform/httpx"
)

// Taxpayer is the public registry record for one RUC.
type Taxpayer struct {
	RUC     string `json:"ruc"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// Client wraps interactions with the tax-ID lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Lookup fetches the registry record for the given RUC. An unknown RUC
// yields httpx.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, id string) (Taxpayer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/ruc/%s", c.baseURL, url.PathEscape(id)), nil)
	if err != nil {
		return Taxpayer{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Taxpayer{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return Taxpayer{}, httpx.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return Taxpayer{}, fmt.Errorf("ruc lookup returned status %d", resp.StatusCode)
	}

	var taxpayer Taxpayer
	if err := json.NewDecoder(resp.Body).Decode(&taxpayer); err != nil {
		return Taxpayer{}, fmt.Errorf("decode ruc lookup response: %w", err)
	}
	if taxpayer.RUC == "" {
		taxpayer.RUC = id
	}
	return taxpayer, nil
}
