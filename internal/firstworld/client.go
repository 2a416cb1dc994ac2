package firstworld

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"reelsync/internal/config"
)

// ErrLookup marks a failed OMDb lookup. Lookups are skipped per title, never
// fatal for the run.
var ErrLookup = errors.New("omdb lookup failure")

// Client queries the OMDb API for title metadata.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes the OMDb client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for lookups.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds an OMDb client from configuration.
func NewClient(cfg config.OMDb, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Country  string `json:"Country"`
}

// Countries returns the comma-separated production country list for one
// title code. An empty string means the API has no country data.
func (c *Client) Countries(ctx context.Context, titleCode string) (string, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("i", titleCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrLookup, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", ErrLookup, titleCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch %s: unexpected status %d", ErrLookup, titleCode, resp.StatusCode)
	}

	var payload omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response for %s: %w", ErrLookup, titleCode, err)
	}
	if payload.Response == "False" {
		message := payload.Error
		if message == "" {
			message = "unknown error"
		}
		return "", fmt.Errorf("%w: %s: %s", ErrLookup, titleCode, message)
	}

	return payload.Country, nil
}
