package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"reelsync/internal/config"
	"reelsync/internal/media"
)

// Client downloads and joins the bulk title datasets.
type Client struct {
	cfg        config.Catalog
	httpClient *http.Client
}

// Option customizes the catalog client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for dataset downloads.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New builds a catalog client from configuration.
func New(cfg config.Catalog, opts ...Option) *Client {
	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch downloads both datasets and returns the joined titles that clear the
// vote floor. Ratings come first because that file is far smaller; basics
// rows without a qualifying rating are discarded while streaming.
func (c *Client) Fetch(ctx context.Context) ([]media.Title, error) {
	ratings, err := c.fetchRatings(ctx)
	if err != nil {
		return nil, err
	}
	return c.fetchBasics(ctx, ratings)
}

func (c *Client) fetchRatings(ctx context.Context) (map[int64]ratingRecord, error) {
	body, err := c.download(ctx, c.cfg.RatingsURL)
	if err != nil {
		return nil, fmt.Errorf("download ratings dataset: %w", err)
	}
	defer body.Close()

	ratings, err := parseRatings(body, c.cfg.MinVotes)
	if err != nil {
		return nil, fmt.Errorf("parse ratings dataset: %w", err)
	}
	return ratings, nil
}

func (c *Client) fetchBasics(ctx context.Context, ratings map[int64]ratingRecord) ([]media.Title, error) {
	body, err := c.download(ctx, c.cfg.BasicsURL)
	if err != nil {
		return nil, fmt.Errorf("download basics dataset: %w", err)
	}
	defer body.Close()

	titles, err := parseBasics(body, c.cfg.TitleTypes, ratings)
	if err != nil {
		return nil, fmt.Errorf("parse basics dataset: %w", err)
	}
	return titles, nil
}

func (c *Client) download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("open gzip stream for %s: %w", url, err)
	}
	return &datasetStream{Reader: gz, body: resp.Body}, nil
}

// datasetStream closes the HTTP body together with the gzip stream.
type datasetStream struct {
	*gzip.Reader
	body io.Closer
}

func (s *datasetStream) Close() error {
	err := s.Reader.Close()
	if closeErr := s.body.Close(); err == nil {
		err = closeErr
	}
	return err
}
