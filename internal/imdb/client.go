package imdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GraphQL persisted-query protocol values. These mirror what the IMDb web
// client sends and are fixed, not configurable.
const (
	operationName      = "TitleReviewsRefine"
	persistedQueryHash = "fb58a77d474033025bf28e1fe68f9b998111d3df58e08cd8405bd9265b1a9aff"
	pageSize           = 50
	locale             = "en-US"
	sortBy             = "HELPFULNESS_SCORE"
	sortOrder          = "DESC"
)

const (
	defaultHTTPTimeout       = 10 * time.Second
	defaultTransportAttempts = 3
	defaultTransportBase     = 1 * time.Second
	defaultTransportMax      = 10 * time.Second
)

var clientHeaders = map[string]string{
	"accept":                "application/graphql+json, application/json",
	"content-type":          "application/json",
	"x-imdb-client-name":    "imdb-web-next-localized",
	"x-imdb-user-country":   "US",
	"x-imdb-user-language":  "en-US",
}

// Config captures the runtime settings required to talk to the review source.
type Config struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
}

// Client fetches review pages from the IMDb GraphQL endpoint.
//
// Connection-level failures (timeouts, refused connections) are retried a
// small number of times with exponential backoff before surfacing as
// ErrNetwork. Rate-limit and server-side responses are never retried here;
// they surface as ErrRateLimited and ErrTransient so the fetch session can
// apply its own policy.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTransportRetries overrides the connection-level retry budget.
func WithTransportRetries(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithTransportBackoff overrides the connection-level retry delays.
func WithTransportBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a review source client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return nil, errors.New("imdb base url required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultTransportAttempts,
		retryBaseDelay:   defaultTransportBase,
		retryMaxDelay:    defaultTransportMax,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchPage retrieves one page of reviews for the supplied title code starting
// at the given cursor. An empty cursor requests the first page.
func (c *Client) FetchPage(ctx context.Context, titleCode, cursor string) (*Page, error) {
	titleCode = strings.TrimSpace(titleCode)
	if titleCode == "" {
		return nil, fmt.Errorf("%w: title code required", ErrValidation)
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := c.fetchPageOnce(ctx, titleCode, cursor)
		if err == nil {
			return page, nil
		}
		if !isConnectionError(err) {
			return nil, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.backoffDelay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("%w: %s: failed after %d attempts: %v", ErrNetwork, titleCode, attempts, lastErr)
}

func (c *Client) fetchPageOnce(ctx context.Context, titleCode, cursor string) (*Page, error) {
	endpoint, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrValidation, err)
	}

	variables := fmt.Sprintf(
		`{"after":%q,"const":%q,"filter":{},"first":%d,"locale":%q,"sort":{"by":%q,"order":%q}}`,
		cursor, titleCode, pageSize, locale, sortBy, sortOrder,
	)
	extensions := fmt.Sprintf(
		`{"persistedQuery":{"sha256Hash":%q,"version":1}}`,
		persistedQueryHash,
	)
	params := url.Values{}
	params.Set("operationName", operationName)
	params.Set("variables", variables)
	params.Set("extensions", extensions)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrValidation, err)
	}
	for key, value := range clientHeaders {
		req.Header.Set(key, value)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("user-agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s: http %d", ErrTransient, titleCode, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: http %d", ErrNetwork, titleCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload graphqlResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: decode response: %v", ErrValidation, titleCode, err)
	}
	if payload.Data == nil {
		if len(payload.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s: graphql error: %s", ErrValidation, titleCode, payload.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: %s: no data in response", ErrValidation, titleCode)
	}
	if payload.Data.Title == nil || payload.Data.Title.Reviews == nil {
		return nil, fmt.Errorf("%w: %s: unexpected response structure", ErrValidation, titleCode)
	}

	return extractPage(payload.Data.Title.Reviews, titleCode)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrNetwork) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

// backoffDelay doubles per attempt: base, base*2, base*4, capped at max.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
