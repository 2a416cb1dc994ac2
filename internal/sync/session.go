package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"reelsync/internal/imdb"
	"reelsync/internal/media"
)

// PageFetcher is the remote review source boundary consumed by a fetch
// session. The concrete implementation lives in the imdb package.
type PageFetcher interface {
	FetchPage(ctx context.Context, titleCode, cursor string) (*imdb.Page, error)
}

// SessionConfig tunes per-title fetch behavior.
type SessionConfig struct {
	// RequestDelay paces successive page fetches. Courtesy toward the
	// shared source, not a failure backoff.
	RequestDelay time.Duration

	RateLimitBaseWait   time.Duration
	RateLimitMaxWait    time.Duration
	MaxRateLimitRetries int

	// MaxConsecutiveFailures is the transient-failure budget; reaching it
	// abandons the title instead of looping forever.
	MaxConsecutiveFailures int
}

// FetchResult carries the reviews accumulated by a session. On a fatal error
// the result still holds everything gathered before the failure so the caller
// can decide whether to keep the partial set.
type FetchResult struct {
	Reviews []media.Review
	Pages   int
	Skipped int
	// Abandoned is true when the transient-failure budget was exhausted
	// and remaining pages were given up on.
	Abandoned bool
}

// Session drives the paginated retrieval of one title's reviews: repeated
// page fetches in cursor order until pagination exhausts, the failure budget
// is spent, or a fatal error surfaces.
//
// A Session is owned by the loop processing one title and must not be shared.
type Session struct {
	fetcher PageFetcher
	cfg     SessionConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	sleeper func(context.Context, time.Duration) error
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithSessionSleeper overrides how backoff sleeps are performed (useful in tests).
func WithSessionSleeper(sleeper func(context.Context, time.Duration) error) SessionOption {
	return func(s *Session) {
		s.sleeper = sleeper
	}
}

// NewSession constructs a fetch session factory bound to the given source.
func NewSession(fetcher PageFetcher, cfg SessionConfig, logger *slog.Logger, opts ...SessionOption) *Session {
	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	session := &Session{
		fetcher: fetcher,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(session)
	}
	return session
}

// RateLimitWait computes the backoff before rate-limit retry number attempt
// (1-based): min(base*attempt, max).
func RateLimitWait(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := base * time.Duration(attempt)
	if max > 0 && wait > max {
		return max
	}
	return wait
}

// Fetch retrieves all review pages for the given title. Pages are fetched
// strictly in cursor order. The returned error is nil on normal exhaustion
// and on abandonment; fatal source errors are returned alongside the partial
// result accumulated so far.
func (s *Session) Fetch(ctx context.Context, titleID int64) (*FetchResult, error) {
	titleCode := media.FormatTitleCode(titleID)
	result := &FetchResult{}

	cursor := ""
	hasNextPage := true
	consecutiveFailures := 0
	rateLimitAttempts := 0

	for hasNextPage {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		page, err := s.fetcher.FetchPage(ctx, titleCode, cursor)
		switch {
		case err == nil:
			consecutiveFailures = 0
			result.Reviews = append(result.Reviews, page.Reviews...)
			result.Pages++
			result.Skipped += page.Skipped
			cursor = page.EndCursor
			hasNextPage = page.HasNextPage
			s.logger.Debug("fetched review page",
				slog.String("title", titleCode),
				slog.Int("page", result.Pages),
				slog.Int("reviews", len(result.Reviews)))

		case errors.Is(err, imdb.ErrRateLimited):
			// Does not consume the transient budget; same cursor is retried.
			rateLimitAttempts++
			if rateLimitAttempts > s.cfg.MaxRateLimitRetries {
				return result, fmt.Errorf("%s: rate limit retries exhausted after %d attempts: %w",
					titleCode, s.cfg.MaxRateLimitRetries, err)
			}
			wait := RateLimitWait(s.cfg.RateLimitBaseWait, s.cfg.RateLimitMaxWait, rateLimitAttempts)
			s.logger.Info("rate limited, backing off",
				slog.String("title", titleCode),
				slog.Duration("wait", wait),
				slog.Int("attempt", rateLimitAttempts))
			if err := s.sleep(ctx, wait); err != nil {
				return result, err
			}

		case errors.Is(err, imdb.ErrTransient):
			consecutiveFailures++
			if consecutiveFailures >= s.cfg.MaxConsecutiveFailures {
				s.logger.Warn("abandoning title after consecutive failures",
					slog.String("title", titleCode),
					slog.Int("failures", consecutiveFailures))
				result.Abandoned = true
				hasNextPage = false
			}

		default:
			// Validation and network failures are fatal for this title.
			return result, err
		}
	}

	return result, nil
}

func (s *Session) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if s.sleeper != nil {
		return s.sleeper(ctx, delay)
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
