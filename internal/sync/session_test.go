package sync_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"reelsync/internal/imdb"
	"reelsync/internal/media"
	"reelsync/internal/sync"
)

// scriptedFetcher replays a fixed sequence of page results.
type scriptedFetcher struct {
	script  []scriptStep
	calls   int
	cursors []string
}

type scriptStep struct {
	page *imdb.Page
	err  error
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ string, cursor string) (*imdb.Page, error) {
	f.cursors = append(f.cursors, cursor)
	if f.calls >= len(f.script) {
		return nil, fmt.Errorf("unexpected call %d", f.calls)
	}
	step := f.script[f.calls]
	f.calls++
	return step.page, step.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func page(reviews int, hasNext bool, cursor string) *imdb.Page {
	p := &imdb.Page{HasNextPage: hasNext, EndCursor: cursor}
	rating := 7
	for i := 0; i < reviews; i++ {
		p.Reviews = append(p.Reviews, media.Review{
			ReviewID: int64(len(p.Reviews) + 1),
			TitleID:  100,
			Rating:   &rating,
		})
	}
	return p
}

func newTestSession(fetcher sync.PageFetcher, cfg sync.SessionConfig, slept *[]time.Duration) *sync.Session {
	return sync.NewSession(fetcher, cfg, testLogger(),
		sync.WithSessionSleeper(func(ctx context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return ctx.Err()
		}))
}

func baseConfig() sync.SessionConfig {
	return sync.SessionConfig{
		RateLimitBaseWait:      60 * time.Second,
		RateLimitMaxWait:       300 * time.Second,
		MaxRateLimitRetries:    3,
		MaxConsecutiveFailures: 3,
	}
}

func TestSessionPaginationTermination(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{page: page(2, true, "c1")},
		{page: page(2, true, "c2")},
		{page: page(2, true, "c3")},
		{page: page(1, false, "")},
	}}

	result, err := newTestSession(fetcher, baseConfig(), nil).Fetch(context.Background(), 100)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Pages != 4 || len(result.Reviews) != 7 {
		t.Fatalf("got %d pages / %d reviews, want 4 / 7", result.Pages, len(result.Reviews))
	}
	if result.Abandoned {
		t.Fatal("normal exhaustion must not be marked abandoned")
	}
	// Pages must be requested in cursor order.
	want := []string{"", "c1", "c2", "c3"}
	for i, cursor := range fetcher.cursors {
		if cursor != want[i] {
			t.Fatalf("cursor %d = %q, want %q", i, cursor, want[i])
		}
	}
}

func TestSessionFailureBudget(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{page: page(3, true, "c1")},
		{err: imdb.ErrTransient},
		{err: imdb.ErrTransient},
		{err: imdb.ErrTransient},
	}}

	result, err := newTestSession(fetcher, baseConfig(), nil).Fetch(context.Background(), 100)
	if err != nil {
		t.Fatalf("budget exhaustion must not raise, got %v", err)
	}
	if !result.Abandoned {
		t.Fatal("expected abandoned result")
	}
	// Reviews accumulated before the failures are kept.
	if len(result.Reviews) != 3 {
		t.Fatalf("got %d reviews, want 3", len(result.Reviews))
	}
}

func TestSessionFailureBudgetResetsOnSuccess(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{err: imdb.ErrTransient},
		{err: imdb.ErrTransient},
		{page: page(1, true, "c1")},
		{err: imdb.ErrTransient},
		{err: imdb.ErrTransient},
		{page: page(1, false, "")},
	}}

	result, err := newTestSession(fetcher, baseConfig(), nil).Fetch(context.Background(), 100)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Abandoned || len(result.Reviews) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSessionRateLimitBackoffSequence(t *testing.T) {
	// Six rate-limit responses with a generous retry budget: the waits must
	// follow min(base*attempt, max).
	script := make([]scriptStep, 0, 7)
	for i := 0; i < 6; i++ {
		script = append(script, scriptStep{err: &imdb.RateLimitError{}})
	}
	script = append(script, scriptStep{page: page(1, false, "")})
	fetcher := &scriptedFetcher{script: script}

	cfg := baseConfig()
	cfg.MaxRateLimitRetries = 10
	var slept []time.Duration
	if _, err := newTestSession(fetcher, cfg, &slept).Fetch(context.Background(), 100); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	want := []time.Duration{60, 120, 180, 240, 300, 300}
	if len(slept) != len(want) {
		t.Fatalf("got %d waits, want %d: %v", len(slept), len(want), slept)
	}
	for i, d := range slept {
		if d != want[i]*time.Second {
			t.Fatalf("wait %d = %v, want %v", i+1, d, want[i]*time.Second)
		}
	}
}

func TestSessionRateLimitRetriesSameCursor(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{page: page(1, true, "c1")},
		{err: &imdb.RateLimitError{}},
		{page: page(1, false, "")},
	}}

	if _, err := newTestSession(fetcher, baseConfig(), nil).Fetch(context.Background(), 100); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	want := []string{"", "c1", "c1"}
	for i, cursor := range fetcher.cursors {
		if cursor != want[i] {
			t.Fatalf("cursor %d = %q, want %q", i, cursor, want[i])
		}
	}
}

func TestSessionRateLimitBudgetExhaustionIsFatal(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{err: &imdb.RateLimitError{}},
		{err: &imdb.RateLimitError{}},
		{err: &imdb.RateLimitError{}},
		{err: &imdb.RateLimitError{}},
	}}

	cfg := baseConfig()
	cfg.MaxRateLimitRetries = 3
	_, err := newTestSession(fetcher, cfg, nil).Fetch(context.Background(), 100)
	if !errors.Is(err, imdb.ErrRateLimited) {
		t.Fatalf("expected fatal rate-limit error, got %v", err)
	}
	if fetcher.calls != 4 {
		t.Fatalf("fetcher called %d times, want 4", fetcher.calls)
	}
}

func TestSessionFatalErrorReturnsPartialResult(t *testing.T) {
	fetcher := &scriptedFetcher{script: []scriptStep{
		{page: page(2, true, "c1")},
		{err: fmt.Errorf("%w: shape changed", imdb.ErrValidation)},
	}}

	result, err := newTestSession(fetcher, baseConfig(), nil).Fetch(context.Background(), 100)
	if !errors.Is(err, imdb.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(result.Reviews) != 2 {
		t.Fatalf("partial result lost: %+v", result)
	}
}

// cancellingFetcher cancels the run context while serving the first page.
type cancellingFetcher struct {
	cancel context.CancelFunc
	calls  int
}

func (f *cancellingFetcher) FetchPage(context.Context, string, string) (*imdb.Page, error) {
	f.calls++
	f.cancel()
	return page(1, true, "c1"), nil
}

func TestSessionCancellationBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &cancellingFetcher{cancel: cancel}
	session := sync.NewSession(fetcher, baseConfig(), testLogger(),
		sync.WithSessionSleeper(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))

	result, err := session.Fetch(ctx, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher called %d times after cancellation, want 1", fetcher.calls)
	}
	// The partial page stays with the result; the caller decides its fate.
	if len(result.Reviews) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRateLimitWait(t *testing.T) {
	base, max := 60*time.Second, 300*time.Second
	want := []time.Duration{60, 120, 180, 240, 300, 300}
	for attempt := 1; attempt <= 6; attempt++ {
		if got := sync.RateLimitWait(base, max, attempt); got != want[attempt-1]*time.Second {
			t.Fatalf("attempt %d wait = %v, want %v", attempt, got, want[attempt-1]*time.Second)
		}
	}
}
