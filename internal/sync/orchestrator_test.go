package sync_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"reelsync/internal/imdb"
	"reelsync/internal/media"
	"reelsync/internal/sync"
)

type fakeTitleStore struct {
	pending []int64
	cleared []int64
	listErr error
	markErr error
}

func (s *fakeTitleStore) TitlesNeedingUpdate(context.Context) ([]int64, error) {
	return s.pending, s.listErr
}

func (s *fakeTitleStore) ClearNeedsUpdate(_ context.Context, id int64) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.cleared = append(s.cleared, id)
	return nil
}

type fakeReviewStore struct {
	batches [][]media.Review
	err     error
}

func (s *fakeReviewStore) UpsertReviews(_ context.Context, batch []media.Review) error {
	if s.err != nil {
		return s.err
	}
	copied := make([]media.Review, len(batch))
	copy(copied, batch)
	s.batches = append(s.batches, copied)
	return nil
}

func (s *fakeReviewStore) total() int {
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

// perTitleFetcher scripts one page sequence per title id.
type perTitleFetcher struct {
	pages map[string][]scriptStep
	seen  map[string]int
}

func (f *perTitleFetcher) FetchPage(_ context.Context, titleCode, _ string) (*imdb.Page, error) {
	if f.seen == nil {
		f.seen = make(map[string]int)
	}
	steps := f.pages[titleCode]
	idx := f.seen[titleCode]
	f.seen[titleCode]++
	if idx >= len(steps) {
		return nil, fmt.Errorf("unexpected page %d for %s", idx, titleCode)
	}
	step := steps[idx]
	return step.page, step.err
}

func filteredPage(passing, failing int, hasNext bool, cursor string) *imdb.Page {
	p := &imdb.Page{HasNextPage: hasNext, EndCursor: cursor}
	rating := 7
	id := int64(1)
	for i := 0; i < passing; i++ {
		p.Reviews = append(p.Reviews, media.Review{
			ReviewID: id, TitleID: 100, Rating: &rating, NumHelpful: 5, NumWords: 200,
		})
		id++
	}
	for i := 0; i < failing; i++ {
		p.Reviews = append(p.Reviews, media.Review{
			ReviewID: id, TitleID: 100, Rating: nil, NumHelpful: 5, NumWords: 200,
		})
		id++
	}
	return p
}

func buildOrchestrator(
	fetcher sync.PageFetcher,
	titles *fakeTitleStore,
	reviews *fakeReviewStore,
	batchSize int,
	keepPartial bool,
) *sync.Orchestrator {
	session := sync.NewSession(fetcher, baseConfig(), testLogger())
	filter := sync.ReviewFilter{MinHelpfulVotes: 1, MinReviewWords: 100}
	return sync.NewOrchestrator(titles, reviews, session, filter, batchSize, keepPartial, testLogger())
}

func TestOrchestratorEndToEnd(t *testing.T) {
	// One title, one page of two reviews, one passing the filter: exactly one
	// review persisted and the flag cleared.
	fetcher := &perTitleFetcher{pages: map[string][]scriptStep{
		"tt0000100": {{page: filteredPage(1, 1, false, "")}},
	}}
	titles := &fakeTitleStore{pending: []int64{100}}
	reviews := &fakeReviewStore{}

	report, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reviews.total() != 1 {
		t.Fatalf("persisted %d reviews, want 1", reviews.total())
	}
	if len(titles.cleared) != 1 || titles.cleared[0] != 100 {
		t.Fatalf("needs-update not cleared: %v", titles.cleared)
	}
	if report.Processed != 1 || report.Updated != 1 || report.Skipped != 0 || report.Errored != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestOrchestratorZeroReviewsStillClearsFlag(t *testing.T) {
	fetcher := &perTitleFetcher{pages: map[string][]scriptStep{
		"tt0000100": {{page: filteredPage(0, 0, false, "")}},
	}}
	titles := &fakeTitleStore{pending: []int64{100}}
	reviews := &fakeReviewStore{}

	report, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(titles.cleared) != 1 {
		t.Fatal("expected flag cleared even with zero reviews")
	}
	if report.Skipped != 1 || report.Updated != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !report.ShouldWarn() {
		t.Fatal("expected zero-updates warning condition")
	}
}

func TestOrchestratorIsolatesPerTitleFailures(t *testing.T) {
	fetcher := &perTitleFetcher{pages: map[string][]scriptStep{
		"tt0000100": {{err: fmt.Errorf("%w: shape changed", imdb.ErrValidation)}},
		"tt0000200": {{page: filteredPage(2, 0, false, "")}},
	}}
	titles := &fakeTitleStore{}
	reviews := &fakeReviewStore{}

	report, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).
		Run(context.Background(), []int64{100, 200})
	if err != nil {
		t.Fatalf("one bad title must not abort the run: %v", err)
	}
	if report.Errored != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	// The failed title keeps its flag; the good one is cleared.
	if len(titles.cleared) != 1 || titles.cleared[0] != 200 {
		t.Fatalf("unexpected cleared set: %v", titles.cleared)
	}
}

func TestOrchestratorStoreFailureAbortsRun(t *testing.T) {
	fetcher := &perTitleFetcher{pages: map[string][]scriptStep{
		"tt0000100": {{page: filteredPage(1, 0, false, "")}},
		"tt0000200": {{page: filteredPage(1, 0, false, "")}},
	}}
	titles := &fakeTitleStore{}
	storeErr := errors.New("disk full")
	reviews := &fakeReviewStore{err: storeErr}

	_, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).
		Run(context.Background(), []int64{100, 200})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
	if len(titles.cleared) != 0 {
		t.Fatal("flag must not be cleared after failed persistence")
	}
}

func TestOrchestratorBatchesUpserts(t *testing.T) {
	fetcher := &perTitleFetcher{pages: map[string][]scriptStep{
		"tt0000100": {{page: filteredPage(5, 0, false, "")}},
	}}
	titles := &fakeTitleStore{}
	reviews := &fakeReviewStore{}

	if _, err := buildOrchestrator(fetcher, titles, reviews, 2, false).
		Run(context.Background(), []int64{100}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// 5 reviews at batch size 2: batches of 2, 2, 1.
	if len(reviews.batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(reviews.batches))
	}
	if len(reviews.batches[2]) != 1 {
		t.Fatalf("last batch size = %d, want 1", len(reviews.batches[2]))
	}
}

func TestOrchestratorKeepPartialOnFatalError(t *testing.T) {
	script := []scriptStep{
		{page: filteredPage(2, 0, true, "c1")},
		{err: fmt.Errorf("%w: timeout", imdb.ErrNetwork)},
	}

	t.Run("discard by default", func(t *testing.T) {
		fetcher := &perTitleFetcher{pages: map[string][]scriptStep{"tt0000100": script}}
		titles := &fakeTitleStore{}
		reviews := &fakeReviewStore{}
		report, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).
			Run(context.Background(), []int64{100})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if reviews.total() != 0 {
			t.Fatalf("partial reviews persisted without keep_partial: %d", reviews.total())
		}
		if report.Errored != 1 {
			t.Fatalf("unexpected report: %+v", report)
		}
	})

	t.Run("keep when configured", func(t *testing.T) {
		fetcher := &perTitleFetcher{pages: map[string][]scriptStep{"tt0000100": script}}
		titles := &fakeTitleStore{}
		reviews := &fakeReviewStore{}
		if _, err := buildOrchestrator(fetcher, titles, reviews, 1000, true).
			Run(context.Background(), []int64{100}); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if reviews.total() != 2 {
			t.Fatalf("partial reviews lost: %d", reviews.total())
		}
		// Flag must remain set so the title is retried next run.
		if len(titles.cleared) != 0 {
			t.Fatal("flag cleared after fatal fetch error")
		}
	})
}

func TestOrchestratorCancellationLeavesFlagUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &cancellingFetcher{cancel: cancel}
	titles := &fakeTitleStore{}
	reviews := &fakeReviewStore{}

	_, err := buildOrchestrator(fetcher, titles, reviews, 1000, false).
		Run(ctx, []int64{100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(titles.cleared) != 0 {
		t.Fatal("cancelled title must stay flagged")
	}
}
