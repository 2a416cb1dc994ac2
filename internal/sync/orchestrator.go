package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reelsync/internal/media"
)

// TitleStore is the persisted-title boundary the orchestrator needs.
type TitleStore interface {
	TitlesNeedingUpdate(ctx context.Context) ([]int64, error)
	ClearNeedsUpdate(ctx context.Context, id int64) error
}

// ReviewStore is the persisted-review boundary. UpsertReviews must be
// idempotent on review id.
type ReviewStore interface {
	UpsertReviews(ctx context.Context, batch []media.Review) error
}

// Report summarizes one orchestrator run.
type Report struct {
	Processed int
	// Updated counts titles for which at least one review was persisted.
	Updated int
	// Skipped counts titles that completed without any accepted reviews.
	Skipped int
	Errored int
}

// ShouldWarn reports the suspicious outcome of processing titles without
// updating any of them.
func (r Report) ShouldWarn() bool {
	return r.Processed > 0 && r.Updated == 0
}

// Orchestrator drives the review synchronization loop: fetch session,
// filter, batched persistence, and flag maintenance. It performs no retries
// of its own; resilience lives in the session and the source client. One
// failing title never blocks the rest of the batch, but a store failure
// aborts the whole run.
type Orchestrator struct {
	titles  TitleStore
	reviews ReviewStore
	session *Session
	filter  ReviewFilter

	batchSize int
	// keepPartial persists reviews accumulated before a fatal mid-fetch
	// error instead of discarding them with the title.
	keepPartial bool

	logger *slog.Logger
}

// NewOrchestrator constructs the review sync driver.
func NewOrchestrator(
	titles TitleStore,
	reviews ReviewStore,
	session *Session,
	filter ReviewFilter,
	batchSize int,
	keepPartial bool,
	logger *slog.Logger,
) *Orchestrator {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Orchestrator{
		titles:      titles,
		reviews:     reviews,
		session:     session,
		filter:      filter,
		batchSize:   batchSize,
		keepPartial: keepPartial,
		logger:      logger,
	}
}

// Run synchronizes reviews for the supplied title ids. A nil slice means
// "every title flagged as needing update". The run stops early only on
// cancellation or a store failure; per-title source failures are isolated,
// logged, and counted. The returned report is valid even when err != nil.
func (o *Orchestrator) Run(ctx context.Context, titleIDs []int64) (Report, error) {
	var report Report

	if titleIDs == nil {
		ids, err := o.titles.TitlesNeedingUpdate(ctx)
		if err != nil {
			return report, fmt.Errorf("list titles needing update: %w", err)
		}
		titleIDs = ids
	}

	o.logger.Info("starting review sync", slog.Int("titles", len(titleIDs)))

	for i, titleID := range titleIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		titleCode := media.FormatTitleCode(titleID)
		o.logger.Info("processing title",
			slog.String("title", titleCode),
			slog.Int("position", i+1),
			slog.Int("total", len(titleIDs)))
		report.Processed++

		result, fetchErr := o.session.Fetch(ctx, titleID)
		if fetchErr != nil {
			if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
				// Fast stop: the partially fetched title stays flagged.
				report.Processed--
				return report, fetchErr
			}
			report.Errored++
			o.logger.Error("title fetch failed",
				slog.String("title", titleCode),
				slog.Any("error", fetchErr))
			if o.keepPartial {
				if partial := o.filter.Apply(result.Reviews); len(partial) > 0 {
					if err := o.persistReviews(ctx, partial); err != nil {
						return report, err
					}
				}
			}
			// The flag stays set so the next run retries this title.
			continue
		}

		accepted := o.filter.Apply(result.Reviews)
		o.logger.Debug("filtered reviews",
			slog.String("title", titleCode),
			slog.Int("fetched", len(result.Reviews)),
			slog.Int("accepted", len(accepted)))

		if len(accepted) > 0 {
			if err := o.persistReviews(ctx, accepted); err != nil {
				return report, err
			}
			report.Updated++
		} else {
			// No reviews available is a terminal state for this title, not
			// a retryable one.
			report.Skipped++
		}

		if err := o.titles.ClearNeedsUpdate(ctx, titleID); err != nil {
			return report, fmt.Errorf("clear needs-update flag for %s: %w", titleCode, err)
		}
	}

	o.logger.Info("review sync finished",
		slog.Int("processed", report.Processed),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("errored", report.Errored))
	if report.ShouldWarn() {
		o.logger.Warn("no titles were updated despite pending work")
	}
	return report, nil
}

// persistReviews writes reviews in fixed-size batches. Any store failure is
// fatal for the run.
func (o *Orchestrator) persistReviews(ctx context.Context, reviews []media.Review) error {
	for start := 0; start < len(reviews); start += o.batchSize {
		end := start + o.batchSize
		if end > len(reviews) {
			end = len(reviews)
		}
		if err := o.reviews.UpsertReviews(ctx, reviews[start:end]); err != nil {
			return fmt.Errorf("upsert review batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}
