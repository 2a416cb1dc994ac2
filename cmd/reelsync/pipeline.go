package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/export"
	"reelsync/internal/firstworld"
	"reelsync/internal/imdb"
	"reelsync/internal/logging"
	"reelsync/internal/store"
	"reelsync/internal/sync"
)

// pipeline bundles the shared dependencies of every update step so the sync
// command and the step commands drive identical code paths.
type pipeline struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

func newPipeline(ctx *commandContext) (*pipeline, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	st, err := ctx.openStore()
	if err != nil {
		return nil, err
	}
	return &pipeline{cfg: cfg, store: st, logger: logger}, nil
}

func (p *pipeline) close() {
	if err := p.store.Close(); err != nil {
		p.logger.Warn("close store", slog.Any("error", err))
	}
}

type titlesReport struct {
	CatalogTitles int
	Flagged       int
}

// refreshTitles downloads the bulk datasets, diffs them against the stored
// snapshot, and upserts every new or vote-grown title with its needs-update
// flag set.
func (p *pipeline) refreshTitles(ctx context.Context) (titlesReport, error) {
	var report titlesReport

	logger := p.logger.With(logging.FieldStep, "titles")
	logger.Info("downloading catalog datasets")

	incoming, err := catalog.New(p.cfg.Catalog).Fetch(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch catalog: %w", err)
	}
	report.CatalogTitles = len(incoming)

	persisted, err := p.store.AllTitles(ctx)
	if err != nil {
		return report, fmt.Errorf("load stored titles: %w", err)
	}

	changed := sync.Diff(incoming, persisted, p.cfg.Catalog.VoteIncreaseThreshold)
	report.Flagged = len(changed)
	logger.Info("catalog diff complete",
		"catalog_titles", len(incoming),
		"stored_titles", len(persisted),
		"flagged", len(changed))

	if err := p.store.UpsertTitles(ctx, changed); err != nil {
		return report, fmt.Errorf("persist titles: %w", err)
	}
	return report, nil
}

// classifyTitles labels unclassified titles by production country. A nil id
// slice means every title with no verdict yet.
func (p *pipeline) classifyTitles(ctx context.Context, titleIDs []int64) (firstworld.Report, error) {
	if p.cfg.OMDb.APIKey == "" {
		return firstworld.Report{}, errors.New("omdb api key not configured (set omdb.api_key or OMDB_API_KEY)")
	}

	client := firstworld.NewClient(p.cfg.OMDb)
	updater := firstworld.NewUpdater(
		p.store,
		client,
		p.cfg.OMDb.RequestDelayDuration(),
		p.logger.With(logging.FieldStep, "firstworld"),
	)
	return updater.Run(ctx, titleIDs)
}

// syncReviews fetches, filters, and persists reviews for flagged titles. A
// nil id slice means every title currently flagged.
func (p *pipeline) syncReviews(ctx context.Context, titleIDs []int64) (sync.Report, error) {
	logger := p.logger.With(logging.FieldStep, "reviews")

	client, err := imdb.NewClient(imdb.Config{
		BaseURL:        p.cfg.Reviews.GraphQLURL,
		UserAgent:      p.cfg.Reviews.UserAgent,
		TimeoutSeconds: p.cfg.Reviews.RequestTimeout,
	})
	if err != nil {
		return sync.Report{}, fmt.Errorf("build review client: %w", err)
	}

	session := sync.NewSession(client, sync.SessionConfig{
		RequestDelay:           p.cfg.Reviews.RequestDelayDuration(),
		RateLimitBaseWait:      p.cfg.Reviews.RateLimitBaseWaitDuration(),
		RateLimitMaxWait:       p.cfg.Reviews.RateLimitMaxWaitDuration(),
		MaxRateLimitRetries:    p.cfg.Reviews.MaxRateLimitRetries,
		MaxConsecutiveFailures: p.cfg.Reviews.MaxConsecutiveFailures,
	}, logger)

	orchestrator := sync.NewOrchestrator(
		p.store.SyncTitles(p.cfg.Reviews.RequireFirstWorld),
		p.store,
		session,
		sync.ReviewFilter{
			MinHelpfulVotes: p.cfg.Reviews.MinHelpfulVotes,
			MinReviewWords:  p.cfg.Reviews.MinReviewWords,
		},
		p.cfg.Store.BatchSize,
		p.cfg.Reviews.KeepPartialOnError,
		logger,
	)
	return orchestrator.Run(ctx, titleIDs)
}

// exportRatings writes the weighted rating table to the configured path.
// Relative paths land inside the data directory.
func (p *pipeline) exportRatings(ctx context.Context) (int, string, error) {
	target := p.cfg.Export.Path
	if !filepath.IsAbs(target) {
		target = filepath.Join(p.cfg.Paths.DataDir, target)
	}

	rows, err := export.WriteCSV(ctx, p.store, target)
	if err != nil {
		return 0, target, err
	}
	p.logger.Info("export written",
		logging.FieldStep, "export",
		"path", target,
		"rows", rows)
	return rows, target, nil
}

// refreshRatings recomputes the weighted rating aggregates.
func (p *pipeline) refreshRatings(ctx context.Context) (int64, error) {
	refreshed, err := p.store.RefreshWeightedRatings(ctx)
	if err != nil {
		return 0, err
	}
	p.logger.Info("weighted ratings refreshed",
		logging.FieldStep, "ratings",
		"titles", refreshed)
	return refreshed, nil
}
