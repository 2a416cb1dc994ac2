package firstworld

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"reelsync/internal/logging"
	"reelsync/internal/media"
)

// CountrySource provides the production country list for a title code.
type CountrySource interface {
	Countries(ctx context.Context, titleCode string) (string, error)
}

// TitleStore is the persistence boundary the updater needs.
type TitleStore interface {
	TitlesMissingFirstWorld(ctx context.Context) ([]int64, error)
	SetFirstWorld(ctx context.Context, id int64, firstWorld bool) error
}

// Report summarizes one classification run.
type Report struct {
	Processed int
	Updated   int
	NoData    int
	Errored   int
}

// Updater classifies unlabeled titles by production country.
type Updater struct {
	titles  TitleStore
	source  CountrySource
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewUpdater wires a classification run. requestDelay paces lookups; zero
// disables pacing.
func NewUpdater(titles TitleStore, source CountrySource, requestDelay time.Duration, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Updater{
		titles:  titles,
		source:  source,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Run classifies the given titles, or every unclassified title when titleIDs
// is nil. Lookup failures skip the title; store failures abort the run.
func (u *Updater) Run(ctx context.Context, titleIDs []int64) (Report, error) {
	var report Report

	if titleIDs == nil {
		ids, err := u.titles.TitlesMissingFirstWorld(ctx)
		if err != nil {
			return report, fmt.Errorf("list unclassified titles: %w", err)
		}
		titleIDs = ids
	}

	u.logger.Info("starting first-world classification", "titles", len(titleIDs))

	for _, titleID := range titleIDs {
		if err := u.limiter.Wait(ctx); err != nil {
			return report, err
		}
		report.Processed++

		titleCode := media.FormatTitleCode(titleID)
		countries, err := u.source.Countries(ctx, titleCode)
		if err != nil {
			if ctx.Err() != nil {
				report.Processed--
				return report, ctx.Err()
			}
			report.Errored++
			u.logger.Warn("country lookup failed",
				logging.FieldTitle, titleCode,
				slog.Any("error", err))
			continue
		}

		verdict := Classify(countries)
		if verdict == nil {
			report.NoData++
			u.logger.Warn("no country data", logging.FieldTitle, titleCode)
			continue
		}

		if err := u.titles.SetFirstWorld(ctx, titleID, *verdict); err != nil {
			return report, fmt.Errorf("record classification for %s: %w", titleCode, err)
		}
		report.Updated++
		u.logger.Debug("classified title",
			logging.FieldTitle, titleCode,
			"first_world", *verdict)
	}

	u.logger.Info("first-world classification finished",
		"updated", report.Updated,
		"no_data", report.NoData,
		"errored", report.Errored)
	return report, nil
}
