package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelsync/internal/logging"
	"reelsync/internal/runlock"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		skipTitles  bool
		skipReviews bool
		skipRatings bool
		skipExport  bool
		titleFlags  []string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the full update pipeline",
		Long: `Run the complete update pipeline: refresh titles from the bulk
datasets, classify new titles by production country, scrape reviews for
flagged titles, recompute weighted ratings, and export the results.

Skipping the titles step also skips country classification.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			titleIDs, err := parseTitleCodes(titleFlags)
			if err != nil {
				return err
			}

			pipe, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer pipe.close()

			lock, err := runlock.New(pipe.cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			runID := uuid.NewString()
			logger := pipe.logger.With(logging.FieldRunID, runID)
			pipe.logger = logger
			logger.Info("starting update pipeline")

			var rows [][2]string
			addRow := func(step, outcome string) {
				rows = append(rows, [2]string{step, outcome})
			}

			if skipTitles {
				addRow("titles", "skipped")
				addRow("firstworld", "skipped")
			} else {
				titlesReport, err := pipe.refreshTitles(runCtx)
				if err != nil {
					return fmt.Errorf("titles step: %w", err)
				}
				addRow("titles", fmt.Sprintf("%s catalog titles, %s flagged",
					formatCount(titlesReport.CatalogTitles), formatCount(titlesReport.Flagged)))

				fwReport, err := pipe.classifyTitles(runCtx, nil)
				if err != nil {
					return fmt.Errorf("firstworld step: %w", err)
				}
				addRow("firstworld", fmt.Sprintf("%s classified, %s without data, %s errored",
					formatCount(fwReport.Updated), formatCount(fwReport.NoData), formatCount(fwReport.Errored)))
			}

			if skipReviews {
				addRow("reviews", "skipped")
			} else {
				var ids []int64
				if len(titleIDs) > 0 {
					ids = titleIDs
				}
				reviewReport, err := pipe.syncReviews(runCtx, ids)
				if err != nil {
					return fmt.Errorf("reviews step: %w", err)
				}
				addRow("reviews", fmt.Sprintf("%s processed, %s updated, %s skipped, %s errored",
					formatCount(reviewReport.Processed), formatCount(reviewReport.Updated),
					formatCount(reviewReport.Skipped), formatCount(reviewReport.Errored)))
				if reviewReport.ShouldWarn() {
					logger.Warn("review sync processed titles but updated none")
				}
			}

			if skipRatings {
				addRow("ratings", "skipped")
			} else {
				refreshed, err := pipe.refreshRatings(runCtx)
				if err != nil {
					return fmt.Errorf("ratings step: %w", err)
				}
				addRow("ratings", fmt.Sprintf("%s titles refreshed", formatCount(int(refreshed))))
			}

			if skipExport {
				addRow("export", "skipped")
			} else {
				exported, path, err := pipe.exportRatings(runCtx)
				if err != nil {
					return fmt.Errorf("export step: %w", err)
				}
				addRow("export", fmt.Sprintf("%s rows to %s", formatCount(exported), path))
			}

			logger.Info("update pipeline finished")
			fmt.Fprintln(cmd.OutOrStdout(), renderPairs("Step", "Outcome", false, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTitles, "skip-titles", false, "Skip the titles refresh (also skips country classification)")
	cmd.Flags().BoolVar(&skipReviews, "skip-reviews", false, "Skip review scraping")
	cmd.Flags().BoolVar(&skipRatings, "skip-ratings", false, "Skip the weighted ratings refresh")
	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "Skip the spreadsheet export")
	cmd.Flags().StringArrayVar(&titleFlags, "title", nil, "Limit review scraping to a title code (repeatable, e.g. tt0111161)")
	return cmd
}
