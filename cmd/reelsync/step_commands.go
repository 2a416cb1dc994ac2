package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "Refresh titles from the bulk datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer pipe.close()

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			report, err := pipe.refreshTitles(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog titles: %s\nFlagged for review sync: %s\n",
				formatCount(report.CatalogTitles), formatCount(report.Flagged))
			return nil
		},
	}
}

func newFirstWorldCommand(ctx *commandContext) *cobra.Command {
	var titleFlags []string

	cmd := &cobra.Command{
		Use:   "firstworld",
		Short: "Classify titles by production country",
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

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			report, err := pipe.classifyTitles(runCtx, titleIDs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Classified: %s\nNo country data: %s\nErrored: %s\n",
				formatCount(report.Updated), formatCount(report.NoData), formatCount(report.Errored))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&titleFlags, "title", nil, "Classify a specific title code (repeatable)")
	return cmd
}

func newReviewsCommand(ctx *commandContext) *cobra.Command {
	var titleFlags []string

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Scrape and persist reviews for flagged titles",
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

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			report, err := pipe.syncReviews(runCtx, titleIDs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReviewReport(report))
			if report.ShouldWarn() {
				fmt.Fprintln(out, "Warning: titles were processed but none received new reviews.")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&titleFlags, "title", nil, "Sync a specific title code (repeatable)")
	return cmd
}

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings",
		Short: "Recompute weighted rating aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer pipe.close()

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			refreshed, err := pipe.refreshRatings(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed weighted ratings for %s titles\n",
				formatCount(int(refreshed)))
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export weighted ratings to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer pipe.close()

			if output != "" {
				pipe.cfg.Export.Path = output
			}

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			rows, path, err := pipe.exportRatings(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows to %s\n", formatCount(rows), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Export file path (overrides configuration)")
	return cmd
}
