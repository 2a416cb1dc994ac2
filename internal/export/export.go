// Package export writes the weighted rating table to a spreadsheet file.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"

	"reelsync/internal/media"
	"reelsync/internal/store"
)

// RatingSource provides the aggregated scores to export.
type RatingSource interface {
	WeightedRatings(ctx context.Context) ([]store.WeightedRating, error)
}

// WriteCSV renders the weighted ratings as CSV at the given path, creating
// parent directories as needed. It returns the number of exported rows.
func WriteCSV(ctx context.Context, source RatingSource, path string) (int, error) {
	ratings, err := source.WeightedRatings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load weighted ratings: %w", err)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{
		"title_id", "primary_title", "start_year", "num_votes",
		"imdb_rating", "weighted_rating", "review_count",
	})
	for _, rating := range ratings {
		tw.AppendRow(table.Row{
			media.FormatTitleCode(rating.TitleID),
			rating.PrimaryTitle,
			rating.StartYear,
			rating.NumVotes,
			fmt.Sprintf("%.1f", float64(rating.IMDbRating)/10),
			fmt.Sprintf("%.2f", rating.WeightedRating),
			rating.ReviewCount,
		})
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(tw.RenderCSV()+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write export file: %w", err)
	}
	return len(ratings), nil
}
