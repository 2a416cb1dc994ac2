package store

import (
	"context"
	"time"
)

// WeightedRating is one title's aggregate review score.
type WeightedRating struct {
	TitleID        int64
	PrimaryTitle   string
	StartYear      int
	NumVotes       int64
	IMDbRating     int
	WeightedRating float64
	ReviewCount    int
	UpdatedAt      time.Time
}

// RefreshWeightedRatings recomputes the helpfulness-weighted mean rating for
// every title that has at least one rated review. Each review contributes its
// rating weighted by num_helpful plus one, so unvoted reviews still count.
func (s *Store) RefreshWeightedRatings(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
        INSERT INTO weighted_ratings (title_id, weighted_rating, review_count, updated_at)
        SELECT
            title_id,
            CAST(SUM(rating * (num_helpful + 1)) AS REAL) / SUM(num_helpful + 1),
            COUNT(*),
            ?
        FROM reviews
        WHERE rating IS NOT NULL
        GROUP BY title_id
        ON CONFLICT (title_id) DO UPDATE SET
            weighted_rating = excluded.weighted_rating,
            review_count = excluded.review_count,
            updated_at = excluded.updated_at`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, storeErr("refresh weighted ratings", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, storeErr("refresh weighted ratings", err)
	}
	return rows, nil
}

// WeightedRatings returns the aggregate scores joined with title metadata,
// best rated first.
func (s *Store) WeightedRatings(ctx context.Context) ([]WeightedRating, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT w.title_id, t.primary_title, t.start_year, t.num_votes, t.imdb_rating,
               w.weighted_rating, w.review_count, w.updated_at
        FROM weighted_ratings w
        JOIN titles t ON t.id = w.title_id
        ORDER BY w.weighted_rating DESC, w.review_count DESC, w.title_id`)
	if err != nil {
		return nil, storeErr("fetch weighted ratings", err)
	}
	defer rows.Close()

	var ratings []WeightedRating
	for rows.Next() {
		var (
			rating    WeightedRating
			updatedAt string
		)
		if err := rows.Scan(
			&rating.TitleID,
			&rating.PrimaryTitle,
			&rating.StartYear,
			&rating.NumVotes,
			&rating.IMDbRating,
			&rating.WeightedRating,
			&rating.ReviewCount,
			&updatedAt,
		); err != nil {
			return nil, storeErr("scan weighted rating", err)
		}
		if parsed, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			rating.UpdatedAt = parsed
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate weighted ratings", err)
	}
	return ratings, nil
}
