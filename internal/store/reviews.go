package store

import (
	"context"
	"database/sql"
	"fmt"

	"reelsync/internal/media"
)

// UpsertReviews writes one batch of reviews in a single transaction. The
// write is idempotent on review id so a re-fetched page never duplicates
// rows.
func (s *Store) UpsertReviews(ctx context.Context, batch []media.Review) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("upsert reviews", fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO reviews (review_id, title_id, rating, num_helpful, num_unhelpful, num_words)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (review_id) DO UPDATE SET
            title_id = excluded.title_id,
            rating = excluded.rating,
            num_helpful = excluded.num_helpful,
            num_unhelpful = excluded.num_unhelpful,
            num_words = excluded.num_words`)
	if err != nil {
		return storeErr("upsert reviews", fmt.Errorf("prepare upsert: %w", err))
	}
	defer stmt.Close()

	for _, review := range batch {
		var rating any
		if review.Rating != nil {
			rating = *review.Rating
		}
		if _, err := stmt.ExecContext(ctx,
			review.ReviewID,
			review.TitleID,
			rating,
			review.NumHelpful,
			review.NumUnhelpful,
			review.NumWords,
		); err != nil {
			return storeErr("upsert reviews", fmt.Errorf("review %d: %w", review.ReviewID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("upsert reviews", fmt.Errorf("commit: %w", err))
	}
	return nil
}

// ReviewsForTitle returns the persisted reviews of one title ordered by id.
func (s *Store) ReviewsForTitle(ctx context.Context, titleID int64) ([]media.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT review_id, title_id, rating, num_helpful, num_unhelpful, num_words
        FROM reviews WHERE title_id = ? ORDER BY review_id`, titleID)
	if err != nil {
		return nil, storeErr("fetch reviews", err)
	}
	defer rows.Close()

	var reviews []media.Review
	for rows.Next() {
		var (
			review media.Review
			rating sql.NullInt64
		)
		if err := rows.Scan(
			&review.ReviewID,
			&review.TitleID,
			&rating,
			&review.NumHelpful,
			&review.NumUnhelpful,
			&review.NumWords,
		); err != nil {
			return nil, storeErr("scan review", err)
		}
		if rating.Valid {
			value := int(rating.Int64)
			review.Rating = &value
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate reviews", err)
	}
	return reviews, nil
}

// ReviewCount returns the total number of persisted reviews.
func (s *Store) ReviewCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count); err != nil {
		return 0, storeErr("count reviews", err)
	}
	return count, nil
}
