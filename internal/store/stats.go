package store

import "context"

// Stats summarizes the persisted state for status reporting.
type Stats struct {
	Titles       int64
	Flagged      int64
	Unclassified int64
	Reviews      int64
	Rated        int64
}

// Stats reads the row counts backing the status command.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM titles", &stats.Titles},
		{"SELECT COUNT(*) FROM titles WHERE needs_update = 1", &stats.Flagged},
		{"SELECT COUNT(*) FROM titles WHERE first_world IS NULL", &stats.Unclassified},
		{"SELECT COUNT(*) FROM reviews", &stats.Reviews},
		{"SELECT COUNT(*) FROM weighted_ratings", &stats.Rated},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return stats, storeErr("read stats", err)
		}
	}
	return stats, nil
}
