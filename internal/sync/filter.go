package sync

import "reelsync/internal/media"

// ReviewFilter holds the acceptance thresholds applied to scraped reviews
// before persistence.
type ReviewFilter struct {
	MinHelpfulVotes int
	MinReviewWords  int
}

// Accept reports whether a single review clears every acceptance predicate:
// a rating must be present, helpful votes must exceed MinHelpfulVotes, and
// the text must be at least MinReviewWords long.
func (f ReviewFilter) Accept(review media.Review) bool {
	if !review.HasRating() {
		return false
	}
	if review.NumHelpful <= f.MinHelpfulVotes {
		return false
	}
	return review.NumWords >= f.MinReviewWords
}

// Apply returns the subset of reviews that pass Accept, preserving order.
func (f ReviewFilter) Apply(reviews []media.Review) []media.Review {
	accepted := make([]media.Review, 0, len(reviews))
	for _, review := range reviews {
		if f.Accept(review) {
			accepted = append(accepted, review)
		}
	}
	return accepted
}
