package sync

import "reelsync/internal/media"

// Diff compares a freshly downloaded catalog snapshot against the persisted
// snapshot and returns the titles to upsert: rows absent from the persisted
// snapshot, plus rows whose vote count grew by at least voteThreshold
// (1.05 = 5%). Every returned row is stamped NeedsUpdate so the review
// pipeline picks it up. With an empty persisted snapshot the whole catalog
// qualifies (first run).
//
// Diff is a pure function over the two snapshots; the caller performs the
// actual write.
func Diff(catalog, persisted []media.Title, voteThreshold float64) []media.Title {
	known := make(map[int64]int64, len(persisted))
	for _, title := range persisted {
		known[title.ID] = title.NumVotes
	}

	result := make([]media.Title, 0, len(catalog))
	for _, title := range catalog {
		votes, ok := known[title.ID]
		if ok && float64(title.NumVotes) < float64(votes)*voteThreshold {
			continue
		}
		title.NeedsUpdate = true
		result = append(result, title)
	}
	return result
}
