// Package media defines the shared title and review data model along with the
// external identifier codecs used at collaborator boundaries.
package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TitleCodePrefix is the two-letter prefix on external catalog title codes.
const TitleCodePrefix = "tt"

// ReviewCodePrefix is the two-letter prefix on external review identifiers.
const ReviewCodePrefix = "rw"

// titleCodeDigits is the minimum zero-padded width of a title code.
const titleCodeDigits = 7

// Title is one catalog entry tracked by the store.
//
// NeedsUpdate is true exactly when the title has been ingested or refreshed
// from the catalog but its review data has not been synchronized since.
type Title struct {
	ID           int64
	IsMovie      bool
	PrimaryTitle string
	Genres       []string
	StartYear    int
	// EndYear is zero when the catalog carries no end year.
	EndYear    int
	NumVotes   int64
	IMDbRating int // tenths scale: 7.4 -> 74
	// FirstWorld is nil until the enrichment step has classified the title.
	FirstWorld  *bool
	NeedsUpdate bool
}

// Review is a single accepted user review, identified by ReviewID and
// persisted with an idempotent upsert.
type Review struct {
	ReviewID int64
	TitleID  int64
	// Rating is nil when the reviewer did not leave a score.
	Rating       *int
	NumHelpful   int
	NumUnhelpful int
	NumWords     int
}

// HasRating reports whether the review carries an author rating.
func (r Review) HasRating() bool {
	return r.Rating != nil
}

// FormatTitleCode renders a numeric title id as its external catalog code,
// e.g. 111161 -> "tt0111161". IDs wider than seven digits are not padded.
func FormatTitleCode(id int64) string {
	return fmt.Sprintf("%s%0*d", TitleCodePrefix, titleCodeDigits, id)
}

// ParseTitleCode extracts the numeric id from an external title code.
func ParseTitleCode(code string) (int64, error) {
	return parseCode(TitleCodePrefix, code)
}

// ParseReviewCode extracts the numeric id from an external review code,
// e.g. "rw1234567" -> 1234567.
func ParseReviewCode(code string) (int64, error) {
	return parseCode(ReviewCodePrefix, code)
}

func parseCode(prefix, code string) (int64, error) {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, prefix) {
		return 0, fmt.Errorf("code %q missing %q prefix", code, prefix)
	}
	digits := trimmed[len(prefix):]
	if digits == "" {
		return 0, errors.New("code has no digits")
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse code %q: %w", code, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("code %q is negative", code)
	}
	return id, nil
}
