package catalog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"reelsync/internal/media"
)

// The datasets use \N for absent values.
const nullField = `\N`

// Scanner buffer large enough for any dataset row.
const maxLineBytes = 1 << 20

type ratingRecord struct {
	rating int
	votes  int64
}

func parseRatings(r io.Reader, minVotes int64) (map[int64]ratingRecord, error) {
	ratings := make(map[int64]ratingRecord)

	err := scanDataset(r, 3, func(fields []string) error {
		id, err := media.ParseTitleCode(fields[0])
		if err != nil {
			return nil
		}
		votes, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || votes < minVotes {
			return nil
		}
		average, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil
		}
		ratings[id] = ratingRecord{
			rating: int(math.Round(average * 10)),
			votes:  votes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func parseBasics(r io.Reader, titleTypes []string, ratings map[int64]ratingRecord) ([]media.Title, error) {
	allowed := make(map[string]bool, len(titleTypes))
	for _, titleType := range titleTypes {
		allowed[titleType] = true
	}

	var titles []media.Title
	err := scanDataset(r, 9, func(fields []string) error {
		id, err := media.ParseTitleCode(fields[0])
		if err != nil {
			return nil
		}
		rating, ok := ratings[id]
		if !ok {
			return nil
		}
		titleType := fields[1]
		if !allowed[titleType] {
			return nil
		}
		if fields[4] == "1" {
			return nil
		}
		startYear := parseYear(fields[5])
		if startYear == 0 || fields[7] == nullField {
			return nil
		}

		titles = append(titles, media.Title{
			ID:           id,
			IsMovie:      titleType == "movie",
			PrimaryTitle: fields[2],
			Genres:       parseGenres(fields[8]),
			StartYear:    startYear,
			EndYear:      parseYear(fields[6]),
			NumVotes:     rating.votes,
			IMDbRating:   rating.rating,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// scanDataset walks a tab-separated dataset, skipping the header row and any
// row with fewer than minFields columns.
func scanDataset(r io.Reader, minFields int, visit func(fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < minFields {
			continue
		}
		if err := visit(fields); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan dataset: %w", err)
	}
	return nil
}

func parseYear(field string) int {
	if field == nullField {
		return 0
	}
	year, err := strconv.Atoi(field)
	if err != nil {
		return 0
	}
	return year
}

func parseGenres(field string) []string {
	if field == nullField || field == "" {
		return nil
	}
	return strings.Split(field, ",")
}
