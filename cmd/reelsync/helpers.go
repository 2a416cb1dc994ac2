package main

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"reelsync/internal/media"
)

// counts renders integers with digit grouping for report output.
var counts = message.NewPrinter(language.English)

func formatCount(value int) string {
	return counts.Sprintf("%d", value)
}

// parseTitleCodes maps repeated --title values to numeric ids.
func parseTitleCodes(codes []string) ([]int64, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(codes))
	for _, code := range codes {
		id, err := media.ParseTitleCode(code)
		if err != nil {
			return nil, fmt.Errorf("invalid title code %q: %w", code, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
