package imdb

import (
	"fmt"
	"strings"

	"reelsync/internal/media"
)

// Page is one decoded page of reviews.
type Page struct {
	Reviews     []media.Review
	HasNextPage bool
	EndCursor   string
	// Skipped counts nodes dropped because of malformed identifiers.
	Skipped int
}

type graphqlResponse struct {
	Data *struct {
		Title *struct {
			Reviews *reviewsPayload `json:"reviews"`
		} `json:"title"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type reviewsPayload struct {
	Edges    []reviewEdge `json:"edges"`
	PageInfo pageInfo     `json:"pageInfo"`
}

type reviewEdge struct {
	Node reviewNode `json:"node"`
}

type reviewNode struct {
	ID           string      `json:"id"`
	AuthorRating *int        `json:"authorRating"`
	Helpfulness  helpfulness `json:"helpfulness"`
	Text         reviewText  `json:"text"`
}

type helpfulness struct {
	UpVotes   int `json:"upVotes"`
	DownVotes int `json:"downVotes"`
}

type reviewText struct {
	OriginalText struct {
		PlaidHTML string `json:"plaidHtml"`
	} `json:"originalText"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

func extractPage(payload *reviewsPayload, titleCode string) (*Page, error) {
	titleID, err := media.ParseTitleCode(titleCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	page := &Page{
		HasNextPage: payload.PageInfo.HasNextPage,
		EndCursor:   payload.PageInfo.EndCursor,
		Reviews:     make([]media.Review, 0, len(payload.Edges)),
	}

	for _, edge := range payload.Edges {
		node := edge.Node
		reviewID, err := media.ParseReviewCode(node.ID)
		if err != nil {
			page.Skipped++
			continue
		}
		page.Reviews = append(page.Reviews, media.Review{
			ReviewID:     reviewID,
			TitleID:      titleID,
			Rating:       node.AuthorRating,
			NumHelpful:   node.Helpfulness.UpVotes,
			NumUnhelpful: node.Helpfulness.DownVotes,
			NumWords:     wordCount(node.Text.OriginalText.PlaidHTML),
		})
	}
	return page, nil
}

func wordCount(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
