package imaging

import (
	"context"

	"NewsVerifier/internal/ports"
)

// SearchMatchCounter counts image-search hits for a URL. Synthetic result sets
// count as no corroboration.
type SearchMatchCounter struct {
	searcher ports.Searcher
}

var _ ports.MatchCounter = (*SearchMatchCounter)(nil)

// NewSearchMatchCounter builds a counter over searcher.
func NewSearchMatchCounter(searcher ports.Searcher) *SearchMatchCounter {
	return &SearchMatchCounter{searcher: searcher}
}

// CountMatches returns the number of real image results for imageURL.
func (c *SearchMatchCounter) CountMatches(ctx context.Context, imageURL string) int {
	if c == nil || c.searcher == nil || imageURL == "" {
		return 0
	}
	set := c.searcher.Search(ctx, imageURL, "images")
	if set.IsMock() {
		return 0
	}
	return len(set.Results)
}
