package search

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"NewsVerifier/internal/domain"
)

// rawResponse accepts the result shapes emitted by different SearXNG versions
// and forks.
type rawResponse struct {
	Query           string      `json:"query"`
	NumberOfResults float64     `json:"number_of_results"`
	Results         []rawResult `json:"results"`
}

type rawResult struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Snippet       string   `json:"snippet"`
	URL           string   `json:"url"`
	Link          string   `json:"link"`
	Engine        string   `json:"engine"`
	PublishedDate *string  `json:"publishedDate"`
	PubDate       *string  `json:"pubdate"`
	Published     *string  `json:"published"`
	Score         *float64 `json:"score"`
	Weight        *float64 `json:"weight"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func (r rawResponse) normalize(query, endpoint string) domain.SearchResultSet {
	results := make([]domain.SearchResult, 0, len(r.Results))
	for _, item := range r.Results {
		link := firstNonEmpty(item.URL, item.Link)
		if link == "" {
			continue
		}
		score := item.Score
		if score == nil {
			score = item.Weight
		}
		results = append(results, domain.SearchResult{
			Title:       strings.TrimSpace(item.Title),
			Content:     strings.TrimSpace(firstNonEmpty(item.Content, item.Snippet)),
			URL:         link,
			Engine:      item.Engine,
			PublishedAt: parseDate(item.PublishedDate, item.PubDate, item.Published),
			Score:       score,
		})
	}

	total := int(r.NumberOfResults)
	if total < len(results) {
		total = len(results)
	}

	return domain.SearchResultSet{
		Query:        firstNonEmpty(r.Query, query),
		Results:      results,
		TotalResults: total,
		Source:       "searxng",
		Endpoint:     endpoint,
	}
}

func parseDate(candidates ...*string) *time.Time {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		value := strings.TrimSpace(*c)
		if value == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				parsed = parsed.UTC()
				return &parsed
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// MockResults builds the deterministic result set used when every endpoint fails.
func MockResults(query string) domain.SearchResultSet {
	escaped := url.QueryEscape(query)
	results := []domain.SearchResult{
		{
			Title:   fmt.Sprintf("Background coverage: %s", query),
			Content: fmt.Sprintf("Encyclopedic background and prior reporting related to %q.", query),
			URL:     "https://en.wikipedia.org/w/index.php?search=" + escaped,
			Engine:  domain.SearchSourceMock,
		},
		{
			Title:   fmt.Sprintf("Fact-check archive: %s", query),
			Content: fmt.Sprintf("Independent fact-check articles that mention %q.", query),
			URL:     "https://www.factcheck.org/?s=" + escaped,
			Engine:  domain.SearchSourceMock,
		},
		{
			Title:   fmt.Sprintf("Recent reporting: %s", query),
			Content: fmt.Sprintf("Aggregated news coverage for %q.", query),
			URL:     "https://news.google.com/search?q=" + escaped,
			Engine:  domain.SearchSourceMock,
		},
	}
	return domain.SearchResultSet{
		Query:        query,
		Results:      results,
		TotalResults: len(results),
		Source:       domain.SearchSourceMock,
	}
}
