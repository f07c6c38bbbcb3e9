package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/scanner"
)

const userAgent = "NewsVerifier/1.0"

// RSSScanner reads RSS and Atom feeds.
type RSSScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client; nil uses a 20s timeout client.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the feed at req.URL and returns up to req.Limit items.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	fp := gofeed.NewParser()
	fp.Client = s.client
	fp.UserAgent = userAgent

	feed, err := fp.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	articles := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if req.Limit > 0 && len(articles) >= req.Limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		description := plainText(item.Description)
		if description == "" {
			description = plainText(item.Content)
		}

		articles = append(articles, domain.RawArticle{
			Title:       strings.TrimSpace(item.Title),
			Description: description,
			URL:         link,
			ImageURL:    feedImage(item),
			Source:      req.SourceName,
			PublishedAt: firstTime(item.PublishedParsed, item.UpdatedParsed),
		})
	}
	return articles, nil
}

func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}

func firstTime(candidates ...*time.Time) *time.Time {
	for _, t := range candidates {
		if t != nil && !t.IsZero() {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// plainText strips markup from feed fragments.
func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
