package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/scanner"
	"NewsVerifier/internal/textutil"
)

const (
	defaultLinkSelector = "article a[href], h2 a[href], h3 a[href]"
	maxBodyChars        = 5000
)

// HTMLScanner crawls a section page, follows article links and extracts the
// readable text of each article.
type HTMLScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires an HTTP client; nil uses a 20s timeout client.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (s *HTMLScanner) Name() string {
	return "html"
}

// Scan collects same-host links matching the "link_selector" option and reads
// each one. Articles that fail to load are skipped.
func (s *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	base, err := url.Parse(req.URL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid section url %q", req.URL)
	}

	doc, err := s.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	links := extractLinks(doc, base, req.Option("link_selector", defaultLinkSelector))
	if len(links) == 0 {
		return nil, fmt.Errorf("no article links on %s", req.URL)
	}

	articles := make([]domain.RawArticle, 0, len(links))
	for _, link := range links {
		if req.Limit > 0 && len(articles) >= req.Limit {
			break
		}
		article, err := s.readArticle(ctx, link)
		if err != nil {
			continue
		}
		article.Source = req.SourceName
		articles = append(articles, article)
	}
	return articles, nil
}

func (s *HTMLScanner) get(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}
	return resp, nil
}

func (s *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (s *HTMLScanner) readArticle(ctx context.Context, link *url.URL) (domain.RawArticle, error) {
	resp, err := s.get(ctx, link.String())
	if err != nil {
		return domain.RawArticle{}, err
	}
	defer resp.Body.Close()

	parsed, err := readability.FromReader(resp.Body, link)
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("extract article: %w", err)
	}

	body := strings.Join(strings.Fields(parsed.TextContent), " ")
	if body == "" {
		body = strings.TrimSpace(parsed.Excerpt)
	}

	return domain.RawArticle{
		Title:       strings.TrimSpace(parsed.Title),
		Description: textutil.Truncate(body, maxBodyChars),
		URL:         link.String(),
		ImageURL:    parsed.Image,
	}, nil
}

func extractLinks(doc *goquery.Document, base *url.URL, selector string) []*url.URL {
	seen := map[string]struct{}{}
	var links []*url.URL

	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		if resolved.Host != base.Host || resolved.Path == "" || resolved.Path == "/" || resolved.Path == base.Path {
			return
		}
		key := resolved.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, resolved)
	})
	return links
}
