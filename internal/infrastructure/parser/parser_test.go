package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsVerifier/internal/config"
	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/scanner"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Tech</title>
    <item>
      <title>Chipmaker unveils new processor</title>
      <link>https://news.example/tech/1</link>
      <description><![CDATA[<p>The company <b>announced</b> a faster chip.</p>]]></description>
      <pubDate>Mon, 03 Jun 2024 10:00:00 GMT</pubDate>
      <media:thumbnail url="https://img.example/1.jpg" width="240" height="135"/>
    </item>
    <item>
      <title>No link item</title>
      <description>Skipped</description>
    </item>
    <item>
      <title>Second story</title>
      <link>https://news.example/tech/2</link>
      <description>Plain text summary.</description>
      <enclosure url="https://img.example/2.png" type="image/png" length="10"/>
    </item>
    <item>
      <title>Third story</title>
      <link>https://news.example/tech/3</link>
      <description>Another.</description>
    </item>
  </channel>
</rss>`

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(server.Close)

	articles, err := NewRSSScanner(nil).Scan(context.Background(), scanner.Request{SourceName: "tech-feed", URL: server.URL, Limit: 2})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Chipmaker unveils new processor" || first.Description != "The company announced a faster chip." {
		t.Fatalf("unexpected first article %+v", first)
	}
	if first.ImageURL != "https://img.example/1.jpg" {
		t.Fatalf("unexpected media thumbnail %q", first.ImageURL)
	}
	if first.PublishedAt == nil || first.PublishedAt.Day() != 3 {
		t.Fatalf("unexpected published date %v", first.PublishedAt)
	}
	if articles[1].ImageURL != "https://img.example/2.png" || articles[1].Source != "tech-feed" {
		t.Fatalf("unexpected second article %+v", articles[1])
	}
}

func TestHTMLScannerScan(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/world", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<article><a href="/world/story-1">Story one</a></article>
			<h2><a href="/world/story-2#comments">Story two</a></h2>
			<h3><a href="https://elsewhere.example/x">External</a></h3>
			<h3><a href="/world/missing">Missing</a></h3>
		</body></html>`))
	})
	for i := 1; i <= 2; i++ {
		i := i
		mux.HandleFunc(fmt.Sprintf("/world/story-%d", i), func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprintf(w, `<html><head><title>Story %d headline</title></head><body><article>
				<h1>Story %d headline</h1>
				<p>Officials confirmed the agreement on Tuesday after weeks of negotiation between the parties involved in the dispute.</p>
				<p>The deal covers trade, energy and security cooperation for the next five years, according to the statement released.</p>
				<p>Analysts expect markets to respond positively once the details are published in full later this month.</p>
			</article></body></html>`, i, i)
		})
	}
	mux.HandleFunc("/world/missing", http.NotFound)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	articles, err := NewHTMLScanner(nil).Scan(context.Background(), scanner.Request{SourceName: "world-site", URL: server.URL + "/world", Limit: 5})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d: %+v", len(articles), articles)
	}
	for _, a := range articles {
		if !strings.HasPrefix(a.URL, server.URL+"/world/story-") || strings.Contains(a.URL, "#") {
			t.Fatalf("unexpected url %s", a.URL)
		}
		if !strings.Contains(a.Description, "Officials confirmed the agreement") {
			t.Fatalf("readable text missing: %q", a.Description)
		}
		if a.Source != "world-site" || a.Title == "" {
			t.Fatalf("unexpected article %+v", a)
		}
	}
}

type stubScanner struct {
	name     string
	articles []domain.RawArticle
	err      error
	calls    int
}

func (s *stubScanner) Name() string { return s.name }
func (s *stubScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if req.Limit > 0 && len(s.articles) > req.Limit {
		return s.articles[:req.Limit], nil
	}
	return s.articles, nil
}

func TestStrategySourceFiltersBySectorAndSkipsFailures(t *testing.T) {
	t.Parallel()

	broken := &stubScanner{name: "broken", err: errors.New("timeout")}
	rss := &stubScanner{name: "rss", articles: []domain.RawArticle{{Title: "a", URL: "u1"}, {Title: "b", URL: "u2"}}}
	reg := scanner.NewRegistry(broken, rss)

	sources := []config.SourceConfig{
		{Name: "down", Scanner: "broken", Sector: "health"},
		{Name: "feed", Scanner: "rss", Sector: "Health"},
		{Name: "other", Scanner: "rss", Sector: "sports"},
	}

	result, err := NewStrategySource(reg, sources, nil).Fetch(context.Background(), "health", 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.Source != SourceName || len(result.Articles) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Articles[0].Source != "feed" {
		t.Fatalf("source name not stamped: %+v", result.Articles[0])
	}
	if rss.calls != 1 || broken.calls != 1 {
		t.Fatalf("unexpected calls rss=%d broken=%d", rss.calls, broken.calls)
	}
}

func TestStrategySourceErrors(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry(&stubScanner{name: "rss", err: errors.New("503")})

	if _, err := NewStrategySource(reg, nil, nil).Fetch(context.Background(), "science", 3); err == nil {
		t.Fatalf("expected error for sector without sources")
	}

	sources := []config.SourceConfig{{Name: "feed", Scanner: "rss", Sector: "science"}}
	if _, err := NewStrategySource(reg, sources, nil).Fetch(context.Background(), "science", 3); err == nil {
		t.Fatalf("expected error when every source fails")
	}
}
