package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func failingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGatewayAllEndpointsFailReturnsMock(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	endpoints := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		endpoints = append(endpoints, failingServer(t, &hits).URL)
	}

	gw := NewGateway(NewPool(endpoints), Options{Timeout: time.Second}, nil)
	set := gw.Search(context.Background(), "election results", "news")

	if set.Source != "mock" || !set.IsMock() {
		t.Fatalf("expected mock source, got %q", set.Source)
	}
	if set.TotalResults < 1 || len(set.Results) < 1 {
		t.Fatalf("expected mock results, got %+v", set)
	}
	if hits.Load() != 5 {
		t.Fatalf("expected one attempt per endpoint, got %d", hits.Load())
	}
}

func TestGatewayUnreachableEndpoints(t *testing.T) {
	t.Parallel()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	gw := NewGateway(NewPool([]string{closedURL, "://bad-endpoint"}), Options{Timeout: 500 * time.Millisecond}, nil)
	set := gw.Search(context.Background(), "anything")
	if !set.IsMock() {
		t.Fatalf("expected mock fallback, got %q", set.Source)
	}
}

func TestGatewayEmptyPoolReturnsMock(t *testing.T) {
	t.Parallel()

	set := NewGateway(NewPool(nil), Options{}, nil).Search(context.Background(), "q")
	if !set.IsMock() || set.TotalResults < 1 {
		t.Fatalf("expected mock results, got %+v", set)
	}
}

func TestGatewayRetriesOnNextEndpoint(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	bad := failingServer(t, &hits)

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("q") != "solar storm" || q.Get("categories") != "news,general" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "solar storm",
			"number_of_results": 0,
			"results": [
				{"title": "Storm hits", "content": "Aurora seen", "url": "https://a.example/1", "publishedDate": "2024-05-10T12:00:00", "score": 0.9, "engine": "bing"},
				{"title": "Snippet shape", "snippet": "Alt field", "link": "https://b.example/2", "pubdate": "2024-05-11", "weight": 0.4},
				{"title": "No url"}
			]
		}`))
	}))
	t.Cleanup(good.Close)

	gw := NewGateway(NewPool([]string{bad.URL, good.URL}), Options{Timeout: time.Second}, nil)
	set := gw.Search(context.Background(), "solar storm", "news", "general")

	if set.IsMock() {
		t.Fatalf("expected real results")
	}
	if set.Endpoint != good.URL {
		t.Fatalf("unexpected endpoint %s", set.Endpoint)
	}
	if len(set.Results) != 2 || set.TotalResults != 2 {
		t.Fatalf("unexpected results: %+v", set)
	}

	first, second := set.Results[0], set.Results[1]
	if first.PublishedAt == nil || first.PublishedAt.Day() != 10 {
		t.Fatalf("unexpected first date: %v", first.PublishedAt)
	}
	if first.Score == nil || *first.Score != 0.9 {
		t.Fatalf("unexpected first score: %v", first.Score)
	}
	if second.Content != "Alt field" || second.URL != "https://b.example/2" {
		t.Fatalf("snippet/link not normalized: %+v", second)
	}
	if second.Score == nil || *second.Score != 0.4 {
		t.Fatalf("weight not normalized: %v", second.Score)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected bad endpoint hit once, got %d", hits.Load())
	}
}

func TestMockResultsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := MockResults("x y"), MockResults("x y")
	if len(a.Results) != len(b.Results) {
		t.Fatalf("mock sets differ in size")
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			t.Fatalf("mock result %d differs", i)
		}
	}
}

// cursorStealingTransport advances the pool on every request, as concurrent
// searches sharing the pool would.
type cursorStealingTransport struct {
	pool   *Pool
	steals int
}

func (c cursorStealingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	for i := 0; i < c.steals; i++ {
		c.pool.Next()
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestGatewayRetriesReachHealthyEndpointUnderConcurrentUse(t *testing.T) {
	t.Parallel()

	var failing, healthy atomic.Int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthy.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"ok","url":"https://ok.example/1"}]}`))
	}))
	t.Cleanup(good.Close)

	endpoints := []string{failingServer(t, &failing).URL, good.URL}
	for i := 0; i < 3; i++ {
		endpoints = append(endpoints, failingServer(t, &failing).URL)
	}
	pool := NewPool(endpoints)
	client := &http.Client{Timeout: time.Second, Transport: cursorStealingTransport{pool: pool, steals: 4}}

	set := NewGateway(pool, Options{Client: client}, nil).Search(context.Background(), "storm")
	if set.IsMock() || healthy.Load() != 1 {
		t.Fatalf("expected the healthy endpoint to answer, source=%q hits=%d", set.Source, healthy.Load())
	}
	if failing.Load() != 1 {
		t.Fatalf("expected exactly one failed attempt before the healthy endpoint, got %d", failing.Load())
	}
}
