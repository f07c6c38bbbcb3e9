package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Options tunes a Gateway.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Client            *http.Client
}

// Gateway queries SearXNG endpoints from a Pool, rotating on failure and
// degrading to synthetic results when every endpoint fails.
type Gateway struct {
	pool    *Pool
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.Searcher = (*Gateway)(nil)

// NewGateway wires the pool with an HTTP client and a shared rate limiter.
func NewGateway(pool *Pool, opts Options, logger *slog.Logger) *Gateway {
	if pool == nil {
		pool = NewPool(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Gateway{
		pool:    pool,
		client:  client,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.OrDiscard(logger),
	}
}

// Search runs the query against each pool member at most once, starting at the
// pool cursor. It never fails: when nothing answers, a mock result set is
// returned.
func (g *Gateway) Search(ctx context.Context, query string, categories ...string) domain.SearchResultSet {
	endpoints := g.pool.Rotation()
	attempts := len(endpoints)
	for i, endpoint := range endpoints {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Warn("search rate limiter aborted", "query", query, "error", err)
			break
		}

		set, err := g.query(ctx, endpoint, query, categories)
		if err == nil {
			return set
		}
		g.logger.Warn("search endpoint failed", "endpoint", endpoint, "attempt", i+1, "of", attempts, "error", err)
	}

	g.logger.Debug("search degraded to mock results", "query", query)
	return MockResults(query)
}

func (g *Gateway) query(ctx context.Context, endpoint, query string, categories []string) (domain.SearchResultSet, error) {
	reqURL, err := buildSearchURL(endpoint, query, categories)
	if err != nil {
		return domain.SearchResultSet{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.SearchResultSet{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsVerifier/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.SearchResultSet{}, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.SearchResultSet{}, fmt.Errorf("searxng returned %s", resp.Status)
	}

	var payload rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.SearchResultSet{}, fmt.Errorf("decode response: %w", err)
	}

	return payload.normalize(query, endpoint), nil
}

func buildSearchURL(endpoint, query string, categories []string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q", endpoint)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/search"

	q := parsed.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if len(categories) > 0 {
		q.Set("categories", strings.Join(categories, ","))
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
