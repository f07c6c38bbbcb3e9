package encyclopedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
)

// SourceName labels context entries produced by this client.
const SourceName = "wikipedia"

// WikipediaClient talks to the Wikipedia REST page-summary API.
type WikipediaClient struct {
	endpoint string
	http     *http.Client
}

var _ ports.EncyclopediaClient = (*WikipediaClient)(nil)

// NewWikipediaClient creates a reusable HTTP client.
func NewWikipediaClient(endpoint string, timeout time.Duration) *WikipediaClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &WikipediaClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// TopicContext returns the page summary for topic, or nil when no page exists.
func (c *WikipediaClient) TopicContext(ctx context.Context, topic string) (*domain.ContextEntry, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || c.endpoint == "" {
		return nil, nil
	}

	title := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+title, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsVerifier/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(payload.Extract) == "" || strings.HasSuffix(payload.Type, "not_found") {
		return nil, nil
	}

	return &domain.ContextEntry{
		Source:  SourceName,
		Title:   payload.Title,
		Summary: strings.TrimSpace(payload.Extract),
		URL:     payload.ContentURLs.Desktop.Page,
	}, nil
}
