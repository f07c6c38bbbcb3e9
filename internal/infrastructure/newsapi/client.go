// Package newsapi implements the secondary article tier against a
// NewsAPI-compatible JSON service.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsVerifier/internal/config"
	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
)

// SourceName labels articles produced by this tier.
const SourceName = "newsapi"

var categories = map[string]struct{}{
	"business": {}, "entertainment": {}, "general": {}, "health": {},
	"science": {}, "sports": {}, "technology": {},
}

// Client fetches headlines by sector.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ArticleProvider = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.NewsAPIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the tier in ingestion logs.
func (c *Client) Name() string { return SourceName }

type response struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns up to count headlines. Known NewsAPI categories use the
// top-headlines feed; other sectors fall back to a keyword search.
func (c *Client) Fetch(ctx context.Context, sector string, count int) (domain.FetchResult, error) {
	if !config.UsableKey(c.apiKey) {
		return domain.FetchResult{}, errors.New("newsapi key not configured")
	}
	if c.endpoint == "" {
		return domain.FetchResult{}, errors.New("newsapi endpoint not configured")
	}

	reqURL := c.buildURL(sector, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.FetchResult{}, fmt.Errorf("newsapi error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.FetchResult{}, fmt.Errorf("decode headlines: %w", err)
	}
	if payload.Status != "" && payload.Status != "ok" {
		return domain.FetchResult{}, fmt.Errorf("newsapi status %s: %s", payload.Code, payload.Message)
	}

	articles := make([]domain.RawArticle, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		if count > 0 && len(articles) >= count {
			break
		}
		if item.URL == "" || item.Title == "[Removed]" {
			continue
		}
		description := strings.TrimSpace(item.Description)
		if description == "" {
			description = strings.TrimSpace(item.Content)
		}
		raw := domain.RawArticle{
			Title:       strings.TrimSpace(item.Title),
			Description: description,
			URL:         item.URL,
			ImageURL:    item.URLToImage,
			Source:      item.Source.Name,
		}
		if published, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			published = published.UTC()
			raw.PublishedAt = &published
		}
		articles = append(articles, raw)
	}

	return domain.FetchResult{Articles: articles, Source: SourceName}, nil
}

func (c *Client) buildURL(sector string, count int) string {
	q := url.Values{}
	q.Set("language", "en")
	if count > 0 {
		q.Set("pageSize", strconv.Itoa(count))
	}

	sector = strings.ToLower(strings.TrimSpace(sector))
	if _, ok := categories[sector]; ok {
		q.Set("category", sector)
		return c.endpoint + "/top-headlines?" + q.Encode()
	}
	q.Set("q", sector)
	q.Set("sortBy", "publishedAt")
	return c.endpoint + "/everything?" + q.Encode()
}
