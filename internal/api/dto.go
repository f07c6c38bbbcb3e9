package api

import (
	"time"

	"NewsVerifier/internal/domain"
)

type articleResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Sector      string    `json:"sector"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	IngestedAt  time.Time `json:"ingestedAt"`
}

func toArticleResponse(a domain.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Body:        a.Body,
		ImageURL:    a.ImageURL,
		Sector:      a.Sector,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		IngestedAt:  a.IngestedAt,
	}
}

func toArticleResponses(articles []domain.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	return out
}

type verdictResponse struct {
	ID             string    `json:"id"`
	ArticleID      string    `json:"articleId,omitempty"`
	Claim          string    `json:"claim"`
	Status         string    `json:"status"`
	Confidence     int       `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	Citations      []string  `json:"citations"`
	RedFlags       []string  `json:"redFlags"`
	ContextSources []string  `json:"contextSources"`
	Tier           string    `json:"tier"`
	CheckedAt      time.Time `json:"checkedAt"`
}

func toVerdictResponse(v domain.Verdict) verdictResponse {
	return verdictResponse{
		ID:             v.ID,
		ArticleID:      v.ArticleID,
		Claim:          v.Claim,
		Status:         string(v.Status),
		Confidence:     v.Confidence,
		Reasoning:      v.Reasoning,
		Citations:      nonNil(v.Citations),
		RedFlags:       nonNil(v.RedFlags),
		ContextSources: nonNil(v.ContextSources),
		Tier:           string(v.Tier),
		CheckedAt:      v.CheckedAt,
	}
}

type assessmentResponse struct {
	ID                string              `json:"id"`
	ImageURL          string              `json:"imageUrl"`
	MatchCount        int                 `json:"matchCount"`
	AuthenticityScore int                 `json:"authenticityScore"`
	Status            string              `json:"status"`
	Signals           domain.ImageSignals `json:"signals"`
	Reasoning         string              `json:"reasoning"`
	Fallback          bool                `json:"fallback"`
	AssessedAt        time.Time           `json:"assessedAt"`
}

func toAssessmentResponse(a domain.ImageAssessment) assessmentResponse {
	return assessmentResponse{
		ID:                a.ID,
		ImageURL:          a.ImageURL,
		MatchCount:        a.MatchCount,
		AuthenticityScore: a.AuthenticityScore,
		Status:            string(a.Status),
		Signals:           a.Signals,
		Reasoning:         a.Reasoning,
		Fallback:          a.Fallback,
		AssessedAt:        a.AssessedAt,
	}
}

type timelineEventResponse struct {
	Date        *time.Time `json:"date,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Relevance   float64    `json:"relevance"`
}

type timelineResponse struct {
	Topic    string                  `json:"topic"`
	Events   []timelineEventResponse `json:"events"`
	Analysis domain.TimelineAnalysis `json:"analysis"`
}

func toTimelineResponse(t domain.Timeline) timelineResponse {
	events := make([]timelineEventResponse, 0, len(t.Events))
	for _, e := range t.Events {
		ev := timelineEventResponse{
			Title:       e.Title,
			Description: e.Description,
			Source:      e.Source,
			URL:         e.URL,
			Relevance:   e.Relevance,
		}
		if !e.Date.IsZero() {
			d := e.Date
			ev.Date = &d
		}
		events = append(events, ev)
	}
	return timelineResponse{Topic: t.Topic, Events: events, Analysis: t.Analysis}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
