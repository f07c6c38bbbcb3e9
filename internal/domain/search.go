package domain

import "time"

// SearchResult is a normalized hit from a metasearch endpoint.
type SearchResult struct {
	Title       string
	Content     string
	URL         string
	Engine      string
	PublishedAt *time.Time
	Score       *float64
}

// SearchResultSet groups results with the endpoint that served them.
// Source is "mock" when every endpoint failed.
type SearchResultSet struct {
	Query        string
	Results      []SearchResult
	TotalResults int
	Source       string
	Endpoint     string
}

// SearchSourceMock marks synthetic search output.
const SearchSourceMock = "mock"

// IsMock reports whether the set was synthesized.
func (s SearchResultSet) IsMock() bool {
	return s.Source == SearchSourceMock
}

// TimelineEvent is a single ranked point on a topic timeline.
type TimelineEvent struct {
	Topic       string
	Date        time.Time
	Title       string
	Description string
	Source      string
	URL         string
	Relevance   float64
}

// CauseEffect links two developments in a timeline analysis.
type CauseEffect struct {
	Cause  string `json:"cause"`
	Effect string `json:"effect"`
}

// TimelineAnalysis captures patterns derived from a timeline.
type TimelineAnalysis struct {
	Patterns    []string      `json:"patterns"`
	CauseEffect []CauseEffect `json:"causeEffect"`
	Predictions []string      `json:"predictions"`
	Tier        Tier          `json:"tier"`
}

// Timeline is the Timeline Builder output for a topic.
type Timeline struct {
	Topic    string
	Events   []TimelineEvent
	Analysis TimelineAnalysis
}
